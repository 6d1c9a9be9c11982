// Package model 定义了景点记录、请求与响应的数据结构。
package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultText 是缺失文本字段的统一占位值。
const DefaultText = "-"

// Destination 是一条景点记录。静态数据集和持久化存储中的记录都必须具有完全相同的字段集合，
// 缺失值在加载或写入时就被替换为类型默认值（数值为 0，文本为 "-"，设施为空列表）。
type Destination struct {
	Name           string   `json:"name" bson:"name"`
	Location       string   `json:"location" bson:"location"`
	Facilities     []string `json:"facilities" bson:"facilities"`
	Price          float64  `json:"price" bson:"price"`
	OpeningHours   string   `json:"openingHours" bson:"openingHours"`
	ClosingHours   string   `json:"closingHours" bson:"closingHours"`
	Description    string   `json:"description" bson:"description"`
	Category       string   `json:"category" bson:"category"`
	City           string   `json:"city" bson:"city"`
	Visitor        float64  `json:"visitor" bson:"visitor"`
	OfficialRating float64  `json:"officialRating" bson:"officialRating"`
	Rating         float64  `json:"rating" bson:"rating"`
	Lat            float64  `json:"lat" bson:"lat"`
	Lon            float64  `json:"lon" bson:"lon"`
}

// Clone 返回一份不与原记录共享 Facilities 底层数组的副本。
func (d Destination) Clone() Destination {
	out := d
	out.Facilities = append(make([]string, 0, len(d.Facilities)), d.Facilities...)
	return out
}

// FacilityList 接受 JSON 字符串数组或逗号分隔的字符串。
type FacilityList []string

// UnmarshalJSON 实现 json.Unmarshaler。
func (f *FacilityList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" {
		*f = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "\"") {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*f = SplitFacilities(raw)
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("facilities must be a string or an array of strings: %w", err)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*f = out
	return nil
}

// DestinationInput 是 /save_destinations 中的单条记录，所有字段均可省略。
type DestinationInput struct {
	Name           *string      `json:"name"`
	Location       *string      `json:"location"`
	Facilities     FacilityList `json:"facilities"`
	Price          *float64     `json:"price"`
	OpeningHours   *string      `json:"openingHours"`
	ClosingHours   *string      `json:"closingHours"`
	Description    *string      `json:"description"`
	Category       *string      `json:"category"`
	City           *string      `json:"city"`
	Visitor        *float64     `json:"visitor"`
	OfficialRating *float64     `json:"officialRating"`
	Rating         *float64     `json:"rating"`
	Lat            *float64     `json:"lat"`
	Lon            *float64     `json:"lon"`
}

// ToDestination 按与静态数据集相同的默认值策略补齐缺失字段。
func (in DestinationInput) ToDestination() Destination {
	facilities := []string(in.Facilities)
	if facilities == nil {
		facilities = []string{}
	}
	return Destination{
		Name:           textOrDefault(in.Name),
		Location:       textOrDefault(in.Location),
		Facilities:     facilities,
		Price:          numberOrZero(in.Price),
		OpeningHours:   textOrDefault(in.OpeningHours),
		ClosingHours:   textOrDefault(in.ClosingHours),
		Description:    textOrDefault(in.Description),
		Category:       textOrDefault(in.Category),
		City:           textOrDefault(in.City),
		Visitor:        numberOrZero(in.Visitor),
		OfficialRating: numberOrZero(in.OfficialRating),
		Rating:         numberOrZero(in.Rating),
		Lat:            numberOrZero(in.Lat),
		Lon:            numberOrZero(in.Lon),
	}
}

// SplitFacilities 将逗号分隔的设施字符串拆分为去除首尾空白的非空列表。
func SplitFacilities(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// TextOrDefault 将空白字符串替换为 DefaultText。
func TextOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return DefaultText
	}
	return s
}

func textOrDefault(s *string) string {
	if s == nil {
		return DefaultText
	}
	return TextOrDefault(*s)
}

func numberOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

// DestinationFilter 是查询已持久化景点时的过滤条件，空字段表示不过滤。
type DestinationFilter struct {
	City     string
	Category string
	Limit    int
}
