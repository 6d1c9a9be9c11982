// Package inference 包含城市编码器和冻结的打分模型。
package inference

import (
	"fmt"
	"strings"
)

// CityEncoder 将城市名映射为固定长度的 one-hot 向量。
// 查找是精确且区分大小写的；未识别的城市得到全零向量，不返回错误。
type CityEncoder struct {
	length int
	cities []string
	index  map[string]int
}

// NewCityEncoder 根据有序城市列表创建编码器，城市在列表中的位置即其下标。
func NewCityEncoder(cities []string, length int) (*CityEncoder, error) {
	if length <= 0 {
		return nil, fmt.Errorf("encoder length must be positive, got %d", length)
	}
	if len(cities) > length {
		return nil, fmt.Errorf("encoder has %d cities but vector length is %d", len(cities), length)
	}
	index := make(map[string]int, len(cities))
	for i, city := range cities {
		if strings.TrimSpace(city) == "" {
			return nil, fmt.Errorf("encoder city at position %d is blank", i)
		}
		if _, dup := index[city]; dup {
			return nil, fmt.Errorf("encoder city %q is listed twice", city)
		}
		index[city] = i
	}
	return &CityEncoder{
		length: length,
		cities: append([]string(nil), cities...),
		index:  index,
	}, nil
}

// Encode 返回城市对应的 one-hot 向量。
func (e *CityEncoder) Encode(city string) []float64 {
	vector := make([]float64, e.length)
	if i, ok := e.index[city]; ok {
		vector[i] = 1
	}
	return vector
}

// Known 报告城市是否在映射中。
func (e *CityEncoder) Known(city string) bool {
	_, ok := e.index[city]
	return ok
}

// Len 返回向量长度 L。
func (e *CityEncoder) Len() int {
	return e.length
}

// Cities 返回按下标排列的城市列表副本。
func (e *CityEncoder) Cities() []string {
	return append([]string(nil), e.cities...)
}
