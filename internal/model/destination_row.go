package model

import "time"

// DestinationRow 定义了 destinations 表的 ORM 模型，仅在 store.driver=mysql 时使用。
type DestinationRow struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Location       string    `gorm:"type:varchar(255)"`
	Facilities     []string  `gorm:"type:text;serializer:json"`
	Price          float64   `gorm:"not null;default:0"`
	OpeningHours   string    `gorm:"type:varchar(64);column:opening_hours"`
	ClosingHours   string    `gorm:"type:varchar(64);column:closing_hours"`
	Description    string    `gorm:"type:text"`
	Category       string    `gorm:"type:varchar(100);index"`
	City           string    `gorm:"type:varchar(100);index"`
	Visitor        float64   `gorm:"not null;default:0"`
	OfficialRating float64   `gorm:"not null;default:0;column:official_rating"`
	Rating         float64   `gorm:"not null;default:0"`
	Lat            float64   `gorm:"not null;default:0"`
	Lon            float64   `gorm:"not null;default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (DestinationRow) TableName() string {
	return "destinations"
}

// NewDestinationRow 将景点记录转换为数据库行。
func NewDestinationRow(d Destination) DestinationRow {
	return DestinationRow{
		Name:           d.Name,
		Location:       d.Location,
		Facilities:     d.Clone().Facilities,
		Price:          d.Price,
		OpeningHours:   d.OpeningHours,
		ClosingHours:   d.ClosingHours,
		Description:    d.Description,
		Category:       d.Category,
		City:           d.City,
		Visitor:        d.Visitor,
		OfficialRating: d.OfficialRating,
		Rating:         d.Rating,
		Lat:            d.Lat,
		Lon:            d.Lon,
	}
}

// Destination 将数据库行还原为景点记录。
func (r DestinationRow) Destination() Destination {
	facilities := r.Facilities
	if facilities == nil {
		facilities = []string{}
	}
	return Destination{
		Name:           r.Name,
		Location:       r.Location,
		Facilities:     facilities,
		Price:          r.Price,
		OpeningHours:   r.OpeningHours,
		ClosingHours:   r.ClosingHours,
		Description:    r.Description,
		Category:       r.Category,
		City:           r.City,
		Visitor:        r.Visitor,
		OfficialRating: r.OfficialRating,
		Rating:         r.Rating,
		Lat:            r.Lat,
		Lon:            r.Lon,
	}
}
