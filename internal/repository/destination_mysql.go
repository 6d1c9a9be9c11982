package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"kanto-ml/internal/model"
)

type gormDestinationRepository struct {
	db *gorm.DB
}

// NewGormDestinationRepository 创建基于 destinations 表的 DestinationRepository。
func NewGormDestinationRepository(db *gorm.DB) DestinationRepository {
	return &gormDestinationRepository{db: db}
}

// Insert 插入一行景点记录。
func (r *gormDestinationRepository) Insert(ctx context.Context, d model.Destination) error {
	row := model.NewDestinationRow(d)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("mysql insert destination %q: %w", d.Name, err)
	}
	return nil
}

// Find 按城市和类别查询景点记录。
func (r *gormDestinationRepository) Find(ctx context.Context, filter model.DestinationFilter) ([]model.Destination, error) {
	q := r.db.WithContext(ctx).Model(&model.DestinationRow{})
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}

	var rows []model.DestinationRow
	if err := q.Order("id ASC").Limit(normalizeLimit(filter.Limit)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("mysql find destinations: %w", err)
	}
	out := make([]model.Destination, 0, len(rows))
	for _, row := range rows {
		out = append(out, normalizeFound(row.Destination()))
	}
	return out, nil
}
