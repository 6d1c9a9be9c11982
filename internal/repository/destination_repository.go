// Package repository 提供了数据访问层的实现。
package repository

import (
	"context"
	"fmt"

	"kanto-ml/internal/model"
)

// 查询已持久化景点时的默认与最大条数。
const (
	DefaultFindLimit = 100
	MaxFindLimit     = 1000
)

// DestinationRepository 是外部景点文档存储的访问接口。服务只追加写入，从不更新或删除。
type DestinationRepository interface {
	Insert(ctx context.Context, d model.Destination) error
	Find(ctx context.Context, filter model.DestinationFilter) ([]model.Destination, error)
}

// Store drivers.
const (
	DriverMongo         = "mongo"
	DriverElasticsearch = "elasticsearch"
	DriverMySQL         = "mysql"
)

// ValidateDriver 校验 store.driver 配置。
func ValidateDriver(driver string) error {
	switch driver {
	case DriverMongo, DriverElasticsearch, DriverMySQL:
		return nil
	default:
		return fmt.Errorf("unknown store driver %q, want one of mongo, elasticsearch, mysql", driver)
	}
}

// normalizeLimit 将 0 或负数替换为默认值，并限制最大值。
func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultFindLimit
	}
	if limit > MaxFindLimit {
		return MaxFindLimit
	}
	return limit
}

// normalizeFound 保证从存储读出的旧文档也具有完整字段集合。
func normalizeFound(d model.Destination) model.Destination {
	if d.Facilities == nil {
		d.Facilities = []string{}
	}
	d.Name = model.TextOrDefault(d.Name)
	d.Location = model.TextOrDefault(d.Location)
	d.OpeningHours = model.TextOrDefault(d.OpeningHours)
	d.ClosingHours = model.TextOrDefault(d.ClosingHours)
	d.Description = model.TextOrDefault(d.Description)
	d.Category = model.TextOrDefault(d.Category)
	d.City = model.TextOrDefault(d.City)
	return d
}
