// Package pipeline 定义了将静态数据集同步到景点存储的流程。
package pipeline

import (
	"context"
	"fmt"

	"kanto-ml/internal/catalog"
	"kanto-ml/internal/repository"
	"kanto-ml/pkg/log"
	"kanto-ml/pkg/tasks"
)

// Processor 封装了同步任务的依赖和逻辑。
type Processor struct {
	catalog *catalog.Catalog
	repo    repository.DestinationRepository
}

// NewProcessor 创建一个新的 Processor 实例。
func NewProcessor(cat *catalog.Catalog, repo repository.DestinationRepository) *Processor {
	return &Processor{catalog: cat, repo: repo}
}

// Process 将目录中的记录逐条写入存储。遇到第一个失败即停止，已写入的记录不回滚。
func (p *Processor) Process(ctx context.Context, task tasks.CatalogSyncTask) error {
	log.Infof("[Processor] 开始同步, TaskID: %s, City: %q, RequestedBy: %s", task.TaskID, task.City, task.RequestedBy)

	records := p.catalog.All()
	if task.City != "" {
		records = p.catalog.ByCity(task.City)
	}
	if len(records) == 0 {
		log.Warnf("[Processor] 没有需要同步的记录, TaskID: %s", task.TaskID)
		return nil
	}

	for i, d := range records {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("同步任务 %s 在第 %d 条记录前被取消: %w", task.TaskID, i, err)
		}
		if err := p.repo.Insert(ctx, d); err != nil {
			log.Errorf("[Processor] 写入第 %d/%d 条记录失败, Name: %s, Error: %v", i+1, len(records), d.Name, err)
			return fmt.Errorf("同步任务 %s 写入第 %d 条记录失败: %w", task.TaskID, i, err)
		}
	}

	log.Infof("[Processor] 同步完成, TaskID: %s, 共写入 %d 条记录", task.TaskID, len(records))
	return nil
}
