package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"kanto-ml/internal/model"
	"kanto-ml/internal/repository"
	"kanto-ml/pkg/log"
	"kanto-ml/pkg/tasks"
)

// ErrNoDestinations 表示请求中缺少 destinations 数组或数组为空。
var ErrNoDestinations = errors.New("destinations must be a non-empty array")

// SaveError 描述批量写入中途失败。Index 之前的记录已经写入且不会回滚。
type SaveError struct {
	Index    int
	Inserted int
	Err      error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("failed to save destination at index %d (%d saved before failure): %v", e.Index, e.Inserted, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// TaskPublisher 将同步任务交给执行方（Kafka 或进程内处理器）。
type TaskPublisher interface {
	PublishSyncTask(ctx context.Context, task tasks.CatalogSyncTask) error
}

// TaskPublisherFunc 让普通函数实现 TaskPublisher。
type TaskPublisherFunc func(ctx context.Context, task tasks.CatalogSyncTask) error

// PublishSyncTask 调用 f(ctx, task)。
func (f TaskPublisherFunc) PublishSyncTask(ctx context.Context, task tasks.CatalogSyncTask) error {
	return f(ctx, task)
}

// DestinationService 接口定义了景点存储相关的操作。
type DestinationService interface {
	SaveMany(ctx context.Context, inputs []model.DestinationInput) (int, error)
	ListStored(ctx context.Context, filter model.DestinationFilter) ([]model.Destination, error)
	RequestSync(ctx context.Context, city, requestedBy string) (*tasks.CatalogSyncTask, error)
}

type destinationService struct {
	repo      repository.DestinationRepository
	publisher TaskPublisher
}

// NewDestinationService 创建一个新的 DestinationService 实例。
func NewDestinationService(repo repository.DestinationRepository, publisher TaskPublisher) DestinationService {
	return &destinationService{repo: repo, publisher: publisher}
}

// SaveMany 按顺序逐条写入记录，缺失字段使用与数据集相同的默认值。
// 返回成功写入的条数；中途失败时返回 *SaveError。
func (s *destinationService) SaveMany(ctx context.Context, inputs []model.DestinationInput) (int, error) {
	if len(inputs) == 0 {
		return 0, ErrNoDestinations
	}

	inserted := 0
	for i, in := range inputs {
		d := in.ToDestination()
		if err := s.repo.Insert(ctx, d); err != nil {
			log.Errorf("[DestinationService] 写入第 %d 条景点失败, name: %s, error: %v", i, d.Name, err)
			return inserted, &SaveError{Index: i, Inserted: inserted, Err: err}
		}
		inserted++
	}

	log.Infof("[DestinationService] 成功写入 %d 条景点", inserted)
	return inserted, nil
}

// ListStored 查询已持久化的景点。
func (s *destinationService) ListStored(ctx context.Context, filter model.DestinationFilter) ([]model.Destination, error) {
	found, err := s.repo.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list stored destinations: %w", err)
	}
	return found, nil
}

// RequestSync 创建同步任务并交给 publisher。
func (s *destinationService) RequestSync(ctx context.Context, city, requestedBy string) (*tasks.CatalogSyncTask, error) {
	task := tasks.CatalogSyncTask{
		TaskID:      uuid.NewString(),
		City:        city,
		RequestedBy: requestedBy,
		RequestedAt: time.Now().UTC(),
	}
	if err := s.publisher.PublishSyncTask(ctx, task); err != nil {
		return nil, fmt.Errorf("dispatch sync task %s: %w", task.TaskID, err)
	}
	log.Infof("[DestinationService] 已提交同步任务, TaskID: %s, City: %q", task.TaskID, city)
	return &task, nil
}
