package service

import (
	"context"
	"errors"
	"sync"

	"kanto-ml/internal/model"
	"kanto-ml/pkg/tasks"
)

var errStoreDown = errors.New("store unreachable")

// fakeRepo 在第 failAt 次写入时返回错误；failAt < 0 表示从不失败。
type fakeRepo struct {
	mu       sync.Mutex
	failAt   int
	calls    int
	inserted []model.Destination
	findErr  error
	lastFind model.DestinationFilter
}

func newFakeRepo(failAt int) *fakeRepo {
	return &fakeRepo{failAt: failAt}
}

func (r *fakeRepo) Insert(ctx context.Context, d model.Destination) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() { r.calls++ }()
	if r.calls == r.failAt {
		return errStoreDown
	}
	r.inserted = append(r.inserted, d)
	return nil
}

func (r *fakeRepo) Find(ctx context.Context, filter model.DestinationFilter) ([]model.Destination, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastFind = filter
	if r.findErr != nil {
		return nil, r.findErr
	}
	return append([]model.Destination{}, r.inserted...), nil
}

type fakeCache struct {
	entries map[string]*model.PredictResponse
	getErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]*model.PredictResponse{}}
}

func (c *fakeCache) Get(ctx context.Context, city string) (*model.PredictResponse, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	resp, ok := c.entries[city]
	return resp, ok, nil
}

func (c *fakeCache) Set(ctx context.Context, city string, resp *model.PredictResponse) error {
	c.sets++
	c.entries[city] = resp
	return nil
}

type recordingPublisher struct {
	tasks []tasks.CatalogSyncTask
	err   error
}

func (p *recordingPublisher) PublishSyncTask(ctx context.Context, task tasks.CatalogSyncTask) error {
	if p.err != nil {
		return p.err
	}
	p.tasks = append(p.tasks, task)
	return nil
}

func strPtr(s string) *string { return &s }
