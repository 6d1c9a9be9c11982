package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"

	"kanto-ml/internal/model"
)

// PredictionCache 缓存 /predict 的完整响应。模型冻结且数据集不可变，因此同一城市的结果恒定。
type PredictionCache interface {
	Get(ctx context.Context, city string) (*model.PredictResponse, bool, error)
	Set(ctx context.Context, city string, resp *model.PredictResponse) error
}

type redisPredictionCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

// NewPredictionCache 创建一个基于 Redis 的 PredictionCache。
func NewPredictionCache(redisClient *redis.Client, ttl time.Duration) PredictionCache {
	return &redisPredictionCache{redisClient: redisClient, ttl: ttl}
}

func predictionKey(city string) string {
	return "recommend:city:" + city
}

// Get 读取缓存；未命中时返回 false 且 err 为 nil。
func (c *redisPredictionCache) Get(ctx context.Context, city string) (*model.PredictResponse, bool, error) {
	data, err := c.redisClient.Get(ctx, predictionKey(city)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get cached prediction: %w", err)
	}
	var resp model.PredictResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached prediction: %w", err)
	}
	return &resp, true, nil
}

// Set 写入缓存。
func (c *redisPredictionCache) Set(ctx context.Context, city string, resp *model.PredictResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	if err := c.redisClient.Set(ctx, predictionKey(city), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cached prediction: %w", err)
	}
	return nil
}
