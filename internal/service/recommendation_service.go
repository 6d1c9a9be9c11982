// Package service 包含了推荐与景点存储的业务逻辑。
package service

import (
	"context"
	"fmt"

	"kanto-ml/internal/catalog"
	"kanto-ml/internal/inference"
	"kanto-ml/internal/model"
	"kanto-ml/internal/repository"
	"kanto-ml/pkg/log"
)

// RecommendationService 接口定义了推荐相关的操作。
type RecommendationService interface {
	Recommend(ctx context.Context, city string) (*model.PredictResponse, error)
	ListAll(ctx context.Context) *model.DestinationListResponse
	CatalogSize() int
	ModelName() string
}

type recommendationService struct {
	encoder *inference.CityEncoder
	scorer  inference.ScoringModel
	catalog *catalog.Catalog
	cache   repository.PredictionCache // 可为 nil
}

// NewRecommendationService 创建一个新的 RecommendationService 实例。
// 编码器长度必须与模型输入维度一致，否则返回错误。cache 可以为 nil。
func NewRecommendationService(
	encoder *inference.CityEncoder,
	scorer inference.ScoringModel,
	cat *catalog.Catalog,
	cache repository.PredictionCache,
) (RecommendationService, error) {
	if encoder.Len() != scorer.InputDim() {
		return nil, fmt.Errorf("encoder length %d does not match model input dimension %d", encoder.Len(), scorer.InputDim())
	}
	return &recommendationService{
		encoder: encoder,
		scorer:  scorer,
		catalog: cat,
		cache:   cache,
	}, nil
}

// Recommend 编码城市、打分，并返回该城市在数据集中的全部景点。
// 预测的最高分类别只记录日志，不参与推荐结果的过滤或排序。
func (s *recommendationService) Recommend(ctx context.Context, city string) (*model.PredictResponse, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, city)
		if err != nil {
			log.Warnf("[RecommendationService] 读取预测缓存失败, city: %q, error: %v", city, err)
		} else if ok {
			return cached, nil
		}
	}

	vector := s.encoder.Encode(city)
	if !s.encoder.Known(city) {
		log.Infof("[RecommendationService] 未识别的城市 %q, 使用全零向量", city)
	}

	scores, err := s.scorer.Score(vector)
	if err != nil {
		return nil, fmt.Errorf("score city %q: %w", city, err)
	}
	top := inference.ArgMax(scores)

	recommendations := s.catalog.ByCity(city)
	log.Infow("[RecommendationService] 预测完成",
		"city", city,
		"topCategory", top,
		"recommendations", len(recommendations),
	)

	resp := &model.PredictResponse{
		City:             city,
		PredictionScores: scores,
		Recommendations:  recommendations,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, city, resp); err != nil {
			log.Warnf("[RecommendationService] 写入预测缓存失败, city: %q, error: %v", city, err)
		}
	}
	return resp, nil
}

// ListAll 返回完整数据集，不做任何过滤。
func (s *recommendationService) ListAll(ctx context.Context) *model.DestinationListResponse {
	all := s.catalog.All()
	return &model.DestinationListResponse{
		Success:      true,
		Total:        len(all),
		Destinations: all,
	}
}

// CatalogSize 返回数据集的记录数。
func (s *recommendationService) CatalogSize() int {
	return s.catalog.Len()
}

// ModelName 返回加载的模型名称。
func (s *recommendationService) ModelName() string {
	return s.scorer.Name()
}
