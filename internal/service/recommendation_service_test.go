package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"kanto-ml/internal/catalog"
	"kanto-ml/internal/inference"
	"kanto-ml/internal/model"
	"kanto-ml/internal/repository"
)

const testModel = `{
  "name": "test-softmax",
  "input_dim": 6,
  "layers": [{
    "units": 3, "activation": "softmax",
    "weights": [[2,0,0],[0,2,0],[0,0,2],[1,1,0],[0,0,0],[0,0,0]],
    "bias": [0,0,0]
  }]
}`

func newTestRecommendationService(t *testing.T, cache *fakeCache) RecommendationService {
	t.Helper()
	enc, err := inference.NewCityEncoder([]string{"Bangkalan", "Sampang", "Pamekasan", "Sumenep"}, 6)
	if err != nil {
		t.Fatalf("NewCityEncoder() error = %v", err)
	}
	m, err := inference.LoadDenseModel([]byte(testModel))
	if err != nil {
		t.Fatalf("LoadDenseModel() error = %v", err)
	}
	cat := catalog.New([]model.Destination{
		{Name: "Pantai Camplong", City: "Sampang", Facilities: []string{"Parkir"}},
		{Name: "Gili Labak", City: "Sumenep", Facilities: []string{}},
		{Name: "Air Terjun Toroan", City: "Sampang", Facilities: []string{}},
	})

	// 避免把 nil *fakeCache 包装成非 nil 接口
	var pc repository.PredictionCache
	if cache != nil {
		pc = cache
	}
	svc, err := NewRecommendationService(enc, m, cat, pc)
	if err != nil {
		t.Fatalf("NewRecommendationService() error = %v", err)
	}
	return svc
}

func TestRecommendKnownCity(t *testing.T) {
	svc := newTestRecommendationService(t, nil)

	resp, err := svc.Recommend(context.Background(), "Sampang")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if resp.City != "Sampang" || len(resp.PredictionScores) != 3 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if inference.ArgMax(resp.PredictionScores) != 1 {
		t.Errorf("scores = %v, want category 1 highest", resp.PredictionScores)
	}
	if len(resp.Recommendations) != 2 {
		t.Fatalf("len(Recommendations) = %d, want 2", len(resp.Recommendations))
	}
	for _, d := range resp.Recommendations {
		if d.City != "Sampang" {
			t.Errorf("recommendation from %q, want Sampang only", d.City)
		}
	}
}

func TestRecommendUnknownCity(t *testing.T) {
	svc := newTestRecommendationService(t, nil)

	known, err := svc.Recommend(context.Background(), "Sampang")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, city := range []string{"Atlantis", "", "sampang"} {
		resp, err := svc.Recommend(context.Background(), city)
		if err != nil {
			t.Fatalf("Recommend(%q) error = %v", city, err)
		}
		if len(resp.PredictionScores) != len(known.PredictionScores) {
			t.Errorf("Recommend(%q) returned %d scores, want %d", city, len(resp.PredictionScores), len(known.PredictionScores))
		}
		if resp.Recommendations == nil || len(resp.Recommendations) != 0 {
			t.Errorf("Recommend(%q).Recommendations = %#v, want empty list", city, resp.Recommendations)
		}
	}
}

func TestRecommendIsDeterministic(t *testing.T) {
	svc := newTestRecommendationService(t, nil)
	a, err := svc.Recommend(context.Background(), "Sumenep")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	b, err := svc.Recommend(context.Background(), "Sumenep")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Recommend() is not deterministic: %+v vs %+v", a, b)
	}
}

func TestRecommendUsesCache(t *testing.T) {
	cache := newFakeCache()
	svc := newTestRecommendationService(t, cache)

	first, err := svc.Recommend(context.Background(), "Sampang")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if cache.sets != 1 {
		t.Fatalf("cache sets = %d, want 1", cache.sets)
	}
	second, err := svc.Recommend(context.Background(), "Sampang")
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if second != first || cache.sets != 1 {
		t.Errorf("second call should be served from cache")
	}

	cache.getErr = errors.New("redis down")
	if _, err := svc.Recommend(context.Background(), "Sampang"); err != nil {
		t.Errorf("cache failure must not fail the request: %v", err)
	}
}

func TestListAllStableAcrossPredictions(t *testing.T) {
	svc := newTestRecommendationService(t, nil)
	before := svc.ListAll(context.Background())
	for _, city := range []string{"Sampang", "Atlantis", "Sumenep"} {
		if _, err := svc.Recommend(context.Background(), city); err != nil {
			t.Fatalf("Recommend(%q) error = %v", city, err)
		}
	}
	after := svc.ListAll(context.Background())
	if !before.Success || before.Total != 3 || !reflect.DeepEqual(before, after) {
		t.Errorf("ListAll changed across predictions: before %+v, after %+v", before, after)
	}
	if svc.CatalogSize() != 3 || svc.ModelName() != "test-softmax" {
		t.Errorf("CatalogSize() = %d, ModelName() = %q", svc.CatalogSize(), svc.ModelName())
	}
}

func TestNewRecommendationServiceDimensionMismatch(t *testing.T) {
	enc, err := inference.NewCityEncoder([]string{"Sampang"}, 4)
	if err != nil {
		t.Fatalf("NewCityEncoder() error = %v", err)
	}
	m, err := inference.LoadDenseModel([]byte(testModel))
	if err != nil {
		t.Fatalf("LoadDenseModel() error = %v", err)
	}
	if _, err := NewRecommendationService(enc, m, catalog.New(nil), nil); err == nil {
		t.Errorf("NewRecommendationService() error = nil, want dimension mismatch")
	}
}
