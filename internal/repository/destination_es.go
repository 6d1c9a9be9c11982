package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"kanto-ml/internal/model"
	"kanto-ml/pkg/log"
)

type esDestinationRepository struct {
	client    *elasticsearch.Client
	indexName string
}

// NewESDestinationRepository 创建基于 Elasticsearch 索引的 DestinationRepository。
func NewESDestinationRepository(client *elasticsearch.Client, indexName string) DestinationRepository {
	return &esDestinationRepository{client: client, indexName: indexName}
}

// Insert 将单个景点文档索引到 Elasticsearch，文档 ID 由 ES 生成。
func (r *esDestinationRepository) Insert(ctx context.Context, d model.Destination) error {
	docBytes, err := json.Marshal(d)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:   r.indexName,
		Body:    bytes.NewReader(docBytes),
		Refresh: "true",
	}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("elasticsearch index destination %q: %w", d.Name, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Errorf("索引景点到 Elasticsearch 出错: %s", res.String())
		return fmt.Errorf("elasticsearch index destination %q: %s", d.Name, res.Status())
	}
	return nil
}

// Find 使用 term 过滤查询景点文档。
func (r *esDestinationRepository) Find(ctx context.Context, filter model.DestinationFilter) ([]model.Destination, error) {
	filters := []map[string]interface{}{}
	if filter.City != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"city": filter.City}})
	}
	if filter.Category != "" {
		filters = append(filters, map[string]interface{}{"term": map[string]interface{}{"category": filter.Category}})
	}
	esQuery := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
		"size": normalizeLimit(filter.Limit),
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(esQuery); err != nil {
		return nil, fmt.Errorf("failed to encode es query: %w", err)
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.indexName),
		r.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		bodyBytes, _ := io.ReadAll(res.Body)
		log.Errorf("[ESDestinationRepository] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(bodyBytes))
		return nil, fmt.Errorf("elasticsearch returned an error: %s", res.Status())
	}

	var esResponse struct {
		Hits struct {
			Hits []struct {
				Source model.Destination `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&esResponse); err != nil {
		return nil, fmt.Errorf("failed to decode es response: %w", err)
	}

	out := make([]model.Destination, 0, len(esResponse.Hits.Hits))
	for _, hit := range esResponse.Hits.Hits {
		out = append(out, normalizeFound(hit.Source))
	}
	return out, nil
}
