// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	"kanto-ml/internal/config"
	"kanto-ml/pkg/log"
)

// destinationMapping 与 model.Destination 的 JSON 字段一一对应。
const destinationMapping = `{
	"mappings": {
		"properties": {
			"name":           { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
			"location":       { "type": "text" },
			"facilities":     { "type": "keyword" },
			"price":          { "type": "double" },
			"openingHours":   { "type": "keyword" },
			"closingHours":   { "type": "keyword" },
			"description":    { "type": "text" },
			"category":       { "type": "keyword" },
			"city":           { "type": "keyword" },
			"visitor":        { "type": "double" },
			"officialRating": { "type": "double" },
			"rating":         { "type": "double" },
			"lat":            { "type": "double" },
			"lon":            { "type": "double" }
		}
	}
}`

// InitES 初始化 Elasticsearch 客户端，并确保景点索引存在。
func InitES(esCfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	cfg := elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if err := createIndexIfNotExists(client, esCfg.IndexName); err != nil {
		return nil, err
	}
	return client, nil
}

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func createIndexIfNotExists(client *elasticsearch.Client, indexName string) error {
	res, err := client.Indices.Exists([]string{indexName})
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if !res.IsError() && res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		log.Errorf("检查索引 '%s' 是否存在时收到意外的状态码: %d", indexName, res.StatusCode)
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = client.Indices.Create(
		indexName,
		client.Indices.Create.WithBody(strings.NewReader(destinationMapping)),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", indexName, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return errors.New("创建索引时 Elasticsearch 返回错误")
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}
