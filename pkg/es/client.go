// Package es 提供了与 Elasticsearch 交互的客户端功能。
package es

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rotisserie/eris"
)

// NewClient 创建 Elasticsearch 客户端并确保分块索引存在。
func NewClient(ctx context.Context, esCfg config.ElasticsearchConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: strings.Split(esCfg.Addresses, ","),
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "es: new client")
	}
	if err := EnsureIndex(ctx, client, esCfg.IndexName, config.EmbeddingDimensions); err != nil {
		return nil, err
	}
	return client, nil
}

// IndexMapping 返回分块索引的 mapping。向量使用 l2_norm，
// 检索时 _score = 1 / (1 + d^2)。
func IndexMapping(dims int) string {
	return fmt.Sprintf(`{
		"mappings": {
			"properties": {
				"chunk_id": { "type": "long" },
				"document_id": { "type": "long" },
				"company_id": { "type": "long" },
				"item_name": { "type": "keyword" },
				"chunk_index": { "type": "integer" },
				"text_content": { "type": "text" },
				"vector": {
					"type": "dense_vector",
					"dims": %d,
					"index": true,
					"similarity": "l2_norm"
				},
				"model_version": { "type": "keyword" }
			}
		}
	}`, dims)
}

// EnsureIndex 检查索引是否存在，不存在则创建。
func EnsureIndex(ctx context.Context, client *elasticsearch.Client, indexName string, dims int) error {
	res, err := client.Indices.Exists([]string{indexName}, client.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return eris.Wrap(err, "es: index exists")
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return eris.Errorf("es: unexpected status %d checking index %s", res.StatusCode, indexName)
	}

	res, err = client.Indices.Create(
		indexName,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(IndexMapping(dims))),
	)
	if err != nil {
		return eris.Wrapf(err, "es: create index %s", indexName)
	}
	defer res.Body.Close()
	if res.IsError() {
		log.Errorf("创建索引 '%s' 时 Elasticsearch 返回错误: %s", indexName, res.String())
		return eris.Errorf("es: create index %s: %s", indexName, res.String())
	}

	log.Infof("索引 '%s' 创建成功", indexName)
	return nil
}
