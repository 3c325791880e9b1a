package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/rotisserie/eris"
)

// esVectorRepository 使用 Elasticsearch dense_vector(l2_norm) 做 kNN 检索。
type esVectorRepository struct {
	client    *elasticsearch.Client
	indexName string
}

// NewESVectorRepository 创建基于 Elasticsearch 的向量索引。
func NewESVectorRepository(client *elasticsearch.Client, indexName string) VectorRepository {
	return &esVectorRepository{client: client, indexName: indexName}
}

// IndexChunks 通过 bulk API 一次写入，并立即 refresh 以便检索可见。
func (r *esVectorRepository) IndexChunks(ctx context.Context, vectors []model.ChunkVector) error {
	if len(vectors) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, v := range vectors {
		meta := map[string]any{"index": map[string]any{"_index": r.indexName, "_id": strconv.FormatUint(uint64(v.ChunkID), 10)}}
		if err := enc.Encode(meta); err != nil {
			return eris.Wrap(err, "es: encode bulk meta")
		}
		if err := enc.Encode(v); err != nil {
			return eris.Wrap(err, "es: encode bulk doc")
		}
	}

	res, err := r.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		r.client.Bulk.WithContext(ctx),
		r.client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return eris.Wrap(err, "es: bulk index")
	}
	defer res.Body.Close()
	if res.IsError() {
		return eris.Errorf("es: bulk index returned %s", res.Status())
	}

	var parsed struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			Status int `json:"status"`
			Error  *struct {
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return eris.Wrap(err, "es: decode bulk response")
	}
	if parsed.Errors {
		for _, item := range parsed.Items {
			for _, op := range item {
				if op.Error != nil {
					return eris.Errorf("es: bulk item failed: %s", op.Error.Reason)
				}
			}
		}
		return eris.New("es: bulk index reported errors")
	}
	return nil
}

func (r *esVectorRepository) Search(ctx context.Context, companyID uint, query []float32, k int) ([]model.VectorHit, error) {
	if k <= 0 {
		return nil, nil
	}
	numCandidates := k * 20
	if numCandidates < 100 {
		numCandidates = 100
	}
	body := map[string]any{
		"knn": map[string]any{
			"field":          "vector",
			"query_vector":   query,
			"k":              k,
			"num_candidates": numCandidates,
			"filter": map[string]any{
				"term": map[string]any{"company_id": companyID},
			},
		},
		"size":    k,
		"_source": []string{"chunk_id", "document_id"},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, eris.Wrap(err, "es: encode knn query")
	}

	res, err := r.client.Search(
		r.client.Search.WithContext(ctx),
		r.client.Search.WithIndex(r.indexName),
		r.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, eris.Wrap(err, "es: knn search")
	}
	defer res.Body.Close()
	if res.IsError() {
		b, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		log.Errorf("[ESVectorRepository] Elasticsearch 返回错误, status: %s, body: %s", res.Status(), string(b))
		return nil, eris.Errorf("es: knn search returned %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Score  float64 `json:"_score"`
				Source struct {
					ChunkID    uint `json:"chunk_id"`
					DocumentID uint `json:"document_id"`
				} `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, eris.Wrap(err, "es: decode knn response")
	}

	hits := make([]model.VectorHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, model.VectorHit{
			ChunkID:    h.Source.ChunkID,
			DocumentID: h.Source.DocumentID,
			Distance:   scoreToL2(h.Score),
		})
	}
	return hits, nil
}

func (r *esVectorRepository) DeleteByDocumentIDs(ctx context.Context, documentIDs []uint) error {
	if len(documentIDs) == 0 {
		return nil
	}
	body := map[string]any{
		"query": map[string]any{
			"terms": map[string]any{"document_id": documentIDs},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return eris.Wrap(err, "es: encode delete query")
	}
	res, err := r.client.DeleteByQuery(
		[]string{r.indexName},
		&buf,
		r.client.DeleteByQuery.WithContext(ctx),
		r.client.DeleteByQuery.WithRefresh(true),
		r.client.DeleteByQuery.WithConflicts("proceed"),
	)
	if err != nil {
		return eris.Wrap(err, "es: delete by query")
	}
	defer res.Body.Close()
	if res.IsError() {
		return eris.Errorf("es: delete by query returned %s", res.Status())
	}
	return nil
}

// scoreToL2 把 l2_norm 相似度 1/(1+d^2) 还原为距离 d。
func scoreToL2(score float64) float64 {
	if score <= 0 {
		return math.Inf(1)
	}
	v := 1/score - 1
	if v < 0 {
		return 0
	}
	return math.Sqrt(v)
}
