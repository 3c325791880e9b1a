package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestEnsureIndex_AlreadyExists(t *testing.T) {
	var methods []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, EnsureIndex(context.Background(), client, "filing_chunks", 384))
	assert.Equal(t, []string{http.MethodHead}, methods)
}

func TestEnsureIndex_CreatesWithMapping(t *testing.T) {
	var created map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/filing_chunks", r.URL.Path)
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &created))
		_, _ = io.WriteString(w, `{"acknowledged":true}`)
	})

	require.NoError(t, EnsureIndex(context.Background(), client, "filing_chunks", 384))

	props := created["mappings"].(map[string]interface{})["properties"].(map[string]interface{})
	vector := props["vector"].(map[string]interface{})
	assert.Equal(t, float64(384), vector["dims"])
	assert.Equal(t, "l2_norm", vector["similarity"])
	assert.Equal(t, "long", props["company_id"].(map[string]interface{})["type"])
}

func TestEnsureIndex_CreateError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"type":"mapper_parsing_exception"}}`)
	})

	err := EnsureIndex(context.Background(), client, "filing_chunks", 384)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create index")
}

func TestEnsureIndex_UnexpectedStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	assert.Error(t, EnsureIndex(context.Background(), client, "filing_chunks", 384))
}
