package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"filing-advisor-go/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if v := args.Get(0); v != nil {
		return v.([][]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

type memoryCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	failGet bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failGet {
		return nil, errors.New("connection refused")
	}
	b, ok := c.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return b, nil
}

func (c *memoryCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func TestCachedClient_HitAfterMiss(t *testing.T) {
	inner := new(MockClient)
	vec := vectorOf(0.5, config.EmbeddingDimensions)
	inner.On("CreateEmbedding", mock.Anything, "revenue growth").Return(vec, nil).Once()

	c := NewCachedClient(inner, newMemoryCache(), "minilm", time.Hour)

	first, err := c.CreateEmbedding(context.Background(), "revenue growth")
	require.NoError(t, err)
	second, err := c.CreateEmbedding(context.Background(), "revenue growth")
	require.NoError(t, err)

	assert.Equal(t, vec, first)
	assert.Equal(t, vec, second)
	inner.AssertNumberOfCalls(t, "CreateEmbedding", 1)
}

func TestCachedClient_CacheFailureFallsThrough(t *testing.T) {
	inner := new(MockClient)
	vec := vectorOf(1, config.EmbeddingDimensions)
	inner.On("CreateEmbedding", mock.Anything, "q").Return(vec, nil).Twice()

	cache := newMemoryCache()
	cache.failGet = true
	c := NewCachedClient(inner, cache, "minilm", time.Hour)

	for i := 0; i < 2; i++ {
		got, err := c.CreateEmbedding(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, vec, got)
	}
	inner.AssertExpectations(t)
}

func TestCachedClient_ProviderErrorNotCached(t *testing.T) {
	inner := new(MockClient)
	inner.On("CreateEmbedding", mock.Anything, "q").Return(nil, ErrProviderUnavailable).Once()

	cache := newMemoryCache()
	c := NewCachedClient(inner, cache, "minilm", time.Hour)

	_, err := c.CreateEmbedding(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProviderUnavailable))
	assert.Empty(t, cache.data)
}

func TestCachedClient_BatchPassesThrough(t *testing.T) {
	inner := new(MockClient)
	out := [][]float32{vectorOf(1, config.EmbeddingDimensions)}
	inner.On("CreateEmbeddings", mock.Anything, []string{"a"}).Return(out, nil).Once()

	c := NewCachedClient(inner, newMemoryCache(), "minilm", time.Hour)
	got, err := c.CreateEmbeddings(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, out, got)
}

func TestCachedClient_KeyIncludesModel(t *testing.T) {
	a := NewCachedClient(nil, nil, "model-a", time.Hour)
	b := NewCachedClient(nil, nil, "model-b", time.Hour)
	assert.NotEqual(t, a.cacheKey("x"), b.cacheKey("x"))
	assert.Contains(t, a.cacheKey("x"), "embedding:model-a:")
}
