package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/pkg/log"

	"github.com/go-redis/redis/v8"
	"github.com/rotisserie/eris"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss 表示缓存中没有对应的 key。
var ErrCacheMiss = eris.New("cache miss")

// Cache 是向量缓存的最小接口。
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RedisCache 用 Redis 实现 Cache。
type RedisCache struct {
	rdb *redis.Client
}

func NewRedisCache(rdb *redis.Client) *RedisCache {
	return &RedisCache{rdb: rdb}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

// CachedClient 为单条查询向量加缓存，并合并并发的相同请求。
// 批量接口直接透传，导入时的分块文本几乎不会重复。
type CachedClient struct {
	inner Client
	cache Cache
	model string
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedClient(inner Client, cache Cache, model string, ttl time.Duration) *CachedClient {
	return &CachedClient{inner: inner, cache: cache, model: model, ttl: ttl}
}

func (c *CachedClient) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "embedding:" + c.model + ":" + hex.EncodeToString(sum[:])
}

// CreateEmbedding 先查缓存，未命中再调用底层 Client。缓存故障时直接调用底层。
func (c *CachedClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	if b, err := c.cache.Get(ctx, key); err == nil {
		var vec []float32
		if jerr := json.Unmarshal(b, &vec); jerr == nil && len(vec) == config.EmbeddingDimensions {
			return vec, nil
		}
		log.Warnf("[EmbeddingCache] 缓存内容无效, key: %s", key)
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Warnf("[EmbeddingCache] 读取缓存失败, 直接调用模型: %v", err)
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		vec, err := c.inner.CreateEmbedding(ctx, text)
		if err != nil {
			return nil, err
		}
		if b, jerr := json.Marshal(vec); jerr == nil {
			if serr := c.cache.Set(ctx, key, b, c.ttl); serr != nil {
				log.Warnf("[EmbeddingCache] 写入缓存失败: %v", serr)
			}
		}
		return vec, nil
	})
	if err != nil {
		return nil, err
	}
	shared := v.([]float32)
	out := make([]float32, len(shared))
	copy(out, shared)
	return out, nil
}

func (c *CachedClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return c.inner.CreateEmbeddings(ctx, texts)
}
