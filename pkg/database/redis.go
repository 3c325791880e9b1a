package database

import (
	"context"

	"filing-advisor-go/pkg/log"

	"github.com/go-redis/redis/v8"
	"github.com/rotisserie/eris"
)

// NewRedis 创建 Redis 客户端并测试连接。
func NewRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, eris.Wrapf(err, "database: ping redis %s", addr)
	}
	log.Info("Redis client connected successfully")
	return rdb, nil
}
