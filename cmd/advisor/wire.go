package main

import (
	"context"
	"time"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/pipeline"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/pkg/database"
	"filing-advisor-go/pkg/embedding"
	"filing-advisor-go/pkg/es"
	"filing-advisor-go/pkg/log"

	"github.com/go-redis/redis/v8"
	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// app 持有各命令共享的存储和客户端。
type app struct {
	cfg       *config.Config
	db        *gorm.DB
	rdb       *redis.Client
	companies repository.CompanyRepository
	documents repository.DocumentRepository
	audits    repository.AuditRepository
	users     repository.UserRepository
	vectors   repository.VectorRepository
	embedder  embedding.Client
	closers   []func()
}

// newApp 连接 MySQL、Redis（可选）和向量索引，并创建 Embedding 客户端。
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	db, err := database.NewMySQL(cfg.Database.MySQL.DSN)
	if err != nil {
		return nil, err
	}
	a.db = db
	if cfg.Database.MySQL.AutoMigrate {
		if err := database.AutoMigrate(db, &model.User{}, &model.Company{}, &model.Document{}, &model.Chunk{}, &model.AuditLog{}); err != nil {
			a.Close()
			return nil, err
		}
	}
	a.companies = repository.NewCompanyRepository(db)
	a.documents = repository.NewDocumentRepository(db)
	a.audits = repository.NewAuditRepository(db)
	a.users = repository.NewUserRepository(db)

	if cfg.Database.Redis.Addr != "" {
		rdb, err := database.NewRedis(ctx, cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
		if err != nil {
			log.Warnf("Redis 不可用, 关闭查询向量缓存: %v", err)
		} else {
			a.rdb = rdb
			a.closers = append(a.closers, func() { _ = rdb.Close() })
		}
	}

	vectors, err := a.newVectorRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.vectors = vectors

	var embedder embedding.Client = embedding.NewClient(cfg.Embedding)
	if a.rdb != nil && cfg.Embedding.CacheTTLMinutes > 0 {
		embedder = embedding.NewCachedClient(embedder, embedding.NewRedisCache(a.rdb), cfg.Embedding.Model,
			time.Duration(cfg.Embedding.CacheTTLMinutes)*time.Minute)
	}
	a.embedder = embedder
	return a, nil
}

func (a *app) newVectorRepository(ctx context.Context) (repository.VectorRepository, error) {
	switch a.cfg.VectorStore.Backend {
	case "elasticsearch":
		client, err := es.NewClient(ctx, a.cfg.Elasticsearch)
		if err != nil {
			return nil, err
		}
		return repository.NewESVectorRepository(client, a.cfg.Elasticsearch.IndexName), nil
	case "pgvector":
		pool, err := database.NewPostgres(ctx, a.cfg.Database.Postgres.URL, a.cfg.Database.Postgres.MaxConns)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		if err := database.EnsurePGVectorSchema(ctx, pool, config.EmbeddingDimensions); err != nil {
			return nil, err
		}
		return repository.NewPGVectorRepository(pool), nil
	case "memory":
		log.Warnf("使用内存向量索引, 进程重启后需要重新导入")
		return repository.NewMemoryVectorRepository(), nil
	}
	return nil, eris.Errorf("unknown vector_store.backend %q", a.cfg.VectorStore.Backend)
}

func (a *app) newProcessor(store pipeline.ObjectStore) *pipeline.Processor {
	splitter := pipeline.NewTextSplitter(a.cfg.Ingestion.ChunkSize, a.cfg.Ingestion.ChunkOverlap)
	return pipeline.NewProcessor(a.companies, a.documents, a.vectors, a.embedder, splitter, a.cfg.Embedding.Model, store)
}

// Close 按创建的逆序释放资源。
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
