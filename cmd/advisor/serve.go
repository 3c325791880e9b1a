package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/internal/handler"
	"filing-advisor-go/internal/middleware"
	"filing-advisor-go/internal/pipeline"
	"filing-advisor-go/internal/service"
	"filing-advisor-go/pkg/kafka"
	"filing-advisor-go/pkg/llm"
	"filing-advisor-go/pkg/log"
	"filing-advisor-go/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (and the Kafka ingestion consumer when brokers are configured)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), cfg)
	},
}

func runServe(parent context.Context, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	llmClient, err := llm.NewClient(ctx, cfg.LLM)
	if err != nil {
		return err
	}
	if c, ok := llmClient.(io.Closer); ok {
		defer c.Close()
	}

	// 异步导入：MinIO 归档 + Kafka 队列，未配置 brokers 时关闭
	var (
		archiver  handler.FilingArchiver
		publisher handler.TaskPublisher
		objects   pipeline.ObjectStore
	)
	if cfg.Kafka.Brokers != "" {
		if a.rdb == nil {
			return eris.New("serve: kafka ingestion requires redis for attempt tracking")
		}
		store, err := storage.NewFilingStore(ctx, cfg.MinIO)
		if err != nil {
			return err
		}
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		archiver, publisher, objects = store, producer, store
	}

	processor := a.newProcessor(objects)
	if objects != nil {
		consumer := kafka.NewConsumer(cfg.Kafka, processor, kafka.NewRedisAttemptTracker(a.rdb))
		go func() {
			if err := consumer.Run(ctx); err != nil {
				log.Errorf("Kafka 消费者异常退出: %v", err)
			}
		}()
	}

	auditService := service.NewAuditService(a.audits)
	searchService := service.NewSearchService(a.embedder, a.vectors, a.documents, cfg.Retrieval.TopK)
	chatService := service.NewChatService(a.companies, searchService, llmClient, auditService)
	generationService := service.NewGenerationService(a.companies, a.documents, llmClient, auditService)
	companyService := service.NewCompanyService(a.companies)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.RequestLogger(), gin.Recovery())
	handler.RegisterRoutes(r, handler.Handlers{
		Company:    handler.NewCompanyHandler(companyService),
		Ingest:     handler.NewIngestHandler(processor, archiver, publisher),
		Chat:       handler.NewChatHandler(chatService),
		Generation: handler.NewGenerationHandler(generationService),
		Audit:      handler.NewAuditHandler(auditService),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: withCORS(cfg.CORS, r),
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Info("接收到停机信号，正在关闭服务...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return eris.Wrap(err, "serve: shutdown")
	}
	log.Info("服务已优雅关闭")
	return nil
}

// withCORS 允许前端开发服务器等配置的来源跨域访问。
func withCORS(c config.CORSConfig, next http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   c.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	})(next)
}
