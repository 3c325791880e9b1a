package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handlers 汇总了所有需要注册路由的控制器。
type Handlers struct {
	Company    *CompanyHandler
	Ingest     *IngestHandler
	Chat       *ChatHandler
	Generation *GenerationHandler
	Audit      *AuditHandler
}

// RegisterRoutes 注册 /healthz 和 /api/v1 下的全部路由。
func RegisterRoutes(r *gin.Engine, h Handlers) {
	r.GET("/healthz", Health)

	apiV1 := r.Group("/api/v1")
	{
		companies := apiV1.Group("/companies")
		{
			companies.GET("", h.Company.List)
			companies.GET("/:id", h.Company.Get)
		}

		ingest := apiV1.Group("/ingest")
		{
			ingest.POST("", h.Ingest.Ingest)
			ingest.POST("/async", h.Ingest.IngestAsync)
		}

		apiV1.POST("/chat", h.Chat.Chat)
		apiV1.POST("/generate/:mode", h.Generation.Generate)
		apiV1.GET("/audit", h.Audit.List)
	}
}

// Health 是存活检查。
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
