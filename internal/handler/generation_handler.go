package handler

import (
	"net/http"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
)

// routeModes 把 URL 中的模式名映射到生成模式，/generate/risk 是 risk_note 的别名。
var routeModes = map[string]string{
	"summary":   model.ModeSummary,
	"risk":      model.ModeRiskNote,
	"risk_note": model.ModeRiskNote,
	"email":     model.ModeEmail,
}

// GenerationHandler 处理模板生成请求。
type GenerationHandler struct {
	generationService service.GenerationService
}

func NewGenerationHandler(generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// Generate 处理 POST /generate/:mode。
func (h *GenerationHandler) Generate(c *gin.Context) {
	mode, ok := routeModes[c.Param("mode")]
	if !ok || !service.IsGenerationMode(mode) {
		failWithError(c, "Generate", eris.Wrapf(service.ErrInvalidMode, "mode %q", c.Param("mode")))
		return
	}

	var req service.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载")
		return
	}
	req.Mode = mode

	resp, err := h.generationService.Generate(c.Request.Context(), req)
	if err != nil {
		failWithError(c, "Generate", err)
		return
	}
	success(c, "success", resp)
}
