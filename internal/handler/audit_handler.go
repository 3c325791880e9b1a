package handler

import (
	"net/http"
	"strconv"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/service"

	"github.com/gin-gonic/gin"
)

// AuditHandler 提供审计日志查询。
type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List 处理 GET /audit?company_id=&limit=&offset=，按时间倒序返回。
func (h *AuditHandler) List(c *gin.Context) {
	var filter model.AuditFilter
	for _, p := range []struct {
		key string
		dst func(int)
	}{
		{"company_id", func(v int) { filter.CompanyID = uint(v) }},
		{"limit", func(v int) { filter.Limit = v }},
		{"offset", func(v int) { filter.Offset = v }},
	} {
		raw := c.Query(p.key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			fail(c, http.StatusBadRequest, "无效的参数: "+p.key)
			return
		}
		p.dst(v)
	}

	logs, err := h.auditService.List(c.Request.Context(), filter)
	if err != nil {
		failWithError(c, "ListAudit", err)
		return
	}
	success(c, "获取审计日志成功", logs)
}
