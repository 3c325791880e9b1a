package handler

import (
	"net/http"
	"strconv"

	"filing-advisor-go/internal/service"

	"github.com/gin-gonic/gin"
)

// CompanyHandler 负责公司目录相关的 API 请求。
type CompanyHandler struct {
	companyService service.CompanyService
}

// NewCompanyHandler 创建一个新的 CompanyHandler 实例。
func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// List 返回全部已导入的公司。
func (h *CompanyHandler) List(c *gin.Context) {
	companies, err := h.companyService.List(c.Request.Context())
	if err != nil {
		failWithError(c, "ListCompanies", err)
		return
	}
	success(c, "获取公司列表成功", companies)
}

// Get 返回单个公司。
func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		fail(c, http.StatusBadRequest, "无效的公司 ID")
		return
	}
	company, err := h.companyService.Get(c.Request.Context(), uint(id))
	if err != nil {
		failWithError(c, "GetCompany", err)
		return
	}
	success(c, "获取公司成功", company)
}
