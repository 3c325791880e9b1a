// Package handler 包含了处理 HTTP 请求的控制器逻辑。
package handler

import (
	"errors"
	"net/http"

	"filing-advisor-go/internal/pipeline"
	"filing-advisor-go/internal/service"
	"filing-advisor-go/pkg/embedding"
	"filing-advisor-go/pkg/log"

	"github.com/gin-gonic/gin"
)

func success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{
		"code":    http.StatusOK,
		"message": message,
		"data":    data,
	})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"code":    status,
		"message": message,
		"data":    nil,
	})
}

// failWithError 把业务错误映射为 HTTP 状态码。5xx 只返回通用信息。
func failWithError(c *gin.Context, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Errorf("%s: failed, error: %v", op, err)
	}
	switch status {
	case http.StatusNotFound:
		fail(c, status, "公司不存在")
	case http.StatusBadRequest:
		fail(c, status, err.Error())
	case http.StatusBadGateway:
		fail(c, status, "Embedding 服务不可用")
	default:
		fail(c, status, "服务器内部错误")
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrCompanyNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidMode),
		errors.Is(err, service.ErrEmptyQuery),
		errors.Is(err, service.ErrInvalidUser),
		errors.Is(err, pipeline.ErrMalformedFiling):
		return http.StatusBadRequest
	case errors.Is(err, embedding.ErrProviderUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
