package handler

import (
	"net/http"

	"filing-advisor-go/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler 处理基于检索的问答请求。
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler 创建一个新的 ChatHandler。
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat 处理 POST /chat。
func (h *ChatHandler) Chat(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "无效的请求负载")
		return
	}
	resp, err := h.chatService.Ask(c.Request.Context(), req)
	if err != nil {
		failWithError(c, "Chat", err)
		return
	}
	success(c, "success", resp)
}
