package service

import (
	"context"
	"fmt"
	"strings"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/pkg/llm"
	"filing-advisor-go/pkg/log"
)

// ChatRequest 是一次针对单个公司的问答请求。
type ChatRequest struct {
	CompanyID uint   `json:"company_id" binding:"required"`
	Query     string `json:"query" binding:"required"`
	UserID    *uint  `json:"user_id"`
}

// ChatResponse 中 Sources 与检索到的分块一一对应，按相关度排序。
type ChatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ChatService 定义了聊天操作的接口。
type ChatService interface {
	Ask(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type chatService struct {
	companyRepo   repository.CompanyRepository
	searchService SearchService
	llmClient     llm.Client
	auditService  AuditService
}

// NewChatService 创建一个新的 ChatService 实例。
func NewChatService(companyRepo repository.CompanyRepository, searchService SearchService, llmClient llm.Client, auditService AuditService) ChatService {
	return &chatService{
		companyRepo:   companyRepo,
		searchService: searchService,
		llmClient:     llmClient,
		auditService:  auditService,
	}
}

// Ask 协调 RAG 流程：检索、拼装上下文、调用模型、写审计。
// 模型调用失败时错误信息作为回答返回，并照常写审计。
func (s *chatService) Ask(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if _, err := findCompany(ctx, s.companyRepo, req.CompanyID); err != nil {
		return nil, err
	}

	// 1. 检索上下文
	results, err := s.searchService.Retrieve(ctx, query, req.CompanyID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &ChatResponse{Answer: NoResultsAnswer, Sources: []string{}}, nil
	}

	// 2. 构建 system 消息并调用模型
	systemMsg := buildChatSystem(buildChatContext(results))
	answer, err := s.llmClient.Complete(ctx, systemMsg, query)
	if err != nil {
		log.Errorf("[ChatService] 调用大模型失败, company_id: %d, error: %v", req.CompanyID, err)
		answer = fmt.Sprintf(llmErrorTemplate, err)
	}

	// 3. 写审计
	sources := make([]string, len(results))
	chunkIDs := make([]uint, len(results))
	for i, r := range results {
		sources[i] = r.ItemName
		chunkIDs[i] = r.ChunkID
	}
	if _, err := s.auditService.Record(ctx, &model.AuditLog{
		UserID:            req.UserID,
		CompanyID:         req.CompanyID,
		QueryText:         query,
		RetrievedChunkIDs: chunkIDs,
		LLMMode:           model.ModeChat,
		LLMResponse:       answer,
	}); err != nil {
		return nil, err
	}

	return &ChatResponse{Answer: answer, Sources: sources}, nil
}
