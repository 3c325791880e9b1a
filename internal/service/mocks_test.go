package service

import (
	"context"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockCompanyRepository struct{ mock.Mock }

func (m *MockCompanyRepository) FindByCIK(ctx context.Context, cik string) (*model.Company, error) {
	args := m.Called(ctx, cik)
	if v := args.Get(0); v != nil {
		return v.(*model.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompanyRepository) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCompanyRepository) Create(ctx context.Context, company *model.Company) error {
	return m.Called(ctx, company).Error(0)
}

func (m *MockCompanyRepository) UpdateName(ctx context.Context, id uint, name string) error {
	return m.Called(ctx, id, name).Error(0)
}

func (m *MockCompanyRepository) List(ctx context.Context) ([]model.Company, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]model.Company), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDocumentRepository struct{ mock.Mock }

func (m *MockDocumentRepository) ReplaceSection(ctx context.Context, doc *model.Document, chunks []*model.Chunk, index repository.IndexFunc) ([]uint, error) {
	args := m.Called(ctx, doc, chunks, index)
	if v := args.Get(0); v != nil {
		return v.([]uint), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentRepository) FindByCompanyAndCodes(ctx context.Context, companyID uint, codes []string) ([]model.Document, error) {
	args := m.Called(ctx, companyID, codes)
	if v := args.Get(0); v != nil {
		return v.([]model.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockDocumentRepository) FindChunksByIDs(ctx context.Context, ids []uint) ([]model.Chunk, error) {
	args := m.Called(ctx, ids)
	if v := args.Get(0); v != nil {
		return v.([]model.Chunk), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuditRepository struct{ mock.Mock }

func (m *MockAuditRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditRepository) List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]model.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockUserRepository struct{ mock.Mock }

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*model.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

type MockEmbeddingClient struct{ mock.Mock }

func (m *MockEmbeddingClient) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if v := args.Get(0); v != nil {
		return v.([]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockEmbeddingClient) CreateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	args := m.Called(ctx, texts)
	if v := args.Get(0); v != nil {
		return v.([][]float32), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockLLMClient struct{ mock.Mock }

func (m *MockLLMClient) Complete(ctx context.Context, system, user string) (string, error) {
	args := m.Called(ctx, system, user)
	return args.String(0), args.Error(1)
}

type MockSearchService struct{ mock.Mock }

func (m *MockSearchService) Retrieve(ctx context.Context, query string, companyID uint) ([]model.RetrievedChunk, error) {
	args := m.Called(ctx, query, companyID)
	if v := args.Get(0); v != nil {
		return v.([]model.RetrievedChunk), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuditService struct{ mock.Mock }

func (m *MockAuditService) Record(ctx context.Context, entry *model.AuditLog) (uint, error) {
	args := m.Called(ctx, entry)
	return uint(args.Int(0)), args.Error(1)
}

func (m *MockAuditService) List(ctx context.Context, filter model.AuditFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]model.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}
