package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type generationFixture struct {
	companies *MockCompanyRepository
	documents *MockDocumentRepository
	llm       *MockLLMClient
	audit     *MockAuditService
	svc       GenerationService
}

func newGenerationFixture() *generationFixture {
	f := &generationFixture{
		companies: new(MockCompanyRepository),
		documents: new(MockDocumentRepository),
		llm:       new(MockLLMClient),
		audit:     new(MockAuditService),
	}
	f.svc = NewGenerationService(f.companies, f.documents, f.llm, f.audit)
	return f
}

func TestGenerate_InvalidModeCheckedFirst(t *testing.T) {
	f := newGenerationFixture()
	_, err := f.svc.Generate(context.Background(), GenerationRequest{Mode: "poem", CompanyID: 1})
	assert.ErrorIs(t, err, ErrInvalidMode)
	f.companies.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestGenerate_CompanyNotFound(t *testing.T) {
	f := newGenerationFixture()
	f.companies.On("FindByID", mock.Anything, uint(3)).Return(nil, repository.ErrNotFound)
	_, err := f.svc.Generate(context.Background(), GenerationRequest{Mode: model.ModeSummary, CompanyID: 3})
	assert.ErrorIs(t, err, ErrCompanyNotFound)
}

func TestGenerate_RiskNoteMissingSection(t *testing.T) {
	f := newGenerationFixture()
	f.companies.On("FindByID", mock.Anything, uint(1)).Return(&model.Company{ID: 1}, nil)
	f.documents.On("FindByCompanyAndCodes", mock.Anything, uint(1), []string{model.ItemRisk}).Return([]model.Document{}, nil)

	resp, err := f.svc.Generate(context.Background(), GenerationRequest{Mode: model.ModeRiskNote, CompanyID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Required 10-K sections (item_1A) not found for this company.", resp.Content)
	assert.Empty(t, resp.Sources)
	f.llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything)
	f.audit.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestGenerate_SummaryUsesSectionOrder(t *testing.T) {
	f := newGenerationFixture()
	f.companies.On("FindByID", mock.Anything, uint(1)).Return(&model.Company{ID: 1}, nil)
	f.documents.On("FindByCompanyAndCodes", mock.Anything, uint(1), []string{model.ItemBusiness, model.ItemMDA}).Return([]model.Document{
		{ID: 12, CompanyID: 1, ItemCode: model.ItemMDA, ItemName: "Management's Discussion and Analysis", RawText: "Revenue grew 8%."},
		{ID: 11, CompanyID: 1, ItemCode: model.ItemBusiness, ItemName: "Business", RawText: "We design phones."},
	}, nil)

	var userMsg string
	f.llm.On("Complete", mock.Anything, mock.MatchedBy(func(system string) bool {
		return strings.HasPrefix(system, "You are an expert Goldman Sachs financial analyst.")
	}), mock.Anything).Run(func(args mock.Arguments) {
		userMsg = args.String(2)
	}).Return("## Summary", nil)
	f.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.LLMMode == model.ModeSummary &&
			e.QueryText == "System triggered specialized generation: summary" &&
			e.LLMResponse == "## Summary" &&
			len(e.RetrievedChunkIDs) == 0 &&
			assert.Equal(t, []uint{11, 12}, e.RetrievedDocumentIDs)
	})).Return(1, nil).Once()

	resp, err := f.svc.Generate(context.Background(), GenerationRequest{Mode: model.ModeSummary, CompanyID: 1})
	require.NoError(t, err)
	assert.Equal(t, "## Summary", resp.Content)
	assert.Equal(t, []string{"Business", "Management's Discussion and Analysis"}, resp.Sources)
	assert.Equal(t, "Please generate the summary based on the following SEC filings:\n\n"+
		"--- Business ---\nWe design phones.\n\n"+
		"--- Management's Discussion and Analysis ---\nRevenue grew 8%.", userMsg)
	f.audit.AssertExpectations(t)
}

func TestGenerate_EmailWithPartialSections(t *testing.T) {
	f := newGenerationFixture()
	f.companies.On("FindByID", mock.Anything, uint(1)).Return(&model.Company{ID: 1}, nil)
	f.documents.On("FindByCompanyAndCodes", mock.Anything, uint(1), []string{model.ItemBusiness, model.ItemRisk, model.ItemMDA}).
		Return([]model.Document{{ID: 4, ItemCode: model.ItemRisk, ItemName: "Risk Factors", RawText: "Rates."}}, nil)
	f.llm.On("Complete", mock.Anything, mock.MatchedBy(func(system string) bool {
		return strings.Contains(system, "placeholder for the client's name")
	}), mock.Anything).Return("Dear [Client Name],", nil)
	f.audit.On("Record", mock.Anything, mock.Anything).Return(2, nil).Once()

	resp, err := f.svc.Generate(context.Background(), GenerationRequest{Mode: model.ModeEmail, CompanyID: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"Risk Factors"}, resp.Sources)
	assert.Equal(t, "Dear [Client Name],", resp.Content)
}

func TestGenerate_ModelFailureIsAudited(t *testing.T) {
	f := newGenerationFixture()
	f.companies.On("FindByID", mock.Anything, uint(1)).Return(&model.Company{ID: 1}, nil)
	f.documents.On("FindByCompanyAndCodes", mock.Anything, uint(1), []string{model.ItemRisk}).
		Return([]model.Document{{ID: 4, ItemCode: model.ItemRisk, ItemName: "Risk Factors", RawText: "Rates."}}, nil)
	f.llm.On("Complete", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("timeout"))
	f.audit.On("Record", mock.Anything, mock.MatchedBy(func(e *model.AuditLog) bool {
		return e.LLMMode == model.ModeRiskNote && e.LLMResponse == "Error calling language model: timeout"
	})).Return(3, nil).Once()

	resp, err := f.svc.Generate(context.Background(), GenerationRequest{Mode: model.ModeRiskNote, CompanyID: 1})
	require.NoError(t, err)
	assert.Equal(t, "Error calling language model: timeout", resp.Content)
	f.audit.AssertExpectations(t)
}

func TestOrderBySections_KeepsLatest(t *testing.T) {
	docs := orderBySections([]model.Document{
		{ID: 1, ItemCode: model.ItemRisk},
		{ID: 5, ItemCode: model.ItemRisk},
		{ID: 3, ItemCode: model.ItemBusiness},
	}, []string{model.ItemBusiness, model.ItemRisk})
	require.Len(t, docs, 2)
	assert.Equal(t, uint(3), docs[0].ID)
	assert.Equal(t, uint(5), docs[1].ID)
}

func TestIsGenerationMode(t *testing.T) {
	assert.True(t, IsGenerationMode("summary"))
	assert.True(t, IsGenerationMode("risk_note"))
	assert.True(t, IsGenerationMode("email"))
	assert.False(t, IsGenerationMode("chat"))
}
