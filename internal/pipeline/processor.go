// Package pipeline 定义了申报文件导入的核心流程。
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/pkg/embedding"
	"filing-advisor-go/pkg/log"
	"filing-advisor-go/pkg/tasks"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// ErrMalformedFiling 表示输入不是合法的申报 JSON。
var ErrMalformedFiling = eris.New("malformed filing json")

// ObjectStore 是异步导入读取归档文件所需的最小接口。
type ObjectStore interface {
	GetFiling(ctx context.Context, objectName string) ([]byte, error)
}

// Processor 封装了申报导入的所有依赖和逻辑。
type Processor struct {
	companies    repository.CompanyRepository
	documents    repository.DocumentRepository
	vectors      repository.VectorRepository
	embedder     embedding.Client
	splitter     *TextSplitter
	modelVersion string
	store        ObjectStore
}

// NewProcessor 创建一个新的 Processor 实例。store 为 nil 时不支持 Process。
func NewProcessor(
	companies repository.CompanyRepository,
	documents repository.DocumentRepository,
	vectors repository.VectorRepository,
	embedder embedding.Client,
	splitter *TextSplitter,
	modelVersion string,
	store ObjectStore,
) *Processor {
	if splitter == nil {
		splitter = NewTextSplitter(DefaultChunkSize, DefaultChunkOverlap)
	}
	return &Processor{
		companies:    companies,
		documents:    documents,
		vectors:      vectors,
		embedder:     embedder,
		splitter:     splitter,
		modelVersion: modelVersion,
		store:        store,
	}
}

// Process 处理一条 Kafka 导入任务：从 MinIO 读取归档的申报 JSON 后导入。
// 有章节失败时返回错误，让消费者按重试策略处理。
func (p *Processor) Process(ctx context.Context, task tasks.FilingIngestTask) error {
	log.Infof("[Processor] 开始处理导入任务, TaskID: %s, Object: %s", task.TaskID, task.ObjectName)
	if p.store == nil {
		return eris.New("pipeline: object store not configured")
	}

	data, err := p.store.GetFiling(ctx, task.ObjectName)
	if err != nil {
		log.Errorf("[Processor] 从MinIO下载文件失败, Object: %s, Error: %v", task.ObjectName, err)
		return err
	}
	if len(data) == 0 {
		log.Warnf("[Processor] 文件 '%s' 内容为空, 处理中止", task.ObjectName)
		return eris.Wrap(ErrMalformedFiling, "empty object")
	}

	outcome, err := p.IngestJSON(ctx, data)
	if err != nil {
		return err
	}
	if n := outcome.Failed(); n > 0 {
		return eris.Errorf("pipeline: %d section(s) failed for cik %s", n, outcome.CIK)
	}
	log.Infof("[Processor] 导入任务完成, TaskID: %s, RunID: %s", task.TaskID, outcome.RunID)
	return nil
}

// IngestFile 读取本地 JSON 文件并导入，供批量命令使用。
func (p *Processor) IngestFile(ctx context.Context, path string) (*model.IngestionOutcome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: read %s", path)
	}
	outcome, err := p.IngestJSON(ctx, data)
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: ingest %s", path)
	}
	return outcome, nil
}

// IngestJSON 解析申报 JSON 并导入。
func (p *Processor) IngestJSON(ctx context.Context, data []byte) (*model.IngestionOutcome, error) {
	var record model.FilingRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, eris.Wrapf(ErrMalformedFiling, "decode: %v", err)
	}
	return p.Ingest(ctx, record)
}

// Ingest 导入一份申报记录。每个章节独立提交，一个章节失败不影响其他章节。
// 缺少 cik 时返回 Skipped 结果而不是错误。
func (p *Processor) Ingest(ctx context.Context, record model.FilingRecord) (*model.IngestionOutcome, error) {
	outcome := &model.IngestionOutcome{
		RunID: uuid.NewString(),
		CIK:   strings.TrimSpace(record.CIK),
	}
	if outcome.CIK == "" {
		log.Warnf("[Processor] 申报缺少 cik, 跳过, RunID: %s", outcome.RunID)
		outcome.Skipped = true
		outcome.SkipReason = model.SkipMissingIdentifier
		return outcome, nil
	}

	company, err := p.resolveCompany(ctx, outcome.CIK, record)
	if err != nil {
		log.Errorf("[Processor] 解析公司失败, CIK: %s, Error: %v", outcome.CIK, err)
		return nil, err
	}
	outcome.CompanyID = company.ID
	outcome.CompanyName = company.Name

	for _, sec := range model.Sections {
		result := p.ingestSection(ctx, outcome.RunID, company, sec, record.SectionText(sec.Code))
		outcome.Sections = append(outcome.Sections, result)
	}

	log.Infow("[Processor] 申报导入完成",
		"run_id", outcome.RunID,
		"cik", outcome.CIK,
		"company_id", outcome.CompanyID,
		"succeeded", outcome.Succeeded(),
		"failed", outcome.Failed(),
	)
	return outcome, nil
}

// resolveCompany 按 cik 查找公司，不存在则创建；已有记录是占位名称时用新名称修复。
func (p *Processor) resolveCompany(ctx context.Context, cik string, record model.FilingRecord) (*model.Company, error) {
	name := record.CompanyName()

	company, err := p.companies.FindByCIK(ctx, cik)
	if err == nil {
		if company.Name == model.UnknownCompanyName && name != model.UnknownCompanyName {
			if err := p.companies.UpdateName(ctx, company.ID, name); err != nil {
				return nil, err
			}
			log.Infof("[Processor] 修复公司名称, CIK: %s, %q -> %q", cik, company.Name, name)
			company.Name = name
		}
		return company, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	filingDate, ok := model.ParseDate(record.FilingDate, model.SentinelFilingDate)
	if !ok {
		log.Debugf("[Processor] filing_date 缺失或格式错误 (%q), 使用默认值, CIK: %s", record.FilingDate, cik)
	}
	periodDate, ok := model.ParseDate(record.PeriodOfReport, model.SentinelPeriodDate)
	if !ok {
		log.Debugf("[Processor] period_of_report 缺失或格式错误 (%q), 使用默认值, CIK: %s", record.PeriodOfReport, cik)
	}
	filingType := strings.TrimSpace(record.FilingType)
	if filingType == "" {
		filingType = model.DefaultFilingType
	}

	company = &model.Company{
		CIK:            cik,
		Name:           name,
		FilingDate:     filingDate,
		FilingType:     filingType,
		PeriodOfReport: periodDate,
	}
	if fn := strings.TrimSpace(record.Filename); fn != "" {
		company.Filename = &fn
	}
	if err := p.companies.Create(ctx, company); err != nil {
		// 并发导入同一 cik 时，另一方可能已经创建成功
		if existing, ferr := p.companies.FindByCIK(ctx, cik); ferr == nil {
			return existing, nil
		}
		return nil, err
	}
	log.Infof("[Processor] 创建公司, CIK: %s, Name: %s, ID: %d", cik, company.Name, company.ID)
	return company, nil
}

func (p *Processor) ingestSection(ctx context.Context, runID string, company *model.Company, sec model.Section, text string) model.SectionResult {
	result := model.SectionResult{ItemCode: sec.Code, ItemName: sec.Name}
	if strings.TrimSpace(text) == "" {
		result.Status = model.SectionSkipped
		return result
	}

	fail := func(err error) model.SectionResult {
		log.Errorf("[Processor] 章节导入失败, RunID: %s, CIK: %s, Section: %s, Error: %v", runID, company.CIK, sec.Code, err)
		result.Status = model.SectionFailed
		result.Error = err.Error()
		return result
	}

	pieces := p.splitter.Split(text)
	log.Infof("[Processor] 章节 %s 分块完成, 长度: %d 字符, 分块数: %d", sec.Code, utf8.RuneCountInString(text), len(pieces))

	vectors, err := p.embedder.CreateEmbeddings(ctx, pieces)
	if err != nil {
		return fail(err)
	}
	if len(vectors) != len(pieces) {
		return fail(eris.Errorf("pipeline: expected %d embeddings, got %d", len(pieces), len(vectors)))
	}

	doc := &model.Document{
		CompanyID: company.ID,
		ItemCode:  sec.Code,
		ItemName:  sec.Name,
		RawText:   text,
	}
	chunks := make([]*model.Chunk, len(pieces))
	for i, piece := range pieces {
		chunks[i] = &model.Chunk{
			ChunkIndex: i,
			ChunkText:  piece,
			Embedding:  vectors[i],
			TokenCount: model.EstimateTokens(piece),
		}
	}

	stale, err := p.documents.ReplaceSection(ctx, doc, chunks, func(ctx context.Context) error {
		entries := make([]model.ChunkVector, len(chunks))
		for i, c := range chunks {
			entries[i] = model.ChunkVector{
				ChunkID:      c.ID,
				DocumentID:   doc.ID,
				CompanyID:    company.ID,
				ItemName:     sec.Name,
				ChunkIndex:   c.ChunkIndex,
				TextContent:  c.ChunkText,
				Vector:       c.Embedding,
				ModelVersion: p.modelVersion,
			}
		}
		if err := p.vectors.IndexChunks(ctx, entries); err != nil {
			// 事务会回滚，已写入的部分向量也要清掉
			if derr := p.vectors.DeleteByDocumentIDs(ctx, []uint{doc.ID}); derr != nil {
				log.Warnf("[Processor] 清理未提交文档的向量失败, DocumentID: %d, Error: %v", doc.ID, derr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return fail(err)
	}

	if len(stale) > 0 {
		if err := p.vectors.DeleteByDocumentIDs(ctx, stale); err != nil {
			log.Warnf("[Processor] 删除旧文档向量失败, DocumentIDs: %v, Error: %v", stale, err)
		}
	}

	result.Status = model.SectionSuccess
	result.DocumentID = doc.ID
	result.ChunkCount = len(chunks)
	return result
}
