package pipeline

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"filing-advisor-go/internal/config"
	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"
	"filing-advisor-go/pkg/embedding"

	"github.com/rotisserie/eris"
)

type fakeCompanyRepo struct {
	mu        sync.Mutex
	nextID    uint
	byCIK     map[string]*model.Company
	createErr error
}

func newFakeCompanyRepo() *fakeCompanyRepo {
	return &fakeCompanyRepo{byCIK: make(map[string]*model.Company)}
}

func (r *fakeCompanyRepo) FindByCIK(_ context.Context, cik string) (*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byCIK[cik]
	if !ok {
		return nil, eris.Wrap(repository.ErrNotFound, "company: find by cik")
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCompanyRepo) FindByID(_ context.Context, id uint) (*model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byCIK {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeCompanyRepo) Create(_ context.Context, company *model.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	company.ID = r.nextID
	cp := *company
	r.byCIK[company.CIK] = &cp
	return nil
}

func (r *fakeCompanyRepo) UpdateName(_ context.Context, id uint, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.byCIK {
		if c.ID == id {
			c.Name = name
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *fakeCompanyRepo) List(context.Context) ([]model.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Company
	for _, c := range r.byCIK {
		out = append(out, *c)
	}
	return out, nil
}

// fakeDocumentRepo 模拟事务语义：index 回调失败时不保留任何写入。
type fakeDocumentRepo struct {
	mu          sync.Mutex
	nextDocID   uint
	nextChunkID uint
	docs        map[uint]model.Document
	chunks      map[uint]model.Chunk
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: make(map[uint]model.Document), chunks: make(map[uint]model.Chunk)}
}

func (r *fakeDocumentRepo) ReplaceSection(ctx context.Context, doc *model.Document, chunks []*model.Chunk, index repository.IndexFunc) ([]uint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stale []uint
	for id, d := range r.docs {
		if d.CompanyID == doc.CompanyID && d.ItemCode == doc.ItemCode {
			stale = append(stale, id)
		}
	}

	r.nextDocID++
	doc.ID = r.nextDocID
	for _, c := range chunks {
		r.nextChunkID++
		c.ID = r.nextChunkID
		c.DocumentID = doc.ID
	}
	if index != nil {
		if err := index(ctx); err != nil {
			return nil, eris.Wrap(err, "document: replace section")
		}
	}

	for _, id := range stale {
		delete(r.docs, id)
		for cid, c := range r.chunks {
			if c.DocumentID == id {
				delete(r.chunks, cid)
			}
		}
	}
	r.docs[doc.ID] = *doc
	for _, c := range chunks {
		r.chunks[c.ID] = *c
	}
	return stale, nil
}

func (r *fakeDocumentRepo) FindByCompanyAndCodes(_ context.Context, companyID uint, codes []string) ([]model.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Document
	for _, d := range r.docs {
		for _, code := range codes {
			if d.CompanyID == companyID && d.ItemCode == code {
				out = append(out, d)
			}
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) FindChunksByIDs(_ context.Context, ids []uint) ([]model.Chunk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Chunk
	for _, id := range ids {
		if c, ok := r.chunks[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) chunksOf(docID uint) []model.Chunk {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Chunk
	for _, c := range r.chunks {
		if c.DocumentID == docID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out
}

// fakeEmbedder 返回确定性的向量；文本包含 failOn 时模拟服务不可用。
type fakeEmbedder struct {
	failOn string
	calls  int
}

func (e *fakeEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vs, err := e.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (e *fakeEmbedder) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	e.calls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if e.failOn != "" && strings.Contains(t, e.failOn) {
			return nil, eris.Wrap(embedding.ErrProviderUnavailable, "embedding: status 503")
		}
		v := make([]float32, config.EmbeddingDimensions)
		v[0] = float32(len(t))
		out[i] = v
	}
	return out, nil
}

// failingVectorRepo 在写入时失败，用于验证回滚。
type failingVectorRepo struct {
	repository.VectorRepository
	deleted []uint
}

func (r *failingVectorRepo) IndexChunks(context.Context, []model.ChunkVector) error {
	return errors.New("es: bulk index returned 503 Service Unavailable")
}

func (r *failingVectorRepo) DeleteByDocumentIDs(_ context.Context, ids []uint) error {
	r.deleted = append(r.deleted, ids...)
	return nil
}

type fakeObjectStore struct {
	objects map[string][]byte
}

func (s *fakeObjectStore) GetFiling(_ context.Context, name string) ([]byte, error) {
	b, ok := s.objects[name]
	if !ok {
		return nil, errors.New("minio: object not found")
	}
	return b, nil
}
