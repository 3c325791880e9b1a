package service

import (
	"context"
	"errors"

	"filing-advisor-go/internal/model"
	"filing-advisor-go/internal/repository"

	"github.com/rotisserie/eris"
)

// CompanyService 提供公司目录的只读查询。
type CompanyService interface {
	List(ctx context.Context) ([]model.Company, error)
	Get(ctx context.Context, id uint) (*model.Company, error)
}

type companyService struct {
	companyRepo repository.CompanyRepository
}

func NewCompanyService(companyRepo repository.CompanyRepository) CompanyService {
	return &companyService{companyRepo: companyRepo}
}

func (s *companyService) List(ctx context.Context) ([]model.Company, error) {
	return s.companyRepo.List(ctx)
}

func (s *companyService) Get(ctx context.Context, id uint) (*model.Company, error) {
	return findCompany(ctx, s.companyRepo, id)
}

// findCompany 把仓库层的 ErrNotFound 转换为 ErrCompanyNotFound。
func findCompany(ctx context.Context, repo repository.CompanyRepository, id uint) (*model.Company, error) {
	company, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, eris.Wrapf(ErrCompanyNotFound, "company %d", id)
		}
		return nil, err
	}
	return company, nil
}
