package repository

import (
	"context"

	"filing-advisor-go/internal/model"

	"gorm.io/gorm"
)

// CompanyRepository 定义了 companies 表的数据操作接口。
type CompanyRepository interface {
	FindByCIK(ctx context.Context, cik string) (*model.Company, error)
	FindByID(ctx context.Context, id uint) (*model.Company, error)
	Create(ctx context.Context, company *model.Company) error
	UpdateName(ctx context.Context, id uint, name string) error
	List(ctx context.Context) ([]model.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository 创建一个新的 CompanyRepository 实例。
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) FindByCIK(ctx context.Context, cik string) (*model.Company, error) {
	var company model.Company
	err := r.db.WithContext(ctx).Where("cik = ?", cik).First(&company).Error
	if err != nil {
		return nil, translate(err, "company: find by cik")
	}
	return &company, nil
}

func (r *companyRepository) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, translate(err, "company: find by id")
	}
	return &company, nil
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return translate(r.db.WithContext(ctx).Create(company).Error, "company: create")
}

func (r *companyRepository) UpdateName(ctx context.Context, id uint, name string) error {
	err := r.db.WithContext(ctx).Model(&model.Company{}).Where("id = ?", id).Update("name", name).Error
	return translate(err, "company: update name")
}

// List 按公司名排序返回全部公司。
func (r *companyRepository) List(ctx context.Context) ([]model.Company, error) {
	var companies []model.Company
	err := r.db.WithContext(ctx).Order("name ASC, id ASC").Find(&companies).Error
	return companies, translate(err, "company: list")
}
