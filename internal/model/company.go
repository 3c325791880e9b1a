// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// UnknownCompanyName 是无法从申报数据中解析公司名时的占位名称。
const UnknownCompanyName = "Unknown Company"

// Company 对应 companies 表，一个 CIK 对应一家公司。
type Company struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	CIK            string     `gorm:"type:varchar(20);uniqueIndex;not null" json:"cik"`
	Name           string     `gorm:"type:varchar(255);index;not null" json:"name"`
	Filename       *string    `gorm:"type:varchar(255)" json:"filename"`
	FilingDate     time.Time  `gorm:"type:date;not null" json:"filing_date"`
	FilingType     string     `gorm:"type:varchar(20);not null;default:'10-K'" json:"filing_type"`
	PeriodOfReport time.Time  `gorm:"type:date;not null" json:"period_of_report"`
	Documents      []Document `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt      time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Company) TableName() string {
	return "companies"
}

// Document 是某次导入中一个章节的全文，写入后不再修改。
type Document struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CompanyID uint      `gorm:"index:idx_documents_company_item;not null" json:"company_id"`
	ItemCode  string    `gorm:"type:varchar(16);index:idx_documents_company_item;not null" json:"item_code"`
	ItemName  string    `gorm:"type:varchar(128);not null" json:"item_name"`
	RawText   string    `gorm:"type:longtext;not null" json:"raw_text"`
	Chunks    []Chunk   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Document) TableName() string {
	return "documents"
}
