package model

import "time"

// LLM 交互模式
const (
	ModeChat     = "chat"
	ModeSummary  = "summary"
	ModeRiskNote = "risk_note"
	ModeEmail    = "email"
)

// AuditLog 对应 audit_logs 表，只追加不修改。
type AuditLog struct {
	ID                   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID               *uint     `gorm:"index" json:"user_id"`
	CompanyID            uint      `gorm:"index;not null" json:"company_id"`
	QueryText            string    `gorm:"type:text;not null" json:"query_text"`
	RetrievedChunkIDs    []uint    `gorm:"type:json;serializer:json" json:"retrieved_chunk_ids"`
	RetrievedDocumentIDs []uint    `gorm:"type:json;serializer:json" json:"retrieved_document_ids"`
	LLMMode              string    `gorm:"column:llm_mode;type:varchar(20);index;not null" json:"llm_mode"`
	LLMResponse          string    `gorm:"column:llm_response;type:longtext;not null" json:"llm_response"`
	Timestamp            time.Time `gorm:"index;not null" json:"timestamp"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditFilter 是查询审计日志的条件，零值表示不过滤。
type AuditFilter struct {
	CompanyID uint
	Limit     int
	Offset    int
}
