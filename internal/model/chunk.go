package model

// Chunk 对应 chunks 表。同一 Document 下按 ChunkIndex 排序即可还原原文顺序。
type Chunk struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	DocumentID uint      `gorm:"index;not null" json:"document_id"`
	ChunkIndex int       `gorm:"not null" json:"chunk_index"`
	ChunkText  string    `gorm:"type:text;not null" json:"chunk_text"`
	Embedding  []float32 `gorm:"type:json;serializer:json" json:"-"`
	TokenCount int       `gorm:"not null" json:"token_count"`
	Document   *Document `gorm:"foreignKey:DocumentID" json:"-"`
}

func (Chunk) TableName() string {
	return "chunks"
}

// EstimateTokens 按 4 个字符约 1 个 token 粗略估算。
func EstimateTokens(text string) int {
	return len([]rune(text)) / 4
}
