package model

// ChunkVector 是写入向量索引的条目，检索时按 CompanyID 过滤。
type ChunkVector struct {
	ChunkID      uint      `json:"chunk_id"`
	DocumentID   uint      `json:"document_id"`
	CompanyID    uint      `json:"company_id"`
	ItemName     string    `json:"item_name"`
	ChunkIndex   int       `json:"chunk_index"`
	TextContent  string    `json:"text_content"`
	Vector       []float32 `json:"vector"`
	ModelVersion string    `json:"model_version"`
}

// VectorHit 是一次近邻搜索命中，Distance 为 L2 距离，越小越相似。
type VectorHit struct {
	ChunkID    uint
	DocumentID uint
	Distance   float64
}

// RetrievedChunk 是检索结果，带上所属章节名。
type RetrievedChunk struct {
	ChunkID    uint    `json:"chunk_id"`
	DocumentID uint    `json:"document_id"`
	ItemName   string  `json:"item_name"`
	ChunkIndex int     `json:"chunk_index"`
	ChunkText  string  `json:"chunk_text"`
	Distance   float64 `json:"distance"`
}
