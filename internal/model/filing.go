package model

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// FilingRecord 是一份申报 JSON 的输入格式，未知字段忽略。
type FilingRecord struct {
	CIK            string `json:"cik"`
	Company        string `json:"company"`
	Name           string `json:"name"`
	Filename       string `json:"filename"`
	FilingDate     string `json:"filing_date"`
	FilingType     string `json:"filing_type"`
	PeriodOfReport string `json:"period_of_report"`
	Item1          string `json:"item_1"`
	Item1A         string `json:"item_1A"`
	Item7          string `json:"item_7"`
}

// UnmarshalJSON 允许 cik 为字符串或数字，null 和 0 视为缺失。
func (r *FilingRecord) UnmarshalJSON(data []byte) error {
	type plain FilingRecord
	aux := struct {
		*plain
		CIK json.RawMessage `json:"cik"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	cik, err := parseCIK(aux.CIK)
	if err != nil {
		return err
	}
	r.CIK = cik
	return nil
}

func parseCIK(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", eris.Errorf("cik must be a string or a number, got %s", string(raw))
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		return "", nil
	}
	return n.String(), nil
}

// CompanyName 依次取 company、name，都为空时返回占位名称。
func (r FilingRecord) CompanyName() string {
	if n := strings.TrimSpace(r.Company); n != "" {
		return n
	}
	if n := strings.TrimSpace(r.Name); n != "" {
		return n
	}
	return UnknownCompanyName
}

// SectionText 返回某个章节代码的原文。
func (r FilingRecord) SectionText(code string) string {
	switch code {
	case ItemBusiness:
		return r.Item1
	case ItemRisk:
		return r.Item1A
	case ItemMDA:
		return r.Item7
	}
	return ""
}

// SkipMissingIdentifier 是缺少 cik 时的跳过原因。
const SkipMissingIdentifier = "missing_identifier"

// DefaultFilingType 是未提供 filing_type 时的默认值。
const DefaultFilingType = "10-K"

// 章节处理状态
const (
	SectionSuccess = "success"
	SectionSkipped = "skipped"
	SectionFailed  = "failed"
)

// SectionResult 是单个章节的导入结果。
type SectionResult struct {
	ItemCode   string `json:"item_code"`
	ItemName   string `json:"item_name"`
	Status     string `json:"status"`
	DocumentID uint   `json:"document_id,omitempty"`
	ChunkCount int    `json:"chunk_count"`
	Error      string `json:"error,omitempty"`
}

// IngestionOutcome 汇总一次导入的结果。
type IngestionOutcome struct {
	RunID       string          `json:"run_id"`
	CIK         string          `json:"cik"`
	CompanyID   uint            `json:"company_id,omitempty"`
	CompanyName string          `json:"company_name,omitempty"`
	Skipped     bool            `json:"skipped"`
	SkipReason  string          `json:"skip_reason,omitempty"`
	Sections    []SectionResult `json:"sections"`
}

// Succeeded 统计成功导入的章节数。
func (o *IngestionOutcome) Succeeded() int {
	n := 0
	for _, s := range o.Sections {
		if s.Status == SectionSuccess {
			n++
		}
	}
	return n
}

// Failed 统计失败的章节数。
func (o *IngestionOutcome) Failed() int {
	n := 0
	for _, s := range o.Sections {
		if s.Status == SectionFailed {
			n++
		}
	}
	return n
}
