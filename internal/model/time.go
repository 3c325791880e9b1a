package model

import (
	"strings"
	"time"
)

// DateLayout 是申报 JSON 中日期字段的格式。
const DateLayout = "2006-01-02"

// 日期缺失或格式错误时使用的哨兵值。
var (
	SentinelFilingDate = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	SentinelPeriodDate = time.Date(2022, 12, 31, 0, 0, 0, 0, time.UTC)
)

// ParseDate 解析 YYYY-MM-DD，失败时返回 fallback 和 false。
func ParseDate(s string, fallback time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, false
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return fallback, false
	}
	return t, true
}
