// Package service 包含了应用的业务逻辑层。
package service

import "github.com/rotisserie/eris"

var (
	// ErrCompanyNotFound 表示请求的公司不存在，此时不调用模型也不写审计。
	ErrCompanyNotFound = eris.New("company not found")
	// ErrInvalidMode 表示不支持的生成模式。
	ErrInvalidMode = eris.New("invalid generation mode")
	// ErrEmptyQuery 表示聊天问题为空。
	ErrEmptyQuery = eris.New("query must not be empty")
)
