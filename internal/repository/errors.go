// Package repository 定义了与数据库及向量索引进行数据交换的接口和实现。
package repository

import (
	"errors"

	"github.com/rotisserie/eris"
	"gorm.io/gorm"
)

// ErrNotFound 表示记录不存在。
var ErrNotFound = eris.New("record not found")

// translate 把 gorm 的未找到错误统一为 ErrNotFound。
func translate(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return eris.Wrap(ErrNotFound, msg)
	}
	return eris.Wrap(err, msg)
}
