package repository

import (
	"context"
	"path/filepath"
	"testing"

	"filing-advisor-go/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB 在临时目录创建一个 sqlite 库并迁移全部表。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "advisor.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Company{}, &model.Document{}, &model.Chunk{}, &model.AuditLog{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func seedCompany(t *testing.T, db *gorm.DB, cik, name string) *model.Company {
	t.Helper()
	c := &model.Company{
		CIK:            cik,
		Name:           name,
		FilingDate:     model.SentinelFilingDate,
		FilingType:     model.DefaultFilingType,
		PeriodOfReport: model.SentinelPeriodDate,
	}
	require.NoError(t, NewCompanyRepository(db).Create(context.Background(), c))
	return c
}
