package database

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// NewTestStore returns a store over a private in-memory sqlite database
// with the schema migrated. The database lives until the test ends.
func NewTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := fmt.Sprintf("file:gira_test_%d?mode=memory&_foreign_keys=on", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// одно соединение = одна in-memory база
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return NewStore(db)
}
