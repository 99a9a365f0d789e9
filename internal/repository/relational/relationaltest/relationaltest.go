// Package relationaltest opens throwaway in-memory databases for tests.
package relationaltest

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/assetflow/assetflow/internal/config"
	"github.com/assetflow/assetflow/internal/domain/models"
	"github.com/assetflow/assetflow/internal/repository/relational"
)

// Open returns a migrated sqlite database private to t.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := relational.Open(config.DatabaseConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, nil)
	require.NoError(t, err)
	require.NoError(t, relational.Migrate(context.Background(), db))
	t.Cleanup(func() { _ = relational.Close(db) })
	return db
}

// Batch stores an upload batch called filename.
func Batch(t testing.TB, db *gorm.DB, filename string) *models.ImportBatch {
	t.Helper()
	batch := &models.ImportBatch{
		OriginalFilename: filename,
		StoredFilename:   fmt.Sprintf("%s_%s", strings.ReplaceAll(t.Name(), "/", "_"), filename),
		Source:           models.SourceUpload,
	}
	require.NoError(t, db.Create(batch).Error)
	return batch
}
