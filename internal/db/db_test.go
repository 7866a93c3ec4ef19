package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/db"
	"github.com/vytor/flashdeck/internal/testutil"
)

func TestApplyMigrations_Idempotent(t *testing.T) {
	sqlDB := testutil.NewTestDB(t)
	defer testutil.MustClose(t, sqlDB)

	require.NoError(t, db.ApplyMigrations(context.Background(), sqlDB))

	var count int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&count))
	assert.Equal(t, 1, count)

	for _, table := range []string{"users", "collections"} {
		var name string
		err := sqlDB.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, table)
	}
}

func TestOpen(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "flashdeck.db"))
	require.NoError(t, err)
	defer testutil.MustClose(t, database)

	assert.NoError(t, database.Ping(context.Background()))
}
