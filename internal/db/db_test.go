package db_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypals/studypals/internal/db"
	"github.com/studypals/studypals/internal/testutil"
)

func TestOpen_AppliesMigrations(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "studypals.db")

	conn, err := db.Open(ctx, path)
	require.NoError(t, err)
	defer testutil.MustClose(t, conn)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)

	for _, table := range []string{"study_sessions", "quiz_sessions", "flashcards", "review_history", "analytics_snapshots"} {
		var name string
		err := conn.QueryRowContext(ctx, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		assert.NoError(t, err, "table %s should exist", table)
	}
	assert.NoError(t, conn.Ping(ctx))
}

func TestMigrate_IsIdempotent(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Migrate(ctx, conn))

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestTx_RollsBackOnError(t *testing.T) {
	conn := testutil.NewTestDB(t)
	ctx := context.Background()

	err := db.Tx(ctx, conn, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `INSERT INTO analytics_snapshots (user_id, snapshot, updated_at) VALUES ('u1', '{}', CURRENT_TIMESTAMP)`)
		require.NoError(t, err)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var n int
	require.NoError(t, conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM analytics_snapshots`).Scan(&n))
	assert.Zero(t, n)
}
