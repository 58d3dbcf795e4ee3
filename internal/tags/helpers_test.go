package tags

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"media-tags/internal/database"
)

// setupTestDB creates a test database in a temporary directory. Tests using
// it are skipped in short mode.
func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	dbPath := filepath.Join(t.TempDir(), "tags.db")
	db, err := database.New(context.Background(), database.Options{Driver: database.DriverSQLite, Path: dbPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustRegister(t *testing.T, db *database.Database, title, category, alias string) int64 {
	t.Helper()
	res, err := Register(context.Background(), db, title, category, alias)
	require.NoError(t, err)
	return res.ID
}

var baseDate = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// addContent inserts a content row added day days after baseDate and links
// it to tagIDs.
func addContent(t *testing.T, db *database.Database, path string, day int, hidden bool, tagIDs ...int64) int64 {
	t.Helper()
	ctx := context.Background()

	id, err := database.InsertContent(ctx, db, database.Content{
		FilePath:     path,
		ContentType:  "image",
		AdditionDate: baseDate.AddDate(0, 0, day),
		Hidden:       hidden,
	})
	require.NoError(t, err)
	for _, tagID := range tagIDs {
		require.NoError(t, database.LinkTag(ctx, db, id, tagID))
	}
	return id
}

func setParentRaw(t *testing.T, db *database.Database, child, parent int64) {
	t.Helper()
	_, err := db.ExecContext(context.Background(), "UPDATE tag SET parent = ? WHERE id = ?", parent, child)
	require.NoError(t, err)
}

func ids(items []database.Content) []int64 {
	out := make([]int64, 0, len(items))
	for _, c := range items {
		out = append(out, c.ID)
	}
	return out
}

// stubQuerier compiles group-less queries without a database.
type stubQuerier struct {
	dialect database.Dialect
}

func (s stubQuerier) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, sql.ErrConnDone
}

func (s stubQuerier) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}

func (s stubQuerier) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}

func (s stubQuerier) Dialect() database.Dialect {
	return s.dialect
}
