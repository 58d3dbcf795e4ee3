package database

import (
	"errors"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Dialect captures the differences between the supported SQL engines.
// Queries in this module are written with '?' placeholders and rebound
// through the dialect before they reach the driver.
type Dialect interface {
	// Name is the database/sql driver name.
	Name() string
	// Rebind rewrites '?' placeholders into the engine's native form.
	Rebind(query string) string
	// RandomFunc returns the engine's random ordering primitive, or false
	// when ordering must be randomized client-side.
	RandomFunc() (string, bool)
	// Schema returns the DDL creating the tag graph and content tables.
	Schema() string
}

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case DriverSQLite, "sqlite", "":
		return SQLiteDialect{}, nil
	case DriverPostgres, "postgresql", "pq":
		return PostgresDialect{}, nil
	default:
		return nil, errors.New("unsupported database driver: " + driver)
	}
}

// SQLiteDialect targets github.com/mattn/go-sqlite3.
type SQLiteDialect struct {
	// NoRandom disables RANDOM() so random ordering falls back to a
	// client-side shuffle.
	NoRandom bool
}

func (SQLiteDialect) Name() string { return DriverSQLite }

func (SQLiteDialect) Rebind(query string) string { return query }

func (d SQLiteDialect) RandomFunc() (string, bool) {
	if d.NoRandom {
		return "", false
	}
	return "RANDOM()", true
}

func (SQLiteDialect) Schema() string {
	return `
	CREATE TABLE IF NOT EXISTS tag (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		category TEXT NOT NULL,
		parent INTEGER REFERENCES tag(id) ON DELETE SET NULL,
		UNIQUE(title, category)
	);

	CREATE INDEX IF NOT EXISTS idx_tag_parent ON tag(parent);
	CREATE INDEX IF NOT EXISTS idx_tag_title ON tag(title);

	CREATE TABLE IF NOT EXISTS tag_alias (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tag_id INTEGER NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
		title TEXT NOT NULL UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_tag_alias_tag ON tag_alias(tag_id);

	CREATE TABLE IF NOT EXISTS content (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		file_path TEXT NOT NULL UNIQUE,
		title TEXT,
		content_type TEXT NOT NULL,
		description TEXT,
		addition_date TIMESTAMP NOT NULL,
		hidden BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_content_addition_date ON content(addition_date);

	CREATE TABLE IF NOT EXISTS content_tags_list (
		content_id INTEGER NOT NULL REFERENCES content(id) ON DELETE CASCADE,
		tag_id INTEGER NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
		PRIMARY KEY (content_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_content_tags_list_tag ON content_tags_list(tag_id);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`
}

// PostgresDialect targets github.com/lib/pq.
type PostgresDialect struct{}

func (PostgresDialect) Name() string { return DriverPostgres }

// Rebind converts '?' placeholders to $1..$n, leaving quoted text alone.
func (PostgresDialect) Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	inSingle, inDouble := false, false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '?' && !inSingle && !inDouble:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func (PostgresDialect) RandomFunc() (string, bool) { return "RANDOM()", true }

func (PostgresDialect) Schema() string {
	return `
	CREATE TABLE IF NOT EXISTS tag (
		id BIGSERIAL PRIMARY KEY,
		title VARCHAR(240) NOT NULL,
		category TEXT NOT NULL,
		parent BIGINT REFERENCES tag(id) ON DELETE SET NULL,
		UNIQUE(title, category)
	);

	CREATE INDEX IF NOT EXISTS idx_tag_parent ON tag(parent);
	CREATE INDEX IF NOT EXISTS idx_tag_title ON tag(title);

	CREATE TABLE IF NOT EXISTS tag_alias (
		id BIGSERIAL PRIMARY KEY,
		tag_id BIGINT NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL UNIQUE
	);

	CREATE INDEX IF NOT EXISTS idx_tag_alias_tag ON tag_alias(tag_id);

	CREATE TABLE IF NOT EXISTS content (
		id BIGSERIAL PRIMARY KEY,
		file_path TEXT NOT NULL UNIQUE,
		title VARCHAR(64),
		content_type TEXT NOT NULL,
		description TEXT,
		addition_date TIMESTAMPTZ NOT NULL DEFAULT now(),
		hidden BOOLEAN NOT NULL DEFAULT FALSE
	);

	CREATE INDEX IF NOT EXISTS idx_content_addition_date ON content(addition_date);

	CREATE TABLE IF NOT EXISTS content_tags_list (
		content_id BIGINT NOT NULL REFERENCES content(id) ON DELETE CASCADE,
		tag_id BIGINT NOT NULL REFERENCES tag(id) ON DELETE CASCADE,
		PRIMARY KEY (content_id, tag_id)
	);

	CREATE INDEX IF NOT EXISTS idx_content_tags_list_tag ON content_tags_list(tag_id);

	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`
}

// IsUniqueViolation reports whether err is a uniqueness or primary key
// violation from either supported driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}

	return false
}
