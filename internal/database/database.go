package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"media-tags/internal/logging"
	"media-tags/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// SchemaVersion is recorded in the metadata table after initialization.
const SchemaVersion = "1"

// Querier is satisfied by both *Database and *Tx, so every tag operation
// can run either on the shared pool or inside a caller's transaction.
// Queries use '?' placeholders; implementations rebind them for the
// underlying engine.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	Dialect() Dialect
}

// Session is a Querier that can also open transactions.
type Session interface {
	Querier
	Begin(ctx context.Context) (*Tx, error)
}

// Options configures how a Database is opened.
type Options struct {
	// Driver is DriverSQLite (default) or DriverPostgres.
	Driver string
	// Path is the SQLite database file. Ignored for PostgreSQL.
	Path string
	// DSN is the PostgreSQL connection string. Ignored for SQLite.
	DSN string
	// MaxOpenConns caps the pool; zero keeps the driver default for the dialect.
	MaxOpenConns int
}

// Database is an explicit handle on one relational session pool. It holds
// no other shared state; the database itself serializes writers.
type Database struct {
	db      *sql.DB
	dialect Dialect
	dbPath  string
}

// New opens the database described by opts, verifies connectivity and
// creates the schema if needed.
func New(ctx context.Context, opts Options) (*Database, error) {
	dialect, err := DialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}

	var connStr string
	switch dialect.Name() {
	case DriverSQLite:
		if opts.Path == "" {
			return nil, errors.New("database path cannot be empty")
		}
		logging.Info("Database path: %s", opts.Path)

		// Diagnose potential permission issues
		if err := diagnoseDatabasePermissions(opts.Path); err != nil {
			logging.Warn("Database permission diagnostics: %v", err)
		}

		// busy_timeout helps prevent "database is locked" errors, and
		// immediate transactions take the write lock up front so two
		// registrars never deadlock upgrading a read lock.
		connStr = fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate", opts.Path)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, errors.New("postgres DSN cannot be empty")
		}
		connStr = opts.DSN
	}

	db, err := sql.Open(dialect.Name(), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(min(10, maxOpen))
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:      db,
		dialect: dialect,
		dbPath:  opts.Path,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully (%s)", dialect.Name())
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	done := ObserveQuery("initialize_schema")

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := d.db.ExecContext(ctx, d.dialect.Schema()); err != nil {
		done(err)
		return err
	}

	err := SetMetadata(ctx, d, "schema_version", SchemaVersion)
	done(err)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// Ping verifies the database is reachable.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return d.db.PingContext(ctx)
}

// Dialect returns the engine dialect of this database.
func (d *Database) Dialect() Dialect {
	return d.dialect
}

// ExecContext implements Querier.
func (d *Database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return d.db.ExecContext(ctx, d.dialect.Rebind(query), args...)
}

// QueryContext implements Querier.
func (d *Database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, d.dialect.Rebind(query), args...)
}

// QueryRowContext implements Querier.
func (d *Database) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return d.db.QueryRowContext(ctx, d.dialect.Rebind(query), args...)
}

// Tx is a transaction bound to the database dialect.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
	start   time.Time
	done    bool
}

// Begin starts a transaction. The caller must finish it with End,
// Commit or Rollback.
func (d *Database) Begin(ctx context.Context) (*Tx, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &Tx{tx: tx, dialect: d.dialect, start: time.Now()}, nil
}

// Dialect implements Querier.
func (t *Tx) Dialect() Dialect {
	return t.dialect
}

// ExecContext implements Querier.
func (t *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

// QueryContext implements Querier.
func (t *Tx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return t.tx.QueryContext(ctx, t.dialect.Rebind(query), args...)
}

// QueryRowContext implements Querier.
func (t *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

// Commit commits the transaction and records its duration.
func (t *Tx) Commit() error {
	if t.done {
		return sql.ErrTxDone
	}
	t.done = true
	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(time.Since(t.start).Seconds())
	return t.tx.Commit()
}

// Rollback aborts the transaction and records its duration. Rolling back
// a finished transaction is a no-op.
func (t *Tx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(time.Since(t.start).Seconds())
	return t.tx.Rollback()
}

// End commits the transaction when err is nil and rolls it back otherwise,
// returning err joined with any rollback failure.
func (t *Tx) End(err error) error {
	if err != nil {
		if rbErr := t.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}
	return t.Commit()
}

// WithTx runs fn inside a transaction on s, committing on success and
// rolling back on error. The operation name labels the query metrics.
func WithTx(ctx context.Context, s Session, operation string, fn func(tx *Tx) error) (err error) {
	done := ObserveQuery(operation)
	defer func() { done(err) }()

	tx, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	return tx.End(fn(tx))
}

// ObserveQuery starts timing a named operation; call the returned function
// with the operation's error when it finishes.
func ObserveQuery(operation string) func(error) {
	start := time.Now()
	return func(err error) {
		recordQuery(operation, start, err)
	}
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	stats := d.db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	// Check if directory is writable by testing
	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)

	for _, path := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", path, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 == 0 {
			logging.Warn("Database file is read-only! %s mode: %v - this will cause write failures", path, info.Mode())
		}
	}

	return nil
}
