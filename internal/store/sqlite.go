// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: One pooled connection guarded by a mutex, with automatic schema creation

package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// DatabaseFile is the name of the database file inside the data directory
const DatabaseFile = "fooocus_config.db"

// Supported database/sql driver names
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverCGO     = "sqlite3" // github.com/mattn/go-sqlite3, requires cgo
)

// timeLayout is fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements the Store interface using SQLite.
// Every exported method holds mu for its whole duration.
type SQLiteStore struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *slog.Logger
	now    func() time.Time
}

type options struct {
	driver string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a SQLiteStore
type Option func(*options)

// WithDriver selects the database/sql driver (DriverModernc or DriverCGO)
func WithDriver(driver string) Option {
	return func(o *options) {
		if driver != "" {
			o.driver = driver
		}
	}
}

// WithLogger sets the logger used by the store
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock overrides the time source used for created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// Open creates the data directory if needed and opens the database file
// inside it.
func Open(dataDir string, opts ...Option) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return NewSQLiteStore(filepath.Join(dataDir, DatabaseFile), opts...)
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string, opts ...Option) (*SQLiteStore, error) {
	o := options{
		driver: DriverModernc,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With("component", "store")

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open(o.driver, path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A single connection: the mutex serializes callers, and an in-memory
	// database only exists on the connection that created it.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
		now:    o.now,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path, "driver", o.driver)
	return s, nil
}

// createSchema creates the database tables if they don't exist.
// Column names match database files written by earlier versions.
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS presets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			tags TEXT,
			is_favorite INTEGER DEFAULT 0,
			use_count INTEGER DEFAULT 0,
			created_at TEXT,
			updated_at TEXT,
			model_config TEXT,
			sampling_config TEXT,
			prompt_config TEXT,
			image_config TEXT,
			resources TEXT
		);

		CREATE TABLE IF NOT EXISTS tags (
			id TEXT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			color TEXT DEFAULT '#6366f1'
		);

		CREATE TABLE IF NOT EXISTS models (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			file_name TEXT,
			model_type TEXT NOT NULL,
			description TEXT,
			scope TEXT,
			path TEXT,
			tags TEXT,
			created_at TEXT,
			updated_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_presets_name ON presets(name);
		CREATE INDEX IF NOT EXISTS idx_presets_created_at ON presets(created_at);
		CREATE INDEX IF NOT EXISTS idx_presets_updated_at ON presets(updated_at);
		CREATE INDEX IF NOT EXISTS idx_presets_is_favorite ON presets(is_favorite);
		CREATE INDEX IF NOT EXISTS idx_models_name ON models(name);
		CREATE INDEX IF NOT EXISTS idx_models_type ON models(model_type);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// timestamp returns the current time formatted for storage
func (s *SQLiteStore) timestamp() (time.Time, string) {
	t := s.now().UTC()
	return t, formatTime(t)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime accepts the store's own layout and any RFC 3339 timestamp.
// Unparseable or missing values yield the zero time.
func parseTime(raw sql.NullString) time.Time {
	if !raw.Valid {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, raw.String); err == nil {
		return t
	}
	t, _ := time.Parse(time.RFC3339Nano, raw.String)
	return t.UTC()
}

// isConstraintViolation checks if the error is a SQLite UNIQUE constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

// Ensure SQLiteStore implements Store interface
var _ Store = (*SQLiteStore)(nil)
