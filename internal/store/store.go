package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver
)

// FileName is the name of the history database inside the data directory.
const FileName = "a11yscan.db"

// timeLayout is a fixed-width layout so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrRunNotFound is returned by GetRun when no run has the given id.
var ErrRunNotFound = errors.New("run not found")

// Store provides SQLite-based storage for rule runs.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string

	// now returns the current time. Replaced in tests.
	now func() time.Time
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{
		db:     db,
		dbPath: dbPath,
		now:    time.Now,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Path returns the path of the database file.
func (s *Store) Path() string {
	return s.dbPath
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		rule_id TEXT NOT NULL,
		found INTEGER NOT NULL,
		outcome TEXT,
		node_html TEXT,
		options_json TEXT NOT NULL,
		result_json TEXT,
		error TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_runs_rule ON runs(rule_id);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one recorded rule run.
type Run struct {
	// ID is a random UUID assigned by SaveRun.
	ID string `json:"id"`

	// RuleID is the requested rule identifier.
	RuleID string `json:"ruleId"`

	// Found reports whether the rule was registered.
	Found bool `json:"found"`

	// Outcome is the overall outcome of the result, when it has one.
	Outcome string `json:"outcome,omitempty"`

	// NodeHTML is the markup of the evaluated node.
	NodeHTML string `json:"nodeHtml,omitempty"`

	// Options are the rule options of the run.
	Options map[string]any `json:"options"`

	// Result is the JSON encoding of the published result. Null for absent
	// rules and failed runs.
	Result json.RawMessage `json:"result,omitempty"`

	// Error is the error message of a failed run.
	Error string `json:"error,omitempty"`

	// CreatedAt is when the run was saved.
	CreatedAt time.Time `json:"createdAt"`
}

// SaveRun stores run and returns it with ID and CreatedAt assigned.
// An ID already set on run is kept.
func (s *Store) SaveRun(ctx context.Context, run Run) (Run, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now().UTC()
	}
	if run.Options == nil {
		run.Options = map[string]any{}
	}

	optionsJSON, err := json.Marshal(run.Options)
	if err != nil {
		return Run{}, fmt.Errorf("failed to serialize options: %w", err)
	}

	var result sql.NullString
	if len(run.Result) > 0 {
		result = sql.NullString{String: string(run.Result), Valid: true}
	}

	query := `
	INSERT INTO runs (id, rule_id, found, outcome, node_html, options_json, result_json, error, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = s.db.ExecContext(ctx, query,
		run.ID,
		run.RuleID,
		run.Found,
		run.Outcome,
		run.NodeHTML,
		string(optionsJSON),
		result,
		run.Error,
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("failed to save run: %w", err)
	}

	return run, nil
}

const selectRun = `
	SELECT id, rule_id, found, outcome, node_html, options_json, result_json, error, created_at
	FROM runs
`

// GetRun retrieves a run by id. It returns ErrRunNotFound if there is none.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRun+" WHERE id = ?", id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs, newest first. ruleID filters by rule
// when non-empty. A limit of zero or less returns every run.
func (s *Store) ListRuns(ctx context.Context, ruleID string, limit int) ([]*Run, error) {
	query := selectRun + " WHERE 1=1"
	args := make([]any, 0, 2)

	if ruleID != "" {
		query += " AND rule_id = ?"
		args = append(args, ruleID)
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var (
		run         Run
		outcome     sql.NullString
		nodeHTML    sql.NullString
		optionsJSON string
		resultJSON  sql.NullString
		errMsg      sql.NullString
		createdAt   string
	)

	err := sc.Scan(
		&run.ID,
		&run.RuleID,
		&run.Found,
		&outcome,
		&nodeHTML,
		&optionsJSON,
		&resultJSON,
		&errMsg,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	run.Outcome = outcome.String
	run.NodeHTML = nodeHTML.String
	run.Error = errMsg.String
	run.CreatedAt = parseTimestamp(createdAt)
	if resultJSON.Valid {
		run.Result = json.RawMessage(resultJSON.String)
	}
	if err := json.Unmarshal([]byte(optionsJSON), &run.Options); err != nil {
		return nil, fmt.Errorf("failed to parse options: %w", err)
	}

	return &run, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
var timestampFormats = []string{
	timeLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
