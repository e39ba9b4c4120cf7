// Package audit persists hook pipeline decisions to SQLite so operators
// can reconstruct why a sign-up was rejected or a provisioning call
// failed. Recording is best-effort: a failed write is logged and never
// fails the request that produced it.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/andysenclave/kriyo-auth-gateway/internal/pipeline"
)

// writeTimeout decouples audit persistence from the request lifecycle.
const writeTimeout = 5 * time.Second

// Store is a SQLite-backed recorder of pipeline phase decisions.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Ensure Store satisfies the dispatcher's recorder contract.
var _ pipeline.Recorder = (*Store)(nil)

// New opens (or creates) the audit database at dbPath.
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db, logger: logger}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS hook_decisions (
		id TEXT PRIMARY KEY,
		request_id TEXT,
		path TEXT NOT NULL,
		method TEXT NOT NULL,
		phase TEXT NOT NULL,
		stage TEXT,
		allowed INTEGER NOT NULL,
		error_kind TEXT,
		message TEXT,
		duration_ns INTEGER,
		created_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_hook_decisions_request
		ON hook_decisions(request_id)`)
	return err
}

// RecordDecision writes one phase decision. Failures are logged and
// swallowed.
func (s *Store) RecordDecision(ctx context.Context, d pipeline.Decision) {
	// Detach from the request context so a client disconnect does not drop
	// the audit row, but still bound the write.
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	allowed := 0
	if d.Allowed {
		allowed = 1
	}

	_, err := s.db.ExecContext(writeCtx, `INSERT INTO hook_decisions
		(id, request_id, path, method, phase, stage, allowed, error_kind, message, duration_ns, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(),
		d.RequestID,
		d.Path,
		d.Method,
		string(d.Phase),
		d.Stage,
		allowed,
		string(d.Kind),
		d.Message,
		d.Duration.Nanoseconds(),
		time.Now().UTC(),
	)
	if err != nil {
		s.logger.Error("failed to record hook decision",
			slog.String("request_id", d.RequestID),
			slog.String("phase", string(d.Phase)),
			slog.String("error", err.Error()),
		)
	}
}

// Decision is one persisted audit row.
type Decision struct {
	ID        string
	RequestID string
	Path      string
	Method    string
	Phase     string
	Stage     string
	Allowed   bool
	ErrorKind string
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// ByRequest returns the decisions recorded for a request id, oldest first.
func (s *Store) ByRequest(ctx context.Context, requestID string) ([]Decision, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, request_id, path, method, phase, stage, allowed, error_kind, message, duration_ns, created_at
		FROM hook_decisions WHERE request_id = ? ORDER BY created_at ASC`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	return scanDecisions(rows)
}

// Recent returns the most recent decisions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Decision, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, request_id, path, method, phase, stage, allowed, error_kind, message, duration_ns, created_at
		FROM hook_decisions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	return scanDecisions(rows)
}

func scanDecisions(rows *sql.Rows) ([]Decision, error) {
	var out []Decision
	for rows.Next() {
		var d Decision
		var allowed int
		var durationNS int64
		if err := rows.Scan(&d.ID, &d.RequestID, &d.Path, &d.Method, &d.Phase, &d.Stage,
			&allowed, &d.ErrorKind, &d.Message, &durationNS, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Allowed = allowed != 0
		d.Duration = time.Duration(durationNS)
		out = append(out, d)
	}
	return out, rows.Err()
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
