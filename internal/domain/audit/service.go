// Package audit persists an append-only invocation log.
// Rows are written from tool.invoked events consumed off the event bus; the
// query pipeline never waits on (or fails because of) this log, and nothing
// in the core reads it back — Recent exists for operators.
package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/QuentinCody/pharos-mcp-server/internal/domain/tool"
	"github.com/QuentinCody/pharos-mcp-server/internal/infra/eventbus"
	"github.com/QuentinCody/pharos-mcp-server/pkg/uuid"
)

// timeLayout is fixed-width so lexicographic TEXT ordering in SQLite matches
// chronological ordering (RFC3339Nano trims trailing zeros and does not).
const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Entry is one invocation log row. Append-only: once written, never modified.
type Entry struct {
	ID               string    `json:"id"`
	ToolName         string    `json:"tool_name"`
	QueryPreview     string    `json:"query_preview"`
	VariablesPreview string    `json:"variables_preview"`
	Outcome          string    `json:"outcome"`
	StatusCode       int       `json:"status_code"`
	DurationMS       int64     `json:"duration_ms"`
	CreatedAt        time.Time `json:"created_at"`
}

// Recorder writes and reads the invocation log.
type Recorder struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewRecorder creates a Recorder over db. logger may be nil.
func NewRecorder(db *sql.DB, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{db: db, logger: logger}
}

// Record appends one row for evt. This is the only write path; there are no
// updates or deletes.
func (r *Recorder) Record(ctx context.Context, evt tool.InvocationEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO invocation_log (
			id, tool_name, query_preview, variables_preview,
			outcome, status_code, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		uuid.NewV7().String(),
		evt.Tool,
		evt.QueryPreview,
		evt.VariablesPreview,
		string(evt.Outcome),
		evt.StatusCode,
		evt.Duration.Milliseconds(),
		evt.At.UTC().Format(timeLayout),
	)
	return err
}

// Recent returns up to limit entries, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tool_name, query_preview, variables_preview,
		       outcome, status_code, duration_ms, created_at
		FROM invocation_log
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			entry     Entry
			createdAt string
		)
		if scanErr := rows.Scan(
			&entry.ID,
			&entry.ToolName,
			&entry.QueryPreview,
			&entry.VariablesPreview,
			&entry.Outcome,
			&entry.StatusCode,
			&entry.DurationMS,
			&createdAt,
		); scanErr != nil {
			return nil, scanErr
		}
		if ts, parseErr := time.Parse(timeLayout, createdAt); parseErr == nil {
			entry.CreatedAt = ts
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Start consumes tool.invoked events from bus until ctx is cancelled.
// Intended to run as a goroutine. Write failures are logged and dropped:
// the log is observational and must never surface into the response path.
func (r *Recorder) Start(ctx context.Context, bus eventbus.EventBus) {
	events := bus.Subscribe(eventbus.TopicToolInvoked)
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-events:
			invocation, ok := evt.Payload.(tool.InvocationEvent)
			if !ok {
				continue
			}
			if err := r.Record(ctx, invocation); err != nil {
				r.logger.Warn("invocation log write failed", "error", err)
			}
		}
	}
}
