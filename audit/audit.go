// Package audit persists a per-invocation trail of tool calls to SQLite.
//
// Writes are asynchronous and batched; a failing audit store never blocks
// or fails a tool call.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/wayback/idgen"
)

// Entry is a single tool invocation record.
type Entry struct {
	EntryID      string
	Timestamp    time.Time
	ToolName     string
	Arguments    string // JSON
	Status       string // "success", "error"
	ErrorMessage string
	DurationMs   int64
	Transport    string
	SessionID    string
}

// Filter controls query results from the audit trail.
type Filter struct {
	Since    *time.Time
	ToolName *string
	Status   *string
	Limit    int // default 100
}

// Logger persists tool-call entries asynchronously.
type Logger struct {
	db    *sql.DB
	newID idgen.Generator
	ch    chan *Entry
	stop  chan struct{}
	done  chan struct{}
}

// Option configures a Logger.
type Option func(*Logger)

// WithIDGenerator sets a custom ID generator for entry IDs.
func WithIDGenerator(gen idgen.Generator) Option {
	return func(l *Logger) { l.newID = gen }
}

// New creates an async audit logger. Recommended bufferSize: 1000.
func New(db *sql.DB, bufferSize int, opts ...Option) *Logger {
	l := &Logger{
		db:    db,
		newID: idgen.Prefixed("audit_", idgen.Default),
		ch:    make(chan *Entry, bufferSize),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	for _, o := range opts {
		o(l)
	}
	go l.flushLoop()
	return l
}

// Init applies the audit schema.
func (l *Logger) Init() error {
	if _, err := l.db.Exec(Schema); err != nil {
		return fmt.Errorf("audit: init schema: %w", err)
	}
	return nil
}

// NewEntry builds an Entry from a tool invocation. Arguments are marshalled
// to JSON; a marshal failure leaves them empty rather than failing the call.
func (l *Logger) NewEntry(tool string, args any, err error, duration time.Duration) *Entry {
	e := &Entry{
		EntryID:    l.newID(),
		Timestamp:  time.Now(),
		ToolName:   tool,
		DurationMs: duration.Milliseconds(),
	}
	if args != nil {
		if b, mErr := json.Marshal(args); mErr == nil {
			e.Arguments = string(b)
		}
	}
	if err != nil {
		e.Status = "error"
		e.ErrorMessage = err.Error()
	} else {
		e.Status = "success"
	}
	return e
}

// Log inserts an entry synchronously.
func (l *Logger) Log(ctx context.Context, e *Entry) error {
	l.fillDefaults(e)
	return l.insert(ctx, e)
}

// LogAsync queues an entry for async persistence.
// Falls back to synchronous insert if the buffer is full.
func (l *Logger) LogAsync(e *Entry) {
	l.fillDefaults(e)
	select {
	case l.ch <- e:
	default:
		slog.Warn("audit buffer full, sync fallback", "tool", e.ToolName)
		if err := l.insert(context.Background(), e); err != nil {
			slog.Error("audit: sync fallback failed", "error", err)
		}
	}
}

// Query retrieves entries matching the given filter, newest first.
func (l *Logger) Query(ctx context.Context, f *Filter) ([]*Entry, error) {
	q := `SELECT entry_id, timestamp, tool_name, arguments, status,
		error_message, duration_ms, transport, session_id
		FROM tool_calls WHERE 1=1`
	var args []any

	if f.Since != nil {
		q += " AND timestamp >= ?"
		args = append(args, f.Since.Unix())
	}
	if f.ToolName != nil {
		q += " AND tool_name = ?"
		args = append(args, *f.ToolName)
	}
	if f.Status != nil {
		q += " AND status = ?"
		args = append(args, *f.Status)
	}

	limit := 100
	if f.Limit > 0 {
		limit = f.Limit
	}
	q += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var ts int64
		var arguments, errMsg, transport, sessionID sql.NullString
		var durationMs sql.NullInt64

		if err := rows.Scan(&e.EntryID, &ts, &e.ToolName, &arguments, &e.Status,
			&errMsg, &durationMs, &transport, &sessionID); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}

		e.Timestamp = time.Unix(ts, 0)
		e.Arguments = arguments.String
		e.ErrorMessage = errMsg.String
		e.Transport = transport.String
		e.SessionID = sessionID.String
		if durationMs.Valid {
			e.DurationMs = durationMs.Int64
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Cleanup deletes entries older than retentionDays.
func (l *Logger) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	threshold := time.Now().AddDate(0, 0, -retentionDays).Unix()
	result, err := l.db.ExecContext(ctx, "DELETE FROM tool_calls WHERE timestamp < ?", threshold)
	if err != nil {
		return 0, fmt.Errorf("audit: cleanup: %w", err)
	}
	return result.RowsAffected()
}

// Close drains the buffer and stops the flush goroutine.
func (l *Logger) Close() error {
	close(l.stop)
	<-l.done
	return nil
}

func (l *Logger) fillDefaults(e *Entry) {
	if e.EntryID == "" {
		e.EntryID = l.newID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	if e.Status == "" {
		if e.ErrorMessage != "" {
			e.Status = "error"
		} else {
			e.Status = "success"
		}
	}
}

func (l *Logger) flushLoop() {
	defer close(l.done)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()
	batch := make([]*Entry, 0, 100)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		tx, err := l.db.BeginTx(ctx, nil)
		if err != nil {
			slog.Error("audit: begin tx", "error", err)
			return
		}
		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			tx.Rollback()
			slog.Error("audit: prepare", "error", err)
			return
		}
		defer stmt.Close()

		for _, e := range batch {
			if _, err := stmt.ExecContext(ctx,
				e.EntryID, e.Timestamp.Unix(), e.ToolName, e.Arguments,
				e.Status, e.ErrorMessage, e.DurationMs, e.Transport, e.SessionID,
			); err != nil {
				slog.Error("audit: insert", "error", err, "entry_id", e.EntryID)
			}
		}
		if err := tx.Commit(); err != nil {
			slog.Error("audit: commit", "error", err)
		}
		batch = batch[:0]
	}

	for {
		select {
		case <-l.stop:
			for {
				select {
				case e := <-l.ch:
					batch = append(batch, e)
				default:
					flush()
					return
				}
			}
		case e := <-l.ch:
			batch = append(batch, e)
			if len(batch) >= 100 {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

const insertSQL = `INSERT INTO tool_calls
	(entry_id, timestamp, tool_name, arguments, status,
	 error_message, duration_ms, transport, session_id)
	VALUES (?,?,?,?,?,?,?,?,?)`

func (l *Logger) insert(ctx context.Context, e *Entry) error {
	_, err := l.db.ExecContext(ctx, insertSQL,
		e.EntryID, e.Timestamp.Unix(), e.ToolName, e.Arguments,
		e.Status, e.ErrorMessage, e.DurationMs, e.Transport, e.SessionID)
	return err
}
