// Package audit persists a command-level audit trail for a domdrive
// session: every dispatched command, its parameters, outcome, and
// duration. Backed by SQLite so the trail survives the process and can
// be inspected with any sqlite client.
package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/domdrive/internal/idgen"
)

// Entry is one executed command in the audit trail.
type Entry struct {
	EntryID    string
	Timestamp  time.Time
	Command    string
	Parameters string // JSON
	Result     string // JSON, empty on failure
	Error      string
	DurationMs int64
	Status     string // "success" | "error"
}

// Logger persists entries asynchronously with a sync fallback when the
// buffer is full. Inserts never fail a command: audit is observability,
// not control flow.
type Logger struct {
	db    *sql.DB
	newID idgen.Generator
	log   *slog.Logger
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

// WithLogger sets the slog logger for internal warnings.
func WithLogger(log *slog.Logger) Option {
	return func(l *Logger) { l.log = log }
}

// New creates an async audit logger. Call Init before logging.
func New(db *sql.DB, bufferSize int, opts ...Option) *Logger {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	l := &Logger{
		db:    db,
		newID: idgen.Prefixed("aud_", idgen.Default),
		log:   slog.Default(),
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

// Init creates the command_log table if missing. Idempotent.
func (l *Logger) Init() error {
	_, err := l.db.Exec(`CREATE TABLE IF NOT EXISTS command_log (
		entry_id    TEXT PRIMARY KEY,
		timestamp   INTEGER NOT NULL,
		command     TEXT NOT NULL,
		parameters  TEXT,
		result      TEXT,
		error       TEXT,
		duration_ms INTEGER NOT NULL DEFAULT 0,
		status      TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_command_log_ts ON command_log(timestamp);
	CREATE INDEX IF NOT EXISTS idx_command_log_cmd ON command_log(command);`)
	if err != nil {
		return fmt.Errorf("audit: init schema: %w", err)
	}
	return nil
}

// Record builds an Entry from a dispatched command. Params and result
// are marshalled to JSON; marshal failures leave the field empty.
func (l *Logger) Record(command string, params, result any, cmdErr error, duration time.Duration) *Entry {
	e := &Entry{
		EntryID:    l.newID(),
		Timestamp:  time.Now(),
		Command:    command,
		DurationMs: duration.Milliseconds(),
	}
	if params != nil {
		if b, err := json.Marshal(params); err == nil {
			e.Parameters = string(b)
		}
	}
	if cmdErr != nil {
		e.Status = "error"
		e.Error = cmdErr.Error()
	} else {
		e.Status = "success"
		if result != nil {
			if b, err := json.Marshal(result); err == nil {
				e.Result = string(b)
			}
		}
	}
	return e
}

// Log inserts an entry synchronously.
func (l *Logger) Log(ctx context.Context, e *Entry) error {
	l.fillDefaults(e)
	return l.insert(ctx, e)
}

// LogAsync queues an entry. Falls back to a synchronous insert when the
// buffer is full.
func (l *Logger) LogAsync(e *Entry) {
	l.fillDefaults(e)
	select {
	case l.ch <- e:
	default:
		l.log.Warn("audit: buffer full, sync fallback", "command", e.Command)
		if err := l.insert(context.Background(), e); err != nil {
			l.log.Error("audit: sync fallback failed", "error", err)
		}
	}
}

// Recent returns the newest entries, most recent first.
func (l *Logger) Recent(ctx context.Context, limit int) ([]*Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := l.db.QueryContext(ctx, `SELECT entry_id, timestamp, command,
		parameters, result, error, duration_ms, status
		FROM command_log ORDER BY timestamp DESC, entry_id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("audit: query: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		var e Entry
		var ts int64
		if err := rows.Scan(&e.EntryID, &ts, &e.Command, &e.Parameters,
			&e.Result, &e.Error, &e.DurationMs, &e.Status); err != nil {
			return nil, fmt.Errorf("audit: scan: %w", err)
		}
		e.Timestamp = time.UnixMilli(ts)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// Close drains the buffer and stops the flush loop.
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
		e.Status = "success"
	}
}

func (l *Logger) insert(ctx context.Context, e *Entry) error {
	_, err := l.db.ExecContext(ctx, `INSERT INTO command_log
		(entry_id, timestamp, command, parameters, result, error, duration_ms, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.EntryID, e.Timestamp.UnixMilli(), e.Command, e.Parameters,
		e.Result, e.Error, e.DurationMs, e.Status)
	if err != nil {
		return fmt.Errorf("audit: insert: %w", err)
	}
	return nil
}

func (l *Logger) flushLoop() {
	defer close(l.done)
	for {
		select {
		case e := <-l.ch:
			if err := l.insert(context.Background(), e); err != nil {
				l.log.Error("audit: async insert failed", "error", err)
			}
		case <-l.stop:
			for {
				select {
				case e := <-l.ch:
					if err := l.insert(context.Background(), e); err != nil {
						l.log.Error("audit: drain insert failed", "error", err)
					}
				default:
					return
				}
			}
		}
	}
}
