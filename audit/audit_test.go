package audit

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	t.Cleanup(func() { db.Close() })
	return db
}

func setupLogger(t *testing.T) *Logger {
	t.Helper()
	l := New(setupTestDB(t), 16)
	if err := l.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func TestInit(t *testing.T) {
	db := setupTestDB(t)
	l := New(db, 16)
	defer l.Close()

	if err := l.Init(); err != nil {
		t.Fatal(err)
	}
	// Idempotent.
	if err := l.Init(); err != nil {
		t.Fatal(err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='command_log'").Scan(&count)
	if count != 1 {
		t.Fatal("command_log table not created")
	}
}

func TestLogSync(t *testing.T) {
	l := setupLogger(t)

	e := l.Record("browser_click", map[string]any{"index": 3}, map[string]any{"method": "index"}, nil, 42*time.Millisecond)
	if err := l.Log(context.Background(), e); err != nil {
		t.Fatal(err)
	}

	if e.EntryID == "" {
		t.Error("entry_id not generated")
	}
	if e.Status != "success" {
		t.Errorf("status: got %q, want success", e.Status)
	}

	entries, err := l.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	got := entries[0]
	if got.Command != "browser_click" {
		t.Errorf("command: got %q", got.Command)
	}
	if got.Parameters != `{"index":3}` {
		t.Errorf("parameters: got %q", got.Parameters)
	}
	if got.DurationMs != 42 {
		t.Errorf("duration: got %d", got.DurationMs)
	}
}

func TestRecordError(t *testing.T) {
	l := setupLogger(t)

	e := l.Record("browser_navigate", map[string]any{"url": "x"}, nil, errors.New("navigation failed"), time.Millisecond)
	if e.Status != "error" {
		t.Errorf("status: got %q, want error", e.Status)
	}
	if e.Error != "navigation failed" {
		t.Errorf("error: got %q", e.Error)
	}
	if e.Result != "" {
		t.Errorf("result on failure: got %q, want empty", e.Result)
	}
}

func TestLogAsyncDrainsOnClose(t *testing.T) {
	db := setupTestDB(t)
	l := New(db, 16)
	if err := l.Init(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 10; i++ {
		l.LogAsync(l.Record("browser_wait", nil, nil, nil, 0))
	}
	l.Close()

	var count int
	db.QueryRow("SELECT COUNT(*) FROM command_log").Scan(&count)
	if count != 10 {
		t.Errorf("entries after drain: got %d, want 10", count)
	}
}

func TestRecentOrder(t *testing.T) {
	l := setupLogger(t)

	for _, cmd := range []string{"first", "second", "third"} {
		e := l.Record(cmd, nil, nil, nil, 0)
		if err := l.Log(context.Background(), e); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	entries, err := l.Recent(context.Background(), 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}
	if entries[0].Command != "third" || entries[1].Command != "second" {
		t.Errorf("order: got %q, %q", entries[0].Command, entries[1].Command)
	}
}
