// Package domdrive drives a live browser for an external controller:
// it extracts indexed DOM snapshots, resolves the active tab, and
// dispatches logical commands (click, type, read) against it, returning
// a uniform result envelope per command.
//
// One Service owns one browser session. Every command, including tab
// creation, goes through the same serialized dispatch path; there is no
// secondary handle that bypasses it. A navigation invalidates the
// current snapshot and all its indices.
package domdrive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/domdrive/audit"
	"github.com/hazyhaar/domdrive/dom"
	"github.com/hazyhaar/domdrive/internal/browser"
)

// Service is the automation session owner. Create one per process with
// New, then Start it before dispatching commands.
type Service struct {
	cfg    *Config
	logger *slog.Logger
	mgr    *browser.Manager
	aud    *audit.Logger
	audDB  *sql.DB

	// mu serializes commands end to end. The surface is designed for
	// one in-flight command at a time; snapshot and registry are only
	// touched under this lock.
	mu   sync.Mutex
	tree *dom.Tree
}

// New creates a Service from configuration.
func New(cfg *Config, logger *slog.Logger) *Service {
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	mgr := browser.NewManager(browser.Config{
		RemoteURL:      cfg.Browser.Remote,
		Headless:       !cfg.Browser.Headed,
		ExecutablePath: cfg.Browser.ExecutablePath,
		UserDataDir:    cfg.Browser.UserDataDir,
		WindowWidth:    cfg.Browser.WindowWidth,
		WindowHeight:   cfg.Browser.WindowHeight,
		NoSandbox:      cfg.Browser.NoSandbox,
		Stealth:        cfg.Browser.Stealth,
		Logger:         logger.With("component", "browser"),
	})

	return &Service{cfg: cfg, logger: logger, mgr: mgr}
}

// Start launches (or attaches) the browser, opens an initial blank tab,
// and initialises the audit trail when configured.
func (s *Service) Start(ctx context.Context) error {
	if err := s.mgr.Start(ctx); err != nil {
		return err
	}

	// One tab must exist for active-page resolution to succeed.
	if _, err := s.mgr.NewTab(ctx, "about:blank"); err != nil {
		return fmt.Errorf("domdrive: initial tab: %w", err)
	}

	if s.cfg.Audit.Path != "" {
		db, err := sql.Open("sqlite", s.cfg.Audit.Path)
		if err != nil {
			return fmt.Errorf("domdrive: open audit db: %w", err)
		}
		db.Exec("PRAGMA journal_mode=WAL")
		aud := audit.New(db, s.cfg.Audit.Buffer, audit.WithLogger(s.logger))
		if err := aud.Init(); err != nil {
			db.Close()
			return err
		}
		s.aud = aud
		s.audDB = db
	}

	return nil
}

// Close tears the session down: best-effort tab closes, then the
// browser, then the audit trail.
func (s *Service) Close() error {
	s.mgr.CloseAll()
	err := s.mgr.Close()
	if s.aud != nil {
		s.aud.Close()
		s.audDB.Close()
	}
	return err
}

// Audit returns the audit logger, or nil when auditing is disabled.
func (s *Service) Audit() *audit.Logger {
	return s.aud
}

// execute runs one command under the session lock, times it, audits it,
// and wraps the outcome in the envelope.
func (s *Service) execute(ctx context.Context, command string, params any, fn func(ctx context.Context) (map[string]any, error)) Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	data, err := fn(ctx)
	if s.aud != nil {
		s.aud.LogAsync(s.aud.Record(command, params, data, err, time.Since(start)))
	}
	if err != nil {
		s.logger.Warn("command failed", "command", command, "error", err)
		return failure(err)
	}
	s.logger.Debug("command ok", "command", command, "duration", time.Since(start))
	return success(data)
}

// activePage resolves the page the command targets. Resolution re-scans
// all open pages fresh on every call.
func (s *Service) activePage(ctx context.Context) (*rod.Page, error) {
	return s.mgr.ActivePage(ctx)
}

// resolveTarget turns command params into a concrete CSS locator and
// the resolution method used ("css" or "index").
func (s *Service) resolveTarget(t Target) (css, method string, err error) {
	switch {
	case t.Selector != nil && t.Index != nil:
		return "", "", ErrAmbiguousTarget
	case t.Selector == nil && t.Index == nil:
		return "", "", ErrMissingTarget
	case t.Selector != nil:
		return *t.Selector, "css", nil
	}

	if s.tree == nil {
		return "", "", fmt.Errorf("%w: no snapshot extracted yet", ErrUnknownIndex)
	}
	sel, ok := s.tree.GetSelector(*t.Index)
	if !ok {
		return "", "", fmt.Errorf("%w: %d (snapshot is stale; extract again)", ErrUnknownIndex, *t.Index)
	}
	return sel.CSS, "index", nil
}

// findElement locates one element on the page. Rod blocks until the
// element appears or the engine's own timeout fires; we surface that
// failure verbatim.
func findElement(ctx context.Context, page *rod.Page, css string) (*rod.Element, error) {
	el, err := page.Context(ctx).Element(css)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrElementNotFound, css, err)
	}
	return el, nil
}

// invalidateSnapshot drops the current tree. Every index dies with it.
func (s *Service) invalidateSnapshot() {
	s.tree = nil
}

// Tree returns the most recent snapshot, or nil. Test hook and debug
// surface; commands go through Dispatch.
func (s *Service) Tree() *dom.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree
}
