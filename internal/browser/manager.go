// Package browser manages the Chrome session behind domdrive: launch or
// remote attach via Rod, tab creation with stealth, page enumeration,
// and active-page resolution.
package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// ErrLaunch and ErrConnect distinguish a failed local launch from a
// failed remote attach.
var (
	ErrLaunch  = errors.New("browser: launch failed")
	ErrConnect = errors.New("browser: connection failed")
)

// Config configures the browser manager.
type Config struct {
	// RemoteURL is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	RemoteURL string

	// Headless controls the local launch mode. Ignored for remote.
	Headless bool

	// ExecutablePath overrides the Chrome binary for local launches.
	ExecutablePath string

	// UserDataDir is a persistent profile directory for local launches.
	UserDataDir string

	// WindowWidth and WindowHeight set the initial window size.
	WindowWidth  int
	WindowHeight int

	// NoSandbox disables the Chrome sandbox (containers).
	NoSandbox bool

	// Stealth applies anti-detection patches on new tabs.
	Stealth bool

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.WindowWidth <= 0 {
		c.WindowWidth = 1280
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = 800
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Manager owns one Chrome instance per process. The mutex guards the
// browser handle and page enumeration; open pages are externally
// mutable (engine-driven navigation may spawn tabs asynchronously).
type Manager struct {
	cfg     Config
	mu      sync.Mutex
	browser *rod.Browser
	lnch    *launcher.Launcher
	closed  bool
}

// NewManager creates a Manager. Call Start to launch or attach.
func NewManager(cfg Config) *Manager {
	cfg.defaults()
	return &Manager{cfg: cfg}
}

// Start launches a local Chrome or connects to a remote instance.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return fmt.Errorf("%w: manager is closed", ErrLaunch)
	}
	if m.browser != nil {
		return nil
	}

	log := m.cfg.Logger

	var wsURL string
	if m.cfg.RemoteURL != "" {
		wsURL = m.cfg.RemoteURL
		log.Info("browser: connecting to remote", "url", wsURL)
	} else {
		l := launcher.New().Headless(m.cfg.Headless)
		if m.cfg.ExecutablePath != "" {
			l = l.Bin(m.cfg.ExecutablePath)
		}
		if m.cfg.UserDataDir != "" {
			l = l.UserDataDir(m.cfg.UserDataDir)
		}
		if m.cfg.NoSandbox {
			l = l.NoSandbox(true)
		}
		l = l.Set("window-size", fmt.Sprintf("%d,%d", m.cfg.WindowWidth, m.cfg.WindowHeight))
		l = l.Set("disable-blink-features", "AutomationControlled")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrLaunch, err)
		}
		wsURL = u
		m.lnch = l
		log.Info("browser: launched local chrome", "headless", m.cfg.Headless)
	}

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if m.cfg.RemoteURL != "" {
			return fmt.Errorf("%w: %v", ErrConnect, err)
		}
		return fmt.Errorf("%w: connect: %v", ErrLaunch, err)
	}

	if err := b.IgnoreCertErrors(true); err != nil {
		log.Warn("browser: ignore cert errors failed", "error", err)
	}

	m.browser = b
	return nil
}

// Browser returns the current Rod browser handle. Thread-safe.
func (m *Manager) Browser() *rod.Browser {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.browser
}

// Pages enumerates the open pages. The snapshot is taken under the
// manager lock; the set can change the moment the lock is released.
func (m *Manager) Pages() (rod.Pages, error) {
	m.mu.Lock()
	b := m.browser
	m.mu.Unlock()

	if b == nil {
		return nil, fmt.Errorf("%w: no active browser", ErrConnect)
	}
	pages, err := b.Pages()
	if err != nil {
		return nil, fmt.Errorf("browser: enumerate pages: %w", err)
	}
	return pages, nil
}

// CloseAll closes every open tab, best-effort: per-tab errors are
// logged and skipped so teardown always runs to completion.
func (m *Manager) CloseAll() {
	pages, err := m.Pages()
	if err != nil {
		return
	}
	for _, p := range pages {
		if cerr := p.Close(); cerr != nil {
			m.cfg.Logger.Debug("browser: close tab", "error", cerr)
		}
	}
}

// Close shuts down Chrome and releases the launcher.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	if m.browser != nil {
		m.browser.Close()
		m.browser = nil
	}
	if m.lnch != nil {
		m.lnch.Cleanup()
		m.lnch = nil
	}
	return nil
}
