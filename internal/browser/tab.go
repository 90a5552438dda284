package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// ErrTab marks tab create/activate/close failures.
var ErrTab = errors.New("browser: tab operation failed")

// NewTab creates a tab, navigates it to the URL, waits for load, and
// brings it to the front. Stealth patches are applied when configured.
func (m *Manager) NewTab(ctx context.Context, pageURL string) (*rod.Page, error) {
	b := m.Browser()
	if b == nil {
		return nil, fmt.Errorf("%w: no active browser", ErrTab)
	}

	var page *rod.Page
	var err error
	if m.cfg.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create: %v", ErrTab, err)
	}

	if err := page.Context(ctx).Navigate(pageURL); err != nil {
		page.Close()
		return nil, fmt.Errorf("browser: navigate %s: %w", pageURL, err)
	}
	if err := page.Context(ctx).WaitLoad(); err != nil {
		m.cfg.Logger.Warn("browser: wait load", "url", pageURL, "error", err)
	}

	if _, err := page.Activate(); err != nil {
		return nil, fmt.Errorf("%w: activate: %v", ErrTab, err)
	}
	return page, nil
}
