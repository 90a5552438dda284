package browser

import (
	"context"
	"errors"

	"github.com/go-rod/rod"
)

// ErrNoActivePage is returned when no open page qualifies as the
// user-visible target.
var ErrNoActivePage = errors.New("browser: no active page")

// Probe is one page's self-reported state.
type Probe struct {
	Visible bool
	Focused bool
}

// probeFunc evaluates a page's visibility/focus. Split out so the
// selection policy is testable without a live browser.
type probeFunc func(ctx context.Context, p *rod.Page) (Probe, error)

// ActivePage resolves the page the next action should target. Two-pass
// policy, strongest signal first: pass 1 takes the first page that is
// both visible and focused; pass 2 falls back to the first visible
// page, because headless environments often report no OS-level focus
// at all. Pages whose evaluation fails (crashed, detached) are skipped.
func (m *Manager) ActivePage(ctx context.Context) (*rod.Page, error) {
	pages, err := m.Pages()
	if err != nil {
		return nil, err
	}
	return selectActive(ctx, pages, probePage)
}

func selectActive(ctx context.Context, pages rod.Pages, probe probeFunc) (*rod.Page, error) {
	probes := make([]Probe, len(pages))
	ok := make([]bool, len(pages))
	for i, p := range pages {
		pr, err := probe(ctx, p)
		if err != nil {
			continue
		}
		probes[i] = pr
		ok[i] = true
	}

	for i := range pages {
		if ok[i] && probes[i].Visible && probes[i].Focused {
			return pages[i], nil
		}
	}
	for i := range pages {
		if ok[i] && probes[i].Visible {
			return pages[i], nil
		}
	}
	return nil, ErrNoActivePage
}

func probePage(ctx context.Context, p *rod.Page) (Probe, error) {
	res, err := p.Context(ctx).Eval(`() => ({
		visible: document.visibilityState === 'visible',
		focused: document.hasFocus(),
	})`)
	if err != nil {
		return Probe{}, err
	}
	return Probe{
		Visible: res.Value.Get("visible").Bool(),
		Focused: res.Value.Get("focused").Bool(),
	}, nil
}
