package domdrive

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod/lib/proto"

	"github.com/hazyhaar/domdrive/dom"
)

// Navigate normalizes the URL and navigates the active page to it. The
// current snapshot is invalidated: indices never survive a navigation.
func (s *Service) Navigate(ctx context.Context, p NavigateParams) Result {
	return s.execute(ctx, "browser_navigate", p, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}

		normalized := NormalizeURL(p.URL)
		if err := page.Context(ctx).Navigate(normalized); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrNavigationFailed, normalized, err)
		}

		waited := p.WaitForLoad == nil || *p.WaitForLoad
		if waited {
			if err := page.Context(ctx).WaitLoad(); err != nil {
				return nil, fmt.Errorf("%w: %s did not finish loading: %v", ErrNavigationFailed, normalized, err)
			}
		}

		s.invalidateSnapshot()
		return map[string]any{
			"original_url":   p.URL,
			"normalized_url": normalized,
			"waited":         waited,
		}, nil
	})
}

// Snapshot extracts a fresh DOM tree from the active page, optionally
// simplified, and makes it the current snapshot. The returned summary
// lists every indexed element for the controller to target.
func (s *Service) Snapshot(ctx context.Context, p SnapshotParams) Result {
	return s.execute(ctx, "browser_snapshot", p, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}

		tree, err := dom.FromPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if p.Simplify == nil || *p.Simplify {
			tree.Simplify()
		}
		s.tree = tree

		info, _ := page.Context(ctx).Info()
		data := map[string]any{
			"element_count":     tree.CountElements(),
			"interactive_count": tree.CountInteractive(),
			"elements":          tree.Summary(),
		}
		if info != nil {
			data["url"] = info.URL
		}
		return data, nil
	})
}

// Click resolves the target to a concrete locator and clicks it on the
// active page.
func (s *Service) Click(ctx context.Context, p ClickParams) Result {
	return s.execute(ctx, "browser_click", p, func(ctx context.Context) (map[string]any, error) {
		css, method, err := s.resolveTarget(p.Target)
		if err != nil {
			return nil, err
		}
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		el, err := findElement(ctx, page, css)
		if err != nil {
			return nil, err
		}
		if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
			return nil, actionErr("browser_click", err)
		}

		data := map[string]any{"selector": css, "method": method}
		if p.Index != nil {
			data["index"] = *p.Index
		}
		return data, nil
	})
}

// Input types text into the target element, optionally clearing the
// existing content first.
func (s *Service) Input(ctx context.Context, p InputParams) Result {
	return s.execute(ctx, "browser_input", p, func(ctx context.Context) (map[string]any, error) {
		css, method, err := s.resolveTarget(p.Target)
		if err != nil {
			return nil, err
		}
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		el, err := findElement(ctx, page, css)
		if err != nil {
			return nil, err
		}

		if p.Clear {
			// Select-all so the typed text replaces the current value.
			if err := el.SelectAllText(); err != nil {
				return nil, actionErr("browser_input", err)
			}
		}
		if err := el.Input(p.Text); err != nil {
			return nil, actionErr("browser_input", err)
		}

		data := map[string]any{
			"selector":    css,
			"method":      method,
			"text_length": len(p.Text),
		}
		if p.Index != nil {
			data["index"] = *p.Index
		}
		return data, nil
	})
}

// GetText returns the visible text of the target element, or of the
// whole page when no target is given.
func (s *Service) GetText(ctx context.Context, p GetTextParams) Result {
	return s.execute(ctx, "browser_get_text", p, func(ctx context.Context) (map[string]any, error) {
		css, method := "body", "page"
		if p.Selector != nil || p.Index != nil {
			var err error
			css, method, err = s.resolveTarget(p.Target)
			if err != nil {
				return nil, err
			}
		}
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		el, err := findElement(ctx, page, css)
		if err != nil {
			return nil, err
		}
		text, err := el.Text()
		if err != nil {
			return nil, actionErr("browser_get_text", err)
		}
		return map[string]any{"selector": css, "method": method, "text": text}, nil
	})
}

// Evaluate runs a script in the active page. The script is evaluated as
// an expression sequence, like a devtools console entry.
func (s *Service) Evaluate(ctx context.Context, p EvaluateParams) Result {
	return s.execute(ctx, "browser_evaluate", p, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		res, err := page.Context(ctx).Eval(wrapScript(p.Script))
		if err != nil {
			return nil, actionErr("browser_evaluate", err)
		}
		return map[string]any{"result": res.Value.Val()}, nil
	})
}

// Wait pauses for the requested duration, capped by config.
func (s *Service) Wait(ctx context.Context, p WaitParams) Result {
	return s.execute(ctx, "browser_wait", p, func(ctx context.Context) (map[string]any, error) {
		d := time.Duration(p.DurationMs) * time.Millisecond
		if d < 0 {
			d = 0
		}
		if d > s.cfg.Limits.MaxWait {
			d = s.cfg.Limits.MaxWait
		}
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return map[string]any{"waited_ms": d.Milliseconds()}, nil
	})
}

// NewTab opens a tab on the normalized URL, waits for it, and brings it
// to the front. Serialized like every other command, so it cannot race
// a concurrent active-page resolution. The snapshot is invalidated: the
// active page changes.
func (s *Service) NewTab(ctx context.Context, p NewTabParams) Result {
	return s.execute(ctx, "browser_new_tab", p, func(ctx context.Context) (map[string]any, error) {
		normalized := NormalizeURL(p.URL)
		if _, err := s.mgr.NewTab(ctx, normalized); err != nil {
			return nil, err
		}
		s.invalidateSnapshot()
		return map[string]any{
			"original_url":   p.URL,
			"normalized_url": normalized,
		}, nil
	})
}

// Tabs lists all open tabs in enumeration order and marks the one the
// resolver currently considers active.
func (s *Service) Tabs(ctx context.Context) Result {
	return s.execute(ctx, "browser_tabs", nil, func(ctx context.Context) (map[string]any, error) {
		pages, err := s.mgr.Pages()
		if err != nil {
			return nil, err
		}
		// Page handles are rebuilt on every enumeration, so the active
		// page is matched by target id, not by pointer.
		var activeID proto.TargetTargetID
		if active, aerr := s.activePage(ctx); aerr == nil {
			activeID = active.TargetID
		}

		tabs := make([]TabInfo, 0, len(pages))
		for i, page := range pages {
			tab := TabInfo{Index: i, Active: page.TargetID == activeID && activeID != ""}
			if info, ierr := page.Context(ctx).Info(); ierr == nil {
				tab.URL = info.URL
				tab.Title = info.Title
			}
			tabs = append(tabs, tab)
		}
		return map[string]any{"tabs": tabs, "count": len(tabs)}, nil
	})
}

// SwitchTab activates the tab at the given enumeration index.
func (s *Service) SwitchTab(ctx context.Context, p SwitchTabParams) Result {
	return s.execute(ctx, "browser_switch_tab", p, func(ctx context.Context) (map[string]any, error) {
		pages, err := s.mgr.Pages()
		if err != nil {
			return nil, err
		}
		if p.Index < 0 || p.Index >= len(pages) {
			return nil, fmt.Errorf("%w: tab index %d out of range (%d tabs)", ErrTabOperationFailed, p.Index, len(pages))
		}
		if _, err := pages[p.Index].Activate(); err != nil {
			return nil, fmt.Errorf("%w: activate: %v", ErrTabOperationFailed, err)
		}
		s.invalidateSnapshot()
		return map[string]any{"index": p.Index}, nil
	})
}

// CloseTab closes the active tab and activates the first remaining one.
func (s *Service) CloseTab(ctx context.Context) Result {
	return s.execute(ctx, "browser_close_tab", nil, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		if err := page.Close(); err != nil {
			return nil, fmt.Errorf("%w: close: %v", ErrTabOperationFailed, err)
		}

		s.invalidateSnapshot()
		if pages, perr := s.mgr.Pages(); perr == nil && len(pages) > 0 {
			pages[0].Activate()
		}
		return map[string]any{"closed": true}, nil
	})
}

// Back moves one step back in the active page's history.
func (s *Service) Back(ctx context.Context) Result {
	return s.historyMove(ctx, "browser_back", func(p pageNav) error { return p.NavigateBack() })
}

// Forward moves one step forward in the active page's history.
func (s *Service) Forward(ctx context.Context) Result {
	return s.historyMove(ctx, "browser_forward", func(p pageNav) error { return p.NavigateForward() })
}

type pageNav interface {
	NavigateBack() error
	NavigateForward() error
}

func (s *Service) historyMove(ctx context.Context, command string, move func(pageNav) error) Result {
	return s.execute(ctx, command, nil, func(ctx context.Context) (map[string]any, error) {
		page, err := s.activePage(ctx)
		if err != nil {
			return nil, err
		}
		if err := move(page.Context(ctx)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNavigationFailed, err)
		}
		if err := page.Context(ctx).WaitLoad(); err != nil {
			s.logger.Debug("history move wait", "command", command, "error", err)
		}

		s.invalidateSnapshot()
		data := map[string]any{"moved": true}
		if info, ierr := page.Context(ctx).Info(); ierr == nil {
			data["url"] = info.URL
		}
		return data, nil
	})
}

// wrapScript turns an arbitrary script into the function form Rod
// evaluates, preserving expression semantics for console-style input.
func wrapScript(script string) string {
	return "() => eval(" + jsString(script) + ")"
}

func jsString(s string) string {
	// Go string quoting is a valid JS string literal for our purposes.
	return fmt.Sprintf("%q", s)
}
