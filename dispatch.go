package domdrive

import (
	"context"
	"encoding/json"
	"fmt"
)

// Commands returns the names of every command Dispatch accepts, in a
// stable order.
func Commands() []string {
	return []string{
		"browser_navigate",
		"browser_snapshot",
		"browser_click",
		"browser_input",
		"browser_get_text",
		"browser_get_markdown",
		"browser_get_links",
		"browser_screenshot",
		"browser_pdf",
		"browser_evaluate",
		"browser_wait",
		"browser_new_tab",
		"browser_tabs",
		"browser_switch_tab",
		"browser_close_tab",
		"browser_back",
		"browser_forward",
	}
}

// Dispatch routes a command by name, decoding raw into the command's
// parameter type. Unknown commands and malformed parameters come back
// as failure envelopes, never as transport errors.
func (s *Service) Dispatch(ctx context.Context, command string, raw json.RawMessage) Result {
	switch command {
	case "browser_navigate":
		return dispatchTyped(ctx, raw, s.Navigate)
	case "browser_snapshot":
		return dispatchTyped(ctx, raw, s.Snapshot)
	case "browser_click":
		return dispatchTyped(ctx, raw, s.Click)
	case "browser_input":
		return dispatchTyped(ctx, raw, s.Input)
	case "browser_get_text":
		return dispatchTyped(ctx, raw, s.GetText)
	case "browser_get_markdown":
		return s.GetMarkdown(ctx)
	case "browser_get_links":
		return s.GetLinks(ctx)
	case "browser_screenshot":
		return dispatchTyped(ctx, raw, s.Screenshot)
	case "browser_pdf":
		return s.PDF(ctx)
	case "browser_evaluate":
		return dispatchTyped(ctx, raw, s.Evaluate)
	case "browser_wait":
		return dispatchTyped(ctx, raw, s.Wait)
	case "browser_new_tab":
		return dispatchTyped(ctx, raw, s.NewTab)
	case "browser_tabs":
		return s.Tabs(ctx)
	case "browser_switch_tab":
		return dispatchTyped(ctx, raw, s.SwitchTab)
	case "browser_close_tab":
		return s.CloseTab(ctx)
	case "browser_back":
		return s.Back(ctx)
	case "browser_forward":
		return s.Forward(ctx)
	default:
		return failure(fmt.Errorf("unknown command: %s", command))
	}
}

func dispatchTyped[P any](ctx context.Context, raw json.RawMessage, fn func(context.Context, P) Result) Result {
	var params P
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &params); err != nil {
			return failure(fmt.Errorf("invalid parameters: %w", err))
		}
	}
	return fn(ctx, params)
}
