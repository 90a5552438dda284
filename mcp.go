package domdrive

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/domdrive/internal/kit"
)

// RegisterMCP registers every browser command as an MCP tool on the
// given server. Tool failures surface as tool-level errors on the
// result; the transport stays up.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerNavigateTool(srv)
	s.registerSnapshotTool(srv)
	s.registerClickTool(srv)
	s.registerInputTool(srv)
	s.registerGetTextTool(srv)
	s.registerGetMarkdownTool(srv)
	s.registerGetLinksTool(srv)
	s.registerScreenshotTool(srv)
	s.registerPDFTool(srv)
	s.registerEvaluateTool(srv)
	s.registerWaitTool(srv)
	s.registerNewTabTool(srv)
	s.registerTabsTool(srv)
	s.registerSwitchTabTool(srv)
	s.registerCloseTabTool(srv)
	s.registerBackTool(srv)
	s.registerForwardTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

// unwrap converts a command envelope into the (value, error) shape the
// tool layer expects: a failed envelope becomes a tool error.
func unwrap(res Result) (any, error) {
	if !res.Success {
		return nil, errors.New(res.Error)
	}
	return res.Data, nil
}

// registerTyped wires a parameterized command as an MCP tool.
func registerTyped[P any](srv *mcp.Server, tool *mcp.Tool, fn func(context.Context, P) Result) {
	endpoint := func(ctx context.Context, req any) (any, error) {
		return unwrap(fn(ctx, *req.(*P)))
	}
	decode := func(req *mcp.CallToolRequest) (any, error) {
		return kit.DecodeJSON[P](req)
	}
	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// registerBare wires a command that takes no parameters.
func registerBare(srv *mcp.Server, tool *mcp.Tool, fn func(context.Context) Result) {
	endpoint := func(ctx context.Context, _ any) (any, error) {
		return unwrap(fn(ctx))
	}
	decode := func(_ *mcp.CallToolRequest) (any, error) {
		return nil, nil
	}
	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- navigate ---

func (s *Service) registerNavigateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_navigate",
		Description: "Navigate the active tab to a URL. Bare domains and search-like input are normalized to a full URL.",
		InputSchema: inputSchema(map[string]any{
			"url":           map[string]any{"type": "string", "description": "URL or bare domain to open"},
			"wait_for_load": map[string]any{"type": "boolean", "description": "Wait for the load event (default true)"},
		}, []string{"url"}),
	}
	registerTyped(srv, tool, s.Navigate)
}

// --- snapshot ---

func (s *Service) registerSnapshotTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_snapshot",
		Description: "Extract an indexed snapshot of the active page's DOM. Interactive elements get stable numeric indices usable by click, input and get_text.",
		InputSchema: inputSchema(map[string]any{
			"simplify": map[string]any{"type": "boolean", "description": "Prune non-interactive, textless nodes (default true)"},
		}, nil),
	}
	registerTyped(srv, tool, s.Snapshot)
}

// --- click ---

func (s *Service) registerClickTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_click",
		Description: "Click an element, addressed by snapshot index or CSS selector (exactly one of the two).",
		InputSchema: inputSchema(map[string]any{
			"index":    map[string]any{"type": "integer", "description": "Element index from the latest snapshot"},
			"selector": map[string]any{"type": "string", "description": "CSS selector"},
		}, nil),
	}
	registerTyped(srv, tool, s.Click)
}

// --- input ---

func (s *Service) registerInputTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_input",
		Description: "Type text into an element, addressed by snapshot index or CSS selector.",
		InputSchema: inputSchema(map[string]any{
			"index":    map[string]any{"type": "integer", "description": "Element index from the latest snapshot"},
			"selector": map[string]any{"type": "string", "description": "CSS selector"},
			"text":     map[string]any{"type": "string", "description": "Text to type"},
			"clear":    map[string]any{"type": "boolean", "description": "Clear the field before typing"},
		}, []string{"text"}),
	}
	registerTyped(srv, tool, s.Input)
}

// --- get_text ---

func (s *Service) registerGetTextTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_get_text",
		Description: "Read the visible text of an element (by snapshot index or CSS selector), or of the whole page when no target is given.",
		InputSchema: inputSchema(map[string]any{
			"index":    map[string]any{"type": "integer", "description": "Element index from the latest snapshot"},
			"selector": map[string]any{"type": "string", "description": "CSS selector"},
		}, nil),
	}
	registerTyped(srv, tool, s.GetText)
}

// --- get_markdown ---

func (s *Service) registerGetMarkdownTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_get_markdown",
		Description: "Render the active page as markdown, with relative links resolved.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerBare(srv, tool, s.GetMarkdown)
}

// --- get_links ---

func (s *Service) registerGetLinksTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_get_links",
		Description: "List every link on the active page with its href and text.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerBare(srv, tool, s.GetLinks)
}

// --- screenshot ---

func (s *Service) registerScreenshotTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_screenshot",
		Description: "Capture the active page as a base64 PNG.",
		InputSchema: inputSchema(map[string]any{
			"full_page": map[string]any{"type": "boolean", "description": "Capture the full scrollable page"},
		}, nil),
	}
	registerTyped(srv, tool, s.Screenshot)
}

// --- pdf ---

func (s *Service) registerPDFTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_pdf",
		Description: "Print the active page to a base64 PDF.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerBare(srv, tool, s.PDF)
}

// --- evaluate ---

func (s *Service) registerEvaluateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_evaluate",
		Description: "Evaluate a JavaScript expression in the active page and return its value.",
		InputSchema: inputSchema(map[string]any{
			"script": map[string]any{"type": "string", "description": "JavaScript to evaluate"},
		}, []string{"script"}),
	}
	registerTyped(srv, tool, s.Evaluate)
}

// --- wait ---

func (s *Service) registerWaitTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_wait",
		Description: "Pause for a duration in milliseconds, capped by server configuration.",
		InputSchema: inputSchema(map[string]any{
			"duration_ms": map[string]any{"type": "integer", "description": "Milliseconds to wait"},
		}, []string{"duration_ms"}),
	}
	registerTyped(srv, tool, s.Wait)
}

// --- new_tab ---

func (s *Service) registerNewTabTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_new_tab",
		Description: "Open a new tab on a URL and bring it to the front.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "URL or bare domain to open"},
		}, []string{"url"}),
	}
	registerTyped(srv, tool, s.NewTab)
}

// --- tabs ---

func (s *Service) registerTabsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_tabs",
		Description: "List open tabs with URL, title and the active marker.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerBare(srv, tool, s.Tabs)
}

// --- switch_tab ---

func (s *Service) registerSwitchTabTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_switch_tab",
		Description: "Activate the tab at the given index from browser_tabs.",
		InputSchema: inputSchema(map[string]any{
			"index": map[string]any{"type": "integer", "description": "Tab index"},
		}, []string{"index"}),
	}
	registerTyped(srv, tool, s.SwitchTab)
}

// --- close_tab ---

func (s *Service) registerCloseTabTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_close_tab",
		Description: "Close the active tab.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerBare(srv, tool, s.CloseTab)
}

// --- back ---

func (s *Service) registerBackTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_back",
		Description: "Go back one step in the active tab's history.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerBare(srv, tool, s.Back)
}

// --- forward ---

func (s *Service) registerForwardTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "browser_forward",
		Description: "Go forward one step in the active tab's history.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}
	registerBare(srv, tool, s.Forward)
}
