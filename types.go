package domdrive

// Result is the uniform envelope every command returns. Failures set
// Error and leave Data nil; the process never dies on a single
// command's failure.
type Result struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data,omitempty"`
	Error   string         `json:"error,omitempty"`
}

func success(data map[string]any) Result {
	return Result{Success: true, Data: data}
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}

// Target identifies the element a command acts on: a raw CSS selector
// or a snapshot index, never both.
type Target struct {
	Selector *string `json:"selector,omitempty"`
	Index    *int    `json:"index,omitempty"`
}

// TabInfo describes one open tab in a browser_tabs listing.
type TabInfo struct {
	Index  int    `json:"index"`
	URL    string `json:"url"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
}

// Command parameter schemas. Element-targeting commands embed Target.

// NavigateParams configures browser_navigate.
type NavigateParams struct {
	URL         string `json:"url"`
	WaitForLoad *bool  `json:"wait_for_load,omitempty"` // default true
}

// SnapshotParams configures browser_snapshot.
type SnapshotParams struct {
	Simplify *bool `json:"simplify,omitempty"` // default true
}

// ClickParams configures browser_click.
type ClickParams struct {
	Target
}

// InputParams configures browser_input.
type InputParams struct {
	Target
	Text  string `json:"text"`
	Clear bool   `json:"clear,omitempty"`
}

// GetTextParams configures browser_get_text.
type GetTextParams struct {
	Target
}

// ScreenshotParams configures browser_screenshot.
type ScreenshotParams struct {
	FullPage bool `json:"full_page,omitempty"`
}

// EvaluateParams configures browser_evaluate.
type EvaluateParams struct {
	Script string `json:"script"`
}

// WaitParams configures browser_wait.
type WaitParams struct {
	DurationMs int64 `json:"duration_ms"`
}

// NewTabParams configures browser_new_tab.
type NewTabParams struct {
	URL string `json:"url"`
}

// SwitchTabParams configures browser_switch_tab.
type SwitchTabParams struct {
	Index int `json:"index"`
}
