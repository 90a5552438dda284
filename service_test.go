package domdrive

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/domdrive/dom"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func snapshotService(t *testing.T) *Service {
	t.Helper()
	s := New(nil, testLogger())

	tree := dom.NewTree(dom.ElementNode{
		TagName: "body",
		Children: []dom.ElementNode{
			{TagName: "button", Attributes: map[string]string{"id": "go"}, IsVisible: true, IsInteractive: true},
			{TagName: "a", Attributes: map[string]string{"href": "/x"}, IsVisible: true, IsInteractive: true},
		},
	})
	tree.BuildSelectorMap()
	s.tree = tree
	return s
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }

func TestResolveTargetBothSet(t *testing.T) {
	s := snapshotService(t)
	_, _, err := s.resolveTarget(Target{Selector: strp("#go"), Index: intp(0)})
	if !errors.Is(err, ErrAmbiguousTarget) {
		t.Fatalf("err = %v, want ErrAmbiguousTarget", err)
	}
}

func TestResolveTargetNeitherSet(t *testing.T) {
	s := snapshotService(t)
	_, _, err := s.resolveTarget(Target{})
	if !errors.Is(err, ErrMissingTarget) {
		t.Fatalf("err = %v, want ErrMissingTarget", err)
	}
}

func TestResolveTargetSelector(t *testing.T) {
	s := snapshotService(t)
	css, method, err := s.resolveTarget(Target{Selector: strp("form > input")})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if css != "form > input" {
		t.Errorf("css = %q, want the selector passed through", css)
	}
	if method != "css" {
		t.Errorf("method = %q, want css", method)
	}
}

func TestResolveTargetIndex(t *testing.T) {
	s := snapshotService(t)
	css, method, err := s.resolveTarget(Target{Index: intp(0)})
	if err != nil {
		t.Fatalf("resolveTarget: %v", err)
	}
	if css != "#go" {
		t.Errorf("css = %q, want #go", css)
	}
	if method != "index" {
		t.Errorf("method = %q, want index", method)
	}
}

func TestResolveTargetIndexWithoutSnapshot(t *testing.T) {
	s := New(nil, testLogger())
	_, _, err := s.resolveTarget(Target{Index: intp(0)})
	if !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("err = %v, want ErrUnknownIndex", err)
	}
}

func TestResolveTargetStaleIndex(t *testing.T) {
	s := snapshotService(t)
	_, _, err := s.resolveTarget(Target{Index: intp(99)})
	if !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("err = %v, want ErrUnknownIndex", err)
	}
	if !strings.Contains(err.Error(), "99") {
		t.Errorf("error should name the index: %v", err)
	}
}

func TestInvalidateSnapshotKillsIndices(t *testing.T) {
	s := snapshotService(t)
	s.invalidateSnapshot()
	_, _, err := s.resolveTarget(Target{Index: intp(0)})
	if !errors.Is(err, ErrUnknownIndex) {
		t.Fatalf("err = %v, want ErrUnknownIndex after invalidation", err)
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	s := New(nil, testLogger())
	res := s.Dispatch(context.Background(), "browser_teleport", nil)
	if res.Success {
		t.Fatal("unknown command must fail")
	}
	if !strings.Contains(res.Error, "unknown command") {
		t.Errorf("error = %q, want unknown command", res.Error)
	}
}

func TestDispatchMalformedParams(t *testing.T) {
	s := New(nil, testLogger())
	res := s.Dispatch(context.Background(), "browser_click", json.RawMessage(`{"index":"three"}`))
	if res.Success {
		t.Fatal("malformed params must fail")
	}
	if !strings.Contains(res.Error, "invalid parameters") {
		t.Errorf("error = %q, want invalid parameters", res.Error)
	}
}

func TestDispatchKnowsEveryCommand(t *testing.T) {
	s := New(nil, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, cmd := range Commands() {
		res := s.Dispatch(ctx, cmd, json.RawMessage(`{}`))
		if strings.Contains(res.Error, "unknown command") {
			t.Errorf("%s: not routed", cmd)
		}
	}
}

func TestClickTargetValidationBeforeBrowser(t *testing.T) {
	// Target validation happens before any page access, so a stopped
	// session still reports the precise parameter error.
	s := New(nil, testLogger())
	res := s.Click(context.Background(), ClickParams{Target: Target{Selector: strp("#a"), Index: intp(1)}})
	if res.Success {
		t.Fatal("ambiguous target must fail")
	}
	if !strings.Contains(res.Error, ErrAmbiguousTarget.Error()) {
		t.Errorf("error = %q, want ambiguous target", res.Error)
	}
}

func TestWaitClampsToConfiguredMax(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Limits.MaxWait = 30 * time.Millisecond
	s := New(cfg, testLogger())

	start := time.Now()
	res := s.Wait(context.Background(), WaitParams{DurationMs: 5000})
	if !res.Success {
		t.Fatalf("wait failed: %s", res.Error)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("wait was not clamped: %v", elapsed)
	}
	if got := res.Data["waited_ms"]; got != int64(30) {
		t.Errorf("waited_ms = %v, want 30", got)
	}
}

func TestWaitNegativeDuration(t *testing.T) {
	s := New(nil, testLogger())
	res := s.Wait(context.Background(), WaitParams{DurationMs: -100})
	if !res.Success {
		t.Fatalf("wait failed: %s", res.Error)
	}
	if got := res.Data["waited_ms"]; got != int64(0) {
		t.Errorf("waited_ms = %v, want 0", got)
	}
}

func TestWaitCancelled(t *testing.T) {
	s := New(nil, testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := s.Wait(ctx, WaitParams{DurationMs: 10_000})
	if res.Success {
		t.Fatal("cancelled wait must fail")
	}
}

func TestTargetParamsDecode(t *testing.T) {
	var p InputParams
	if err := json.Unmarshal([]byte(`{"selector":"#q","text":"hello","clear":true}`), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Selector == nil || *p.Selector != "#q" {
		t.Errorf("selector not decoded: %+v", p)
	}
	if p.Index != nil {
		t.Errorf("index should stay nil")
	}
	if p.Text != "hello" || !p.Clear {
		t.Errorf("fields not decoded: %+v", p)
	}
}

func TestEnvelopeShapes(t *testing.T) {
	ok := success(map[string]any{"n": 1})
	if !ok.Success || ok.Error != "" || ok.Data["n"] != 1 {
		t.Errorf("success envelope: %+v", ok)
	}
	bad := failure(errors.New("boom"))
	if bad.Success || bad.Error != "boom" {
		t.Errorf("failure envelope: %+v", bad)
	}
}
