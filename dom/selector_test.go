package dom

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSelectorMapRegister(t *testing.T) {
	m := NewSelectorMap()

	idx1 := m.Register(ElementSelector{CSS: "#btn1", TagName: "button"})
	idx2 := m.Register(ElementSelector{CSS: "#btn2", TagName: "button"})

	if idx1 != 0 || idx2 != 1 {
		t.Errorf("indices: got %d, %d, want 0, 1", idx1, idx2)
	}
	if m.Len() != 2 {
		t.Errorf("Len: got %d, want 2", m.Len())
	}
}

func TestSelectorMapGet(t *testing.T) {
	m := NewSelectorMap()
	idx := m.Register(ElementSelector{CSS: "#test", TagName: "div", ID: "test"})

	sel, ok := m.Get(idx)
	if !ok {
		t.Fatal("Get returned no selector")
	}
	if sel.CSS != "#test" || sel.ID != "test" {
		t.Errorf("Get: got %+v", sel)
	}

	if _, ok := m.Get(99); ok {
		t.Error("Get(99) should report absence")
	}
}

func TestSelectorMapRemoveKeepsIndices(t *testing.T) {
	m := NewSelectorMap()
	a := m.Register(ElementSelector{CSS: "#a", TagName: "div"})
	b := m.Register(ElementSelector{CSS: "#b", TagName: "div"})
	c := m.Register(ElementSelector{CSS: "#c", TagName: "div"})

	if !m.Remove(b) {
		t.Fatal("Remove(b) failed")
	}
	if m.Contains(b) {
		t.Error("removed index still present")
	}
	// No renumbering: a and c keep their indices, the counter moves on.
	if !m.Contains(a) || !m.Contains(c) {
		t.Error("surviving entries lost")
	}
	d := m.Register(ElementSelector{CSS: "#d", TagName: "div"})
	if d != 3 {
		t.Errorf("next index after remove: got %d, want 3", d)
	}
}

func TestSelectorMapClearResetsCounter(t *testing.T) {
	m := NewSelectorMap()
	m.Register(ElementSelector{CSS: "#one", TagName: "div"})
	m.Register(ElementSelector{CSS: "#two", TagName: "div"})

	m.Clear()

	if m.Len() != 0 {
		t.Errorf("Len after Clear: got %d, want 0", m.Len())
	}
	if idx := m.Register(ElementSelector{CSS: "#new", TagName: "div"}); idx != 0 {
		t.Errorf("index after Clear: got %d, want 0", idx)
	}
}

func TestSelectorMapFind(t *testing.T) {
	m := NewSelectorMap()
	idx1 := m.Register(ElementSelector{CSS: "#btn1", TagName: "button", ID: "btn1"})
	idx2 := m.Register(ElementSelector{CSS: "a.link", TagName: "a", ID: "link1"})

	if got := m.FindByCSS("#btn1"); got != idx1 {
		t.Errorf("FindByCSS: got %d, want %d", got, idx1)
	}
	if got := m.FindByID("link1"); got != idx2 {
		t.Errorf("FindByID: got %d, want %d", got, idx2)
	}
	if got := m.FindByCSS("#nope"); got != -1 {
		t.Errorf("FindByCSS miss: got %d, want -1", got)
	}
	if got := m.FindByID(""); got != -1 {
		t.Errorf("FindByID empty: got %d, want -1", got)
	}
}

func TestSelectorMapFindFirstInRegistrationOrder(t *testing.T) {
	m := NewSelectorMap()
	first := m.Register(ElementSelector{CSS: "div.dup", TagName: "div"})
	m.Register(ElementSelector{CSS: "div.dup", TagName: "div"})

	if got := m.FindByCSS("div.dup"); got != first {
		t.Errorf("FindByCSS duplicate: got %d, want %d", got, first)
	}
}

func TestSelectorMapOrder(t *testing.T) {
	m := NewSelectorMap()
	m.Register(ElementSelector{CSS: "#one", TagName: "div"})
	m.Register(ElementSelector{CSS: "#two", TagName: "div"})
	m.Register(ElementSelector{CSS: "#three", TagName: "div"})

	indices := m.Indices()
	if len(indices) != 3 || indices[0] != 0 || indices[1] != 1 || indices[2] != 2 {
		t.Errorf("Indices: got %v, want [0 1 2]", indices)
	}

	var css []string
	for _, s := range m.Selectors() {
		css = append(css, s.CSS)
	}
	want := []string{"#one", "#two", "#three"}
	for i := range want {
		if css[i] != want[i] {
			t.Errorf("Selectors[%d]: got %q, want %q", i, css[i], want[i])
		}
	}
}

func TestSelectorMapMarshalJSON(t *testing.T) {
	m := NewSelectorMap()
	m.Register(ElementSelector{CSS: "#btn", TagName: "button", Text: "Click"})
	m.Register(ElementSelector{CSS: "#link", TagName: "a", Text: "Visit"})

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"#btn", "#link", "Click", "Visit"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %q: %s", want, data)
		}
	}
}

func TestTruncateText(t *testing.T) {
	short := "Click me"
	if got := TruncateText(short); got != short {
		t.Errorf("short text changed: %q", got)
	}

	long := strings.Repeat("a", 80)
	got := TruncateText(long)
	if got != strings.Repeat("a", 50)+"..." {
		t.Errorf("long text: got %q", got)
	}

	// Exactly at the limit: unchanged, no ellipsis.
	exact := strings.Repeat("b", 50)
	if got := TruncateText(exact); got != exact {
		t.Errorf("exact-limit text changed: %q", got)
	}

	// Multi-byte codepoints must not be split.
	wide := strings.Repeat("日", 60)
	got = TruncateText(wide)
	if got != strings.Repeat("日", 50)+"..." {
		t.Errorf("rune truncation: got %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("missing ellipsis: %q", got)
	}
}
