package dom

import (
	"encoding/json"
	"sort"
	"strconv"
)

// textPreviewLimit is the maximum number of runes kept in a selector's
// text preview before an ellipsis is appended.
const textPreviewLimit = 50

// ElementSelector carries everything needed to re-find one element in
// the live page. CSS is always present; the rest is advisory.
type ElementSelector struct {
	CSS     string `json:"css_selector"`
	XPath   string `json:"xpath,omitempty"`
	TagName string `json:"tag_name"`
	ID      string `json:"id,omitempty"`
	Text    string `json:"text,omitempty"`
}

// TruncateText shortens s to the preview limit, rune-safe, appending
// "..." when the source exceeds it.
func TruncateText(s string) string {
	runes := []rune(s)
	if len(runes) <= textPreviewLimit {
		return s
	}
	return string(runes[:textPreviewLimit]) + "..."
}

// SelectorMap is an insertion-ordered mapping from a monotonically
// increasing index to an ElementSelector. Indices start at 0 on a fresh
// map and are never reused or renumbered within one map lifetime;
// Clear resets the counter because a cleared map is a fresh registry.
//
// Lookups by selector or id are linear scans. Maps are bounded by one
// page's interactive-element count, so this is fine.
type SelectorMap struct {
	entries map[int]ElementSelector
	order   []int
	next    int
}

// NewSelectorMap creates an empty SelectorMap.
func NewSelectorMap() *SelectorMap {
	return &SelectorMap{entries: make(map[int]ElementSelector)}
}

// Register stores the selector and returns its assigned index.
func (m *SelectorMap) Register(sel ElementSelector) int {
	idx := m.next
	m.entries[idx] = sel
	m.order = append(m.order, idx)
	m.next++
	return idx
}

// Get returns the selector for an index; the second result reports
// presence.
func (m *SelectorMap) Get(idx int) (ElementSelector, bool) {
	sel, ok := m.entries[idx]
	return sel, ok
}

// Contains reports whether an index is registered.
func (m *SelectorMap) Contains(idx int) bool {
	_, ok := m.entries[idx]
	return ok
}

// Remove deletes an entry. Remaining indices keep their values.
func (m *SelectorMap) Remove(idx int) bool {
	if _, ok := m.entries[idx]; !ok {
		return false
	}
	delete(m.entries, idx)
	for i, o := range m.order {
		if o == idx {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Update replaces the selector at an existing index.
func (m *SelectorMap) Update(idx int, sel ElementSelector) bool {
	if _, ok := m.entries[idx]; !ok {
		return false
	}
	m.entries[idx] = sel
	return true
}

// Len returns the number of registered selectors.
func (m *SelectorMap) Len() int {
	return len(m.entries)
}

// Clear removes all entries and resets the index counter to 0.
func (m *SelectorMap) Clear() {
	m.entries = make(map[int]ElementSelector)
	m.order = m.order[:0]
	m.next = 0
}

// Indices returns all registered indices in registration order.
func (m *SelectorMap) Indices() []int {
	out := make([]int, len(m.order))
	copy(out, m.order)
	return out
}

// Selectors returns all selectors in registration order.
func (m *SelectorMap) Selectors() []ElementSelector {
	out := make([]ElementSelector, 0, len(m.order))
	for _, idx := range m.order {
		out = append(out, m.entries[idx])
	}
	return out
}

// FindByCSS returns the first index (in registration order) whose CSS
// selector equals the argument, or -1.
func (m *SelectorMap) FindByCSS(css string) int {
	for _, idx := range m.order {
		if m.entries[idx].CSS == css {
			return idx
		}
	}
	return -1
}

// FindByID returns the first index whose element id equals the
// argument, or -1.
func (m *SelectorMap) FindByID(id string) int {
	for _, idx := range m.order {
		if m.entries[idx].ID != "" && m.entries[idx].ID == id {
			return idx
		}
	}
	return -1
}

// MarshalJSON renders the map as an index-keyed JSON object with keys
// in ascending order, for debugging output.
func (m *SelectorMap) MarshalJSON() ([]byte, error) {
	keys := make([]int, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	obj := make(map[string]ElementSelector, len(keys))
	for _, k := range keys {
		obj[strconv.Itoa(k)] = m.entries[k]
	}
	return json.Marshal(obj)
}
