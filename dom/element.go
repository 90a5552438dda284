// Package dom models the extracted page structure: element nodes with
// interactivity classification, a selector registry keyed by numeric
// index, and the snapshot tree that ties both together.
//
// A snapshot is one point-in-time extraction. Indices are only valid
// against the snapshot that produced them; navigation invalidates all
// of them and callers must extract again.
package dom

import (
	"strconv"
	"strings"
)

// interactiveTags are tags that are actionable by themselves.
var interactiveTags = map[string]bool{
	"button":   true,
	"a":        true,
	"input":    true,
	"select":   true,
	"textarea": true,
	"label":    true,
}

// interactiveRoles are ARIA roles that mark an element as actionable.
var interactiveRoles = map[string]bool{
	"button":   true,
	"link":     true,
	"tab":      true,
	"menuitem": true,
	"option":   true,
	"checkbox": true,
	"radio":    true,
	"switch":   true,
	"combobox": true,
}

// excludedTags are non-content nodes removed by Simplify.
var excludedTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
}

// ElementNode is one node of the extracted DOM tree. A parent owns its
// children exclusively; there are no back-references.
type ElementNode struct {
	TagName       string            `json:"tag_name"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	Text          string            `json:"text_content,omitempty"`
	Children      []ElementNode     `json:"children,omitempty"`
	Index         *int              `json:"index,omitempty"`
	IsVisible     bool              `json:"is_visible,omitempty"`
	IsInteractive bool              `json:"is_interactive,omitempty"`
	Box           *BoundingBox      `json:"bounding_box,omitempty"`
}

// BoundingBox holds viewport coordinates of an element.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Visible reports whether the box has positive area.
func (b BoundingBox) Visible() bool {
	return b.Width > 0 && b.Height > 0
}

// Area returns width times height.
func (b BoundingBox) Area() float64 {
	return b.Width * b.Height
}

// Attr returns an attribute value; the second result reports presence.
func (n *ElementNode) Attr(key string) (string, bool) {
	v, ok := n.Attributes[key]
	return v, ok
}

// ID returns the id attribute, or "".
func (n *ElementNode) ID() string {
	return n.Attributes["id"]
}

// IsTag reports whether the node has the given tag, case-insensitive.
func (n *ElementNode) IsTag(tag string) bool {
	return strings.EqualFold(n.TagName, tag)
}

// HasClass reports whether the class attribute contains the given class.
func (n *ElementNode) HasClass(class string) bool {
	for _, c := range strings.Fields(n.Attributes["class"]) {
		if c == class {
			return true
		}
	}
	return false
}

// FirstClass returns the first class name, or "".
func (n *ElementNode) FirstClass() string {
	fields := strings.Fields(n.Attributes["class"])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ClassifyInteractivity sets IsInteractive from a fixed precedence of
// signals, OR-combined: interactive tag, any on* event-handler attribute
// or role="button", or an ARIA interactive role. Any single signal
// suffices; there are no negative disqualifiers.
func (n *ElementNode) ClassifyInteractivity() {
	tag := strings.ToLower(n.TagName)
	if interactiveTags[tag] {
		n.IsInteractive = true
		return
	}
	for k := range n.Attributes {
		if strings.HasPrefix(strings.ToLower(k), "on") {
			n.IsInteractive = true
			return
		}
	}
	if role, ok := n.Attributes["role"]; ok && interactiveRoles[role] {
		n.IsInteractive = true
		return
	}
	n.IsInteractive = false
}

// Simplify removes script/style/noscript children recursively. It does
// not alter this node's tag, attributes or text, and running it on an
// already-simplified tree is a no-op. Callers must rebuild the selector
// map afterwards; indices on removed subtrees are gone.
func (n *ElementNode) Simplify() {
	kept := n.Children[:0]
	for i := range n.Children {
		if excludedTags[strings.ToLower(n.Children[i].TagName)] {
			continue
		}
		kept = append(kept, n.Children[i])
	}
	n.Children = kept
	for i := range n.Children {
		n.Children[i].Simplify()
	}
}

// SimpleString renders a compact single-line representation of the node,
// used in snapshot summaries shown to the controller.
func (n *ElementNode) SimpleString() string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(n.TagName)
	if id := n.ID(); id != "" {
		b.WriteString(` id="` + id + `"`)
	}
	if class, ok := n.Attributes["class"]; ok && class != "" {
		b.WriteString(` class="` + class + `"`)
	}
	if n.Index != nil {
		b.WriteString(` data-index="` + strconv.Itoa(*n.Index) + `"`)
	}
	b.WriteString(">")
	if t := strings.TrimSpace(n.Text); t != "" {
		b.WriteString(t)
	}
	return b.String()
}
