package dom

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-rod/rod"
)

// ErrExtraction is wrapped by FromPage when the in-page extraction
// routine cannot run or its result cannot be parsed into the element
// schema.
var ErrExtraction = fmt.Errorf("dom: extraction failed")

// Tree is one DOM snapshot: the extracted element tree plus the
// selector map built from it. The two are rebuilt together; callers
// never observe a root whose indices disagree with the map.
type Tree struct {
	Root      ElementNode
	Selectors *SelectorMap
}

// NewTree wraps a root node with an empty selector map. Call
// BuildSelectorMap before resolving indices.
func NewTree(root ElementNode) *Tree {
	return &Tree{Root: root, Selectors: NewSelectorMap()}
}

// FromPage evaluates the extraction routine in the page's script
// context, parses its JSON result, classifies interactivity, and builds
// the selector map. All failures wrap ErrExtraction.
func FromPage(ctx context.Context, page *rod.Page) (*Tree, error) {
	res, err := page.Context(ctx).Eval(extractScript)
	if err != nil {
		return nil, fmt.Errorf("%w: evaluate: %v", ErrExtraction, err)
	}

	raw := res.Value.Str()
	if raw == "" {
		return nil, fmt.Errorf("%w: extraction routine returned no value", ErrExtraction)
	}

	var root ElementNode
	if err := json.Unmarshal([]byte(raw), &root); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrExtraction, err)
	}

	tree := NewTree(root)
	tree.BuildSelectorMap()
	return tree, nil
}

// BuildSelectorMap rebuilds the selector map from scratch: a pre-order,
// depth-first traversal (parent before children, children in document
// order) classifies each node and registers every interactive visible
// one. Traversal order is the contract that makes indices reproducible
// for an unchanged page. The fresh map is swapped in as the final step.
func (t *Tree) BuildSelectorMap() {
	m := NewSelectorMap()
	indexNode(&t.Root, "body", m)
	t.Selectors = m
}

func indexNode(n *ElementNode, cssPath string, m *SelectorMap) {
	n.ClassifyInteractivity()

	if n.IsInteractive && n.IsVisible {
		idx := m.Register(buildSelector(n, cssPath))
		n.Index = &idx
	} else {
		n.Index = nil
	}

	for i := range n.Children {
		child := &n.Children[i]
		childPath := fmt.Sprintf("%s > %s:nth-child(%d)", cssPath, child.TagName, i+1)
		indexNode(child, childPath, m)
	}
}

// buildSelector synthesizes the locator for one node, preferring an id
// selector, then tag plus first class, then the nth-child path.
func buildSelector(n *ElementNode, cssPath string) ElementSelector {
	css := cssPath
	if id := n.ID(); id != "" {
		css = "#" + id
	} else if fc := n.FirstClass(); fc != "" {
		css = n.TagName + "." + fc
	}

	sel := ElementSelector{
		CSS:     css,
		TagName: n.TagName,
		ID:      n.ID(),
	}
	if n.Text != "" {
		sel.Text = TruncateText(n.Text)
	}
	return sel
}

// Simplify strips non-content nodes from the tree and rebuilds the
// selector map wholesale. Indices may shift; partial patching is never
// attempted.
func (t *Tree) Simplify() {
	t.Root.Simplify()
	t.BuildSelectorMap()
}

// ToJSON serialises the tree root.
func (t *Tree) ToJSON() (string, error) {
	b, err := json.MarshalIndent(&t.Root, "", "  ")
	if err != nil {
		return "", fmt.Errorf("dom: marshal tree: %w", err)
	}
	return string(b), nil
}

// GetSelector resolves an index from the snapshot's registry.
func (t *Tree) GetSelector(idx int) (ElementSelector, bool) {
	return t.Selectors.Get(idx)
}

// InteractiveIndices returns all assigned indices in document order.
func (t *Tree) InteractiveIndices() []int {
	return t.Selectors.Indices()
}

// CountElements returns the total node count, independent of
// interactivity or visibility.
func (t *Tree) CountElements() int {
	return countNodes(&t.Root)
}

func countNodes(n *ElementNode) int {
	total := 1
	for i := range n.Children {
		total += countNodes(&n.Children[i])
	}
	return total
}

// CountInteractive returns the number of indexed elements.
func (t *Tree) CountInteractive() int {
	return t.Selectors.Len()
}

// FindNodeByIndex locates the tree node carrying the given index.
func (t *Tree) FindNodeByIndex(idx int) *ElementNode {
	return findByIndex(&t.Root, idx)
}

func findByIndex(n *ElementNode, idx int) *ElementNode {
	if n.Index != nil && *n.Index == idx {
		return n
	}
	for i := range n.Children {
		if found := findByIndex(&n.Children[i], idx); found != nil {
			return found
		}
	}
	return nil
}

// Summary renders one line per indexed element, for the controller to
// pick targets from.
func (t *Tree) Summary() string {
	var b strings.Builder
	for _, idx := range t.Selectors.Indices() {
		node := t.FindNodeByIndex(idx)
		if node == nil {
			continue
		}
		fmt.Fprintf(&b, "[%d] %s\n", idx, node.SimpleString())
	}
	return b.String()
}
