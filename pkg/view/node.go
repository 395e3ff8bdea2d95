// Package view provides the lightweight element tree used to describe
// toast content. Trees are built with the El constructor or the tag
// helpers (Div, Span, P, ...) and stay inert data: surfaces decide how a
// tree becomes pixels, whether that is DOM nodes in a browser or the
// body text of a desktop notification.
package view

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement  Kind = iota // <div>, <span>, etc.
	KindText                 // Plain text node
	KindFragment             // Grouping without wrapper
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	default:
		return "Unknown"
	}
}

// Node is a single node in a content tree.
type Node struct {
	Kind     Kind    // Node type
	Tag      string  // Element tag name (e.g., "div")
	Attrs    Attrs   // Attributes
	Children []*Node // Child nodes
	Text     string  // For KindText
}

// Attrs holds element attributes. Values are final strings; content
// trees carry no event handlers, gestures attach at the surface level.
type Attrs map[string]string

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value string
}

// Walk visits n and all its descendants in document order.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// CountNodes returns the number of nodes in the tree rooted at n.
func CountNodes(n *Node) int {
	count := 0
	Walk(n, func(*Node) { count++ })
	return count
}
