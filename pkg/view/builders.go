package view

import "fmt"

// El creates an element node with the given tag and arguments.
// Arguments can be: nil, Attr, Attrs, *Node, []*Node, string.
// Strings become text children; nil arguments are ignored so
// attributes and children can be included conditionally.
func El(tag string, args ...any) *Node {
	node := &Node{
		Kind:     KindElement,
		Tag:      tag,
		Attrs:    make(Attrs),
		Children: make([]*Node, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue

		case Attr:
			if v.Key != "" {
				node.Attrs[v.Key] = v.Value
			}

		case Attrs:
			for key, val := range v {
				node.Attrs[key] = val
			}

		case *Node:
			if v != nil {
				node.Children = append(node.Children, v)
			}

		case []*Node:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}

		case string:
			node.Children = append(node.Children, Text(v))

		default:
			node.Children = append(node.Children, Textf("%v", v))
		}
	}

	return node
}

// Text creates a text node.
func Text(content string) *Node {
	return &Node{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *Node {
	node := El("", children...)
	node.Kind = KindFragment
	node.Tag = ""
	return node
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *Node) *Node {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *Node) *Node {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *Node) *Node {
	if condition {
		return fn()
	}
	return nil
}

// Map transforms a slice into child nodes.
func Map[T any](items []T, fn func(T) *Node) []*Node {
	nodes := make([]*Node, 0, len(items))
	for _, item := range items {
		if n := fn(item); n != nil {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// Class is shorthand for the class attribute.
func Class(name string) Attr {
	return Attr{Key: "class", Value: name}
}

// Div creates a <div> element.
func Div(args ...any) *Node { return El("div", args...) }

// Span creates a <span> element.
func Span(args ...any) *Node { return El("span", args...) }

// P creates a <p> element.
func P(args ...any) *Node { return El("p", args...) }

// Strong creates a <strong> element.
func Strong(args ...any) *Node { return El("strong", args...) }

// Em creates an <em> element.
func Em(args ...any) *Node { return El("em", args...) }

// Small creates a <small> element.
func Small(args ...any) *Node { return El("small", args...) }

// A creates an <a> element.
func A(args ...any) *Node { return El("a", args...) }

// Img creates an <img> element.
func Img(args ...any) *Node { return El("img", args...) }

// Button creates a <button> element.
func Button(args ...any) *Node { return El("button", args...) }

// Br creates a <br> element.
func Br() *Node { return El("br") }

// H1 creates an <h1> element.
func H1(args ...any) *Node { return El("h1", args...) }

// H2 creates an <h2> element.
func H2(args ...any) *Node { return El("h2", args...) }

// H3 creates an <h3> element.
func H3(args ...any) *Node { return El("h3", args...) }
