package view

import "testing"

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{Kind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("Kind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestElBuildsElement(t *testing.T) {
	n := El("div", Class("toast-body"), Attr{Key: "role", Value: "status"}, "hello")

	if n.Kind != KindElement {
		t.Errorf("Kind = %v, want KindElement", n.Kind)
	}
	if n.Tag != "div" {
		t.Errorf("Tag = %q, want %q", n.Tag, "div")
	}
	if got := n.Attrs["class"]; got != "toast-body" {
		t.Errorf("class attr = %q, want %q", got, "toast-body")
	}
	if got := n.Attrs["role"]; got != "status" {
		t.Errorf("role attr = %q, want %q", got, "status")
	}
	if len(n.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(n.Children))
	}
	if c := n.Children[0]; c.Kind != KindText || c.Text != "hello" {
		t.Errorf("child = %+v, want text node %q", c, "hello")
	}
}

func TestElIgnoresNil(t *testing.T) {
	n := El("div", nil, If(false, Span("hidden")), "visible")

	if len(n.Children) != 1 {
		t.Fatalf("len(Children) = %d, want 1", len(n.Children))
	}
	if n.Children[0].Text != "visible" {
		t.Errorf("child text = %q, want %q", n.Children[0].Text, "visible")
	}
}

func TestElFlattensSlices(t *testing.T) {
	items := Map([]string{"a", "b", "c"}, func(s string) *Node {
		return Span(s)
	})
	n := Div(items)

	if len(n.Children) != 3 {
		t.Fatalf("len(Children) = %d, want 3", len(n.Children))
	}
	for i, want := range []string{"a", "b", "c"} {
		c := n.Children[i]
		if c.Tag != "span" || len(c.Children) != 1 || c.Children[0].Text != want {
			t.Errorf("child %d = %+v, want span(%q)", i, c, want)
		}
	}
}

func TestElMergesAttrsMaps(t *testing.T) {
	n := El("img", Attrs{"src": "/icon.png"}, Attrs{"alt": "icon", "src": "/icon2.png"})

	if got := n.Attrs["src"]; got != "/icon2.png" {
		t.Errorf("src = %q, want last-write %q", got, "/icon2.png")
	}
	if got := n.Attrs["alt"]; got != "icon" {
		t.Errorf("alt = %q, want %q", got, "icon")
	}
}

func TestFragment(t *testing.T) {
	n := Fragment(Span("a"), "b")

	if n.Kind != KindFragment {
		t.Errorf("Kind = %v, want KindFragment", n.Kind)
	}
	if n.Tag != "" {
		t.Errorf("Tag = %q, want empty", n.Tag)
	}
	if len(n.Children) != 2 {
		t.Errorf("len(Children) = %d, want 2", len(n.Children))
	}
}

func TestConditionals(t *testing.T) {
	if If(true, Text("x")) == nil {
		t.Error("If(true) = nil, want node")
	}
	if If(false, Text("x")) != nil {
		t.Error("If(false) != nil")
	}
	if got := IfElse(false, Text("a"), Text("b")); got.Text != "b" {
		t.Errorf("IfElse(false) = %q, want %q", got.Text, "b")
	}

	called := false
	When(false, func() *Node {
		called = true
		return Text("x")
	})
	if called {
		t.Error("When(false) evaluated its function")
	}
}

func TestWalkVisitsInDocumentOrder(t *testing.T) {
	n := Div(Span("a"), P(Strong("b")))

	var tags []string
	Walk(n, func(node *Node) {
		if node.Kind == KindElement {
			tags = append(tags, node.Tag)
		}
	})

	want := []string{"div", "span", "p", "strong"}
	if len(tags) != len(want) {
		t.Fatalf("visited %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("visit %d = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestCountNodes(t *testing.T) {
	n := Div(Span("a"), P("b"))
	// div, span, text, p, text
	if got := CountNodes(n); got != 5 {
		t.Errorf("CountNodes = %d, want 5", got)
	}
}
