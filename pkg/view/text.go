package view

import "strings"

// blockTags are elements that act as line breaks when a tree is
// projected to plain text.
var blockTags = map[string]bool{
	"div": true,
	"p":   true,
	"br":  true,
	"h1":  true,
	"h2":  true,
	"h3":  true,
	"li":  true,
}

// PlainText projects a content tree to plain text. Inline runs are
// joined directly, block-level elements separate lines, and whitespace
// is collapsed. Used by surfaces that cannot render structure, such as
// desktop notification bodies.
func PlainText(n *Node) string {
	var b strings.Builder
	writePlain(&b, n)
	return collapse(b.String())
}

func writePlain(b *strings.Builder, n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindText:
		b.WriteString(n.Text)
	case KindElement:
		if blockTags[n.Tag] {
			b.WriteString("\n")
		}
		for _, c := range n.Children {
			writePlain(b, c)
		}
		if blockTags[n.Tag] {
			b.WriteString("\n")
		}
	case KindFragment:
		for _, c := range n.Children {
			writePlain(b, c)
		}
	}
}

// collapse trims the text, collapses runs of spaces and tabs, and
// folds blank-line runs into single newlines.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
