package desktop

import (
	"strings"

	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// summaryTags are elements whose first occurrence becomes the
// notification summary line.
var summaryTags = map[string]bool{
	"strong": true,
	"b":      true,
	"h1":     true,
	"h2":     true,
	"h3":     true,
}

// renderNotification projects a content tree onto the two strings a
// freedesktop notification can show. The first strong or heading
// element becomes the summary and is dropped from the body; the rest
// of the tree is flattened to plain text.
func renderNotification(root *view.Node) (summary, body string) {
	var sumNode *view.Node
	view.Walk(root, func(n *view.Node) {
		if sumNode == nil && n.Kind == view.KindElement && summaryTags[n.Tag] {
			sumNode = n
		}
	})
	if sumNode != nil {
		summary = view.PlainText(sumNode)
	}

	var b strings.Builder
	writeBody(&b, root, sumNode)
	body = collapseLines(b.String())
	return summary, body
}

// writeBody flattens the tree to text, skipping the summary subtree
// and breaking lines at block elements.
func writeBody(b *strings.Builder, n, skip *view.Node) {
	if n == nil || n == skip {
		return
	}
	switch n.Kind {
	case view.KindText:
		b.WriteString(n.Text)
	case view.KindElement:
		block := isBlock(n.Tag)
		if block {
			b.WriteString("\n")
		}
		for _, c := range n.Children {
			writeBody(b, c, skip)
		}
		if block {
			b.WriteString("\n")
		}
	case view.KindFragment:
		for _, c := range n.Children {
			writeBody(b, c, skip)
		}
	}
}

func isBlock(tag string) bool {
	switch tag {
	case "div", "p", "br", "h1", "h2", "h3", "li":
		return true
	}
	return false
}

// collapseLines normalizes whitespace per line and drops empty lines.
// Notification bodies render "\n" but look terrible with runs of them.
func collapseLines(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		lines = append(lines, strings.Join(fields, " "))
	}
	return strings.Join(lines, "\n")
}
