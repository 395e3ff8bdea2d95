package desktop

import (
	"testing"

	"github.com/jefferyq2/ButteryToast/pkg/view"
)

func TestRenderNotification(t *testing.T) {
	tests := []struct {
		name    string
		tree    *view.Node
		summary string
		body    string
	}{
		{
			name:    "strong becomes summary",
			tree:    view.Div(view.Strong("Upload complete"), view.Div("3 files synced")),
			summary: "Upload complete",
			body:    "3 files synced",
		},
		{
			name:    "heading becomes summary",
			tree:    view.Div(view.H2("Build failed"), view.P("see the log for details")),
			summary: "Build failed",
			body:    "see the log for details",
		},
		{
			name:    "first of several summaries wins",
			tree:    view.Div(view.Strong("first"), view.Strong("second"), " tail"),
			summary: "first",
			body:    "second tail",
		},
		{
			name:    "no summary leaves body whole",
			tree:    view.Div("just a line of text"),
			summary: "",
			body:    "just a line of text",
		},
		{
			name:    "blocks become line breaks",
			tree:    view.Div(view.Div("one"), view.Div("two")),
			summary: "",
			body:    "one\ntwo",
		},
		{
			name: "whitespace collapses",
			tree: view.Div("  spaced   out  ", view.Span("words  ")),
			body: "spaced out words",
		},
		{
			name: "nested summary is found",
			tree: view.Div(view.Div(view.Span(view.Strong("Deep"))), "rest"),

			summary: "Deep",
			body:    "rest",
		},
		{
			name:    "nil tree",
			tree:    nil,
			summary: "",
			body:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary, body := renderNotification(tt.tree)
			if summary != tt.summary {
				t.Errorf("summary=%q, want %q", summary, tt.summary)
			}
			if body != tt.body {
				t.Errorf("body=%q, want %q", body, tt.body)
			}
		})
	}
}
