package protocol

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/jefferyq2/ButteryToast/pkg/view"
)

func TestNodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		node *view.Node
	}{
		{"nil", nil},
		{"text", view.Text("hello")},
		{"empty div", view.Div()},
		{
			"toast content",
			view.Div(view.Class("toast"),
				view.Strong("Saved"),
				view.Span(" your changes are safe"),
			),
		},
		{
			"attrs and nesting",
			view.Div(view.Attrs{"class": "toast", "role": "status", "data-kind": "info"},
				view.Img(view.Attrs{"src": "/icon.png", "alt": ""}),
				view.P(view.Em("almost"), " done"),
			),
		},
		{"fragment", view.Fragment(view.Text("a"), view.Span("b"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEncoder()
			EncodeNode(e, tt.node)

			d := NewDecoder(e.Bytes())
			got, err := DecodeNode(d)
			if err != nil {
				t.Fatalf("DecodeNode() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.node) {
				t.Errorf("round trip mismatch:\ngot  %#v\nwant %#v", got, tt.node)
			}
			if !d.EOF() {
				t.Errorf("%d bytes left unread", d.Remaining())
			}
		})
	}
}

func TestNodeEncodingIsDeterministic(t *testing.T) {
	build := func() *view.Node {
		return view.Div(view.Attrs{"c": "3", "a": "1", "b": "2", "z": "26", "m": "13"},
			view.Text("x"))
	}

	e1 := NewEncoder()
	EncodeNode(e1, build())
	for i := 0; i < 10; i++ {
		e2 := NewEncoder()
		EncodeNode(e2, build())
		if !bytes.Equal(e1.Bytes(), e2.Bytes()) {
			t.Fatal("identical trees encoded to different bytes")
		}
	}
}

func TestDecodeNodeUnknownKind(t *testing.T) {
	d := NewDecoder([]byte{0x7E})
	if _, err := DecodeNode(d); err == nil {
		t.Error("DecodeNode() accepted an unknown kind byte")
	}
}

func TestDecodeNodeBudget(t *testing.T) {
	// A flat element with more text children than the tree limit.
	wide := &view.Node{Kind: view.KindElement, Tag: "div", Attrs: view.Attrs{}}
	for i := 0; i < MaxTreeNodes+1; i++ {
		wide.Children = append(wide.Children, view.Text("x"))
	}

	e := NewEncoder()
	EncodeNode(e, wide)

	d := NewDecoder(e.Bytes())
	if _, err := DecodeNode(d); !errors.Is(err, ErrTreeTooLarge) {
		t.Errorf("DecodeNode() = %v, want ErrTreeTooLarge", err)
	}
}

func TestDecodeNodeHugeChildCountRejectedEarly(t *testing.T) {
	e := NewEncoder()
	e.WriteByte(byte(view.KindElement))
	e.WriteString("div")
	e.WriteUvarint(0)               // no attrs
	e.WriteUvarint(1 << 40)         // absurd child count
	e.WriteByte(byte(view.KindText)) // one actual child

	d := NewDecoder(e.Bytes())
	if _, err := DecodeNode(d); !errors.Is(err, ErrTreeTooLarge) {
		t.Errorf("DecodeNode() = %v, want ErrTreeTooLarge before allocating", err)
	}
}
