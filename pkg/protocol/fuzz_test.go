package protocol

import (
	"testing"

	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// FuzzDecodeFrame tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeFrame(f *testing.F) {
	// Seed with valid frames
	frame := &Frame{Type: FrameEvent, Payload: []byte{0x01, 0x02}}
	if data, err := frame.Encode(); err == nil {
		f.Add(data)
	}
	frame2 := &Frame{Type: FrameControl, Payload: []byte{0x01, 0x00}}
	if data, err := frame2.Encode(); err == nil {
		f.Add(data)
	}
	f.Add([]byte{})
	f.Add([]byte{0x01, 0x00, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeFrame(data)
	})
}

// FuzzDecodeOps tests that decoding arbitrary op batches doesn't panic.
func FuzzDecodeOps(f *testing.F) {
	e := NewEncoder()
	EncodeOps(e, []Op{
		&Mount{TargetID: "b1", Content: view.Div(view.Class("toast"), "hi")},
		&Animate{TargetID: "b1", DurationMs: 250, FromShift: -1, ToOpacity: 1},
		&Detach{TargetID: "b1"},
	})
	f.Add(append([]byte(nil), e.Bytes()...))
	f.Add([]byte{0x01, 0x01})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeOps(NewDecoder(data))
	})
}

// FuzzDecodeEvent tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeEvent(f *testing.F) {
	e := NewEncoder()
	EncodeEvent(e, &Event{Type: EventTap, Target: "b1"})
	f.Add(append([]byte(nil), e.Bytes()...))

	e.Reset()
	EncodeEvent(e, &Event{Type: EventClosed, Target: "b2", Reason: CloseReasonUser})
	f.Add(append([]byte(nil), e.Bytes()...))
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeEvent(NewDecoder(data))
	})
}

// FuzzDecodeNode tests that decoding arbitrary trees doesn't panic and
// that whatever decodes re-encodes to the same bytes it came from.
func FuzzDecodeNode(f *testing.F) {
	e := NewEncoder()
	EncodeNode(e, view.Div(view.Class("toast"), view.Strong("hey"), view.Text("there")))
	f.Add(append([]byte(nil), e.Bytes()...))

	e.Reset()
	EncodeNode(e, nil)
	f.Add(append([]byte(nil), e.Bytes()...))
	f.Add([]byte{0xFF})
	f.Add([]byte{})

	f.Fuzz(func(t *testing.T, data []byte) {
		d := NewDecoder(data)
		n, err := DecodeNode(d)
		if err != nil || !d.EOF() {
			return
		}

		re := NewEncoder()
		EncodeNode(re, n)
		round, err := DecodeNode(NewDecoder(re.Bytes()))
		if err != nil {
			t.Fatalf("re-decoding a decoded tree failed: %v", err)
		}
		if view.CountNodes(n) != view.CountNodes(round) {
			t.Fatalf("node count changed across round trip: %d -> %d",
				view.CountNodes(n), view.CountNodes(round))
		}
	})
}
