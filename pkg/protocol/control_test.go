package protocol

import (
	"reflect"
	"testing"
)

func TestControlRoundTrip(t *testing.T) {
	tests := []*Control{
		{Type: CtrlPing, Seq: 1},
		{Type: CtrlPong, Seq: 1},
		{Type: CtrlReload},
		{Type: CtrlShutdown},
		{Type: CtrlPing, Seq: 1<<32 - 1},
	}

	for _, c := range tests {
		t.Run(c.Type.String(), func(t *testing.T) {
			e := NewEncoder()
			EncodeControl(e, c)

			d := NewDecoder(e.Bytes())
			got, err := DecodeControl(d)
			if err != nil {
				t.Fatalf("DecodeControl() error: %v", err)
			}
			if !reflect.DeepEqual(got, c) {
				t.Errorf("round trip = %+v, want %+v", got, c)
			}
		})
	}
}

func TestDecodeControlUnknownType(t *testing.T) {
	d := NewDecoder([]byte{0x00, 0x00})
	if _, err := DecodeControl(d); err == nil {
		t.Error("DecodeControl() accepted control type 0x00")
	}

	d = NewDecoder([]byte{0x09, 0x00})
	if _, err := DecodeControl(d); err == nil {
		t.Error("DecodeControl() accepted control type 0x09")
	}
}

func TestControlTypeString(t *testing.T) {
	tests := []struct {
		ct   ControlType
		want string
	}{
		{CtrlPing, "Ping"},
		{CtrlPong, "Pong"},
		{CtrlReload, "Reload"},
		{CtrlShutdown, "Shutdown"},
		{ControlType(0), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.ct.String(); got != tt.want {
			t.Errorf("ControlType.String() = %q, want %q", got, tt.want)
		}
	}
}
