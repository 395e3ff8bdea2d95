package protocol

import (
	"reflect"
	"testing"
)

func TestClientHelloRoundTrip(t *testing.T) {
	h := &ClientHello{Version: Version, ViewportW: 1280, ViewportH: 800}

	e := NewEncoder()
	EncodeClientHello(e, h)

	d := NewDecoder(e.Bytes())
	got, err := DecodeClientHello(d)
	if err != nil {
		t.Fatalf("DecodeClientHello() error: %v", err)
	}
	if !reflect.DeepEqual(got, h) {
		t.Errorf("round trip = %+v, want %+v", got, h)
	}
}

func TestServerHelloRoundTrip(t *testing.T) {
	tests := []*ServerHello{
		{Status: HandshakeOK, SessionID: "a1b2c3d4e5f60718", HeartbeatMs: 30000},
		{Status: HandshakeVersionMismatch},
		{Status: HandshakeInternalError},
	}

	for _, h := range tests {
		t.Run(h.Status.String(), func(t *testing.T) {
			e := NewEncoder()
			EncodeServerHello(e, h)

			d := NewDecoder(e.Bytes())
			got, err := DecodeServerHello(d)
			if err != nil {
				t.Fatalf("DecodeServerHello() error: %v", err)
			}
			if !reflect.DeepEqual(got, h) {
				t.Errorf("round trip = %+v, want %+v", got, h)
			}
		})
	}
}

func TestHandshakeStatusString(t *testing.T) {
	tests := []struct {
		status HandshakeStatus
		want   string
	}{
		{HandshakeOK, "OK"},
		{HandshakeVersionMismatch, "VersionMismatch"},
		{HandshakeInternalError, "InternalError"},
		{HandshakeStatus(42), "Unknown"},
	}

	for _, tt := range tests {
		if got := tt.status.String(); got != tt.want {
			t.Errorf("HandshakeStatus.String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDecodeClientHelloTruncated(t *testing.T) {
	d := NewDecoder([]byte{Version, 0x05})
	if _, err := DecodeClientHello(d); err == nil {
		t.Error("DecodeClientHello() accepted a truncated payload")
	}
}
