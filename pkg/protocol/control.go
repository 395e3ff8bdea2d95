package protocol

import "fmt"

// ControlType is the type of control message.
type ControlType uint8

const (
	CtrlPing     ControlType = 0x01 // Heartbeat request
	CtrlPong     ControlType = 0x02 // Heartbeat response
	CtrlReload   ControlType = 0x03 // Dev mode: reload the page
	CtrlShutdown ControlType = 0x04 // Server is closing the session
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case CtrlPing:
		return "Ping"
	case CtrlPong:
		return "Pong"
	case CtrlReload:
		return "Reload"
	case CtrlShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// Control is a control message. Seq is echoed by pongs so either side
// can match heartbeats; reload and shutdown leave it zero.
type Control struct {
	Type ControlType
	Seq  uint32
}

// EncodeControl encodes a control message as a control-frame payload.
func EncodeControl(e *Encoder, c *Control) {
	e.WriteByte(byte(c.Type))
	e.WriteUvarint(uint64(c.Seq))
}

// DecodeControl decodes a control-frame payload.
func DecodeControl(d *Decoder) (*Control, error) {
	t, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	ct := ControlType(t)
	if ct < CtrlPing || ct > CtrlShutdown {
		return nil, fmt.Errorf("protocol: unknown control type 0x%02X", t)
	}

	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if seq > 1<<32-1 {
		return nil, ErrVarintOverflow
	}

	return &Control{Type: ct, Seq: uint32(seq)}, nil
}
