package protocol

// Version is the current protocol version. A client and server must
// agree exactly; there is no feature negotiation at this size.
const Version uint8 = 1

// HandshakeStatus is the result of a handshake.
type HandshakeStatus uint8

const (
	HandshakeOK              HandshakeStatus = 0x00
	HandshakeVersionMismatch HandshakeStatus = 0x01
	HandshakeInternalError   HandshakeStatus = 0x02
)

// String returns the string representation of the handshake status.
func (hs HandshakeStatus) String() string {
	switch hs {
	case HandshakeOK:
		return "OK"
	case HandshakeVersionMismatch:
		return "VersionMismatch"
	case HandshakeInternalError:
		return "InternalError"
	default:
		return "Unknown"
	}
}

// ClientHello is the first frame a client sends after the WebSocket
// connection is established.
type ClientHello struct {
	Version   uint8  // Protocol version
	ViewportW uint16 // Viewport width in px
	ViewportH uint16 // Viewport height in px
}

// EncodeClientHello encodes a ClientHello as a hello-frame payload.
func EncodeClientHello(e *Encoder, h *ClientHello) {
	e.WriteByte(h.Version)
	e.WriteUint16(h.ViewportW)
	e.WriteUint16(h.ViewportH)
}

// DecodeClientHello decodes a hello-frame payload from a client.
func DecodeClientHello(d *Decoder) (*ClientHello, error) {
	h := &ClientHello{}
	var err error
	if h.Version, err = d.ReadByte(); err != nil {
		return nil, err
	}
	if h.ViewportW, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	if h.ViewportH, err = d.ReadUint16(); err != nil {
		return nil, err
	}
	return h, nil
}

// ServerHello is the server's handshake response.
type ServerHello struct {
	Status      HandshakeStatus
	SessionID   string
	HeartbeatMs uint32 // Interval the client should expect pings at
}

// EncodeServerHello encodes a ServerHello as a hello-frame payload.
func EncodeServerHello(e *Encoder, h *ServerHello) {
	e.WriteByte(byte(h.Status))
	e.WriteString(h.SessionID)
	e.WriteUvarint(uint64(h.HeartbeatMs))
}

// DecodeServerHello decodes a hello-frame payload from a server.
func DecodeServerHello(d *Decoder) (*ServerHello, error) {
	h := &ServerHello{}
	status, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	h.Status = HandshakeStatus(status)
	if h.SessionID, err = d.ReadString(); err != nil {
		return nil, err
	}
	hb, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if hb > 1<<32-1 {
		return nil, ErrVarintOverflow
	}
	h.HeartbeatMs = uint32(hb)
	return h, nil
}
