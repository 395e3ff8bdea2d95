package protocol

import (
	"errors"
	"io"
)

// Frame constants.
const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 4

	// MaxPayloadSize is the maximum payload size (2^16 - 1 bytes).
	MaxPayloadSize = 65535
)

// FrameType identifies the type of frame.
type FrameType uint8

const (
	FrameHello   FrameType = 0x00 // Handshake, both directions
	FrameOps     FrameType = 0x01 // Server → Client container ops
	FrameEvent   FrameType = 0x02 // Client → Server gestures
	FrameControl FrameType = 0x03 // Heartbeat, reload, shutdown
	FrameError   FrameType = 0x04 // Fatal session error
)

// String returns the string representation of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FrameHello:
		return "Hello"
	case FrameOps:
		return "Ops"
	case FrameEvent:
		return "Event"
	case FrameControl:
		return "Control"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
	ErrReservedNonzero  = errors.New("protocol: reserved header byte is nonzero")
)

// Frame is one protocol message: a type, and a payload whose layout the
// type determines. The second header byte is reserved and must be zero.
type Frame struct {
	Type    FrameType
	Payload []byte
}

// Encode encodes the frame to bytes including the header.
func (f *Frame) Encode() ([]byte, error) {
	length := len(f.Payload)
	if length > MaxPayloadSize {
		return nil, ErrFrameTooLarge
	}
	buf := make([]byte, FrameHeaderSize+length)
	buf[0] = byte(f.Type)
	buf[1] = 0x00
	buf[2] = byte(length >> 8)
	buf[3] = byte(length)
	copy(buf[FrameHeaderSize:], f.Payload)
	return buf, nil
}

// DecodeFrame decodes a frame from data. The input must contain the
// full header and payload; trailing bytes beyond the declared payload
// length are rejected.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < FrameHeaderSize {
		return nil, io.ErrUnexpectedEOF
	}

	ft := FrameType(data[0])
	if ft > FrameError {
		return nil, ErrInvalidFrameType
	}
	if data[1] != 0x00 {
		return nil, ErrReservedNonzero
	}

	length := int(data[2])<<8 | int(data[3])
	if len(data) < FrameHeaderSize+length {
		return nil, io.ErrUnexpectedEOF
	}
	if len(data) > FrameHeaderSize+length {
		return nil, errors.New("protocol: trailing bytes after frame payload")
	}

	return &Frame{
		Type:    ft,
		Payload: data[FrameHeaderSize : FrameHeaderSize+length],
	}, nil
}
