// Package protocol implements the binary wire protocol between a toast
// session and its remote frontend.
//
// The protocol is deliberately small: the server pushes container
// operations (mount, animate, detach) and the client pushes back the
// few gestures a toast cares about (taps, out-of-band closes). It is
// optimized for compact frames and allocation-free encoding.
//
// # Wire Format
//
// All messages are framed with a 4-byte header:
//
//	┌─────────────┬──────────────┬───────────────────────────────┐
//	│ Frame Type  │ Reserved     │ Payload Length                │
//	│ (1 byte)    │ (1 byte)     │ (2 bytes, big-endian)         │
//	└─────────────┴──────────────┴───────────────────────────────┘
//
// The reserved byte must be zero; nonzero values are rejected so the
// byte stays available for future flags.
//
// # Frame Types
//
//   - FrameHello (0x00): Handshake in both directions
//   - FrameOps (0x01): Server → Client container operations
//   - FrameEvent (0x02): Client → Server gestures
//   - FrameControl (0x03): Heartbeat, reload, shutdown
//   - FrameError (0x04): Fatal session error
//
// # Encoding
//
//   - Varint: protobuf-style unsigned varints for counts and durations
//   - ZigZag: signed varints for fixed-point values
//   - Milli: fixed-point thousandths (zigzag varint) for opacities,
//     height fractions, and pixel sizes
//   - Length-prefixed: strings carry a varint byte length
//   - Big-endian: uint16/uint32 where fixed width is clearer
//
// # Operations
//
// An ops frame is a varint count followed by that many operations. Each
// operation starts with a type byte and its target container ID:
//
//	Mount:   [0x01][target][options bits][height?][content tree]
//	Animate: [0x02][target][duration ms][from][to]   (keyframes in milli)
//	Detach:  [0x03][target]
//
// Content trees are encoded recursively: a kind byte, then tag,
// attributes (sorted by key, so encoding is deterministic), and
// children for elements; text for text nodes; children only for
// fragments. A 0xFF kind byte marks a nil tree.
//
// # Events
//
// Events are a type byte plus a target:
//
//	Tap:    [0x01][target]
//	Closed: [0x02][target][reason byte]
//
// # Handshake
//
// The client opens with ClientHello (version, viewport) and the server
// answers with ServerHello (status, session ID, heartbeat interval).
// Version negotiation is a single byte; mismatches are fatal.
package protocol
