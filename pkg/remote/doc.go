// Package remote serves toasts to a browser over a WebSocket.
//
// A Session adapts one live connection into a surface.Surface: Mount,
// Animate, and Detach become binary op frames the embedded client
// applies to the page, and the client's tap and close gestures come
// back as event frames that fire the attached handlers. Everything
// the toast core asks for happens on the session's own scheduler, so
// a Session can host any number of toasts without locks in the toast
// code.
//
// # Goroutines
//
// Start launches three goroutines per session:
//
//   - the read loop, which decodes incoming frames and dispatches
//     events onto the scheduler
//   - the write loop, which pings the client on the heartbeat interval
//   - the scheduler loop, which runs every toast callback
//
// Writes to the connection are serialized by a mutex because the read
// loop (pongs), the write loop (pings), and toast callbacks (ops) all
// produce frames. Close is idempotent and may be called from any
// goroutine; it stops the scheduler, which ends the other two loops.
//
// # Handshake
//
// The first frame on the wire is the client's hello. Start performs
// the exchange before any loop runs and rejects version mismatches,
// so by the time a Session is usable both sides agree on the wire
// format and the client knows its session ID and heartbeat interval.
//
// # Animation completions
//
// The client animates with CSS transitions and does not report back
// when they finish. Completions are scheduled on the session's
// scheduler after the animation's duration instead, which keeps toast
// lifecycles moving even on a stalled or hostile client.
package remote
