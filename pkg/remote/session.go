package remote

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jefferyq2/ButteryToast/pkg/protocol"
	"github.com/jefferyq2/ButteryToast/pkg/sched"
	"github.com/jefferyq2/ButteryToast/pkg/surface"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

const (
	// DefaultHeartbeat is the default interval between server pings.
	DefaultHeartbeat = 30 * time.Second

	// handshakeTimeout bounds how long a client may take to send its
	// hello after the WebSocket upgrade.
	handshakeTimeout = 10 * time.Second

	// writeTimeout bounds every frame write.
	writeTimeout = 10 * time.Second

	// tracerName identifies this package's spans.
	tracerName = "github.com/jefferyq2/ButteryToast/pkg/remote"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithHeartbeat sets the ping interval. The read deadline follows it,
// so a client that misses two heartbeats is considered gone.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Session) {
		s.heartbeat = d
	}
}

// WithQueueSize sets the scheduler's dispatch queue size.
func WithQueueSize(n int) Option {
	return func(s *Session) {
		s.queueSize = n
	}
}

// WithTracerProvider sets the OpenTelemetry tracer provider. Defaults
// to the global provider, which is a no-op unless configured.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Session) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// Session is one browser connection serving as a toast surface.
//
// All surface.Surface methods must be called on the session's
// scheduler, which is where the toast core runs anyway. The exported
// non-surface methods (Close, Reload, Stats, accessors) are safe from
// any goroutine.
type Session struct {
	id string

	// Connection
	conn   *websocket.Conn
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool

	// Loop-confined state
	loop *sched.Loop
	taps map[string]func() // Container ID -> tap handler
	next uint64            // Last allocated container number

	// What the client reported in its hello
	hello *protocol.ClientHello

	// Configuration
	heartbeat time.Duration
	queueSize int

	logger *slog.Logger
	tracer trace.Tracer

	// Counters
	opsSent    atomic.Uint64
	bytesSent  atomic.Uint64
	bytesRecv  atomic.Uint64
	eventsRecv atomic.Uint64
}

// generateSessionID generates a cryptographically random session ID.
func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// SECURITY: Fatal on entropy failure - weak IDs are dangerous
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return hex.EncodeToString(b)
}

// NewSession wraps an upgraded WebSocket connection. The session is
// inert until Start completes the handshake and launches its loops.
func NewSession(conn *websocket.Conn, opts ...Option) *Session {
	s := &Session{
		id:        generateSessionID(),
		conn:      conn,
		taps:      make(map[string]func()),
		heartbeat: DefaultHeartbeat,
		queueSize: sched.DefaultQueueSize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.id)
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.loop = sched.NewLoop(sched.WithLogger(s.logger), sched.WithQueueSize(s.queueSize))
	return s
}

// ID returns the session's random identifier.
func (s *Session) ID() string {
	return s.id
}

// Hello returns what the client reported during the handshake, or nil
// before Start has completed.
func (s *Session) Hello() *protocol.ClientHello {
	return s.hello
}

// Stats is a point-in-time snapshot of session counters.
type Stats struct {
	OpsSent        uint64
	BytesSent      uint64
	BytesReceived  uint64
	EventsReceived uint64
}

// Stats returns a snapshot of the session's counters.
func (s *Session) Stats() Stats {
	return Stats{
		OpsSent:        s.opsSent.Load(),
		BytesSent:      s.bytesSent.Load(),
		BytesReceived:  s.bytesRecv.Load(),
		EventsReceived: s.eventsRecv.Load(),
	}
}

// Scheduler implements surface.Surface.
func (s *Session) Scheduler() sched.Scheduler {
	return s.loop
}

// Done is closed once the session has fully shut down.
func (s *Session) Done() <-chan struct{} {
	return s.loop.Done()
}

// Start performs the handshake and launches the session's goroutines.
// It returns without waiting for them; the caller can watch Done.
func (s *Session) Start() error {
	if err := s.handshake(); err != nil {
		s.Close()
		return err
	}

	go s.loop.Run()
	go s.readLoop()
	go s.writeLoop()

	s.logger.Info("session started",
		"viewport_w", s.hello.ViewportW,
		"viewport_h", s.hello.ViewportH)

	return nil
}

// handshake reads the client hello and answers it. The server hello is
// sent even on version mismatch so the client can report why it was
// refused.
func (s *Session) handshake() error {
	s.conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	_, msg, err := s.conn.ReadMessage()
	if err != nil {
		return &SessionError{SessionID: s.id, Op: "handshake", Err: err}
	}
	s.bytesRecv.Add(uint64(len(msg)))

	frame, err := protocol.DecodeFrame(msg)
	if err != nil || frame.Type != protocol.FrameHello {
		return &SessionError{SessionID: s.id, Op: "handshake", Err: ErrInvalidHandshake}
	}
	hello, err := protocol.DecodeClientHello(protocol.NewDecoder(frame.Payload))
	if err != nil {
		return &SessionError{SessionID: s.id, Op: "handshake", Err: ErrInvalidHandshake}
	}

	status := protocol.HandshakeOK
	if hello.Version != protocol.Version {
		status = protocol.HandshakeVersionMismatch
	}

	enc := protocol.NewEncoder()
	protocol.EncodeServerHello(enc, &protocol.ServerHello{
		Status:      status,
		SessionID:   s.id,
		HeartbeatMs: uint32(s.heartbeat / time.Millisecond),
	})
	if err := s.writeFrame(&protocol.Frame{Type: protocol.FrameHello, Payload: enc.Bytes()}); err != nil {
		return &SessionError{SessionID: s.id, Op: "handshake", Err: err}
	}

	if status != protocol.HandshakeOK {
		s.logger.Warn("handshake refused",
			"status", status,
			"client_version", hello.Version)
		return &SessionError{SessionID: s.id, Op: "handshake", Err: ErrVersionMismatch}
	}

	s.hello = hello
	return nil
}

// Mount implements surface.Surface. It allocates a container ID and
// tells the client to insert the rendered tree.
func (s *Session) Mount(content *view.Node, opts surface.MountOptions) (surface.Handle, error) {
	_, span := s.tracer.Start(context.Background(), "toast.mount",
		trace.WithAttributes(attribute.String("toast.session_id", s.id)))
	defer span.End()

	if s.closed.Load() {
		span.SetStatus(codes.Error, ErrSessionClosed.Error())
		return nil, &SessionError{SessionID: s.id, Op: "mount", Err: ErrSessionClosed}
	}

	s.next++
	h := handle(fmt.Sprintf("b%d", s.next))
	span.SetAttributes(attribute.String("toast.target", h.Target()))

	op := &protocol.Mount{
		TargetID:       h.Target(),
		FixedHeight:    opts.FixedHeight,
		HasFixedHeight: opts.HasFixedHeight,
		Content:        content,
	}
	if err := s.writeOps(op); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, &SessionError{SessionID: s.id, Op: "mount", Err: err}
	}

	s.logger.Debug("mounted container",
		"target", h.Target(),
		"nodes", view.CountNodes(content))
	span.SetStatus(codes.Ok, "")
	return h, nil
}

// Animate implements surface.Surface. The client runs the transition
// on its own; done is scheduled here after the animation's duration.
func (s *Session) Animate(h surface.Handle, a surface.Animation, done func()) {
	op := &protocol.Animate{
		TargetID:    h.Target(),
		DurationMs:  uint32(a.Duration / time.Millisecond),
		FromOpacity: a.From.Opacity,
		FromShift:   a.From.TranslateY,
		ToOpacity:   a.To.Opacity,
		ToShift:     a.To.TranslateY,
	}
	if err := s.writeOps(op); err != nil {
		s.logger.Error("animate failed", "target", h.Target(), "error", err)
	}
	if done != nil {
		s.loop.After(a.Duration, done)
	}
}

// Detach implements surface.Surface. The container and its tap handler
// are dropped even if the write fails; the client side dies with the
// connection anyway.
func (s *Session) Detach(h surface.Handle) {
	_, span := s.tracer.Start(context.Background(), "toast.detach",
		trace.WithAttributes(
			attribute.String("toast.session_id", s.id),
			attribute.String("toast.target", h.Target())))
	defer span.End()

	delete(s.taps, h.Target())
	if err := s.writeOps(&protocol.Detach{TargetID: h.Target()}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.logger.Error("detach failed", "target", h.Target(), "error", err)
		return
	}
	span.SetStatus(codes.Ok, "")
}

// AttachTap implements surface.Surface.
func (s *Session) AttachTap(h surface.Handle, fn func()) {
	s.taps[h.Target()] = fn
}

// Reload asks the client to reload the page. Dev tooling calls this
// after a rebuild.
func (s *Session) Reload() error {
	return s.sendControl(protocol.CtrlReload, 0)
}

// writeOps encodes a batch of ops and writes it as one frame.
func (s *Session) writeOps(ops ...protocol.Op) error {
	enc := protocol.NewEncoder()
	protocol.EncodeOps(enc, ops)
	if err := s.writeFrame(&protocol.Frame{Type: protocol.FrameOps, Payload: enc.Bytes()}); err != nil {
		return err
	}
	s.opsSent.Add(uint64(len(ops)))
	return nil
}

// sendControl writes a control frame.
func (s *Session) sendControl(ct protocol.ControlType, seq uint32) error {
	enc := protocol.NewEncoder()
	protocol.EncodeControl(enc, &protocol.Control{Type: ct, Seq: seq})
	return s.writeFrame(&protocol.Frame{Type: protocol.FrameControl, Payload: enc.Bytes()})
}

// writeFrame serializes one frame onto the connection.
func (s *Session) writeFrame(f *protocol.Frame) error {
	data, err := f.Encode()
	if err != nil {
		return fmt.Errorf("encode %s frame: %w", f.Type, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}

	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := s.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return fmt.Errorf("write %s frame: %w", f.Type, err)
	}
	s.bytesSent.Add(uint64(len(data)))
	return nil
}

// readLoop continuously reads frames from the connection. It blocks
// until the connection is closed or an error occurs, then closes the
// session.
func (s *Session) readLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(2 * s.heartbeat))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.bytesRecv.Add(uint64(len(msg)))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)

		case protocol.FrameControl:
			s.handleControlFrame(frame.Payload)

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

// handleEventFrame decodes a gesture and dispatches it onto the loop.
func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(protocol.NewDecoder(payload))
	if err != nil {
		s.logger.Error("event decode error", "error", err)
		return
	}
	s.eventsRecv.Add(1)
	s.loop.Dispatch(func() { s.deliver(ev) })
}

// deliver runs on the loop and fires the handler attached to the
// event's container. A closed container walks the same path as a tap
// so the toast still sees its normal dismissal.
func (s *Session) deliver(ev *protocol.Event) {
	_, span := s.tracer.Start(context.Background(), eventSpanName(ev.Type),
		trace.WithAttributes(
			attribute.String("toast.session_id", s.id),
			attribute.String("toast.target", ev.Target)))
	defer span.End()

	fn, ok := s.taps[ev.Target]
	if !ok {
		span.SetStatus(codes.Error, ErrHandleUnknown.Error())
		s.logger.Debug("event for unknown container",
			"type", ev.Type,
			"target", ev.Target)
		return
	}

	if ev.Type == protocol.EventClosed {
		s.logger.Debug("container closed by client",
			"target", ev.Target,
			"reason", ev.Reason)
	}
	fn()
	span.SetStatus(codes.Ok, "")
}

func eventSpanName(t protocol.EventType) string {
	switch t {
	case protocol.EventTap:
		return "toast.tap"
	case protocol.EventClosed:
		return "toast.closed"
	default:
		return "toast.event"
	}
}

// handleControlFrame answers pings and honors client shutdowns.
func (s *Session) handleControlFrame(payload []byte) {
	c, err := protocol.DecodeControl(protocol.NewDecoder(payload))
	if err != nil {
		s.logger.Error("control decode error", "error", err)
		return
	}

	switch c.Type {
	case protocol.CtrlPing:
		if err := s.sendControl(protocol.CtrlPong, c.Seq); err != nil {
			s.logger.Error("pong error", "error", err)
		}

	case protocol.CtrlPong:
		s.logger.Debug("received pong", "seq", c.Seq)

	case protocol.CtrlShutdown:
		s.logger.Info("client shutting down")
		s.Close()
	}
}

// writeLoop pings the client on the heartbeat interval until the
// session stops.
func (s *Session) writeLoop() {
	ticker := time.NewTicker(s.heartbeat)
	defer ticker.Stop()

	var seq uint32
	for {
		select {
		case <-ticker.C:
			seq++
			if err := s.sendControl(protocol.CtrlPing, seq); err != nil {
				return
			}

		case <-s.loop.Done():
			return
		}
	}
}

// Close gracefully closes the session. It is idempotent and safe from
// any goroutine. Callbacks still queued on the scheduler are dropped.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}

	// Best-effort farewell; the client treats either frame as final.
	enc := protocol.NewEncoder()
	protocol.EncodeControl(enc, &protocol.Control{Type: protocol.CtrlShutdown})
	if data, err := (&protocol.Frame{Type: protocol.FrameControl, Payload: enc.Bytes()}).Encode(); err == nil {
		s.mu.Lock()
		s.conn.SetWriteDeadline(time.Now().Add(time.Second))
		s.conn.WriteMessage(websocket.BinaryMessage, data)
		s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		s.mu.Unlock()
	}
	s.conn.Close()
	s.loop.Stop()

	s.logger.Info("session closed",
		"ops_sent", s.opsSent.Load(),
		"bytes_sent", s.bytesSent.Load(),
		"bytes_received", s.bytesRecv.Load(),
		"events_received", s.eventsRecv.Load())
}
