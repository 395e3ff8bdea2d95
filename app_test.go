package butterytoast

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jefferyq2/ButteryToast/internal/config"
	"github.com/jefferyq2/ButteryToast/pkg/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig keeps heartbeats and default auto-dismiss out of the frame
// streams the tests read.
func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Heartbeat = "1h"
	cfg.AutoDismiss = "1h"
	return cfg
}

func newTestApp(t *testing.T) (*App, *httptest.Server, func()) {
	t.Helper()
	app := New(testConfig(),
		WithLogger(testLogger()),
		WithRegistry(prometheus.NewRegistry()))
	srv := httptest.NewServer(app)
	return app, srv, srv.Close
}

func writeFrame(t *testing.T, conn *websocket.Conn, ft protocol.FrameType, payload []byte) {
	t.Helper()
	data, err := (&protocol.Frame{Type: ft, Payload: payload}).Encode()
	if err != nil {
		t.Fatalf("encode frame: %v", err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) *protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return frame
}

func readOps(t *testing.T, conn *websocket.Conn) []protocol.Op {
	t.Helper()
	frame := readFrame(t, conn)
	if frame.Type != protocol.FrameOps {
		t.Fatalf("frame type=%v, want ops", frame.Type)
	}
	ops, err := protocol.DecodeOps(protocol.NewDecoder(frame.Payload))
	if err != nil {
		t.Fatalf("decode ops: %v", err)
	}
	return ops
}

func readControl(t *testing.T, conn *websocket.Conn) *protocol.Control {
	t.Helper()
	frame := readFrame(t, conn)
	if frame.Type != protocol.FrameControl {
		t.Fatalf("frame type=%v, want control", frame.Type)
	}
	c, err := protocol.DecodeControl(protocol.NewDecoder(frame.Payload))
	if err != nil {
		t.Fatalf("decode control: %v", err)
	}
	return c
}

// dialSession connects a client, completes the handshake, and waits for
// the app to register the session.
func dialSession(t *testing.T, app *App, srv *httptest.Server) (*websocket.Conn, string) {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	enc := protocol.NewEncoder()
	protocol.EncodeClientHello(enc, &protocol.ClientHello{
		Version:   protocol.Version,
		ViewportW: 390,
		ViewportH: 844,
	})
	writeFrame(t, conn, protocol.FrameHello, enc.Bytes())

	frame := readFrame(t, conn)
	if frame.Type != protocol.FrameHello {
		t.Fatalf("first server frame type=%v, want hello", frame.Type)
	}
	hello, err := protocol.DecodeServerHello(protocol.NewDecoder(frame.Payload))
	if err != nil {
		t.Fatalf("decode server hello: %v", err)
	}
	if hello.Status != protocol.HandshakeOK {
		t.Fatalf("handshake status=%v, want OK", hello.Status)
	}

	// Registration happens just after the server hello is written.
	waitFor(t, "session registration", func() bool {
		_, ok := app.lookup(hello.SessionID)
		return ok
	})
	return conn, hello.SessionID
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func getBody(t *testing.T, srv *httptest.Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := srv.Client().Get(srv.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, string(body)
}

func TestServeIndex(t *testing.T) {
	_, srv, cleanup := newTestApp(t)
	defer cleanup()

	resp, body := getBody(t, srv, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type=%q, want text/html", ct)
	}
	if !strings.Contains(body, "ButteryToast") {
		t.Fatal("index page missing expected content")
	}
	if resp.Header.Get("ETag") == "" {
		t.Fatal("index served without ETag")
	}
}

func TestServeClientJS(t *testing.T) {
	_, srv, cleanup := newTestApp(t)
	defer cleanup()

	resp, body := getBody(t, srv, "/client.js")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/javascript") {
		t.Fatalf("content type=%q, want application/javascript", ct)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Fatal("client.js served without nosniff")
	}
	if !strings.Contains(body, "WebSocket") {
		t.Fatal("client script missing WebSocket code")
	}
}

func TestAssetETagRevalidation(t *testing.T) {
	_, srv, cleanup := newTestApp(t)
	defer cleanup()

	resp, _ := getBody(t, srv, "/client.js")
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("no ETag on first response")
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/client.js", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("If-None-Match", etag)
	resp2, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("conditional GET: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusNotModified {
		t.Fatalf("conditional status=%d, want 304", resp2.StatusCode)
	}
}

func TestHealthz(t *testing.T) {
	_, srv, cleanup := newTestApp(t)
	defer cleanup()

	resp, body := getBody(t, srv, "/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d, want 200", resp.StatusCode)
	}

	var health struct {
		Status   string `json:"status"`
		Sessions int    `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(body), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health.Status != "ok" || health.Sessions != 0 {
		t.Fatalf("health=%+v, want ok/0", health)
	}
}

func TestSessionLifecycle(t *testing.T) {
	app, srv, cleanup := newTestApp(t)
	defer cleanup()

	conn, id := dialSession(t, app, srv)
	if app.SessionCount() != 1 {
		t.Fatalf("SessionCount=%d, want 1", app.SessionCount())
	}

	_, body := getBody(t, srv, "/sessions")
	var list struct {
		Sessions []SessionInfo `json:"sessions"`
	}
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if len(list.Sessions) != 1 {
		t.Fatalf("sessions=%d, want 1", len(list.Sessions))
	}
	if got := list.Sessions[0]; got.ID != id || got.ViewportW != 390 || got.ViewportH != 844 {
		t.Fatalf("session info=%+v, want id=%s 390x844", got, id)
	}

	conn.Close()
	waitFor(t, "session removal", func() bool { return app.SessionCount() == 0 })
}

func TestReloadBroadcast(t *testing.T) {
	app, srv, cleanup := newTestApp(t)
	defer cleanup()

	connA, _ := dialSession(t, app, srv)
	defer connA.Close()
	connB, _ := dialSession(t, app, srv)
	defer connB.Close()

	if n := app.Reload(); n != 2 {
		t.Fatalf("Reload()=%d, want 2", n)
	}

	for _, conn := range []*websocket.Conn{connA, connB} {
		c := readControl(t, conn)
		if c.Type != protocol.CtrlReload {
			t.Fatalf("control type=%v, want reload", c.Type)
		}
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	app, srv, cleanup := newTestApp(t)
	defer cleanup()

	conn, _ := dialSession(t, app, srv)
	defer conn.Close()

	if err := app.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}

	c := readControl(t, conn)
	if c.Type != protocol.CtrlShutdown {
		t.Fatalf("control type=%v, want shutdown", c.Type)
	}
	waitFor(t, "session removal", func() bool { return app.SessionCount() == 0 })
}

func TestDevModeServesUncached(t *testing.T) {
	app := New(testConfig(),
		WithLogger(testLogger()),
		WithRegistry(prometheus.NewRegistry()),
		WithDevMode(true))
	srv := httptest.NewServer(app)
	defer srv.Close()

	resp, _ := getBody(t, srv, "/client.js")
	if cc := resp.Header.Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("dev Cache-Control=%q, want no-store", cc)
	}
}

func TestNewNilConfigUsesDefaults(t *testing.T) {
	app := New(nil, WithLogger(testLogger()), WithRegistry(prometheus.NewRegistry()))
	if app.Config().Addr != config.DefaultAddr {
		t.Fatalf("addr=%q, want %q", app.Config().Addr, config.DefaultAddr)
	}
}
