package butterytoast

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jefferyq2/ButteryToast/internal/config"
	"github.com/jefferyq2/ButteryToast/internal/dev"
	"github.com/jefferyq2/ButteryToast/pkg/metrics"
	"github.com/jefferyq2/ButteryToast/pkg/remote"
	"github.com/jefferyq2/ButteryToast/pkg/surface"
	"github.com/jefferyq2/ButteryToast/pkg/toast"
)

const shutdownTimeout = 10 * time.Second

// App is the toast server. It owns the WebSocket sessions, serves the
// embedded browser assets, and exposes the HTTP API for presenting
// toasts on live sessions.
//
//	cfg, err := config.Load(".")
//	app := butterytoast.New(cfg)
//	app.Run()
//
// App implements http.Handler, so it can also be mounted inside a
// larger router instead of owning the listener.
type App struct {
	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	devMode  bool

	router   chi.Router
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*liveSession

	// onDismiss is shared across all toasts the HTTP API presents.
	onDismiss toast.Delegate

	watcher    *dev.Watcher
	httpServer *http.Server
}

// liveSession pairs a session with its instrumented surface. Toasts are
// always presented on the wrapped surface so the counters stay honest.
type liveSession struct {
	sess *remote.Session
	surf surface.Surface
}

// Option configures an App.
type Option func(*App)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDevMode toggles development behavior: cross-origin WebSocket
// connections are accepted, assets are served uncached, and Run starts
// the file watcher that reloads connected clients.
func WithDevMode(enabled bool) Option {
	return func(a *App) {
		a.devMode = enabled
	}
}

// WithRegistry sets the Prometheus registry backing /metrics. Defaults
// to a fresh private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		if reg != nil {
			a.registry = reg
		}
	}
}

// New creates an App from cfg. A nil cfg uses defaults.
func New(cfg *config.Config, opts ...Option) *App {
	if cfg == nil {
		cfg = config.Default()
	}

	a := &App{
		cfg:      cfg,
		logger:   slog.Default(),
		registry: prometheus.NewRegistry(),
		sessions: make(map[string]*liveSession),
	}
	for _, opt := range opts {
		opt(a)
	}

	a.onDismiss = metrics.InstrumentDelegate(toast.DelegateFunc(func(t *toast.Toast) {
		a.logger.Debug("toast dismissed", "toast_id", t.ID())
	}), a.metricOpts()...)

	if a.devMode {
		a.upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	a.routes()
	return a
}

func (a *App) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(a.requestLog)

	r.Get("/", a.handleIndex)
	r.Get("/client.js", a.handleClientJS)
	r.Get("/ws", a.handleWebSocket)
	r.Get("/healthz", a.handleHealthz)
	r.Get("/sessions", a.handleSessions)
	r.Post("/sessions/{session}/toasts", a.handleTrigger)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.router = r
}

// requestLog records every request at debug level once it completes.
func (a *App) requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		a.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Handler returns the App as an http.Handler.
func (a *App) Handler() http.Handler {
	return a
}

func (a *App) metricOpts() []metrics.Option {
	opts := []metrics.Option{metrics.WithRegistry(a.registry)}
	if a.cfg.Metrics.Namespace != "" {
		opts = append(opts, metrics.WithNamespace(a.cfg.Metrics.Namespace))
	}
	return opts
}

// addSession registers a started session and returns the surface toasts
// should be presented on. The session removes itself when it ends.
func (a *App) addSession(sess *remote.Session) surface.Surface {
	ls := &liveSession{
		sess: sess,
		surf: metrics.InstrumentSurface(sess, a.metricOpts()...),
	}

	a.mu.Lock()
	a.sessions[sess.ID()] = ls
	a.mu.Unlock()

	go func() {
		<-sess.Done()
		a.mu.Lock()
		delete(a.sessions, sess.ID())
		a.mu.Unlock()
	}()

	return ls.surf
}

func (a *App) lookup(id string) (*liveSession, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	ls, ok := a.sessions[id]
	return ls, ok
}

// SessionCount returns the number of connected sessions.
func (a *App) SessionCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.sessions)
}

// Reload asks every connected client to reload the page and returns the
// number of sessions notified.
func (a *App) Reload() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	n := 0
	for _, ls := range a.sessions {
		if err := ls.sess.Reload(); err != nil {
			a.logger.Debug("reload send failed", "session_id", ls.sess.ID(), "error", err)
			continue
		}
		n++
	}
	return n
}

// Config returns the app configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Logger returns the app logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Registry returns the Prometheus registry backing /metrics.
func (a *App) Registry() *prometheus.Registry {
	return a.registry
}

// Run starts the server and blocks until shutdown. SIGINT and SIGTERM
// trigger a graceful shutdown.
func (a *App) Run() error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	if a.devMode && len(a.cfg.Dev.Watch) > 0 {
		w, err := dev.Watch(dev.Config{
			Paths:    a.cfg.Dev.Watch,
			Debounce: a.cfg.DebounceWindow(),
			Logger:   a.logger,
		}, func() { a.Reload() })
		if err != nil {
			a.logger.Warn("file watcher unavailable", "error", err)
		} else {
			a.watcher = w
		}
	}

	a.httpServer = &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server starting", "address", a.cfg.Addr, "dev_mode", a.devMode)
		errCh <- a.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			return err
		}
		return nil

	case <-shutdown:
		a.logger.Info("shutting down...")
		return a.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server. Connected clients receive
// a shutdown control frame so they do not try to reconnect.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if a.watcher != nil {
		a.watcher.Stop()
	}

	a.mu.Lock()
	open := make([]*remote.Session, 0, len(a.sessions))
	for _, ls := range a.sessions {
		open = append(open, ls.sess)
	}
	a.mu.Unlock()
	for _, sess := range open {
		sess.Close()
	}

	if a.httpServer != nil {
		if err := a.httpServer.Shutdown(ctx); err != nil {
			a.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	a.logger.Info("server shutdown complete")
	return nil
}
