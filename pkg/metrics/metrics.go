// Package metrics decorates surfaces and delegates with Prometheus
// collectors. The toast core stays dependency-free; instrumentation
// wraps the capabilities it consumes instead.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jefferyq2/ButteryToast/pkg/sched"
	"github.com/jefferyq2/ButteryToast/pkg/surface"
	"github.com/jefferyq2/ButteryToast/pkg/toast"
	"github.com/jefferyq2/ButteryToast/pkg/view"
)

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "butterytoast").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for visible duration.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the visible-duration histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "butterytoast",
		// Toasts live on the order of seconds, not milliseconds.
		Buckets:  []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		Registry: prometheus.DefaultRegisterer,
	}
}

// surfaceMetrics holds the collectors shared by every instrumented
// surface on one registerer.
type surfaceMetrics struct {
	mounted        prometheus.Counter
	detached       prometheus.Counter
	taps           prometheus.Counter
	active         prometheus.Gauge
	visibleSeconds prometheus.Histogram
}

type delegateMetrics struct {
	dismissals prometheus.Counter
}

// Collectors are created once per registerer and reused, so a surface
// can be instrumented per session without duplicate registration.
// Later calls on the same registerer keep the first call's config.
var (
	setsMu       sync.Mutex
	surfaceSets  = map[prometheus.Registerer]*surfaceMetrics{}
	delegateSets = map[prometheus.Registerer]*delegateMetrics{}
)

func newSurfaceMetrics(config Config) *surfaceMetrics {
	factory := promauto.With(config.Registry)

	return &surfaceMetrics{
		mounted: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "mounted_total",
			Help:        "Total number of toast containers mounted",
			ConstLabels: config.ConstLabels,
		}),

		detached: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "detached_total",
			Help:        "Total number of toast containers detached",
			ConstLabels: config.ConstLabels,
		}),

		taps: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "taps_total",
			Help:        "Total number of taps delivered to toast handlers",
			ConstLabels: config.ConstLabels,
		}),

		active: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active",
			Help:        "Number of currently mounted toast containers",
			ConstLabels: config.ConstLabels,
		}),

		visibleSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "visible_duration_seconds",
			Help:        "Time from mount to detach per toast container",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
	}
}

func newDelegateMetrics(config Config) *delegateMetrics {
	factory := promauto.With(config.Registry)

	return &delegateMetrics{
		dismissals: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "dismissals_total",
			Help:        "Total number of toasts that completed dismissal",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func surfaceSetFor(config Config) *surfaceMetrics {
	setsMu.Lock()
	defer setsMu.Unlock()
	if set, ok := surfaceSets[config.Registry]; ok {
		return set
	}
	set := newSurfaceMetrics(config)
	surfaceSets[config.Registry] = set
	return set
}

func delegateSetFor(config Config) *delegateMetrics {
	setsMu.Lock()
	defer setsMu.Unlock()
	if set, ok := delegateSets[config.Registry]; ok {
		return set
	}
	set := newDelegateMetrics(config)
	delegateSets[config.Registry] = set
	return set
}

// instrumentedSurface wraps a Surface, counting mounts, detaches, and
// delivered taps, and timing mount-to-detach per container.
type instrumentedSurface struct {
	inner surface.Surface
	m     *surfaceMetrics
	since map[string]time.Time // Container ID -> mount time
}

// InstrumentSurface wraps s with Prometheus collectors.
//
// Metrics collected:
//   - butterytoast_mounted_total
//   - butterytoast_detached_total
//   - butterytoast_taps_total
//   - butterytoast_active
//   - butterytoast_visible_duration_seconds
//
// The wrapper has the same threading contract as the Surface it wraps:
// call it on the surface's scheduler.
func InstrumentSurface(s surface.Surface, opts ...Option) surface.Surface {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &instrumentedSurface{
		inner: s,
		m:     surfaceSetFor(config),
		since: make(map[string]time.Time),
	}
}

func (s *instrumentedSurface) Mount(content *view.Node, opts surface.MountOptions) (surface.Handle, error) {
	h, err := s.inner.Mount(content, opts)
	if err != nil {
		return nil, err
	}
	s.m.mounted.Inc()
	s.m.active.Inc()
	s.since[h.Target()] = time.Now()
	return h, nil
}

func (s *instrumentedSurface) Animate(h surface.Handle, a surface.Animation, done func()) {
	s.inner.Animate(h, a, done)
}

func (s *instrumentedSurface) Detach(h surface.Handle) {
	s.inner.Detach(h)
	s.m.detached.Inc()
	s.m.active.Dec()
	if t0, ok := s.since[h.Target()]; ok {
		s.m.visibleSeconds.Observe(time.Since(t0).Seconds())
		delete(s.since, h.Target())
	}
}

func (s *instrumentedSurface) AttachTap(h surface.Handle, fn func()) {
	s.inner.AttachTap(h, func() {
		s.m.taps.Inc()
		fn()
	})
}

func (s *instrumentedSurface) Scheduler() sched.Scheduler {
	return s.inner.Scheduler()
}

// instrumentedDelegate wraps a Delegate, counting dismissals.
type instrumentedDelegate struct {
	inner toast.Delegate
	m     *delegateMetrics
}

// InstrumentDelegate wraps d with a butterytoast_dismissals_total
// counter. d may be nil to count without forwarding.
func InstrumentDelegate(d toast.Delegate, opts ...Option) toast.Delegate {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	return &instrumentedDelegate{
		inner: d,
		m:     delegateSetFor(config),
	}
}

func (d *instrumentedDelegate) ToastDismissed(t *toast.Toast) {
	d.m.dismissals.Inc()
	if d.inner != nil {
		d.inner.ToastDismissed(t)
	}
}
