// Package metrics exports engine and server activity to Prometheus.
//
// Recorder implements fiber.Observer, so wiring it into a session is a
// single option:
//
//	rec := metrics.New(metrics.WithNamespace("loom"))
//	s := fiber.New(doc, loop, fiber.WithObserver(rec))
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/loom/pkg/fiber"
)

// Config configures a Recorder.
type Config struct {
	// Namespace is the metrics namespace (default: "loom").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for commit duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Recorder.
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

// WithBuckets sets the histogram buckets.
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
		Namespace: "loom",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Recorder holds the Prometheus collectors.
type Recorder struct {
	passes         *prometheus.CounterVec
	passesAborted  prometheus.Counter
	passesDropped  prometheus.Counter
	units          prometheus.Counter
	slices         *prometheus.CounterVec
	commits        prometheus.Counter
	commitDuration prometheus.Histogram
	actions        *prometheus.CounterVec
	mutations      prometheus.Counter

	clients     prometheus.Gauge
	framesSent  prometheus.Counter
	eventsTotal *prometheus.CounterVec
}

var _ fiber.Observer = (*Recorder)(nil)

// New registers the collectors and returns a Recorder.
func New(opts ...Option) *Recorder {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	counterOpts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		}
	}

	return &Recorder{
		passes: factory.NewCounterVec(
			counterOpts("passes_total", "Reconciliation passes started"),
			[]string{"reason"}),
		passesAborted: factory.NewCounter(
			counterOpts("passes_aborted_total", "Passes aborted by an error")),
		passesDropped: factory.NewCounter(
			counterOpts("passes_discarded_total", "Passes discarded before commit")),
		units: factory.NewCounter(
			counterOpts("units_of_work_total", "Fibers processed by the work loop")),
		slices: factory.NewCounterVec(
			counterOpts("idle_slices_total", "Idle slices used by the work loop"),
			[]string{"outcome"}),
		commits: factory.NewCounter(
			counterOpts("commits_total", "Commits applied to the host")),
		commitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Time spent in the commit walk",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),
		actions: factory.NewCounterVec(
			counterOpts("actions_total", "Fibers committed by action"),
			[]string{"action"}),
		mutations: factory.NewCounter(
			counterOpts("host_mutations_total", "Host primitive calls made by committed passes")),

		clients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "clients_connected",
			Help:        "Connected websocket clients",
			ConstLabels: config.ConstLabels,
		}),
		framesSent: factory.NewCounter(
			counterOpts("frames_sent_total", "Protocol frames sent to clients")),
		eventsTotal: factory.NewCounterVec(
			counterOpts("events_total", "Client events received"),
			[]string{"type", "status"}),
	}
}

// PassStarted implements fiber.Observer.
func (r *Recorder) PassStarted(reason string) {
	r.passes.WithLabelValues(reason).Inc()
}

// PassDiscarded implements fiber.Observer.
func (r *Recorder) PassDiscarded() {
	r.passesDropped.Inc()
}

// PassAborted implements fiber.Observer.
func (r *Recorder) PassAborted(err error) {
	r.passesAborted.Inc()
}

// SliceFinished implements fiber.Observer.
func (r *Recorder) SliceFinished(units int, yielded bool) {
	r.units.Add(float64(units))
	if yielded {
		r.slices.WithLabelValues("yielded").Inc()
	} else {
		r.slices.WithLabelValues("completed").Inc()
	}
}

// Committed implements fiber.Observer.
func (r *Recorder) Committed(rep fiber.CommitReport) {
	r.commits.Inc()
	r.commitDuration.Observe(rep.Duration.Seconds())
	r.actions.WithLabelValues("add").Add(float64(rep.Added))
	r.actions.WithLabelValues("update").Add(float64(rep.Updated))
	r.actions.WithLabelValues("remove").Add(float64(rep.Removed))
	r.mutations.Add(float64(rep.Mutations))
}

// ClientConnected records a new websocket client.
func (r *Recorder) ClientConnected() {
	r.clients.Inc()
}

// ClientDisconnected records a closed websocket client.
func (r *Recorder) ClientDisconnected() {
	r.clients.Dec()
}

// FrameSent records an outgoing mutation frame.
func (r *Recorder) FrameSent() {
	r.framesSent.Inc()
}

// EventReceived records a client event and whether it reached a listener.
func (r *Recorder) EventReceived(eventType string, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	r.eventsTotal.WithLabelValues(eventType, status).Inc()
}
