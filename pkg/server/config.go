package server

import (
	"log/slog"
	"net/http"
	"time"
)

// Config holds server configuration.
type Config struct {
	// Address is the listen address.
	// Default: ":3000".
	Address string

	// Title is the page title of "/".
	Title string

	// ReadTimeout is the maximum time to wait for a frame from a client.
	// It is reset by every frame and every pong.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a frame.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// PingInterval is the time between heartbeat pings. It must be shorter
	// than ReadTimeout.
	// Default: 30 seconds.
	PingInterval time.Duration

	// MaxMessageSize is the maximum size of an incoming websocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// SendQueueSize is the number of frames buffered per client.
	// Default: 64.
	SendQueueSize int

	// MetricsPath is where Prometheus metrics are served. The route only
	// exists when the server has a gatherer (WithGatherer).
	// Default: "/metrics".
	MetricsPath string

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 10 seconds.
	ShutdownTimeout time.Duration

	// CheckOrigin validates websocket origins.
	// Default: same-origin check from gorilla/websocket.
	CheckOrigin func(r *http.Request) bool

	// Logger is the base logger. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:         ":3000",
		Title:           "loom",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  64 * 1024,
		SendQueueSize:   64,
		MetricsPath:     "/metrics",
		ShutdownTimeout: 10 * time.Second,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c *Config) withDefaults() *Config {
	def := DefaultConfig()
	if c == nil {
		return def
	}
	out := *c
	if out.Address == "" {
		out.Address = def.Address
	}
	if out.Title == "" {
		out.Title = def.Title
	}
	if out.ReadTimeout <= 0 {
		out.ReadTimeout = def.ReadTimeout
	}
	if out.WriteTimeout <= 0 {
		out.WriteTimeout = def.WriteTimeout
	}
	if out.PingInterval <= 0 {
		out.PingInterval = def.PingInterval
	}
	if out.MaxMessageSize <= 0 {
		out.MaxMessageSize = def.MaxMessageSize
	}
	if out.SendQueueSize <= 0 {
		out.SendQueueSize = def.SendQueueSize
	}
	if out.MetricsPath == "" {
		out.MetricsPath = def.MetricsPath
	}
	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = def.ShutdownTimeout
	}
	return &out
}
