package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/loom/internal/errors"
)

const (
	// ConfigFileName is the JSON configuration file name.
	ConfigFileName = "loom.json"

	// DefaultPort is the default HTTP port.
	DefaultPort = 3000

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "loom"
)

// FileNames lists the configuration files Load looks for, in order.
var FileNames = []string{"loom.json", "loom.yaml", "loom.yml"}

// Snapshot store kinds.
const (
	StoreNone  = "none"
	StoreFile  = "file"
	StoreS3    = "s3"
	StoreRedis = "redis"
)

// Config represents loom.json / loom.yaml.
type Config struct {
	Scheduler SchedulerConfig `json:"scheduler" yaml:"scheduler"`
	Server    ServerConfig    `json:"server" yaml:"server"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics"`
	Snapshot  SnapshotConfig  `json:"snapshot" yaml:"snapshot"`

	configPath string
}

// SchedulerConfig configures the scheduler loop.
type SchedulerConfig struct {
	// SliceBudget is the time granted to each idle slice.
	SliceBudget string `json:"sliceBudget,omitempty" yaml:"sliceBudget,omitempty"`

	// FrameInterval is the period between commit slices.
	FrameInterval string `json:"frameInterval,omitempty" yaml:"frameInterval,omitempty"`

	// QueueSize is the loop's task queue capacity.
	QueueSize int `json:"queueSize,omitempty" yaml:"queueSize,omitempty"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string `json:"host,omitempty" yaml:"host,omitempty"`
	Port         int    `json:"port,omitempty" yaml:"port,omitempty"`
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	ReadTimeout  string `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout string `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	PingInterval string `json:"pingInterval,omitempty" yaml:"pingInterval,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Path      string `json:"path,omitempty" yaml:"path,omitempty"`
}

// SnapshotConfig selects and configures the snapshot store.
type SnapshotConfig struct {
	// Store is none, file, s3 or redis.
	Store string `json:"store,omitempty" yaml:"store,omitempty"`

	// Key is the name the latest snapshot is stored under.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	// Dir is the FileStore directory.
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Bucket, Prefix, Region and Endpoint configure the S3 store.
	Bucket   string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Region   string `json:"region,omitempty" yaml:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`

	// RedisAddr and TTL configure the Redis store.
	RedisAddr string `json:"redisAddr,omitempty" yaml:"redisAddr,omitempty"`
	TTL       string `json:"ttl,omitempty" yaml:"ttl,omitempty"`
}

// New creates a configuration with default values.
func New() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			SliceBudget:   "5ms",
			FrameInterval: "16ms",
			QueueSize:     256,
		},
		Server: ServerConfig{
			Port:         DefaultPort,
			Title:        "loom",
			ReadTimeout:  "60s",
			WriteTimeout: "10s",
			PingInterval: "30s",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
			Path:      "/metrics",
		},
		Snapshot: SnapshotConfig{
			Store:     StoreNone,
			Key:       "latest",
			Dir:       ".loom/snapshots",
			Prefix:    "loom/",
			Region:    "us-east-1",
			RedisAddr: "localhost:6379",
		},
	}
}

// Load reads the first configuration file of FileNames found in dir.
func Load(dir string) (*Config, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E121").
		WithDetail("No loom.json or loom.yaml found in " + dir).
		WithSuggestion("Create loom.json, or run without a config file to use the defaults")
}

// LoadFile loads configuration from a specific file. The format follows
// the extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E121").WithDetail("No config file at " + path)
		}
		return nil, errors.New("E120").Wrap(err)
	}

	cfg, err := Parse(data, formatOf(path))
	if err != nil {
		return nil, err
	}
	cfg.configPath = path
	return cfg, nil
}

// Parse decodes configuration data in the given format ("json" or
// "yaml") on top of the defaults.
func Parse(data []byte, format string) (*Config, error) {
	cfg := New()
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse YAML: " + err.Error()).
				WithSuggestion("Check that the file is valid YAML")
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("E120").
				WithDetail("Failed to parse loom.json: " + err.Error()).
				WithSuggestion("Check that loom.json is valid JSON")
		}
	}
	cfg.applyDefaults()
	return cfg, nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension
// names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if formatOf(path) == "yaml" {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("E120").Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E120").Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	def := New()

	if c.Scheduler.SliceBudget == "" {
		c.Scheduler.SliceBudget = def.Scheduler.SliceBudget
	}
	if c.Scheduler.FrameInterval == "" {
		c.Scheduler.FrameInterval = def.Scheduler.FrameInterval
	}
	if c.Scheduler.QueueSize == 0 {
		c.Scheduler.QueueSize = def.Scheduler.QueueSize
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Server.Title == "" {
		c.Server.Title = def.Server.Title
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = def.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = def.Server.WriteTimeout
	}
	if c.Server.PingInterval == "" {
		c.Server.PingInterval = def.Server.PingInterval
	}

	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}

	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = def.Metrics.Path
	}

	if c.Snapshot.Store == "" {
		c.Snapshot.Store = StoreNone
	}
	if c.Snapshot.Key == "" {
		c.Snapshot.Key = def.Snapshot.Key
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = def.Snapshot.Dir
	}
	if c.Snapshot.Region == "" {
		c.Snapshot.Region = def.Snapshot.Region
	}
	if c.Snapshot.RedisAddr == "" {
		c.Snapshot.RedisAddr = def.Snapshot.RedisAddr
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	durations := []struct {
		field, value string
		optional     bool
	}{
		{"scheduler.sliceBudget", c.Scheduler.SliceBudget, false},
		{"scheduler.frameInterval", c.Scheduler.FrameInterval, false},
		{"server.readTimeout", c.Server.ReadTimeout, false},
		{"server.writeTimeout", c.Server.WriteTimeout, false},
		{"server.pingInterval", c.Server.PingInterval, false},
		{"snapshot.ttl", c.Snapshot.TTL, true},
	}
	for _, d := range durations {
		if d.optional && d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil || v <= 0 {
			return invalid(d.field, "must be a positive duration like \"5ms\" or \"30s\", got %q", d.value)
		}
	}

	if c.Scheduler.QueueSize < 0 {
		return invalid("scheduler.queueSize", "must not be negative")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return invalid("server.port", "must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.PingInterval() >= c.ReadTimeout() {
		return invalid("server.pingInterval", "must be shorter than server.readTimeout")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		return invalid("log.level", "%v", err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return invalid("log.format", "must be text or json, got %q", c.Log.Format)
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return invalid("metrics.path", "must start with /, got %q", c.Metrics.Path)
	}

	switch c.Snapshot.Store {
	case StoreNone, StoreFile:
	case StoreS3:
		if c.Snapshot.Bucket == "" {
			return invalid("snapshot.bucket", "is required for the s3 store")
		}
	case StoreRedis:
		if _, _, err := net.SplitHostPort(c.Snapshot.RedisAddr); err != nil {
			return invalid("snapshot.redisAddr", "must be host:port, got %q", c.Snapshot.RedisAddr)
		}
	default:
		return invalid("snapshot.store", "must be none, file, s3 or redis, got %q", c.Snapshot.Store)
	}
	return nil
}

func invalid(field, format string, args ...any) error {
	return errors.New("E122").
		WithDetail(field + " " + fmt.Sprintf(format, args...)).
		WithSuggestion("Fix " + field + " in the config file")
}

// Address returns the listen address.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// SliceBudget returns the parsed idle slice budget.
func (c *Config) SliceBudget() time.Duration { return mustDuration(c.Scheduler.SliceBudget) }

// FrameInterval returns the parsed commit frame interval.
func (c *Config) FrameInterval() time.Duration { return mustDuration(c.Scheduler.FrameInterval) }

// ReadTimeout returns the parsed websocket read timeout.
func (c *Config) ReadTimeout() time.Duration { return mustDuration(c.Server.ReadTimeout) }

// WriteTimeout returns the parsed websocket write timeout.
func (c *Config) WriteTimeout() time.Duration { return mustDuration(c.Server.WriteTimeout) }

// PingInterval returns the parsed heartbeat interval.
func (c *Config) PingInterval() time.Duration { return mustDuration(c.Server.PingInterval) }

// SnapshotTTL returns the parsed snapshot TTL, zero when unset.
func (c *Config) SnapshotTTL() time.Duration { return mustDuration(c.Snapshot.TTL) }

// mustDuration parses a validated duration; invalid values read as zero.
func mustDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("must be debug, info, warn or error, got %q", s)
	}
	return l, nil
}

// NewLogger builds a logger writing to w with the configured level and
// format.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
