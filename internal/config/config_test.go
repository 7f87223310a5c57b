package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/loom/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.SliceBudget() != 5*time.Millisecond {
		t.Errorf("SliceBudget() = %v, want 5ms", cfg.SliceBudget())
	}
	if cfg.FrameInterval() != 16*time.Millisecond {
		t.Errorf("FrameInterval() = %v, want 16ms", cfg.FrameInterval())
	}
	if cfg.Snapshot.Store != StoreNone {
		t.Errorf("Snapshot.Store = %q, want none", cfg.Snapshot.Store)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	content := `{
		"scheduler": {"sliceBudget": "2ms"},
		"server": {"port": 8080, "title": "todos"},
		"snapshot": {"store": "file", "dir": "snaps"}
	}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.SliceBudget() != 2*time.Millisecond {
		t.Errorf("SliceBudget() = %v, want 2ms", cfg.SliceBudget())
	}
	// Unset fields keep their defaults.
	if cfg.FrameInterval() != 16*time.Millisecond {
		t.Errorf("FrameInterval() = %v, want 16ms", cfg.FrameInterval())
	}
	if cfg.Snapshot.Key != "latest" {
		t.Errorf("Snapshot.Key = %q, want latest", cfg.Snapshot.Key)
	}
	if cfg.Path() != filepath.Join(dir, ConfigFileName) {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	content := `
server:
  port: 9000
log:
  level: debug
  format: json
snapshot:
  store: redis
  redisAddr: cache:6379
  ttl: 1h
`
	if err := os.WriteFile(filepath.Join(dir, "loom.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if cfg.SnapshotTTL() != time.Hour {
		t.Errorf("SnapshotTTL() = %v, want 1h", cfg.SnapshotTTL())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoadPrefersJSON(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "loom.json"), []byte(`{"server":{"port":1111}}`), 0644)
	os.WriteFile(filepath.Join(dir, "loom.yml"), []byte("server:\n  port: 2222\n"), 0644)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 1111 {
		t.Errorf("Port = %d, want 1111", cfg.Server.Port)
	}
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.IsCode(err, "E121") {
		t.Errorf("Load() error = %v, want E121", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	dir := t.TempDir()

	jsonPath := filepath.Join(dir, "bad.json")
	os.WriteFile(jsonPath, []byte("{not json"), 0644)
	if _, err := LoadFile(jsonPath); !errors.IsCode(err, "E120") {
		t.Errorf("LoadFile(json) error = %v, want E120", err)
	}

	yamlPath := filepath.Join(dir, "bad.yaml")
	os.WriteFile(yamlPath, []byte("server: [unclosed"), 0644)
	if _, err := LoadFile(yamlPath); !errors.IsCode(err, "E120") {
		t.Errorf("LoadFile(yaml) error = %v, want E120", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative port", func(c *Config) { c.Server.Port = -1 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad budget", func(c *Config) { c.Scheduler.SliceBudget = "fast" }, "scheduler.sliceBudget"},
		{"zero interval", func(c *Config) { c.Scheduler.FrameInterval = "0s" }, "scheduler.frameInterval"},
		{"ping after read", func(c *Config) { c.Server.PingInterval = "2m" }, "server.pingInterval"},
		{"bad ttl", func(c *Config) { c.Snapshot.TTL = "forever" }, "snapshot.ttl"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
		{"bad metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, "metrics.path"},
		{"unknown store", func(c *Config) { c.Snapshot.Store = "gcs" }, "snapshot.store"},
		{"s3 without bucket", func(c *Config) { c.Snapshot.Store = StoreS3 }, "snapshot.bucket"},
		{"redis bad addr", func(c *Config) {
			c.Snapshot.Store = StoreRedis
			c.Snapshot.RedisAddr = "localhost"
		}, "snapshot.redisAddr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.IsCode(err, "E122") {
				t.Fatalf("Validate() error = %v, want E122", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not name %s", err.Error(), tt.field)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"loom.json", "loom.yaml"} {
		t.Run(name, func(t *testing.T) {
			cfg := New()
			cfg.Server.Port = 4000
			cfg.Snapshot.Store = StoreS3
			cfg.Snapshot.Bucket = "snaps"

			path := filepath.Join(dir, name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo() error = %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile() error = %v", err)
			}
			if loaded.Server.Port != 4000 {
				t.Errorf("Port = %d, want 4000", loaded.Server.Port)
			}
			if loaded.Snapshot.Bucket != "snaps" {
				t.Errorf("Bucket = %q, want snaps", loaded.Snapshot.Bucket)
			}
			if err := loaded.Save(); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		})
	}
}

func TestSaveWithoutPath(t *testing.T) {
	if err := New().Save(); err == nil {
		t.Error("Save() without a path should fail")
	}
}

func TestAddress(t *testing.T) {
	cfg := New()
	if got := cfg.Address(); got != ":3000" {
		t.Errorf("Address() = %q, want :3000", got)
	}
	cfg.Server.Host = "127.0.0.1"
	if got := cfg.Address(); got != "127.0.0.1:3000" {
		t.Errorf("Address() = %q, want 127.0.0.1:3000", got)
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"k":"v"`) {
		t.Errorf("unexpected output: %s", out)
	}
}
