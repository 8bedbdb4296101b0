// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/poserelay/lib/pose"
)

// EnvironmentVariable names the config file when --config is not given.
const EnvironmentVariable = "POSE_RELAY_CONFIG"

// Config is the complete relay configuration.
type Config struct {
	Listen    ListenConfig    `yaml:"listen"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Watchdog  WatchdogConfig  `yaml:"watchdog"`
	Source    SourceConfig    `yaml:"source"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Log       LogConfig       `yaml:"log"`
}

// ListenConfig configures the controller-facing socket.
type ListenConfig struct {
	// Address is the IPv4 host:port to bind. Default: 0.0.0.0:5800
	Address string `yaml:"address"`
}

// TelemetryConfig configures the outgoing pose stream.
type TelemetryConfig struct {
	// Decimation sends one of every Decimation records. Default: 20
	Decimation int `yaml:"decimation"`

	// Unit is the linear unit of x and y. Default: feet
	Unit pose.Unit `yaml:"unit"`

	// WriteTimeout bounds a single write to the controller. A write
	// that cannot complete in time ends the session. Default: 1s
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// WatchdogConfig configures peer liveness detection.
type WatchdogConfig struct {
	// KeepaliveTimeout is how long the peer may stay silent before the
	// session is torn down. Zero disables the watchdog. Default: 5s
	KeepaliveTimeout time.Duration `yaml:"keepalive_timeout"`

	// PollInterval is how often the watchdog checks. Default: 1s
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Source kinds.
const (
	SourceSynthetic = "synthetic"
	SourceReplay    = "replay"
)

// SourceConfig selects the pose source.
type SourceConfig struct {
	// Kind is "synthetic" or "replay". Default: synthetic
	Kind string `yaml:"kind"`

	// RateHz is the sample rate. For replay, zero means the rate in
	// the trace header. Default: 200 for synthetic
	RateHz float64 `yaml:"rate_hz"`

	// TracePath is the trace file replayed when Kind is "replay".
	TracePath string `yaml:"trace_path"`

	// Loop restarts the trace at its end instead of ending the
	// session. Default: true
	Loop *bool `yaml:"loop"`
}

// Looping reports whether a replay source should restart at the end.
func (s SourceConfig) Looping() bool { return s.Loop == nil || *s.Loop }

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	// Address is the host:port for /metrics. Empty disables it.
	Address string `yaml:"address"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is debug, info, warn, or error. Default: info
	Level string `yaml:"level"`

	// Format is json, text, or auto (text on a terminal, JSON
	// otherwise). Default: auto
	Format string `yaml:"format"`

	// File, when set, receives log output instead of stderr and is
	// rotated by size.
	File string `yaml:"file"`

	// MaxSizeMB is the size at which File is rotated. Default: 50
	MaxSizeMB int `yaml:"max_size_mb"`

	// MaxBackups is how many rotated files are kept. Default: 5
	MaxBackups int `yaml:"max_backups"`

	// MaxAgeDays removes rotated files older than this. Zero keeps
	// them regardless of age.
	MaxAgeDays int `yaml:"max_age_days"`

	// Compress gzips rotated files.
	Compress bool `yaml:"compress"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Watchdog: WatchdogConfig{KeepaliveTimeout: defaultKeepaliveTimeout}}
	cfg.applyDefaults()
	return cfg
}

const defaultKeepaliveTimeout = 5 * time.Second

func (c *Config) applyDefaults() {
	if c.Listen.Address == "" {
		c.Listen.Address = "0.0.0.0:5800"
	}
	if c.Telemetry.Decimation == 0 {
		c.Telemetry.Decimation = 20
	}
	if c.Telemetry.Unit == "" {
		c.Telemetry.Unit = pose.Feet
	}
	if c.Telemetry.WriteTimeout == 0 {
		c.Telemetry.WriteTimeout = time.Second
	}
	if c.Watchdog.PollInterval == 0 {
		c.Watchdog.PollInterval = time.Second
	}
	if c.Source.Kind == "" {
		c.Source.Kind = SourceSynthetic
	}
	if c.Source.Kind == SourceSynthetic && c.Source.RateHz == 0 {
		c.Source.RateHz = 200
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "auto"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
}

// Resolve loads the file named by flagPath, or by POSE_RELAY_CONFIG when
// flagPath is empty, or returns Default when neither is set. The second
// result is the path that was loaded, empty for defaults.
func Resolve(flagPath string) (*Config, string, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv(EnvironmentVariable)
	}
	if path == "" {
		return Default(), "", nil
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile loads, defaults, and validates the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data as YAML, or as JSONC when extension is ".json" or
// ".jsonc", then applies defaults, expands variables, and validates.
// Timeout values set to zero explicitly are replaced by their defaults,
// except watchdog.keepalive_timeout, whose zero disables the watchdog.
func Parse(data []byte, extension string) (*Config, error) {
	switch strings.ToLower(extension) {
	case ".json", ".jsonc":
		data = jsonc.ToJSON(data)
	}

	cfg := &Config{Watchdog: WatchdogConfig{KeepaliveTimeout: -1}}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding: %w", err)
	}
	if cfg.Watchdog.KeepaliveTimeout == -1 {
		cfg.Watchdog.KeepaliveTimeout = defaultKeepaliveTimeout
	}

	cfg.applyDefaults()
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) expandVariables() {
	c.Source.TracePath = expandVars(c.Source.TracePath)
	c.Log.File = expandVars(c.Log.File)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} from the environment.
func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration for errors, reporting all of them.
func (c *Config) Validate() error {
	var errs []error

	if _, port, err := net.SplitHostPort(c.Listen.Address); err != nil || port == "" {
		errs = append(errs, fmt.Errorf("listen.address %q is not host:port", c.Listen.Address))
	}

	if c.Telemetry.Decimation < 1 {
		errs = append(errs, fmt.Errorf("telemetry.decimation must be at least 1, got %d", c.Telemetry.Decimation))
	}
	if _, err := pose.ParseUnit(string(c.Telemetry.Unit)); err != nil {
		errs = append(errs, fmt.Errorf("telemetry.unit: %w", err))
	}
	if c.Telemetry.WriteTimeout < 0 {
		errs = append(errs, fmt.Errorf("telemetry.write_timeout must be positive"))
	}

	if c.Watchdog.KeepaliveTimeout < 0 {
		errs = append(errs, fmt.Errorf("watchdog.keepalive_timeout must not be negative"))
	}
	if c.Watchdog.PollInterval < 0 {
		errs = append(errs, fmt.Errorf("watchdog.poll_interval must be positive"))
	}
	if c.Watchdog.KeepaliveTimeout > 0 && c.Watchdog.PollInterval > c.Watchdog.KeepaliveTimeout {
		errs = append(errs, fmt.Errorf("watchdog.poll_interval %s exceeds keepalive_timeout %s",
			c.Watchdog.PollInterval, c.Watchdog.KeepaliveTimeout))
	}

	switch c.Source.Kind {
	case SourceSynthetic:
		if c.Source.RateHz <= 0 {
			errs = append(errs, fmt.Errorf("source.rate_hz must be positive for a synthetic source"))
		}
	case SourceReplay:
		if c.Source.TracePath == "" {
			errs = append(errs, fmt.Errorf("source.trace_path is required for a replay source"))
		}
		if c.Source.RateHz < 0 {
			errs = append(errs, fmt.Errorf("source.rate_hz must not be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("source.kind must be %q or %q, got %q", SourceSynthetic, SourceReplay, c.Source.Kind))
	}

	if c.Metrics.Address != "" {
		if _, _, err := net.SplitHostPort(c.Metrics.Address); err != nil {
			errs = append(errs, fmt.Errorf("metrics.address %q is not host:port", c.Metrics.Address))
		}
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of debug, info, warn, error"))
	}
	if !slices.Contains([]string{"auto", "json", "text"}, c.Log.Format) {
		errs = append(errs, fmt.Errorf("log.format must be one of auto, json, text"))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAgeDays < 0 {
		errs = append(errs, fmt.Errorf("log rotation limits must not be negative"))
	}

	return errors.Join(errs...)
}
