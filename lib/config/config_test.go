// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/poserelay/lib/pose"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Listen.Address != "0.0.0.0:5800" {
		t.Errorf("listen.address = %q, want 0.0.0.0:5800", cfg.Listen.Address)
	}
	if cfg.Telemetry.Decimation != 20 {
		t.Errorf("telemetry.decimation = %d, want 20", cfg.Telemetry.Decimation)
	}
	if cfg.Telemetry.Unit != pose.Feet {
		t.Errorf("telemetry.unit = %q, want feet", cfg.Telemetry.Unit)
	}
	if cfg.Watchdog.KeepaliveTimeout != 5*time.Second {
		t.Errorf("watchdog.keepalive_timeout = %s, want 5s", cfg.Watchdog.KeepaliveTimeout)
	}
	if cfg.Watchdog.PollInterval != time.Second {
		t.Errorf("watchdog.poll_interval = %s, want 1s", cfg.Watchdog.PollInterval)
	}
	if cfg.Source.Kind != SourceSynthetic || cfg.Source.RateHz != 200 {
		t.Errorf("source = %s at %vHz, want synthetic at 200Hz", cfg.Source.Kind, cfg.Source.RateHz)
	}
	if !cfg.Source.Looping() {
		t.Error("replay should loop by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
listen:
  address: 127.0.0.1:6000
telemetry:
  decimation: 4
  unit: meters
  write_timeout: 250ms
watchdog:
  keepalive_timeout: 0s
source:
  kind: replay
  trace_path: /var/lib/poserelay/lap.trace.zst
  loop: false
log:
  level: debug
  format: text
`)
	cfg, err := Parse(data, ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.Listen.Address != "127.0.0.1:6000" {
		t.Errorf("listen.address = %q", cfg.Listen.Address)
	}
	if cfg.Telemetry.Decimation != 4 || cfg.Telemetry.Unit != pose.Meters {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
	if cfg.Telemetry.WriteTimeout != 250*time.Millisecond {
		t.Errorf("write_timeout = %s, want 250ms", cfg.Telemetry.WriteTimeout)
	}
	if cfg.Watchdog.KeepaliveTimeout != 0 {
		t.Errorf("explicit zero keepalive_timeout should disable the watchdog, got %s", cfg.Watchdog.KeepaliveTimeout)
	}
	if cfg.Source.Looping() {
		t.Error("loop: false was ignored")
	}
	if cfg.Source.RateHz != 0 {
		t.Errorf("replay rate should default to the trace header, got %v", cfg.Source.RateHz)
	}
}

func TestParseOmittedKeepaliveUsesDefault(t *testing.T) {
	cfg, err := Parse([]byte("telemetry:\n  decimation: 1\n"), ".yaml")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Watchdog.KeepaliveTimeout != 5*time.Second {
		t.Errorf("keepalive_timeout = %s, want 5s", cfg.Watchdog.KeepaliveTimeout)
	}
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil, ".yaml")
	if err != nil {
		t.Fatalf("Parse(empty): %v", err)
	}
	if cfg.Listen.Address != Default().Listen.Address {
		t.Errorf("empty file should yield defaults, got %+v", cfg)
	}
}

func TestParseJSONC(t *testing.T) {
	data := []byte(`{
  // Inches for the indoor rig.
  "telemetry": {"unit": "inches", "decimation": 10,},
  /* metrics on loopback only */
  "metrics": {"address": "127.0.0.1:9580"},
}`)
	cfg, err := Parse(data, ".jsonc")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Telemetry.Unit != pose.Inches || cfg.Telemetry.Decimation != 10 {
		t.Errorf("telemetry = %+v", cfg.Telemetry)
	}
	if cfg.Metrics.Address != "127.0.0.1:9580" {
		t.Errorf("metrics.address = %q", cfg.Metrics.Address)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse([]byte("telemetry:\n  decimaton: 5\n"), ".yaml")
	if err == nil {
		t.Fatal("expected error for misspelled key")
	}
	if !strings.Contains(err.Error(), "decimaton") {
		t.Errorf("error should name the unknown key, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"bad listen address", func(c *Config) { c.Listen.Address = "5800" }, "listen.address"},
		{"zero decimation", func(c *Config) { c.Telemetry.Decimation = 0 }, "telemetry.decimation"},
		{"unknown unit", func(c *Config) { c.Telemetry.Unit = "furlongs" }, "telemetry.unit"},
		{"negative keepalive", func(c *Config) { c.Watchdog.KeepaliveTimeout = -time.Second }, "keepalive_timeout"},
		{"poll slower than timeout", func(c *Config) { c.Watchdog.PollInterval = 10 * time.Second }, "poll_interval"},
		{"replay without trace", func(c *Config) { c.Source.Kind = SourceReplay }, "trace_path"},
		{"unknown source", func(c *Config) { c.Source.Kind = "lidar" }, "source.kind"},
		{"bad metrics address", func(c *Config) { c.Metrics.Address = "nine" }, "metrics.address"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"bad format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}

func TestValidateReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.Telemetry.Decimation = -1
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"telemetry.decimation", "log.level"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestExpandVars(t *testing.T) {
	t.Setenv("POSE_RELAY_TEST_DIR", "/data/traces")

	tests := []struct {
		input string
		want  string
	}{
		{"${POSE_RELAY_TEST_DIR}/lap.trace", "/data/traces/lap.trace"},
		{"${POSE_RELAY_TEST_UNSET:-/tmp}/lap.trace", "/tmp/lap.trace"},
		{"${POSE_RELAY_TEST_UNSET}/lap.trace", "/lap.trace"},
		{"plain/path", "plain/path"},
	}
	for _, test := range tests {
		if got := expandVars(test.input); got != test.want {
			t.Errorf("expandVars(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relay.yaml")
	if err := os.WriteFile(path, []byte("telemetry:\n  decimation: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("defaults", func(t *testing.T) {
		t.Setenv(EnvironmentVariable, "")
		cfg, loaded, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if loaded != "" || cfg.Telemetry.Decimation != 20 {
			t.Errorf("got path %q decimation %d, want defaults", loaded, cfg.Telemetry.Decimation)
		}
	})

	t.Run("environment", func(t *testing.T) {
		t.Setenv(EnvironmentVariable, path)
		cfg, loaded, err := Resolve("")
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if loaded != path || cfg.Telemetry.Decimation != 7 {
			t.Errorf("got path %q decimation %d", loaded, cfg.Telemetry.Decimation)
		}
	})

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvironmentVariable, filepath.Join(dir, "missing.yaml"))
		_, loaded, err := Resolve(path)
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if loaded != path {
			t.Errorf("loaded %q, want %q", loaded, path)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := Resolve(filepath.Join(dir, "missing.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})
}
