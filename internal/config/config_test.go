package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"firestige.xyz/atalkdump/internal/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configPath
}

func TestLoadValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
atalkdump:
  decoder:
    numeric: true
    link_detail: true
    names_file: "/tmp/atalk.names"
  input:
    snaplen: 128
    filter_appletalk: false
    interface: "eth1"
  log:
    level: "debug"
    format: "json"
  metrics:
    enabled: true
    listen: "127.0.0.1:9100"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if !cfg.Decoder.Numeric {
		t.Error("Expected numeric true")
	}
	if !cfg.Decoder.LinkDetail {
		t.Error("Expected link_detail true")
	}
	if cfg.Decoder.NamesFile != "/tmp/atalk.names" {
		t.Errorf("Expected names file /tmp/atalk.names, got %s", cfg.Decoder.NamesFile)
	}
	if cfg.Input.Snaplen != 128 {
		t.Errorf("Expected snaplen 128, got %d", cfg.Input.Snaplen)
	}
	if cfg.Input.FilterAppleTalk {
		t.Error("Expected filter_appletalk false")
	}
	if cfg.Input.Interface != "eth1" {
		t.Errorf("Expected interface eth1, got %s", cfg.Input.Interface)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Expected log format json, got %s", cfg.Log.Format)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Listen != "127.0.0.1:9100" {
		t.Errorf("Unexpected metrics config %+v", cfg.Metrics)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("Expected default metrics path, got %s", cfg.Metrics.Path)
	}
}

func TestLoadDefaults(t *testing.T) {
	configPath := writeConfig(t, `
atalkdump:
  decoder:
    numeric: false
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Decoder.NamesFile != core.DefaultNamesFile {
		t.Errorf("Expected default names file, got %s", cfg.Decoder.NamesFile)
	}
	if !cfg.Input.FilterAppleTalk {
		t.Error("Expected filter_appletalk default true")
	}
	if cfg.Input.Group != "239.192.76.84" || cfg.Input.Port != 1954 {
		t.Errorf("Unexpected LToUDP defaults %s:%d", cfg.Input.Group, cfg.Input.Port)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Expected default log format text, got %s", cfg.Log.Format)
	}
	if cfg.Log.Outputs.File.Rotation.MaxSizeMB != 100 {
		t.Errorf("Expected default rotation size 100, got %d", cfg.Log.Outputs.File.Rotation.MaxSizeMB)
	}
	if cfg.Metrics.Enabled {
		t.Error("Expected metrics disabled by default")
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("Expected Load(\"\") to match Default(), got %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Error("Expected error for missing config file, got nil")
	}
}

func TestLoadInvalidLogLevel(t *testing.T) {
	configPath := writeConfig(t, `
atalkdump:
  log:
    level: "invalid"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid log level, got nil")
	}
	if !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("Expected ErrConfigInvalid, got %v", err)
	}
}

func TestLoadInvalidLogFormat(t *testing.T) {
	configPath := writeConfig(t, `
atalkdump:
  log:
    format: "xml"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Error("Expected error for invalid log format, got nil")
	}
}

func TestLoadInvalidPort(t *testing.T) {
	configPath := writeConfig(t, `
atalkdump:
  input:
    port: 70000
`)

	if _, err := Load(configPath); err == nil {
		t.Error("Expected error for out of range port, got nil")
	}
}

func TestLoadEnvOverride(t *testing.T) {
	configPath := writeConfig(t, `
atalkdump:
  log:
    level: "info"
`)

	t.Setenv("ATALKDUMP_LOG_LEVEL", "debug")
	t.Setenv("ATALKDUMP_DECODER_NUMERIC", "true")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level debug from env var, got %s", cfg.Log.Level)
	}
	if !cfg.Decoder.Numeric {
		t.Error("Expected numeric true from env var")
	}
}

func TestValidateFileOutputRequiresPath(t *testing.T) {
	cfg := Default()
	cfg.Log.Outputs.File.Enabled = true
	cfg.Log.Outputs.File.Path = ""

	if err := cfg.ValidateAndApplyDefaults(); err == nil {
		t.Error("Expected error for file output without path, got nil")
	}
}
