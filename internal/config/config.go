// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"firestige.xyz/atalkdump/internal/core"
)

// Config represents the top-level configuration.
// Maps to the `atalkdump:` root key in YAML.
type Config struct {
	Decoder DecoderConfig `mapstructure:"decoder" yaml:"decoder"`
	Input   InputConfig   `mapstructure:"input" yaml:"input"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// ─── Decoder ───

// DecoderConfig controls how decoded frames are displayed.
type DecoderConfig struct {
	Numeric    bool   `mapstructure:"numeric" yaml:"numeric"`         // -n: no name resolution
	LinkDetail bool   `mapstructure:"link_detail" yaml:"link_detail"` // -e: link-level detail, drops the "AT " tag
	NamesFile  string `mapstructure:"names_file" yaml:"names_file"`   // net/host name overrides
}

// ─── Input ───

// InputConfig contains capture input settings.
type InputConfig struct {
	Snaplen         int    `mapstructure:"snaplen" yaml:"snaplen"`                   // 0 = keep whatever the source captured
	FilterAppleTalk bool   `mapstructure:"filter_appletalk" yaml:"filter_appletalk"` // drop non-AppleTalk Ethernet frames early
	Interface       string `mapstructure:"interface" yaml:"interface"`               // LToUDP multicast interface, empty = system default
	Group           string `mapstructure:"group" yaml:"group"`                       // LToUDP multicast group
	Port            int    `mapstructure:"port" yaml:"port"`                         // LToUDP port
}

// ─── Log ───

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string           `mapstructure:"level" yaml:"level"`     // trace / debug / info / warn / error
	Format  string           `mapstructure:"format" yaml:"format"`   // text / json
	Pattern string           `mapstructure:"pattern" yaml:"pattern"` // text format pattern
	Time    string           `mapstructure:"time" yaml:"time"`       // text format time layout
	Outputs LogOutputsConfig `mapstructure:"outputs" yaml:"outputs"`
}

// LogOutputsConfig contains log output destinations besides stderr.
type LogOutputsConfig struct {
	File FileOutputConfig `mapstructure:"file" yaml:"file"`
}

// FileOutputConfig configures file log output.
type FileOutputConfig struct {
	Enabled  bool           `mapstructure:"enabled" yaml:"enabled"`
	Path     string         `mapstructure:"path" yaml:"path"`
	Rotation RotationConfig `mapstructure:"rotation" yaml:"rotation"`
}

// RotationConfig configures log file rotation.
type RotationConfig struct {
	MaxSizeMB  int  `mapstructure:"max_size_mb" yaml:"max_size_mb"`   // MB
	MaxAgeDays int  `mapstructure:"max_age_days" yaml:"max_age_days"` // Days
	MaxBackups int  `mapstructure:"max_backups" yaml:"max_backups"`
	Compress   bool `mapstructure:"compress" yaml:"compress"`
}

// ─── Metrics ───

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Listen  string `mapstructure:"listen" yaml:"listen"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// ─── Loading ───

// configRoot is the top-level wrapper matching the YAML structure `atalkdump: ...`.
type configRoot struct {
	AtalkDump Config `mapstructure:"atalkdump"`
}

// Load loads configuration from file. An empty path yields the defaults,
// still subject to environment overrides.
// The YAML file uses `atalkdump:` as root key; env vars use the ATALKDUMP_
// prefix (e.g., ATALKDUMP_DECODER_NUMERIC).
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// The `atalkdump.` key prefix maps to `ATALKDUMP_` in env vars via the key replacer.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.AtalkDump

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration Load produces without a file.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var root configRoot
	// Defaults are static and always decode.
	_ = v.Unmarshal(&root)
	return &root.AtalkDump
}

// setDefaults sets default values for configuration.
// All keys use "atalkdump." prefix to match the YAML root wrapper.
func setDefaults(v *viper.Viper) {
	// Decoder defaults
	v.SetDefault("atalkdump.decoder.numeric", false)
	v.SetDefault("atalkdump.decoder.link_detail", false)
	v.SetDefault("atalkdump.decoder.names_file", core.DefaultNamesFile)

	// Input defaults
	v.SetDefault("atalkdump.input.snaplen", 0)
	v.SetDefault("atalkdump.input.filter_appletalk", true)
	v.SetDefault("atalkdump.input.interface", "")
	v.SetDefault("atalkdump.input.group", "239.192.76.84")
	v.SetDefault("atalkdump.input.port", 1954)

	// Log defaults
	v.SetDefault("atalkdump.log.level", "info")
	v.SetDefault("atalkdump.log.format", "text")
	v.SetDefault("atalkdump.log.pattern", "%time [%level] %msg %field\n")
	v.SetDefault("atalkdump.log.time", "2006-01-02 15:04:05")
	v.SetDefault("atalkdump.log.outputs.file.enabled", false)
	v.SetDefault("atalkdump.log.outputs.file.path", "/var/log/atalkdump/atalkdump.log")
	v.SetDefault("atalkdump.log.outputs.file.rotation.max_size_mb", 100)
	v.SetDefault("atalkdump.log.outputs.file.rotation.max_age_days", 30)
	v.SetDefault("atalkdump.log.outputs.file.rotation.max_backups", 5)
	v.SetDefault("atalkdump.log.outputs.file.rotation.compress", true)

	// Metrics defaults
	v.SetDefault("atalkdump.metrics.enabled", false)
	v.SetDefault("atalkdump.metrics.listen", ":9091")
	v.SetDefault("atalkdump.metrics.path", "/metrics")
}

// ValidateAndApplyDefaults validates configuration and applies runtime defaults.
func (cfg *Config) ValidateAndApplyDefaults() error {
	// ── Log validation ──
	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("%w: log level %q (must be trace/debug/info/warn/error)", core.ErrConfigInvalid, cfg.Log.Level)
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("%w: log format %q (must be json/text)", core.ErrConfigInvalid, cfg.Log.Format)
	}
	if cfg.Log.Outputs.File.Enabled && cfg.Log.Outputs.File.Path == "" {
		return fmt.Errorf("%w: log.outputs.file.path is required when file output is enabled", core.ErrConfigInvalid)
	}

	// ── Input validation ──
	if cfg.Input.Snaplen < 0 {
		return fmt.Errorf("%w: input.snaplen %d is negative", core.ErrConfigInvalid, cfg.Input.Snaplen)
	}
	if cfg.Input.Port < 0 || cfg.Input.Port > 65535 {
		return fmt.Errorf("%w: input.port %d out of range", core.ErrConfigInvalid, cfg.Input.Port)
	}

	// ── Metrics ──
	if cfg.Metrics.Enabled && cfg.Metrics.Listen == "" {
		return fmt.Errorf("%w: metrics.listen is required when metrics.enabled=true", core.ErrConfigInvalid)
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	return nil
}
