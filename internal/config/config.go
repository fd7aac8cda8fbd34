// Package config loads the node's YAML configuration and persists its
// Teacher/Client mode selection.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"

	"github.com/smartlab-classroom/peerfabric/internal/discovery"
	"github.com/smartlab-classroom/peerfabric/internal/logging"
)

var log = logging.L("config")

// Config holds the node-wide settings read once at startup: listen
// ports, discovery cadence, frame streaming defaults, and scan
// defaults.
type Config struct {
	RemoteServerPort     int    `mapstructure:"remote_server_port"`
	BackendAddr          string `mapstructure:"backend_addr"`
	DiscoveryIntervalSec int    `mapstructure:"discovery_interval_seconds"`
	SeekTimeoutSec       int    `mapstructure:"seek_timeout_seconds"`

	FrameQuality   int `mapstructure:"frame_quality"`
	FrameRateHz    int `mapstructure:"frame_rate_hz"`
	CaptureRetries int `mapstructure:"capture_retries"`

	ScanTimeoutMs   int `mapstructure:"scan_timeout_ms"`
	PingTimeoutMs   int `mapstructure:"ping_timeout_ms"`
	ScanConcurrency int `mapstructure:"scan_concurrency"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns the configuration used when no config file is
// present.
func Default() *Config {
	return &Config{
		RemoteServerPort:     discovery.DefaultRemoteControlPort,
		BackendAddr:          "127.0.0.1:8088",
		DiscoveryIntervalSec: 2,
		SeekTimeoutSec:       3,
		FrameQuality:         70,
		FrameRateHz:          15,
		CaptureRetries:       40,
		ScanTimeoutMs:        100,
		PingTimeoutMs:        500,
		ScanConcurrency:      50,
		LogLevel:             "info",
		LogFormat:            "text",
	}
}

// Load reads node.yaml from cfgFile if given, else searches configDir()
// and the working directory. A missing file is not an error: Default
// values are returned.
func Load(cfgFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("node")
		v.SetConfigType("yaml")
		v.AddConfigPath(configDir())
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SMARTLAB")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	} else if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		log.Warn("config validation found issues, continuing with clamped defaults", "count", len(errs))
		for _, e := range errs {
			log.Warn("config validation", "error", e)
		}
	}

	return cfg, nil
}

// Save writes cfg as YAML to cfgFile, or to configDir()/node.yaml if
// cfgFile is empty.
func Save(cfg *Config, cfgFile string) error {
	v := viper.New()
	v.Set("remote_server_port", cfg.RemoteServerPort)
	v.Set("backend_addr", cfg.BackendAddr)
	v.Set("discovery_interval_seconds", cfg.DiscoveryIntervalSec)
	v.Set("seek_timeout_seconds", cfg.SeekTimeoutSec)
	v.Set("frame_quality", cfg.FrameQuality)
	v.Set("frame_rate_hz", cfg.FrameRateHz)
	v.Set("capture_retries", cfg.CaptureRetries)
	v.Set("scan_timeout_ms", cfg.ScanTimeoutMs)
	v.Set("ping_timeout_ms", cfg.PingTimeoutMs)
	v.Set("scan_concurrency", cfg.ScanConcurrency)
	v.Set("log_level", cfg.LogLevel)
	v.Set("log_format", cfg.LogFormat)

	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		if err := os.MkdirAll(configDir(), 0700); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		path = filepath.Join(configDir(), "node.yaml")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}

	return v.WriteConfigAs(path)
}

// configDirOverride lets tests redirect configDir() without touching
// real platform directories.
var configDirOverride string

// configDir returns the platform-specific directory this node's
// configuration lives in.
func configDir() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("ProgramData"), "SmartLab")
	case "darwin":
		return "/Library/Application Support/SmartLab"
	default:
		return "/etc/smartlab"
	}
}
