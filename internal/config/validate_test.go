package config

import (
	"testing"

	"github.com/smartlab-classroom/peerfabric/internal/discovery"
)

func TestValidateClampsOutOfRangePort(t *testing.T) {
	cfg := Default()
	cfg.RemoteServerPort = 99999
	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("expected a validation error for out-of-range port")
	}
	if cfg.RemoteServerPort != discovery.DefaultRemoteControlPort {
		t.Errorf("expected port to be clamped to %d, got %d", discovery.DefaultRemoteControlPort, cfg.RemoteServerPort)
	}
}

func TestValidateClampsFrameQuality(t *testing.T) {
	cfg := Default()
	cfg.FrameQuality = 150
	cfg.Validate()
	if cfg.FrameQuality != 70 {
		t.Errorf("expected frame quality to be clamped to 70, got %d", cfg.FrameQuality)
	}
}

func TestValidateClampsNonPositiveFrameRate(t *testing.T) {
	cfg := Default()
	cfg.FrameRateHz = 0
	cfg.Validate()
	if cfg.FrameRateHz != 15 {
		t.Errorf("expected frame rate to be clamped to 15, got %d", cfg.FrameRateHz)
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "verbose"
	errs := cfg.Validate()
	if len(errs) == 0 {
		t.Fatal("expected a validation error for unrecognized log level")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected log level to fall back to info, got %q", cfg.LogLevel)
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	cfg := Default()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("expected no validation errors on defaults, got %v", errs)
	}
}
