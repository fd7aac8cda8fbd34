package config

import (
	"fmt"

	"github.com/smartlab-classroom/peerfabric/internal/discovery"
)

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the config for out-of-range values, clamping any it
// finds to a safe default and returning a description of each clamp.
func (c *Config) Validate() []error {
	var errs []error

	if c.RemoteServerPort <= 0 || c.RemoteServerPort > 65535 {
		errs = append(errs, fmt.Errorf("remote_server_port %d out of range, using %d", c.RemoteServerPort, discovery.DefaultRemoteControlPort))
		c.RemoteServerPort = discovery.DefaultRemoteControlPort
	}

	if c.FrameQuality < 1 || c.FrameQuality > 100 {
		errs = append(errs, fmt.Errorf("frame_quality %d out of range, using 70", c.FrameQuality))
		c.FrameQuality = 70
	}

	if c.FrameRateHz <= 0 {
		errs = append(errs, fmt.Errorf("frame_rate_hz %d must be positive, using 15", c.FrameRateHz))
		c.FrameRateHz = 15
	}

	if c.CaptureRetries <= 0 {
		errs = append(errs, fmt.Errorf("capture_retries %d must be positive, using 40", c.CaptureRetries))
		c.CaptureRetries = 40
	}

	if c.ScanConcurrency <= 0 {
		errs = append(errs, fmt.Errorf("scan_concurrency %d must be positive, using 50", c.ScanConcurrency))
		c.ScanConcurrency = 50
	}

	if c.LogLevel != "" && !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("log_level %q unrecognized, using info", c.LogLevel))
		c.LogLevel = "info"
	}

	return errs
}
