package desktop

import (
	"fmt"
	"image"
	"time"
)

// ScreenCapturer defines the interface for screen capture implementations
type ScreenCapturer interface {
	// Capture captures the screen and returns an image
	Capture() (*image.RGBA, error)

	// CaptureRegion captures a specific region of the screen
	CaptureRegion(x, y, width, height int) (*image.RGBA, error)

	// GetScreenBounds returns the screen dimensions
	GetScreenBounds() (width, height int, err error)

	// Close releases any resources held by the capturer
	Close() error
}

// CaptureConfig holds configuration for screen capture
type CaptureConfig struct {
	// DisplayIndex specifies which display to capture (0 = primary)
	DisplayIndex int

	// Quality specifies the JPEG quality (1-100) if encoding to JPEG
	Quality int

	// ScaleFactor for downscaling the capture (1.0 = full resolution)
	ScaleFactor float64
}

// DefaultConfig returns a default capture configuration
func DefaultConfig() CaptureConfig {
	return CaptureConfig{
		DisplayIndex: 0,
		Quality:      80,
		ScaleFactor:  1.0,
	}
}

// NewScreenCapturer creates a new platform-specific screen capturer
func NewScreenCapturer(config CaptureConfig) (ScreenCapturer, error) {
	return newPlatformCapturer(config)
}

// ErrNotSupported is returned when screen capture is not supported on the platform
var ErrNotSupported = fmt.Errorf("screen capture not supported on this platform")

// ErrPermissionDenied is returned when screen capture permissions are not granted
var ErrPermissionDenied = fmt.Errorf("screen capture permission denied")

// ErrDisplayNotFound is returned when the specified display is not found
var ErrDisplayNotFound = fmt.Errorf("display not found")

// ErrNoFrameWithinRetryBudget is returned by CapturePrimary when every
// attempt in the retry budget reported no frame without an error; if any
// attempt errored, CapturePrimary returns the last such error instead.
var ErrNoFrameWithinRetryBudget = fmt.Errorf("no capture frame within retry budget")

// retryWait is the pause between capture attempts within CapturePrimary.
const retryWait = 15 * time.Millisecond

// CapturePrimary attempts up to retries reads of capturer, pausing
// retryWait between attempts, implementing the retry-budget capture
// protocol for one-shot captures (retries <= 0 is treated as 1, a
// single attempt with no retry). A capturer reporting no frame yet
// (nil image, nil error — e.g. a secure-desktop transition) counts as
// a failed attempt, same as a returned error.
func CapturePrimary(capturer ScreenCapturer, retries int) (*image.RGBA, error) {
	if retries <= 0 {
		retries = 1
	}

	var lastErr error
	for attempt := 0; attempt < retries; attempt++ {
		img, err := capturer.Capture()
		if err != nil {
			lastErr = err
		} else if img != nil {
			return img, nil
		}

		if attempt < retries-1 {
			time.Sleep(retryWait)
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoFrameWithinRetryBudget
}
