package desktop

import (
	"encoding/base64"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/smartlab-classroom/peerfabric/internal/logging"
)

var log = logging.L("desktop")

const (
	// maxConsecutiveFailures is the number of skipped capture/encode
	// ticks tolerated before the session closes itself (spec §4.2).
	maxConsecutiveFailures = 2
)

// frameMessage is the server->client wire frame: {"type":"frame","data":"<base64 JPEG>"}.
type frameMessage struct {
	Type string `json:"type"`
	Data string `json:"data"`
}

// StreamConfig controls a session's capture cadence and quality.
type StreamConfig struct {
	Quality     int           // JPEG quality 1-100
	ScaleFactor float64       // 1.0 = full resolution
	FrameDelay  time.Duration // target inter-frame delay (T_frame)
}

// DefaultStreamConfig mirrors spec §4.2's defaults: 50ms cadence (~20fps)
// at quality 40, full resolution.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Quality:     40,
		ScaleFactor: 1.0,
		FrameDelay:  50 * time.Millisecond,
	}
}

// Session is one accepted WebSocket connection paired with its own
// screen capturer and input synthesizer, per the per-session capture
// ownership decided for concurrent sessions. It runs two cooperating
// activities: a frame pump and an input consumer.
type Session struct {
	id           string
	conn         *websocket.Conn
	capturer     ScreenCapturer
	inputHandler InputHandler

	mu     sync.Mutex
	config StreamConfig

	writeMu sync.Mutex

	done        chan struct{}
	closeOnce   sync.Once
	releaseOnce sync.Once
	wg          sync.WaitGroup
}

// NewSession creates a session bound to an already-upgraded WebSocket
// connection. The caller owns conn's lifecycle up to this call; Start
// takes over closing it.
func NewSession(id string, conn *websocket.Conn, config StreamConfig) (*Session, error) {
	capturer, err := NewScreenCapturer(DefaultConfig())
	if err != nil {
		return nil, err
	}

	s := &Session{
		id:           id,
		conn:         conn,
		capturer:     capturer,
		inputHandler: NewInputHandler(),
		config:       config,
		done:         make(chan struct{}),
	}
	return s, nil
}

// Start launches the frame pump and input consumer. Either one exiting
// triggers session close.
func (s *Session) Start() {
	s.wg.Add(2)
	go s.framePump()
	go s.inputConsumer()
}

// Stop signals both activities to terminate without waiting for them;
// the input consumer closes the connection once signaled. Call Wait and
// then ReleaseResources to release the capturer. Safe to call more
// than once and safe to call from within the activities themselves.
func (s *Session) Stop() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

// Wait blocks until both the frame pump and input consumer have exited.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) framePump() {
	defer s.wg.Done()
	defer s.Stop()

	consecutiveFailures := 0

	for {
		s.mu.Lock()
		delay := s.config.FrameDelay
		s.mu.Unlock()
		if delay <= 0 {
			delay = DefaultStreamConfig().FrameDelay
		}

		timer := time.NewTimer(delay)
		select {
		case <-s.done:
			timer.Stop()
			return
		case <-timer.C:
		}

		data, err := s.captureFrame()
		if err != nil {
			consecutiveFailures++
			log.Warn("capture/encode tick failed", "session", s.id, "error", err, "consecutive", consecutiveFailures)
			if consecutiveFailures > maxConsecutiveFailures {
				log.Warn("closing session after repeated capture failures", "session", s.id)
				return
			}
			continue
		}
		consecutiveFailures = 0

		msg := frameMessage{Type: "frame", Data: base64.StdEncoding.EncodeToString(data)}
		if err := s.writeJSON(msg); err != nil {
			log.Debug("frame write failed, closing session", "session", s.id, logging.KeyError, err)
			return
		}
	}
}

func (s *Session) captureFrame() ([]byte, error) {
	img, err := s.capturer.Capture()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	scale := s.config.ScaleFactor
	quality := s.config.Quality
	s.mu.Unlock()

	if scale > 0 && scale < 1.0 {
		img = ScaleImageFast(img, scale)
	}
	return EncodeJPEG(img, quality)
}

func (s *Session) writeJSON(v any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(v)
}

// inputConsumer reads client->server input messages until the
// connection closes, is signaled to stop, or a read error occurs.
// Parse failures and unknown variants are ignored silently per §4.2/§6.3.
func (s *Session) inputConsumer() {
	defer s.wg.Done()
	defer s.Stop()

	go func() {
		<-s.done
		s.conn.Close()
	}()

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var event InputEvent
		if err := json.Unmarshal(raw, &event); err != nil {
			continue
		}
		if err := s.inputHandler.HandleEvent(event); err != nil {
			log.Debug("input dispatch failed", "session", s.id, "type", event.Type, logging.KeyError, err)
		}
	}
}

// UpdateConfig applies new streaming parameters, ignoring out-of-range
// values so a malformed control message can't disable the stream.
func (s *Session) UpdateConfig(config StreamConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if config.Quality >= 1 && config.Quality <= 100 {
		s.config.Quality = config.Quality
	}
	if config.ScaleFactor > 0 && config.ScaleFactor <= 1.0 {
		s.config.ScaleFactor = config.ScaleFactor
	}
	if config.FrameDelay > 0 {
		s.config.FrameDelay = config.FrameDelay
	}
}

// GetScreenBounds returns the controlled host's primary display size.
func (s *Session) GetScreenBounds() (width, height int, err error) {
	return s.capturer.GetScreenBounds()
}

// ReleaseResources closes the capturer. Callers must call Wait first to
// guarantee the frame pump is no longer using it. Safe to call more
// than once; only the first call has effect.
func (s *Session) ReleaseResources() {
	s.releaseOnce.Do(func() {
		s.capturer.Close()
	})
}
