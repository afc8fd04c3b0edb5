package app

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/state"
)

// ErrSessionActive is returned when a capture session is started while the
// previous one is still live.
var ErrSessionActive = errors.New("capture session already active")

// ChunkReader is a blocking source of PCM chunks.
type ChunkReader interface {
	ReadChunk() ([]byte, error)
}

// Session fills the shared audio buffer from the microphone while the
// push-to-talk key is held. Start and Stop are called from the key handlers;
// Stop joins the fill goroutine so the buffer is complete when it returns.
type Session struct {
	mic    ChunkReader
	state  *state.State
	logger *slog.Logger

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// NewSession creates an idle session.
func NewSession(mic ChunkReader, st *state.State, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{mic: mic, state: st, logger: logger}
}

// Start launches the fill goroutine.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		return ErrSessionActive
	}

	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.fill(s.stop, s.done)
	return nil
}

// Stop signals the fill goroutine and waits for it. The read in flight
// completes first, so up to one extra chunk is captured.
func (s *Session) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()

	if done == nil {
		return
	}
	close(stop)
	<-done
}

// Active reports whether a fill goroutine is live.
func (s *Session) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done != nil
}

func (s *Session) fill(stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		default:
		}

		chunk, err := s.mic.ReadChunk()
		if err != nil {
			s.logger.Error("audio stream read", "error", err)
			return
		}
		s.state.AppendAudio(chunk)
	}
}
