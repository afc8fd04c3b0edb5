// Package app wires the push-to-talk pipeline, the task worker and the
// vision loop into one supervised service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/state"
	"github.com/Brooklyn-Dev/Ultron-AI/taskqueue"
)

// Microphone is the push-to-talk audio source.
type Microphone interface {
	ChunkReader
	Open() error
	Close() error
}

// Hotkey delivers push-to-talk edges between Start and Stop.
type Hotkey interface {
	Start() error
	Stop()
}

// HotkeyFactory binds the push-to-talk handlers to a key.
type HotkeyFactory func(onPress, onRelease func()) (Hotkey, error)

// Loop is a background loop such as the vision watcher.
type Loop interface {
	Run(ctx context.Context) error
}

// Deps are the collaborators a Service drives.
type Deps struct {
	State      *state.State
	Mic        Microphone
	Hotkey     HotkeyFactory
	Dispatcher *Dispatcher
	Worker     *taskqueue.Worker
	Speaker    Speaker
	Vision     Loop // nil disables the vision loop
	Cue        func() error
	Greet      bool
	Logger     *slog.Logger

	// Closers are released by Close, in order.
	Closers []io.Closer
}

// Service provides the agent's main loop.
// This struct focuses on orchestration; behavior lives in sub-components.
type Service struct {
	d      Deps
	logger *slog.Logger
}

// New creates a Service from its dependencies.
func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Service{d: d, logger: d.Logger}
}

// State returns the shared state.
func (s *Service) State() *state.State { return s.d.State }

// Run opens the microphone, starts the loops and blocks until running is
// cleared or ctx is cancelled. The microphone is released before Run
// returns.
func (s *Service) Run(ctx context.Context) (err error) {
	if err := s.d.Mic.Open(); err != nil {
		return fmt.Errorf("acquire audio input: %w", err)
	}
	defer func() {
		if cerr := s.d.Mic.Close(); cerr != nil {
			s.logger.Error("release audio input", "error", cerr)
		}
		s.logger.Info("audio input released")
	}()

	session := NewSession(s.d.Mic, s.d.State, s.logger)
	defer session.Stop()

	listener := NewListener(s.d.State, session, s.d.Cue, s.logger)
	hk, err := s.d.Hotkey(listener.OnPress, listener.OnRelease)
	if err != nil {
		return fmt.Errorf("bind push-to-talk: %w", err)
	}

	if s.d.Greet {
		if err := s.d.Speaker.Speak(ctx, Greeting); err != nil {
			s.logger.Warn("speak greeting", "error", err)
		}
	}

	if err := hk.Start(); err != nil {
		return fmt.Errorf("start push-to-talk hook: %w", err)
	}
	defer hk.Stop()

	s.logger.Info("ready for action")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error { return s.d.Worker.Run(gctx) })
	if s.d.Vision != nil {
		g.Go(func() error { return s.d.Vision.Run(gctx) })
	}
	g.Go(func() error { return listener.Serve(gctx, s.d.Dispatcher.Handle) })
	g.Go(func() error {
		select {
		case <-s.d.State.Done():
			s.logger.Info("shutting down")
		case <-gctx.Done():
		}
		s.d.State.Stop()
		if n := s.d.State.Queue().Close(); n > 0 {
			s.logger.Info("discarded queued tasks", "count", n)
		}
		cancel()
		return nil
	})

	return g.Wait()
}

// Close releases the collaborators listed in Deps.Closers.
func (s *Service) Close() error {
	var errs []error
	for _, c := range s.d.Closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
