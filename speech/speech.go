// Package speech renders Ultron's replies aloud: synthesis, voice effects
// and playback on the default output device.
package speech

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Synthesizer turns text into mono int16 samples at the returned rate.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]int16, int, error)
}

// Player plays mono int16 samples and blocks until playback ends.
type Player interface {
	Play(ctx context.Context, samples []int16, rate int) error
}

// Speaker synthesizes, applies the voice effects and plays text. Calls to
// Speak are serialized so utterances never overlap.
type Speaker struct {
	synth  Synthesizer
	player Player
	fx     Effects
	logger *slog.Logger

	mu sync.Mutex
}

// New creates a Speaker.
func New(synth Synthesizer, player Player, fx Effects, logger *slog.Logger) *Speaker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Speaker{synth: synth, player: player, fx: fx, logger: logger}
}

// Speak blocks until text has been played. Blank text is a no-op.
func (s *Speaker) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	samples, rate, err := s.synth.Synthesize(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	samples, rate = s.fx.Apply(samples, rate)

	s.logger.Debug("speaking", "text", text, "samples", len(samples), "rate", rate)
	if err := s.player.Play(ctx, samples, rate); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	return nil
}

// Log is a Speaker stand-in that only logs what would have been said.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Speak(_ context.Context, text string) error {
	if text = strings.TrimSpace(text); text == "" {
		return nil
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("ultron", "says", text)
	return nil
}
