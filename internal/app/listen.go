package app

import (
	"context"
	"log/slog"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/state"
)

// utteranceBacklog bounds how many captured utterances may wait for the
// dispatcher before new ones are dropped.
const utteranceBacklog = 4

// Listener turns push-to-talk edges into captured utterances.
type Listener struct {
	state   *state.State
	session *Session
	cue     func() error
	logger  *slog.Logger

	utterances chan []byte
}

// NewListener creates a listener. cue may be nil.
func NewListener(st *state.State, session *Session, cue func() error, logger *slog.Logger) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	return &Listener{
		state:      st,
		session:    session,
		cue:        cue,
		logger:     logger,
		utterances: make(chan []byte, utteranceBacklog),
	}
}

// OnPress starts a capture session. Presses while the agent is typing or
// already listening are ignored.
func (l *Listener) OnPress() {
	if l.state.SimulatingInput() || l.state.Listening() || !l.state.Running() {
		return
	}

	l.state.ResetAudio()
	if err := l.session.Start(); err != nil {
		l.logger.Warn("start capture", "error", err)
		return
	}
	l.state.SetListening(true)
	l.logger.Info("listening", "hint", "release the key to stop")

	if l.cue != nil {
		if err := l.cue(); err != nil {
			l.logger.Debug("listen cue", "error", err)
		}
	}
}

// OnRelease joins the capture session and hands the audio to the
// dispatcher.
func (l *Listener) OnRelease() {
	if !l.state.Listening() {
		return
	}
	l.state.SetListening(false)
	l.session.Stop()
	l.logger.Info("stopped listening")

	pcm := l.state.DrainAudio()
	if len(pcm) == 0 {
		l.logger.Info("no audio captured")
		return
	}

	select {
	case l.utterances <- pcm:
	default:
		l.logger.Warn("dispatcher busy, utterance dropped", "bytes", len(pcm))
	}
}

// Utterances delivers captured audio in capture order.
func (l *Listener) Utterances() <-chan []byte { return l.utterances }

// Serve runs handle for each utterance until ctx is done. Utterances are
// handled one at a time.
func (l *Listener) Serve(ctx context.Context, handle func(context.Context, []byte)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case pcm := <-l.utterances:
			handle(ctx, pcm)
		}
	}
}
