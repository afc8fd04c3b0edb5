package vision

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/state"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
)

// ReadyLine is spoken once each time the ultimate becomes ready.
const ReadyLine = "Ultimate ready."

const (
	DefaultPollInterval = 2 * time.Second
	DefaultIdle         = 500 * time.Millisecond
)

// Window reports the game window geometry and focus.
type Window interface {
	IsForeground() bool
	Bounds() (types.Rect, error)
}

// Grabber captures a screen region.
type Grabber interface {
	Capture(r types.Rect) (image.Image, error)
}

// Speaker renders text aloud.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Config tunes the watcher. Zero values use the defaults.
type Config struct {
	PollInterval time.Duration
	Idle         time.Duration
}

// Watcher polls the HUD and owns the ultReady and lastUltCheck state.
type Watcher struct {
	state   *state.State
	window  Window
	grabber Grabber
	speaker Speaker
	logger  *slog.Logger

	limiter *rate.Limiter
	idle    time.Duration
	now     func() time.Time
}

// NewWatcher creates a watcher.
func NewWatcher(st *state.State, w Window, g Grabber, sp Speaker, cfg Config, logger *slog.Logger) *Watcher {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Idle <= 0 {
		cfg.Idle = DefaultIdle
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		state:   st,
		window:  w,
		grabber: g,
		speaker: sp,
		logger:  logger.With("component", "vision"),
		limiter: rate.NewLimiter(rate.Every(cfg.PollInterval), 1),
		idle:    cfg.Idle,
		now:     time.Now,
	}
}

// Run polls until the process stops or ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	w.logger.Debug("vision loop started")
	defer w.logger.Debug("vision loop stopped")

	t := time.NewTicker(w.idle)
	defer t.Stop()
	for w.state.Running() {
		w.Tick(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-w.state.Done():
			return nil
		case <-t.C:
		}
	}
	return nil
}

// Tick performs one loop iteration: skip when the game is not focused,
// otherwise poll if the throttle allows it.
func (w *Watcher) Tick(ctx context.Context) {
	if !w.window.IsForeground() {
		return
	}
	now := w.now()
	if !w.limiter.AllowN(now, 1) {
		return
	}
	w.state.MarkUltCheck(now)

	ready, err := w.poll()
	if err != nil {
		w.logger.Warn("detect ultimate status", "error", err)
		return
	}
	w.transition(ctx, ready)
}

func (w *Watcher) poll() (bool, error) {
	bounds, err := w.window.Bounds()
	if err != nil {
		return false, fmt.Errorf("window bounds: %w", err)
	}
	region := bounds.Sub(RegionX0, RegionY0, RegionX1, RegionY1)
	img, err := w.grabber.Capture(region)
	if err != nil {
		return false, err
	}
	return IsReady(img), nil
}

func (w *Watcher) transition(ctx context.Context, ready bool) {
	switch {
	case ready && !w.state.UltReady():
		w.state.SetUltReady(true)
		w.logger.Info("ultimate ready")
		if w.speaker == nil {
			return
		}
		if err := w.speaker.Speak(ctx, ReadyLine); err != nil {
			w.logger.Warn("speak", "error", err)
		}
	case !ready:
		w.state.SetUltReady(false)
	}
}
