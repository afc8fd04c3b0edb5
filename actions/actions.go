// Package actions implements the timed input primitives that commands are
// bound to: key presses, weapon loops, chat entry, aim paths and recording
// tool triggers.
//
// Every primitive runs on the task worker, so the input device is never
// driven from two goroutines at once.
package actions

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/state"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
)

// Mouse buttons understood by Device.
const (
	ButtonLeft  = "left"
	ButtonRight = "right"
)

// Device is the simulated keyboard and mouse.
type Device interface {
	KeyDown(key string) error
	KeyUp(key string) error
	// TypeRune emits a single printable character.
	TypeRune(r rune) error

	MouseDown(button string) error
	MouseUp(button string) error
	MousePosition() (x, y int)
	MoveMouse(x, y int) error
	// Scroll moves the wheel by ticks; negative scrolls down.
	Scroll(ticks int) error
	DoubleClick(button string) error
}

// Window locates and focuses the game window.
type Window interface {
	// Bounds returns the window rectangle in screen pixels.
	Bounds() (types.Rect, error)
	Activate() error
}

// Recorder controls the screen recording tool.
type Recorder interface {
	StartRecording(ctx context.Context) error
	StopRecording(ctx context.Context) error
	StartReplayBuffer(ctx context.Context) error
	StopReplayBuffer(ctx context.Context) error
	SaveReplayBuffer(ctx context.Context) error
}

// Speaker renders text aloud and blocks until playback ends.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Sleeper pauses for a duration or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error { return f(ctx, d) }

// RealSleeper waits on a timer.
var RealSleeper Sleeper = SleeperFunc(func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
})

// Options configures an Executor. Device and State are required.
type Options struct {
	Device   Device
	State    *state.State
	Window   Window   // nil disables lock
	Recorder Recorder // nil makes recording commands no-ops
	Speaker  Speaker  // nil silences failure announcements
	Sleeper  Sleeper  // defaults to RealSleeper
	Rand     *rand.Rand
	Logger   *slog.Logger

	// ShutdownGrace is waited before running is cleared. Defaults to 2s.
	ShutdownGrace time.Duration
}

// Executor owns the input device and performs actions on it.
// It is not safe for concurrent use; the task worker is its only caller.
type Executor struct {
	dev      Device
	state    *state.State
	window   Window
	recorder Recorder
	speaker  Speaker
	sleeper  Sleeper
	rng      *rand.Rand
	logger   *slog.Logger
	grace    time.Duration
}

// New creates an executor from opts.
func New(opts Options) *Executor {
	e := &Executor{
		dev:      opts.Device,
		state:    opts.State,
		window:   opts.Window,
		recorder: opts.Recorder,
		speaker:  opts.Speaker,
		sleeper:  opts.Sleeper,
		rng:      opts.Rand,
		logger:   opts.Logger,
		grace:    opts.ShutdownGrace,
	}
	if e.sleeper == nil {
		e.sleeper = RealSleeper
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.grace <= 0 {
		e.grace = 2 * time.Second
	}
	return e
}

func (e *Executor) sleep(ctx context.Context, d time.Duration) error {
	return e.sleeper.Sleep(ctx, d)
}

// uniform returns a duration drawn uniformly from [lo, hi].
func (e *Executor) uniform(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(e.rng.Float64()*float64(hi-lo))
}

// jitter returns an integer drawn uniformly from [-n, n].
func (e *Executor) jitter(n int) int {
	return e.rng.IntN(2*n+1) - n
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
