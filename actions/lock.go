package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Brooklyn-Dev/Ultron-AI/window"
)

// Aim path parameters. The target is the hero tile in the selection
// screen, given as fractions of the window size.
const (
	lockTargetX = 0.8333
	lockTargetY = 0.5556

	lockSteps        = 50
	lockControlDrift = 50

	lockDuration       = 400 * time.Millisecond
	lockDurationJitter = 100 * time.Millisecond

	lockScrollTicks    = 20
	lockScrollInterval = 20 * time.Millisecond
	lockClickPause     = 50 * time.Millisecond
)

// AimPlan is a synthesized pointer path and its per-step interval.
type AimPlan struct {
	Points   []Vector2D
	Interval time.Duration
}

// PlanAim builds the path from start to target with two randomized control
// points near each end.
func (e *Executor) PlanAim(start, target Vector2D) AimPlan {
	p1 := start.Add(Vector2D{X: float64(e.jitter(lockControlDrift)), Y: float64(e.jitter(lockControlDrift))})
	p2 := target.Add(Vector2D{X: float64(e.jitter(lockControlDrift)), Y: float64(e.jitter(lockControlDrift))})

	// Drawn per step so Interval*lockSteps stays inside the duration window.
	interval := e.uniform(
		(lockDuration-lockDurationJitter)/lockSteps,
		(lockDuration+lockDurationJitter)/lockSteps,
	)
	return AimPlan{
		Points:   BezierPath(start, p1, p2, target, lockSteps),
		Interval: interval,
	}
}

// Lock focuses the game window, glides the pointer to the hero tile, then
// scrolls and double-clicks to lock in. A missing window is not an error.
func (e *Executor) Lock(ctx context.Context) error {
	if e.window == nil {
		e.logger.Warn("lock skipped, no window locator")
		return nil
	}

	bounds, err := e.window.Bounds()
	if err != nil {
		if errors.Is(err, window.ErrNotFound) {
			e.logger.Info("lock skipped, game window not found")
			return nil
		}
		return fmt.Errorf("window bounds: %w", err)
	}
	if err := e.window.Activate(); err != nil {
		return fmt.Errorf("activate window: %w", err)
	}

	sx, sy := e.dev.MousePosition()
	start := Vector2D{X: float64(sx), Y: float64(sy)}
	target := Vector2D{
		X: float64(bounds.X + int(float64(bounds.W)*lockTargetX)),
		Y: float64(bounds.Y + int(float64(bounds.H)*lockTargetY)),
	}

	plan := e.PlanAim(start, target)
	for _, p := range plan.Points {
		x, y := p.Pixel()
		if err := e.dev.MoveMouse(x, y); err != nil {
			return fmt.Errorf("move pointer: %w", err)
		}
		if err := e.sleep(ctx, plan.Interval); err != nil {
			return err
		}
	}

	for i := 0; i < lockScrollTicks; i++ {
		if err := e.dev.Scroll(-1); err != nil {
			return fmt.Errorf("scroll: %w", err)
		}
		if err := e.sleep(ctx, lockScrollInterval); err != nil {
			return err
		}
	}

	if err := e.sleep(ctx, lockClickPause); err != nil {
		return err
	}
	if err := e.dev.DoubleClick(ButtonLeft); err != nil {
		return fmt.Errorf("double click: %w", err)
	}
	return nil
}
