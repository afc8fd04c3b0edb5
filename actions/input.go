package actions

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Timing of the basic primitives.
const (
	pressHoldMin = 100 * time.Millisecond
	pressHoldMax = 200 * time.Millisecond

	pulseHold = 10 * time.Millisecond

	meleeKey        = "v"
	meleeSpacingMin = 800 * time.Millisecond
	meleeSpacingMax = 810 * time.Millisecond

	fireSpacingMin = 1580 * time.Millisecond
	fireSpacingMax = 1590 * time.Millisecond

	nanoKey = "c"
	flyKey  = "lshift"
)

// Press holds key for a random 0.1 to 0.2 seconds.
func (e *Executor) Press(ctx context.Context, key string) error {
	if err := e.dev.KeyDown(key); err != nil {
		return fmt.Errorf("key down %s: %w", key, err)
	}
	// Always release, even when the hold is interrupted.
	waitErr := e.sleep(ctx, e.uniform(pressHoldMin, pressHoldMax))
	if err := e.dev.KeyUp(key); err != nil {
		return errors.Join(waitErr, fmt.Errorf("key up %s: %w", key, err))
	}
	return waitErr
}

// RightClick presses and releases the right mouse button.
func (e *Executor) RightClick(_ context.Context) error {
	if err := e.dev.MouseDown(ButtonRight); err != nil {
		return fmt.Errorf("right button down: %w", err)
	}
	if err := e.dev.MouseUp(ButtonRight); err != nil {
		return fmt.Errorf("right button up: %w", err)
	}
	return nil
}

// Fly taps the flight key.
func (e *Executor) Fly(ctx context.Context) error {
	return e.Press(ctx, flyKey)
}

// Melee performs n melee hits spaced by the melee cooldown.
func (e *Executor) Melee(ctx context.Context, n int) error {
	return e.repeat(ctx, n, meleeSpacingMin, meleeSpacingMax,
		func() error { return e.dev.KeyDown(meleeKey) },
		func() error { return e.dev.KeyUp(meleeKey) },
	)
}

// Fire shoots n times spaced by the weapon's fire rate.
func (e *Executor) Fire(ctx context.Context, n int) error {
	return e.repeat(ctx, n, fireSpacingMin, fireSpacingMax,
		func() error { return e.dev.MouseDown(ButtonLeft) },
		func() error { return e.dev.MouseUp(ButtonLeft) },
	)
}

// repeat runs n down/up pulses, each followed by a spacing delay.
func (e *Executor) repeat(ctx context.Context, n int, lo, hi time.Duration, down, up func() error) error {
	for i := 0; i < n; i++ {
		if err := down(); err != nil {
			return fmt.Errorf("pulse %d down: %w", i+1, err)
		}
		waitErr := e.sleep(ctx, pulseHold)
		if err := up(); err != nil {
			return fmt.Errorf("pulse %d up: %w", i+1, err)
		}
		if waitErr != nil {
			return waitErr
		}
		if err := e.sleep(ctx, e.uniform(lo, hi)); err != nil {
			return err
		}
	}
	return nil
}

// Delay waits d.
func (e *Executor) Delay(ctx context.Context, d time.Duration) error {
	return e.sleep(ctx, d)
}

// Nano activates the nano ray and holds fire for d.
func (e *Executor) Nano(ctx context.Context, d time.Duration) error {
	if err := e.Press(ctx, nanoKey); err != nil {
		return fmt.Errorf("activate nano ray: %w", err)
	}
	if err := e.dev.MouseDown(ButtonLeft); err != nil {
		return fmt.Errorf("left button down: %w", err)
	}
	waitErr := e.sleep(ctx, d)
	if err := e.dev.MouseUp(ButtonLeft); err != nil {
		return errors.Join(waitErr, fmt.Errorf("left button up: %w", err))
	}
	return waitErr
}
