package input

import (
	"log/slog"
	"sync"
)

// DryRun logs input events instead of injecting them. It tracks a virtual
// pointer so aim paths can be followed in the logs.
type DryRun struct {
	logger *slog.Logger

	mu   sync.Mutex
	x, y int
}

// NewDryRun creates a logging device.
func NewDryRun(logger *slog.Logger) *DryRun {
	if logger == nil {
		logger = slog.Default()
	}
	return &DryRun{logger: logger.With("device", "dry-run")}
}

func (d *DryRun) KeyDown(key string) error {
	d.logger.Debug("key down", "key", key)
	return nil
}

func (d *DryRun) KeyUp(key string) error {
	d.logger.Debug("key up", "key", key)
	return nil
}

func (d *DryRun) TypeRune(r rune) error {
	d.logger.Debug("type", "char", string(r))
	return nil
}

func (d *DryRun) MouseDown(button string) error {
	d.logger.Debug("mouse down", "button", button)
	return nil
}

func (d *DryRun) MouseUp(button string) error {
	d.logger.Debug("mouse up", "button", button)
	return nil
}

func (d *DryRun) MousePosition() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.x, d.y
}

func (d *DryRun) MoveMouse(x, y int) error {
	d.mu.Lock()
	d.x, d.y = x, y
	d.mu.Unlock()
	return nil
}

func (d *DryRun) Scroll(ticks int) error {
	d.logger.Debug("scroll", "ticks", ticks)
	return nil
}

func (d *DryRun) DoubleClick(button string) error {
	x, y := d.MousePosition()
	d.logger.Info("double click", "button", button, "x", x, "y", y)
	return nil
}
