// Package window finds the game window by title and reports its geometry
// and focus.
package window

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-vgo/robotgo"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
)

// ErrNotFound is returned when no window title matches.
var ErrNotFound = errors.New("game window not found")

// DefaultName is matched against window titles.
const DefaultName = "rivals"

// Process is one candidate window owner.
type Process struct {
	PID   int
	Name  string
	Title string
}

// Backend is the desktop API the locator queries.
type Backend interface {
	Processes() ([]Process, error)
	Bounds(pid int) types.Rect
	ActivePID() int
	Activate(pid int) error
}

// Locator resolves the game window. The last match is remembered and
// re-validated on each call.
type Locator struct {
	name    string
	backend Backend

	mu  sync.Mutex
	pid int
}

// NewLocator creates a locator matching titles that contain name,
// ignoring case. A nil backend uses the desktop.
func NewLocator(name string, backend Backend) *Locator {
	if name == "" {
		name = DefaultName
	}
	if backend == nil {
		backend = robotBackend{}
	}
	return &Locator{name: strings.ToLower(name), backend: backend}
}

// Find returns the pid owning the first matching window.
func (l *Locator) Find() (int, error) {
	procs, err := l.backend.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Prefer the cached pid while it still matches.
	for _, p := range procs {
		if p.PID == l.pid && l.matches(p) {
			return p.PID, nil
		}
	}
	for _, p := range procs {
		if l.matches(p) {
			l.pid = p.PID
			return p.PID, nil
		}
	}
	l.pid = 0
	return 0, ErrNotFound
}

func (l *Locator) matches(p Process) bool {
	return strings.Contains(strings.ToLower(p.Title), l.name)
}

// Bounds returns the game window rectangle.
func (l *Locator) Bounds() (types.Rect, error) {
	pid, err := l.Find()
	if err != nil {
		return types.Rect{}, err
	}
	r := l.backend.Bounds(pid)
	if r.Empty() {
		return types.Rect{}, fmt.Errorf("window %d has no area", pid)
	}
	return r, nil
}

// Activate brings the game window to the foreground.
func (l *Locator) Activate() error {
	pid, err := l.Find()
	if err != nil {
		return err
	}
	if err := l.backend.Activate(pid); err != nil {
		return fmt.Errorf("activate %d: %w", pid, err)
	}
	return nil
}

// IsForeground reports whether the game window currently has focus.
// A missing window is never in the foreground.
func (l *Locator) IsForeground() bool {
	pid, err := l.Find()
	if err != nil {
		return false
	}
	return l.backend.ActivePID() == pid
}

// ─── robotgo backend ────────────────────────────────────────────────────────

type robotBackend struct{}

func (robotBackend) Processes() ([]Process, error) {
	nps, err := robotgo.Process()
	if err != nil {
		return nil, err
	}
	out := make([]Process, 0, len(nps))
	for _, np := range nps {
		out = append(out, Process{
			PID:   np.Pid,
			Name:  np.Name,
			Title: robotgo.GetTitle(np.Pid),
		})
	}
	return out, nil
}

func (robotBackend) Bounds(pid int) types.Rect {
	x, y, w, h := robotgo.GetBounds(pid)
	return types.Rect{X: x, Y: y, W: w, H: h}
}

func (robotBackend) ActivePID() int {
	return robotgo.GetPid()
}

func (robotBackend) Activate(pid int) error {
	return robotgo.ActivePid(pid)
}
