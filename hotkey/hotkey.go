// Package hotkey watches the global keyboard for the push-to-talk key.
package hotkey

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

var (
	// ErrRunning is returned when Start is called twice.
	ErrRunning = errors.New("hotkey manager already running")
	// ErrUnknownKey is returned for a key name the hook cannot map.
	ErrUnknownKey = errors.New("unknown hotkey")
)

// DefaultKey is the push-to-talk key.
const DefaultKey = "u"

// Source starts delivering global input events and returns a function that
// stops them.
type Source func() (<-chan hook.Event, func())

func gohookSource() (<-chan hook.Event, func()) {
	return hook.Start(), hook.End
}

// Manager calls onPress when the key goes down and onRelease when it comes
// back up. Auto-repeat presses are passed through; callers gate on their
// own state.
type Manager struct {
	key       uint16
	onPress   func()
	onRelease func()
	source    Source

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
	end     func()
}

// NewHotkeyManager creates a manager for the named key.
func NewHotkeyManager(key string, onPress, onRelease func()) (*Manager, error) {
	code, err := Keycode(key)
	if err != nil {
		return nil, err
	}
	return &Manager{
		key:       code,
		onPress:   onPress,
		onRelease: onRelease,
		source:    gohookSource,
	}, nil
}

// Keycode resolves a key name such as "u" or "f8".
func Keycode(key string) (uint16, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	code, ok := hook.Keycode[k]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	return code, nil
}

// Start registers the global hook and begins dispatching events.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return ErrRunning
	}

	events, end := m.source()
	m.end = end
	m.stop = make(chan struct{})
	m.done = make(chan struct{})
	m.running = true

	go m.loop(events, m.stop, m.done)
	return nil
}

// Stop unregisters the hook and waits for the dispatch goroutine to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	close(m.stop)
	end, done := m.end, m.done
	m.mu.Unlock()

	<-done
	if end != nil {
		end()
	}
}

func (m *Manager) loop(events <-chan hook.Event, stop, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-stop:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			m.handle(ev)
		}
	}
}

func (m *Manager) handle(ev hook.Event) {
	if ev.Keycode != m.key {
		return
	}
	switch ev.Kind {
	case hook.KeyHold:
		if m.onPress != nil {
			m.onPress()
		}
	case hook.KeyUp:
		if m.onRelease != nil {
			m.onRelease()
		}
	}
}
