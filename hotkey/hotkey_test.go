package hotkey

import (
	"sync/atomic"
	"testing"
	"time"

	hook "github.com/robotn/gohook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fakeSource(ch chan hook.Event, ended *atomic.Bool) Source {
	return func() (<-chan hook.Event, func()) {
		return ch, func() { ended.Store(true) }
	}
}

func TestKeycode(t *testing.T) {
	code, err := Keycode(" U ")
	require.NoError(t, err)
	assert.Equal(t, hook.Keycode["u"], code)

	_, err = Keycode("not-a-key")
	assert.ErrorIs(t, err, ErrUnknownKey)
}

func TestManager_PressRelease(t *testing.T) {
	var presses, releases atomic.Int32
	m, err := NewHotkeyManager("u", func() { presses.Add(1) }, func() { releases.Add(1) })
	require.NoError(t, err)

	ch := make(chan hook.Event)
	var ended atomic.Bool
	m.source = fakeSource(ch, &ended)

	require.NoError(t, m.Start())
	assert.ErrorIs(t, m.Start(), ErrRunning)

	u := hook.Keycode["u"]
	other := hook.Keycode["v"]
	ch <- hook.Event{Kind: hook.KeyHold, Keycode: u}
	ch <- hook.Event{Kind: hook.KeyHold, Keycode: other}
	ch <- hook.Event{Kind: hook.KeyDown, Keycode: u} // typed event, ignored
	ch <- hook.Event{Kind: hook.KeyUp, Keycode: other}
	ch <- hook.Event{Kind: hook.KeyUp, Keycode: u}

	assert.Eventually(t, func() bool { return releases.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), presses.Load())

	m.Stop()
	m.Stop()
	assert.True(t, ended.Load())
}

func TestManager_ClosedSource(t *testing.T) {
	m, err := NewHotkeyManager("u", nil, nil)
	require.NoError(t, err)

	ch := make(chan hook.Event)
	var ended atomic.Bool
	m.source = fakeSource(ch, &ended)

	require.NoError(t, m.Start())
	close(ch)
	m.Stop()
	assert.True(t, ended.Load())
}

func TestNewHotkeyManager_UnknownKey(t *testing.T) {
	_, err := NewHotkeyManager("", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownKey)
}
