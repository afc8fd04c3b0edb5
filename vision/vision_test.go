package vision

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/state"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	yellow = color.RGBA{R: 255, G: 255, B: 0, A: 255}
	amber  = color.RGBA{R: 240, G: 220, B: 40, A: 255}
	gray   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	dimYel = color.RGBA{R: 100, G: 100, B: 0, A: 255}
	orange = color.RGBA{R: 255, G: 120, B: 0, A: 255}
)

// frame returns a 10x10 image with n pixels of c and the rest gray.
func frame(c color.Color, n int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	i := 0
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if i < n {
				img.Set(x, y, c)
			} else {
				img.Set(x, y, gray)
			}
			i++
		}
	}
	return img
}

func TestCountYellow(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
		want int
	}{
		{"all gray", frame(gray, 0), 0},
		{"pure yellow", frame(yellow, 30), 30},
		{"amber is in band", frame(amber, 100), 100},
		{"too dark", frame(dimYel, 100), 0},
		{"orange hue", frame(orange, 100), 0},
		{"transparent ignored", image.NewRGBA(image.Rect(0, 0, 4, 4)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CountYellow(tt.img))
		})
	}
}

func TestIsReady_Threshold(t *testing.T) {
	assert.False(t, IsReady(frame(yellow, 50)))
	assert.True(t, IsReady(frame(yellow, 51)))
}

// ─── watcher ────────────────────────────────────────────────────────────────

type fakeWindow struct {
	mu         sync.Mutex
	foreground bool
	rect       types.Rect
}

func (w *fakeWindow) IsForeground() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.foreground
}

func (w *fakeWindow) Bounds() (types.Rect, error) { return w.rect, nil }

type fakeGrabber struct {
	mu      sync.Mutex
	frames  []image.Image
	err     error
	regions []types.Rect
}

func (g *fakeGrabber) Capture(r types.Rect) (image.Image, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.regions = append(g.regions, r)
	if g.err != nil {
		return nil, g.err
	}
	f := g.frames[0]
	if len(g.frames) > 1 {
		g.frames = g.frames[1:]
	}
	return f, nil
}

type countingSpeaker struct {
	mu   sync.Mutex
	said []string
}

func (s *countingSpeaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	s.said = append(s.said, text)
	s.mu.Unlock()
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestWatcher(frames ...image.Image) (*Watcher, *state.State, *fakeWindow, *fakeGrabber, *countingSpeaker, *clock) {
	st := state.New(nil)
	win := &fakeWindow{foreground: true, rect: types.Rect{X: 0, Y: 0, W: 1920, H: 1080}}
	g := &fakeGrabber{frames: frames}
	sp := &countingSpeaker{}
	clk := &clock{t: time.Unix(1700000000, 0)}

	w := NewWatcher(st, win, g, sp, Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.now = clk.now
	return w, st, win, g, sp, clk
}

func TestWatcher_AnnouncesOncePerTransition(t *testing.T) {
	notReady, ready := frame(gray, 0), frame(yellow, 100)
	w, st, _, _, sp, clk := newTestWatcher(notReady, ready, ready, ready, notReady, ready)
	ctx := context.Background()

	wantReady := []bool{false, true, true, true, false, true}
	for i, want := range wantReady {
		w.Tick(ctx)
		assert.Equal(t, want, st.UltReady(), "poll %d", i)
		clk.advance(DefaultPollInterval)
	}

	assert.Equal(t, []string{ReadyLine, ReadyLine}, sp.said)
}

func TestWatcher_Throttled(t *testing.T) {
	w, _, _, g, _, clk := newTestWatcher(frame(gray, 0))
	ctx := context.Background()

	w.Tick(ctx)
	clk.advance(500 * time.Millisecond)
	w.Tick(ctx)
	clk.advance(500 * time.Millisecond)
	w.Tick(ctx)
	assert.Len(t, g.regions, 1)

	clk.advance(DefaultPollInterval)
	w.Tick(ctx)
	assert.Len(t, g.regions, 2)
}

func TestWatcher_SkipsWhenNotForeground(t *testing.T) {
	w, st, win, g, sp, clk := newTestWatcher(frame(yellow, 100))
	win.foreground = false
	st.SetUltReady(true)

	for i := 0; i < 5; i++ {
		w.Tick(context.Background())
		clk.advance(DefaultPollInterval)
	}

	assert.Empty(t, g.regions)
	assert.Empty(t, sp.said)
	assert.True(t, st.UltReady(), "state untouched while unfocused")
	assert.True(t, st.LastUltCheck().IsZero())
}

func TestWatcher_CaptureRegion(t *testing.T) {
	w, st, win, g, _, clk := newTestWatcher(frame(gray, 0))
	win.rect = types.Rect{X: 100, Y: 50, W: 1920, H: 1080}

	w.Tick(context.Background())

	require.Len(t, g.regions, 1)
	assert.Equal(t, types.Rect{X: 100 + 1766, Y: 50 + 961, W: 62, H: 54}, g.regions[0])
	assert.True(t, st.LastUltCheck().Equal(clk.now()))
}

func TestWatcher_PollErrorKeepsState(t *testing.T) {
	w, st, _, g, sp, _ := newTestWatcher(frame(yellow, 100))
	g.err = errors.New("capture failed")

	w.Tick(context.Background())

	assert.False(t, st.UltReady())
	assert.Empty(t, sp.said)
}

func TestWatcher_RunStopsWithState(t *testing.T) {
	w, st, _, _, _, _ := newTestWatcher(frame(gray, 0))
	w.idle = 5 * time.Millisecond

	done := make(chan error, 1)
	go func() { done <- w.Run(context.Background()) }()

	time.Sleep(20 * time.Millisecond)
	st.Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("vision loop did not stop")
	}
}
