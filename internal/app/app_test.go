package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Brooklyn-Dev/Ultron-AI/cache"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/state"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
	"github.com/Brooklyn-Dev/Ultron-AI/llm"
	"github.com/Brooklyn-Dev/Ultron-AI/stt"
	"github.com/Brooklyn-Dev/Ultron-AI/taskqueue"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// ─── fakes ──────────────────────────────────────────────────────────────────

// mockCompleter implements llm.Completer for testing.
type mockCompleter struct {
	response string
	usage    types.Usage
	err      error
	calls    atomic.Int32
	last     []llm.Message
}

func (m *mockCompleter) Complete(_ context.Context, msgs []llm.Message) (string, types.Usage, error) {
	m.calls.Add(1)
	m.last = msgs
	return m.response, m.usage, m.err
}

type fakeSTT struct {
	text string
	err  error
	got  []byte
}

func (f *fakeSTT) Transcribe(_ context.Context, pcm []byte, _ stt.Format) (*stt.TranscribeResult, error) {
	f.got = pcm
	if f.err != nil {
		return nil, f.err
	}
	return &stt.TranscribeResult{Text: f.text}, nil
}

type fakeCommands struct {
	mu     sync.Mutex
	got    []string
	onCall func(string)
}

func (f *fakeCommands) Process(s string) int {
	f.mu.Lock()
	f.got = append(f.got, s)
	fn := f.onCall
	f.mu.Unlock()
	if fn != nil {
		fn(s)
	}
	return 1
}

func (f *fakeCommands) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.got...)
}

// recordingSpeaker logs every line together with the commands seen so far,
// so tests can check ordering.
type recordingSpeaker struct {
	mu       sync.Mutex
	said     []string
	commands *fakeCommands
	seenCmds []int
}

func (s *recordingSpeaker) Speak(_ context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.said = append(s.said, text)
	if s.commands != nil {
		s.seenCmds = append(s.seenCmds, len(s.commands.calls()))
	}
	return nil
}

func (s *recordingSpeaker) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.said...)
}

type fakeMic struct {
	opened, closed atomic.Int32
	openErr        error
	readErr        error
	reads          atomic.Int32
}

func (m *fakeMic) Open() error {
	if m.openErr != nil {
		return m.openErr
	}
	m.opened.Add(1)
	return nil
}

func (m *fakeMic) Close() error {
	m.closed.Add(1)
	return nil
}

func (m *fakeMic) ReadChunk() ([]byte, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	time.Sleep(time.Millisecond)
	m.reads.Add(1)
	return []byte{1, 0}, nil
}

type fakeHotkey struct {
	started, stopped atomic.Bool
}

func (h *fakeHotkey) Start() error { h.started.Store(true); return nil }
func (h *fakeHotkey) Stop()        { h.stopped.Store(true) }

// ─── responder ──────────────────────────────────────────────────────────────

func TestResponder_SplitsReply(t *testing.T) {
	m := &mockCompleter{response: `"Drone deployed." || press(e);`, usage: types.Usage{TotalTokens: 9}}
	r := NewResponder(m, nil, ResponderConfig{Model: "llama"})

	reply, usage, err := r.Respond(context.Background(), "deploy the drone")
	require.NoError(t, err)
	assert.Equal(t, types.Reply{Spoken: "Drone deployed.", Command: "press(e);"}, reply)
	assert.Equal(t, 9, usage.TotalTokens)

	require.Len(t, m.last, 2)
	assert.Equal(t, llm.SystemPrompt("||"), m.last[0].Content)
	assert.Equal(t, "deploy the drone", m.last[1].Content)
}

func TestResponder_Errors(t *testing.T) {
	tests := []struct {
		name string
		m    *mockCompleter
	}{
		{"completion error", &mockCompleter{err: errors.New("503")}},
		{"empty reply", &mockCompleter{response: "  "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResponder(tt.m, nil, ResponderConfig{})
			_, _, err := r.Respond(context.Background(), "fly")
			assert.Error(t, err)
		})
	}
}

func TestResponder_Cache(t *testing.T) {
	c, err := cache.NewInMemory()
	require.NoError(t, err)
	defer c.Close()

	m := &mockCompleter{response: "Flight engaged. || fly;", usage: types.Usage{TotalTokens: 12}}
	r := NewResponder(m, c, ResponderConfig{Model: "llama"})
	ctx := context.Background()

	first, usage, err := r.Respond(ctx, "Fly")
	require.NoError(t, err)
	assert.False(t, usage.CacheHit)

	second, usage, err := r.Respond(ctx, " fly ")
	require.NoError(t, err)
	assert.True(t, usage.CacheHit)
	assert.Equal(t, 12, usage.TotalTokens)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), m.calls.Load())

	// Failures are not cached.
	m.err = errors.New("down")
	_, _, err = r.Respond(ctx, "melee")
	assert.Error(t, err)
}

// ─── dispatcher ─────────────────────────────────────────────────────────────

func TestDispatcher_CommandsBeforeSpeech(t *testing.T) {
	cmds := &fakeCommands{}
	sp := &recordingSpeaker{commands: cmds}
	st := &fakeSTT{text: "fly and fire twice"}
	r := NewResponder(&mockCompleter{response: "Flight engaged. || fly; fire(2);"}, nil, ResponderConfig{})
	d := NewDispatcher(st, stt.Format{SampleRate: 16000, Channels: 1}, r, cmds, sp, discard)

	d.Handle(context.Background(), []byte{1, 2, 3, 4})

	assert.Equal(t, []byte{1, 2, 3, 4}, st.got)
	assert.Equal(t, []string{"fly; fire(2);"}, cmds.calls())
	assert.Equal(t, []string{"Flight engaged."}, sp.lines())
	assert.Equal(t, []int{1}, sp.seenCmds, "commands queued before speaking")
}

func TestDispatcher_Fallbacks(t *testing.T) {
	tests := []struct {
		name      string
		stt       *fakeSTT
		completer *mockCompleter
		wantSaid  []string
		wantCmds  []string
	}{
		{
			name:      "unrecognized audio is silent",
			stt:       &fakeSTT{err: stt.ErrUnrecognized},
			completer: &mockCompleter{response: "x"},
		},
		{
			name:      "stt unavailable is silent",
			stt:       &fakeSTT{err: stt.ErrUnavailable},
			completer: &mockCompleter{response: "x"},
		},
		{
			name:      "completion failure speaks offline line",
			stt:       &fakeSTT{text: "fly"},
			completer: &mockCompleter{err: errors.New("timeout")},
			wantSaid:  []string{llm.OfflineLine},
		},
		{
			name:      "spoken only",
			stt:       &fakeSTT{text: "hello"},
			completer: &mockCompleter{response: "Acknowledged."},
			wantSaid:  []string{"Acknowledged."},
		},
		{
			name:      "command only",
			stt:       &fakeSTT{text: "lock"},
			completer: &mockCompleter{response: "|| lock;"},
			wantCmds:  []string{"lock;"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := &fakeCommands{}
			sp := &recordingSpeaker{}
			r := NewResponder(tt.completer, nil, ResponderConfig{})
			d := NewDispatcher(tt.stt, stt.Format{}, r, cmds, sp, discard)

			d.Handle(context.Background(), []byte{1, 0})

			assert.Equal(t, tt.wantSaid, sp.lines())
			assert.Equal(t, tt.wantCmds, cmds.calls())
		})
	}
}

// ─── session & listener ─────────────────────────────────────────────────────

func TestSession_StartStop(t *testing.T) {
	st := state.New(nil)
	mic := &fakeMic{}
	s := NewSession(mic, st, discard)

	require.NoError(t, s.Start())
	assert.ErrorIs(t, s.Start(), ErrSessionActive)
	assert.True(t, s.Active())

	assert.Eventually(t, func() bool { return st.AudioChunks() >= 3 }, time.Second, time.Millisecond)
	s.Stop()
	assert.False(t, s.Active())

	// Joined: nothing is appended after Stop returns.
	n := st.AudioChunks()
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, n, st.AudioChunks())
	assert.Equal(t, int(mic.reads.Load()), n)

	s.Stop()
	require.NoError(t, s.Start())
	s.Stop()
}

func TestSession_ReadErrorEndsFill(t *testing.T) {
	st := state.New(nil)
	s := NewSession(&fakeMic{readErr: errors.New("device lost")}, st, discard)

	require.NoError(t, s.Start())
	s.Stop()
	assert.Zero(t, st.AudioChunks())
}

func TestListener_PushToTalk(t *testing.T) {
	st := state.New(nil)
	l := NewListener(st, NewSession(&fakeMic{}, st, discard), nil, discard)

	l.OnRelease() // release without press
	assert.Empty(t, l.Utterances())

	l.OnPress()
	l.OnPress() // auto-repeat
	assert.True(t, st.Listening())
	assert.Eventually(t, func() bool { return st.AudioChunks() > 0 }, time.Second, time.Millisecond)
	l.OnRelease()
	assert.False(t, st.Listening())

	require.Len(t, l.Utterances(), 1)
	pcm := <-l.Utterances()
	assert.NotEmpty(t, pcm)
	assert.Zero(t, st.AudioChunks(), "buffer drained")
}

func TestListener_IgnoresPressWhileSimulatingInput(t *testing.T) {
	st := state.New(nil)
	var cues atomic.Int32
	l := NewListener(st, NewSession(&fakeMic{}, st, discard), func() error { cues.Add(1); return nil }, discard)

	st.SetSimulatingInput(true)
	l.OnPress()
	assert.False(t, st.Listening())
	assert.Zero(t, cues.Load())

	st.SetSimulatingInput(false)
	l.OnPress()
	assert.True(t, st.Listening())
	assert.Equal(t, int32(1), cues.Load())
	assert.Eventually(t, func() bool { return st.AudioChunks() > 0 }, time.Second, time.Millisecond)
	l.OnRelease()
	assert.Len(t, l.Utterances(), 1)
}

func TestListener_NoAudioCaptured(t *testing.T) {
	st := state.New(nil)
	l := NewListener(st, NewSession(&fakeMic{readErr: errors.New("overflow")}, st, discard), nil, discard)

	l.OnPress()
	l.OnRelease()
	assert.Empty(t, l.Utterances())
}

// ─── service ────────────────────────────────────────────────────────────────

func TestService_RunUntilShutdown(t *testing.T) {
	st := state.New(nil)
	mic := &fakeMic{}
	hk := &fakeHotkey{}
	cmds := &fakeCommands{}
	sp := &recordingSpeaker{}

	// The command string queues a task that clears running, as the
	// shutdown action does.
	cmds.onCall = func(string) {
		_ = st.Queue().Submit(taskqueue.Task{Name: "shutdown", Run: func(context.Context) error {
			st.Stop()
			return nil
		}})
	}

	r := NewResponder(&mockCompleter{response: "Terminating. || shutdown;"}, nil, ResponderConfig{})
	bound := make(chan [2]func(), 1)
	svc := New(Deps{
		State: st,
		Mic:   mic,
		Hotkey: func(onPress, onRelease func()) (Hotkey, error) {
			bound <- [2]func(){onPress, onRelease}
			return hk, nil
		},
		Dispatcher: NewDispatcher(&fakeSTT{text: "shut down"}, stt.Format{}, r, cmds, sp, discard),
		Worker:     taskqueue.NewWorker(st.Queue(), discard),
		Speaker:    sp,
		Greet:      true,
		Logger:     discard,
	})

	done := make(chan error, 1)
	go func() { done <- svc.Run(context.Background()) }()

	handlers := <-bound
	assert.Eventually(t, hk.started.Load, time.Second, time.Millisecond)

	handlers[0]()
	assert.Eventually(t, func() bool { return st.AudioChunks() > 0 }, time.Second, time.Millisecond)
	handlers[1]()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("service did not stop")
	}

	assert.False(t, st.Running())
	assert.True(t, hk.stopped.Load())
	assert.Equal(t, int32(1), mic.opened.Load())
	assert.Equal(t, int32(1), mic.closed.Load())
	assert.Equal(t, []string{Greeting, "Terminating."}, sp.lines())
	assert.Equal(t, []string{"shutdown;"}, cmds.calls())
}

func TestService_ContextCancel(t *testing.T) {
	st := state.New(nil)
	mic := &fakeMic{}
	svc := New(Deps{
		State:      st,
		Mic:        mic,
		Hotkey:     func(_, _ func()) (Hotkey, error) { return &fakeHotkey{}, nil },
		Dispatcher: NewDispatcher(&fakeSTT{}, stt.Format{}, NewResponder(&mockCompleter{}, nil, ResponderConfig{}), &fakeCommands{}, &recordingSpeaker{}, discard),
		Worker:     taskqueue.NewWorker(st.Queue(), discard),
		Speaker:    &recordingSpeaker{},
		Logger:     discard,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("service did not stop")
	}
	assert.False(t, st.Running())
	assert.Equal(t, int32(1), mic.closed.Load())
}

func TestService_MicFailureAborts(t *testing.T) {
	st := state.New(nil)
	bound := false
	svc := New(Deps{
		State: st,
		Mic:   &fakeMic{openErr: errors.New("no input device")},
		Hotkey: func(_, _ func()) (Hotkey, error) {
			bound = true
			return &fakeHotkey{}, nil
		},
		Logger: discard,
	})

	err := svc.Run(context.Background())
	assert.ErrorContains(t, err, "acquire audio input")
	assert.False(t, bound)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestService_Close(t *testing.T) {
	var order []int
	boom := errors.New("boom")
	svc := New(Deps{Closers: []io.Closer{
		closerFunc(func() error { order = append(order, 1); return nil }),
		nil,
		closerFunc(func() error { order = append(order, 2); return boom }),
	}})

	assert.ErrorIs(t, svc.Close(), boom)
	assert.Equal(t, []int{1, 2}, order)
}
