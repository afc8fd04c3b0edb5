// Package state holds the process-wide flags and buffers shared by the
// capture loop, the vision loop and the task worker.
package state

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
	"github.com/Brooklyn-Dev/Ultron-AI/taskqueue"
)

// State is the single source of truth for cross-loop flags.
//
// Each flag has exactly one writer. The atomics only make reads from the
// other goroutines race-free; they do not coordinate writers.
type State struct {
	running         atomic.Bool
	listening       atomic.Bool
	simulatingInput atomic.Bool
	ultReady        atomic.Bool
	chatMode        atomic.Uint32
	lastUltCheck    atomic.Int64 // unix nanos

	audioMu sync.Mutex
	audio   [][]byte

	queue *taskqueue.Queue

	stopOnce sync.Once
	done     chan struct{}
}

// New creates a running state with team chat selected.
func New(q *taskqueue.Queue) *State {
	if q == nil {
		q = taskqueue.New()
	}
	s := &State{
		queue: q,
		done:  make(chan struct{}),
	}
	s.running.Store(true)
	s.chatMode.Store(uint32(types.ChatTeam))
	return s
}

// Queue returns the task queue handle.
func (s *State) Queue() *taskqueue.Queue { return s.queue }

// ─── Lifecycle ──────────────────────────────────────────────────────────────

// Running reports whether the main loop should keep going.
func (s *State) Running() bool { return s.running.Load() }

// Stop sets running to false and releases everyone waiting on Done.
// Safe to call more than once.
func (s *State) Stop() {
	s.running.Store(false)
	s.stopOnce.Do(func() { close(s.done) })
}

// Done is closed once Stop has been called.
func (s *State) Done() <-chan struct{} { return s.done }

// ─── Flags ──────────────────────────────────────────────────────────────────

func (s *State) Listening() bool { return s.listening.Load() }
func (s *State) SetListening(v bool) { s.listening.Store(v) }
func (s *State) SimulatingInput() bool { return s.simulatingInput.Load() }
func (s *State) SetSimulatingInput(v bool) { s.simulatingInput.Store(v) }
func (s *State) UltReady() bool { return s.ultReady.Load() }
func (s *State) SetUltReady(v bool) { s.ultReady.Store(v) }

// ChatMode returns the chat mode currently selected in game.
func (s *State) ChatMode() types.ChatMode {
	return types.ChatMode(s.chatMode.Load())
}

// SetChatMode records a completed chat mode switch.
func (s *State) SetChatMode(m types.ChatMode) {
	s.chatMode.Store(uint32(m))
}

// LastUltCheck returns when the vision loop last polled the screen.
func (s *State) LastUltCheck() time.Time {
	n := s.lastUltCheck.Load()
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}

// MarkUltCheck records a vision poll at t.
func (s *State) MarkUltCheck(t time.Time) {
	s.lastUltCheck.Store(t.UnixNano())
}

// ─── Audio buffer ───────────────────────────────────────────────────────────

// ResetAudio clears the buffer at the start of a session.
func (s *State) ResetAudio() {
	s.audioMu.Lock()
	s.audio = nil
	s.audioMu.Unlock()
}

// AppendAudio adds one captured chunk. The chunk is copied.
func (s *State) AppendAudio(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	c := make([]byte, len(chunk))
	copy(c, chunk)

	s.audioMu.Lock()
	s.audio = append(s.audio, c)
	s.audioMu.Unlock()
}

// DrainAudio returns the buffered audio concatenated in capture order and
// clears the buffer. It returns nil if nothing was captured.
func (s *State) DrainAudio() []byte {
	s.audioMu.Lock()
	chunks := s.audio
	s.audio = nil
	s.audioMu.Unlock()

	n := 0
	for _, c := range chunks {
		n += len(c)
	}
	if n == 0 {
		return nil
	}
	out := make([]byte, 0, n)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

// AudioChunks returns the number of buffered chunks.
func (s *State) AudioChunks() int {
	s.audioMu.Lock()
	defer s.audioMu.Unlock()
	return len(s.audio)
}

// Status returns a snapshot for logs and the CLI.
func (s *State) Status() types.Status {
	return types.Status{
		Running:         s.Running(),
		Listening:       s.Listening(),
		ChatMode:        s.ChatMode().String(),
		SimulatingInput: s.SimulatingInput(),
		UltReady:        s.UltReady(),
		QueueLen:        s.queue.Len(),
	}
}
