// Package audiocapture reads microphone audio through PortAudio.
package audiocapture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// ErrNotCapturing is returned when reading from a closed microphone.
var ErrNotCapturing = errors.New("not capturing audio")

// ErrAlreadyCapturing is returned when opening a microphone twice.
var ErrAlreadyCapturing = errors.New("already capturing audio")

// Config holds configuration for audio capture.
type Config struct {
	SampleRate int // default 16000 Hz
	Channels   int // default 1
	ChunkSize  int // frames per read, default 4096
}

// DefaultConfig returns the default capture configuration.
func DefaultConfig() Config {
	return Config{
		SampleRate: 16000,
		Channels:   1,
		ChunkSize:  4096,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.Channels <= 0 {
		c.Channels = d.Channels
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = d.ChunkSize
	}
	return c
}

// Microphone is the default input device opened as a blocking int16 stream.
// The stream runs for the life of the process; reads between push-to-talk
// sessions are simply not made, and the resulting overflow is ignored.
type Microphone struct {
	cfg Config

	mu     sync.Mutex
	stream *portaudio.Stream
	in     []int16
	open   bool
}

// New creates a microphone. Call Open before reading.
func New(cfg Config) *Microphone {
	return &Microphone{cfg: cfg.withDefaults()}
}

// Config returns the effective configuration.
func (m *Microphone) Config() Config { return m.cfg }

// Open initializes PortAudio and starts the default input stream.
func (m *Microphone) Open() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.open {
		return ErrAlreadyCapturing
	}
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	in := make([]int16, m.cfg.ChunkSize*m.cfg.Channels)
	stream, err := portaudio.OpenDefaultStream(m.cfg.Channels, 0, float64(m.cfg.SampleRate), m.cfg.ChunkSize, in)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("start input stream: %w", err)
	}

	m.stream = stream
	m.in = in
	m.open = true
	return nil
}

// ReadChunk blocks for one chunk and returns it as little-endian int16 PCM.
// The returned slice is freshly allocated.
func (m *Microphone) ReadChunk() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil, ErrNotCapturing
	}
	if err := m.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return nil, fmt.Errorf("read input stream: %w", err)
	}
	return Int16ToBytes(m.in), nil
}

// Close stops the stream and releases PortAudio.
func (m *Microphone) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.open {
		return nil
	}
	m.open = false

	err := errors.Join(m.stream.Stop(), m.stream.Close(), portaudio.Terminate())
	m.stream = nil
	if err != nil {
		return fmt.Errorf("close microphone: %w", err)
	}
	return nil
}

// Int16ToBytes encodes samples as little-endian PCM.
func Int16ToBytes(samples []int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(s))
	}
	return out
}

// BytesToInt16 decodes little-endian PCM. A trailing odd byte is dropped.
func BytesToInt16(pcm []byte) []int16 {
	out := make([]int16, len(pcm)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(pcm[2*i:]))
	}
	return out
}
