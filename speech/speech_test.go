package speech

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestEffects_Identity(t *testing.T) {
	fx := Effects{PitchMult: 1}
	in := []int16{0, 1000, -1000, 32767, -32768}
	out, rate := fx.Apply(in, 24000)
	assert.Equal(t, 24000, rate)
	assert.Equal(t, in, out)
}

func TestEffects_PitchResamples(t *testing.T) {
	fx := Effects{PitchMult: 0.96, OutRate: 44100}
	in := make([]int16, 24000)
	out, rate := fx.Apply(in, 24000)
	assert.Equal(t, 44100, rate)
	// One second at 24 kHz slowed by 0.96 lasts 1/0.96 s at 44.1 kHz.
	assert.Equal(t, 45937, len(out))
}

func TestEffects_Echo(t *testing.T) {
	fx := Effects{PitchMult: 1, OutRate: 1000, EchoDelay: 10 * time.Millisecond, EchoGainDB: -6}
	in := make([]int16, 30)
	in[0] = 10000

	out, _ := fx.Apply(in, 1000)
	require.Len(t, out, 30)
	assert.Equal(t, int16(10000), out[0])
	want := int16(math.Round(10000 * math.Pow(10, -6.0/20)))
	assert.Equal(t, want, out[10])
	for i, v := range out {
		if i != 0 && i != 10 {
			assert.Zero(t, v, "sample %d", i)
		}
	}
}

func TestEffects_GainClips(t *testing.T) {
	fx := Effects{PitchMult: 1, GainDB: 6}
	out, _ := fx.Apply([]int16{30000, -30000, 100}, 8000)
	assert.Equal(t, []int16{math.MaxInt16, math.MinInt16, int16(math.Round(100 * math.Pow(10, 6.0/20)))}, out)
}

func TestEffects_Empty(t *testing.T) {
	out, rate := DefaultEffects().Apply(nil, 24000)
	assert.Empty(t, out)
	assert.Equal(t, 24000, rate)
}

type fakeSynth struct {
	calls atomic.Int32
	err   error
}

func (f *fakeSynth) Synthesize(_ context.Context, text string) ([]int16, int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, 0, f.err
	}
	return make([]int16, len(text)), 8000, nil
}

type fakePlayer struct {
	mu      sync.Mutex
	active  int
	overlap bool
	played  int
}

func (p *fakePlayer) Play(_ context.Context, samples []int16, rate int) error {
	p.mu.Lock()
	p.active++
	if p.active > 1 {
		p.overlap = true
	}
	p.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	p.mu.Lock()
	p.active--
	p.played++
	p.mu.Unlock()
	return nil
}

func TestSpeaker_BlankIsNoop(t *testing.T) {
	synth := &fakeSynth{}
	s := New(synth, &fakePlayer{}, DefaultEffects(), discard)
	require.NoError(t, s.Speak(context.Background(), "  \n"))
	assert.Zero(t, synth.calls.Load())
}

func TestSpeaker_Serialized(t *testing.T) {
	p := &fakePlayer{}
	s := New(&fakeSynth{}, p, Effects{PitchMult: 1}, discard)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			assert.NoError(t, s.Speak(context.Background(), "Ultimate ready."))
		})
	}
	wg.Wait()

	assert.False(t, p.overlap)
	assert.Equal(t, 8, p.played)
}

func TestSpeaker_SynthError(t *testing.T) {
	s := New(&fakeSynth{err: errors.New("quota")}, &fakePlayer{}, DefaultEffects(), discard)
	err := s.Speak(context.Background(), "hello")
	assert.ErrorContains(t, err, "synthesize: quota")
}

func TestLog_Speak(t *testing.T) {
	var sb strings.Builder
	l := Log{Logger: slog.New(slog.NewTextHandler(&sb, nil))}
	require.NoError(t, l.Speak(context.Background(), "I am Ultron."))
	require.NoError(t, l.Speak(context.Background(), " "))
	assert.Equal(t, 1, strings.Count(sb.String(), "says="))
}

func TestOpenAI_Synthesize(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/audio/speech") {
			http.NotFound(w, r)
			return
		}
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte{0x01, 0x00, 0xff, 0xff, 0x00, 0x80})
	}))
	defer srv.Close()

	o, err := NewOpenAI(OpenAIConfig{
		APIKey:  "k",
		BaseURL: srv.URL + "/v1/",
		Voice:   "Fritz-PlayAI",
		Options: []option.RequestOption{option.WithMaxRetries(0)},
	})
	require.NoError(t, err)

	samples, rate, err := o.Synthesize(context.Background(), "I am Ultron.")
	require.NoError(t, err)
	assert.Equal(t, pcmRate, rate)
	assert.Equal(t, []int16{1, -1, math.MinInt16}, samples)

	assert.Contains(t, body, `"voice":"Fritz-PlayAI"`)
	assert.Contains(t, body, `"response_format":"pcm"`)
	assert.Contains(t, body, `"input":"I am Ultron."`)
}

func TestNewOpenAI_NoKey(t *testing.T) {
	_, err := NewOpenAI(OpenAIConfig{})
	assert.Error(t, err)
}
