package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultWhisperBaseURL = "https://api.groq.com/openai/v1"
	defaultWhisperModel   = "whisper-large-v3"
)

// WhisperAPI implements Provider against an OpenAI-compatible
// /audio/transcriptions endpoint.
type WhisperAPI struct {
	client   openai.Client
	model    string
	language string

	mu    sync.RWMutex
	ready bool
}

// WhisperAPIConfig holds configuration for WhisperAPI.
type WhisperAPIConfig struct {
	APIKey   string
	BaseURL  string // Optional, defaults to Groq's OpenAI-compatible API
	Model    string // Optional, defaults to "whisper-large-v3"
	Language string // Optional ISO-639-1 hint, empty for auto-detect

	// Extra client options, e.g. retries or a custom HTTP client.
	Options []option.RequestOption
}

// NewWhisperAPI creates a new WhisperAPI provider.
func NewWhisperAPI(cfg WhisperAPIConfig) *WhisperAPI {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultWhisperBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultWhisperModel
	}

	opts := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
	}, cfg.Options...)

	return &WhisperAPI{
		client:   openai.NewClient(opts...),
		model:    model,
		language: cfg.Language,
		ready:    cfg.APIKey != "",
	}
}

func (w *WhisperAPI) Name() string { return "whisper-api" }

func (w *WhisperAPI) IsReady() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.ready
}

// Transcribe uploads pcm as a WAV file and returns the recognized text.
func (w *WhisperAPI) Transcribe(ctx context.Context, pcm []byte, format Format) (*TranscribeResult, error) {
	if !w.IsReady() {
		return nil, fmt.Errorf("%w: api key required", ErrUnavailable)
	}
	if len(pcm) < 2 {
		return nil, ErrUnrecognized
	}

	// go-audio's encoder needs to seek back and patch the header.
	f, err := os.CreateTemp("", "ultron-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create temp wav: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(f.Name())
	}()

	if err := EncodeWAV(f, pcm, format); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind wav: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(f, "audio.wav", "audio/wav"),
		Model: openai.AudioModel(w.model),
	}
	if w.language != "" && w.language != "auto" {
		params.Language = openai.String(w.language)
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return nil, ErrUnrecognized
	}
	return &TranscribeResult{Text: text, Language: w.language}, nil
}

func (w *WhisperAPI) Close() error {
	return nil
}

// EncodeWAV writes little-endian int16 pcm as a 16-bit WAV file.
func EncodeWAV(ws io.WriteSeeker, pcm []byte, format Format) error {
	if format.SampleRate <= 0 {
		format.SampleRate = 16000
	}
	if format.Channels <= 0 {
		format.Channels = 1
	}

	data := make([]int, len(pcm)/2)
	for i := range data {
		data[i] = int(int16(uint16(pcm[2*i]) | uint16(pcm[2*i+1])<<8))
	}

	enc := wav.NewEncoder(ws, format.SampleRate, 16, format.Channels, 1)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: format.Channels,
			SampleRate:  format.SampleRate,
		},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		enc.Close()
		return err
	}
	return enc.Close()
}
