package speech

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const (
	defaultTTSBaseURL = "https://api.openai.com/v1"
	defaultTTSModel   = "gpt-4o-mini-tts"
	defaultTTSVoice   = "onyx"

	// pcmRate is the sample rate of the API's raw "pcm" response format.
	pcmRate = 24000
)

// OpenAIConfig configures the OpenAI speech synthesizer.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
	Speed   float64 // 0 keeps the service default

	Options []option.RequestOption
}

// OpenAI synthesizes speech through an OpenAI-compatible /audio/speech
// endpoint.
type OpenAI struct {
	client openai.Client
	model  string
	voice  string
	speed  float64
}

// NewOpenAI creates the synthesizer. An API key is required.
func NewOpenAI(cfg OpenAIConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("tts: api key required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultTTSBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultTTSModel
	}
	if cfg.Voice == "" {
		cfg.Voice = defaultTTSVoice
	}

	opts := append([]option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.BaseURL),
	}, cfg.Options...)

	return &OpenAI{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		voice:  cfg.Voice,
		speed:  cfg.Speed,
	}, nil
}

func (o *OpenAI) Synthesize(ctx context.Context, text string) ([]int16, int, error) {
	params := openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(o.model),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatPCM,
	}
	if o.speed > 0 {
		params.Speed = openai.Float(o.speed)
	}

	// Compatible providers name their voices freely, so the voice goes in
	// as raw JSON rather than the enum.
	resp, err := o.client.Audio.Speech.New(ctx, params, option.WithJSONSet("voice", o.voice))
	if err != nil {
		return nil, 0, fmt.Errorf("speech request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read speech: %w", err)
	}

	samples := make([]int16, len(raw)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(raw[2*i:]))
	}
	return samples, pcmRate, nil
}
