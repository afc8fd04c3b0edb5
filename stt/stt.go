// Package stt provides speech-to-text provider interface and implementations.
package stt

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrUnrecognized means the audio held no intelligible speech.
	ErrUnrecognized = errors.New("speech not recognized")
	// ErrUnavailable means the recognition service could not be reached
	// or rejected the request.
	ErrUnavailable = errors.New("speech service unavailable")
)

// Format describes raw little-endian int16 PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// TranscribeResult represents the result of a transcription.
type TranscribeResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// Provider defines the interface for speech-to-text providers.
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// IsReady returns true if the provider is ready to use.
	IsReady() bool

	// Transcribe converts raw PCM to text. It returns ErrUnrecognized when
	// nothing was understood and wraps ErrUnavailable on service failures.
	Transcribe(ctx context.Context, pcm []byte, format Format) (*TranscribeResult, error)

	// Close releases resources held by the provider.
	Close() error
}

// Registry holds registered STT providers.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates a new provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

// Get returns a provider by name.
func (r *Registry) Get(name string) Provider {
	return r.providers[name]
}

// Select returns the named provider if it is ready.
func (r *Registry) Select(name string) (Provider, error) {
	p := r.Get(name)
	if p == nil {
		return nil, fmt.Errorf("unknown stt provider %q (have %v)", name, r.Names())
	}
	if !p.IsReady() {
		return nil, fmt.Errorf("stt provider %q is not ready", name)
	}
	return p, nil
}

// Names returns the registered provider names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for n := range r.providers {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Close releases all providers.
func (r *Registry) Close() error {
	var errs []error
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
