// Package llm provides the chat completion client and the Ultron persona
// prompt.
package llm

import (
	"context"
	"errors"

	"github.com/openai/openai-go/v3/option"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
)

// DefaultBaseURL points at Groq's OpenAI-compatible API.
const DefaultBaseURL = "https://api.groq.com/openai/v1"

// ErrNoAPIKey is returned by NewCompleter when no key is configured.
var ErrNoAPIKey = errors.New("llm: api key required")

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Options configures LLM completion behavior.
type Options struct {
	MaxTokens   int
	Temperature float64

	// Extra client options, e.g. retries or a custom HTTP client.
	RequestOptions []option.RequestOption
}

// Completer performs chat completions.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, types.Usage, error)
}

// NewCompleter creates a Completer for an OpenAI-compatible endpoint.
// An empty baseURL selects DefaultBaseURL.
func NewCompleter(apiKey, baseURL, model string, opts Options) (Completer, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return newOpenAICompleter(apiKey, baseURL, model, opts), nil
}
