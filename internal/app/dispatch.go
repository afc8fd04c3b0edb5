package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Brooklyn-Dev/Ultron-AI/cache"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/types"
	"github.com/Brooklyn-Dev/Ultron-AI/llm"
	"github.com/Brooklyn-Dev/Ultron-AI/stt"
)

// Responder turns an utterance into a split reply, with cache lookup.
// Zero value is not useful; create via NewResponder.
type Responder struct {
	completer llm.Completer
	cache     *cache.Cache
	model     string
	delim     string
	ttl       time.Duration
	timeout   time.Duration
}

// ResponderConfig configures a Responder.
type ResponderConfig struct {
	Model     string
	Delimiter string
	CacheTTL  time.Duration // defaults to cache.DefaultTTL
	Timeout   time.Duration // per completion, 0 for none
}

// NewResponder creates a Responder. If c is nil, caching is disabled.
func NewResponder(completer llm.Completer, c *cache.Cache, cfg ResponderConfig) *Responder {
	if cfg.Delimiter == "" {
		cfg.Delimiter = llm.DefaultDelimiter
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = cache.DefaultTTL
	}
	return &Responder{
		completer: completer,
		cache:     c,
		model:     cfg.Model,
		delim:     cfg.Delimiter,
		ttl:       cfg.CacheTTL,
		timeout:   cfg.Timeout,
	}
}

// Respond performs one completion for utterance and splits the reply.
func (r *Responder) Respond(ctx context.Context, utterance string) (types.Reply, types.Usage, error) {
	key := r.cacheKey(utterance)

	if text, usage, ok := r.getCached(key); ok {
		return llm.SplitReply(text, r.delim), usage, nil
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, usage, err := r.completer.Complete(ctx, llm.Messages(r.delim, utterance))
	if err != nil {
		return types.Reply{}, types.Usage{}, fmt.Errorf("complete: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return types.Reply{}, usage, errors.New("empty reply")
	}

	r.setCache(key, text, usage)
	return llm.SplitReply(text, r.delim), usage, nil
}

func (r *Responder) cacheKey(utterance string) string {
	return cache.GenerateKey(r.model, r.delim, strings.ToLower(strings.TrimSpace(utterance)))
}

func (r *Responder) getCached(key string) (string, types.Usage, bool) {
	if r.cache == nil {
		return "", types.Usage{}, false
	}

	entry, found := r.cache.Get(key)
	if !found {
		return "", types.Usage{}, false
	}

	return entry.Text, types.Usage{
		PromptTokens:     entry.Usage.PromptTokens,
		CompletionTokens: entry.Usage.CompletionTokens,
		TotalTokens:      entry.Usage.TotalTokens,
		CacheHit:         true,
	}, true
}

func (r *Responder) setCache(key, text string, usage types.Usage) {
	if r.cache == nil {
		return
	}

	entry := &cache.Entry{
		Text: text,
		Usage: cache.Usage{
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
		},
		CreatedAt: time.Now(),
	}

	// Ignore error - caching is best effort
	_ = r.cache.Set(key, entry, r.ttl)
}

// ─────────────────────────────────────────────────────────────────────────────
// Dispatch
// ─────────────────────────────────────────────────────────────────────────────

// Transcriber converts captured PCM to text.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []byte, format stt.Format) (*stt.TranscribeResult, error)
}

// CommandProcessor validates a command string and queues its actions.
type CommandProcessor interface {
	Process(s string) int
}

// Speaker renders text aloud and blocks until playback ends.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Dispatcher runs one utterance through recognition, the model and the
// command validator, then speaks the reply.
type Dispatcher struct {
	stt       Transcriber
	format    stt.Format
	responder *Responder
	commands  CommandProcessor
	speaker   Speaker
	logger    *slog.Logger
}

// NewDispatcher wires a dispatcher.
func NewDispatcher(t Transcriber, format stt.Format, r *Responder, cp CommandProcessor, sp Speaker, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		stt:       t,
		format:    format,
		responder: r,
		commands:  cp,
		speaker:   sp,
		logger:    logger,
	}
}

// Handle processes one captured utterance. Failures are logged or spoken,
// never returned.
func (d *Dispatcher) Handle(ctx context.Context, pcm []byte) {
	logger := d.logger.With("utterance", uuid.NewString())
	logger.Info("processing", "bytes", len(pcm))

	res, err := d.stt.Transcribe(ctx, pcm, d.format)
	switch {
	case errors.Is(err, stt.ErrUnrecognized):
		logger.Warn("could not understand audio")
		return
	case err != nil:
		logger.Error("speech recognition", "error", err)
		return
	}
	logger.Info("you said", "text", res.Text)

	d.Respond(ctx, logger, res.Text)
}

// Respond handles an already transcribed utterance.
func (d *Dispatcher) Respond(ctx context.Context, logger *slog.Logger, text string) {
	if logger == nil {
		logger = d.logger
	}

	reply, usage, err := d.responder.Respond(ctx, text)
	if err != nil {
		logger.Error("completion", "error", err)
		d.say(ctx, logger, llm.OfflineLine)
		return
	}
	logger.Debug("reply", "spoken", reply.Spoken, "command", reply.Command,
		"tokens", usage.TotalTokens, "cached", usage.CacheHit)

	// Queue actions first so they run while the reply is spoken.
	if reply.HasCommand() {
		n := d.commands.Process(reply.Command)
		logger.Info("commands queued", "count", n, "command", reply.Command)
	}
	if reply.Spoken != "" {
		logger.Info("ultron", "says", reply.Spoken)
		d.say(ctx, logger, reply.Spoken)
	}
}

func (d *Dispatcher) say(ctx context.Context, logger *slog.Logger, text string) {
	if err := d.speaker.Speak(ctx, text); err != nil {
		logger.Warn("speak", "error", err)
	}
}
