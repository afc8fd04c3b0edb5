package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/Brooklyn-Dev/Ultron-AI/actions"
	"github.com/Brooklyn-Dev/Ultron-AI/audiocapture"
	"github.com/Brooklyn-Dev/Ultron-AI/cache"
	"github.com/Brooklyn-Dev/Ultron-AI/command"
	"github.com/Brooklyn-Dev/Ultron-AI/config"
	"github.com/Brooklyn-Dev/Ultron-AI/hotkey"
	"github.com/Brooklyn-Dev/Ultron-AI/input"
	"github.com/Brooklyn-Dev/Ultron-AI/internal/state"
	"github.com/Brooklyn-Dev/Ultron-AI/llm"
	"github.com/Brooklyn-Dev/Ultron-AI/obs"
	"github.com/Brooklyn-Dev/Ultron-AI/screenshot"
	"github.com/Brooklyn-Dev/Ultron-AI/speech"
	"github.com/Brooklyn-Dev/Ultron-AI/stt"
	"github.com/Brooklyn-Dev/Ultron-AI/taskqueue"
	"github.com/Brooklyn-Dev/Ultron-AI/vision"
	"github.com/Brooklyn-Dev/Ultron-AI/window"
)

// Options are run-time switches that do not live in the config file.
type Options struct {
	DryRun bool // log input events instead of injecting them
	Logger *slog.Logger
}

// Build constructs the production Service from cfg. Only configuration
// errors are returned; optional collaborators that fail to start are logged
// and left out.
func Build(ctx context.Context, cfg *config.Config, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if _, err := hotkey.Keycode(cfg.PushToTalk.Key); err != nil {
		return nil, fmt.Errorf("invalid config: push_to_talk.key: %w", err)
	}

	st := state.New(nil)
	var closers []io.Closer

	completer, err := llm.NewCompleter(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, llm.Options{
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: %w (set GROQ_API_KEY or llm.api_key)", err)
	}

	registry := stt.NewRegistry()
	registry.Register(stt.NewWhisperAPI(stt.WhisperAPIConfig{
		APIKey:   cfg.STT.APIKey,
		BaseURL:  cfg.STT.BaseURL,
		Model:    cfg.STT.Model,
		Language: cfg.STT.Language,
	}))
	transcriber, err := registry.Select(cfg.STT.Provider)
	if err != nil {
		return nil, fmt.Errorf("stt: %w", err)
	}
	closers = append(closers, registry)

	speaker := newSpeaker(cfg, logger)
	replyCache := openCache(cfg, logger)
	if replyCache != nil {
		closers = append(closers, replyCache)
	}

	var device actions.Device = input.NewRobot()
	if opts.DryRun {
		device = input.NewDryRun(logger)
	}
	locator := window.NewLocator(cfg.Window.Name, nil)

	execOpts := actions.Options{
		Device:  device,
		State:   st,
		Window:  locator,
		Speaker: speaker,
		Logger:  logger,
	}
	if cfg.OBS.Enabled {
		client, err := obs.Connect(ctx, obs.Config{
			Host:     cfg.OBS.Host,
			Port:     cfg.OBS.Port,
			Password: cfg.OBS.Password,
		}, logger)
		if err != nil {
			logger.Warn("could not connect to obs websocket", "error", err)
		} else {
			execOpts.Recorder = client
			closers = append(closers, client)
		}
	}
	executor := actions.New(execOpts)

	validator := command.NewValidator(executor, st.Queue(), logger)
	responder := NewResponder(completer, replyCache, ResponderConfig{
		Model:     cfg.LLM.Model,
		Delimiter: cfg.LLM.Delimiter,
		CacheTTL:  time.Duration(cfg.Cache.TTLSec) * time.Second,
		Timeout:   time.Duration(cfg.LLM.TimeoutSec) * time.Second,
	})
	format := stt.Format{SampleRate: cfg.Audio.SampleRate, Channels: cfg.Audio.Channels}
	dispatcher := NewDispatcher(transcriber, format, responder, validator, speaker, logger)

	var watcher Loop
	if cfg.Vision.Enabled {
		if !screenshot.HasPermission() {
			logger.Warn("screen recording permission missing, ultimate detection sees blank frames until granted")
			screenshot.RequestPermission()
		}
		watcher = vision.NewWatcher(st, locator, screenshot.NewGrabber(), speaker, vision.Config{
			PollInterval: time.Duration(cfg.Vision.PollIntervalMS) * time.Millisecond,
			Idle:         time.Duration(cfg.Vision.IdleMS) * time.Millisecond,
		}, logger)
	}

	var cue func() error
	if cfg.Cue.Enabled {
		cue = speech.Cue
	}

	key := cfg.PushToTalk.Key
	return New(Deps{
		State: st,
		Mic: audiocapture.New(audiocapture.Config{
			SampleRate: cfg.Audio.SampleRate,
			Channels:   cfg.Audio.Channels,
			ChunkSize:  cfg.Audio.ChunkSize,
		}),
		Hotkey: func(onPress, onRelease func()) (Hotkey, error) {
			return hotkey.NewHotkeyManager(key, onPress, onRelease)
		},
		Dispatcher: dispatcher,
		Worker:     taskqueue.NewWorker(st.Queue(), logger),
		Speaker:    speaker,
		Vision:     watcher,
		Cue:        cue,
		Greet:      true,
		Logger:     logger,
		Closers:    closers,
	}), nil
}

func newSpeaker(cfg *config.Config, logger *slog.Logger) Speaker {
	if !cfg.TTS.Enabled {
		return speech.Log{Logger: logger}
	}
	synth, err := speech.NewOpenAI(speech.OpenAIConfig{
		APIKey:  cfg.TTS.APIKey,
		BaseURL: cfg.TTS.BaseURL,
		Model:   cfg.TTS.Model,
		Voice:   cfg.TTS.Voice,
		Speed:   cfg.TTS.Speed,
	})
	if err != nil {
		logger.Warn("speech disabled, replies are logged only", "error", err)
		return speech.Log{Logger: logger}
	}
	fx := speech.Effects{
		PitchMult:  cfg.TTS.PitchMult,
		OutRate:    cfg.TTS.OutRate,
		EchoDelay:  time.Duration(cfg.TTS.EchoMS) * time.Millisecond,
		EchoGainDB: cfg.TTS.EchoGainDB,
		GainDB:     cfg.TTS.GainDB,
	}
	return speech.New(synth, speech.PortAudio{}, fx, logger)
}

func openCache(cfg *config.Config, logger *slog.Logger) *cache.Cache {
	if !cfg.Cache.Enabled {
		return nil
	}

	var (
		c    *cache.Cache
		err  error
		path = cfg.Cache.Path
	)
	if path == "" {
		c, err = cache.NewInMemory()
	} else {
		if !filepath.IsAbs(path) {
			if dir, derr := config.DataDir(); derr == nil {
				path = filepath.Join(dir, path)
			}
		}
		c, err = cache.New(path)
	}
	if err != nil {
		logger.Error("init cache", "error", err)
		return nil
	}
	logger.Info("cache initialized", "path", path)
	return c
}
