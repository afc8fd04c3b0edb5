// Package config handles application configuration.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Brooklyn-Dev/Ultron-AI/internal/logging"
)

const (
	appName        = "ultron"
	configFileName = "config.json"
	envPrefix      = "ULTRON"
)

// Config represents the application configuration.
type Config struct {
	LLM        LLMConfig        `mapstructure:"llm" json:"llm"`
	STT        STTConfig        `mapstructure:"stt" json:"stt"`
	TTS        TTSConfig        `mapstructure:"tts" json:"tts"`
	Audio      AudioConfig      `mapstructure:"audio" json:"audio"`
	PushToTalk PushToTalkConfig `mapstructure:"push_to_talk" json:"push_to_talk"`
	OBS        OBSConfig        `mapstructure:"obs" json:"obs"`
	Window     WindowConfig     `mapstructure:"window" json:"window"`
	Vision     VisionConfig     `mapstructure:"vision" json:"vision"`
	Cache      CacheConfig      `mapstructure:"cache" json:"cache"`
	Log        LogConfig        `mapstructure:"log" json:"log"`
	Cue        CueConfig        `mapstructure:"cue" json:"cue"`

	path string
}

// LLMConfig selects the completion endpoint.
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key" json:"api_key,omitempty"`
	BaseURL     string  `mapstructure:"base_url" json:"base_url"`
	Model       string  `mapstructure:"model" json:"model"`
	Temperature float64 `mapstructure:"temperature" json:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens" json:"max_tokens"`
	Delimiter   string  `mapstructure:"delimiter" json:"delimiter"`
	TimeoutSec  int     `mapstructure:"timeout_sec" json:"timeout_sec"`
}

// STTConfig selects the transcription endpoint.
type STTConfig struct {
	Provider string `mapstructure:"provider" json:"provider"`
	APIKey   string `mapstructure:"api_key" json:"api_key,omitempty"`
	BaseURL  string `mapstructure:"base_url" json:"base_url"`
	Model    string `mapstructure:"model" json:"model"`
	Language string `mapstructure:"language" json:"language"`
}

// TTSConfig selects the speech endpoint and the voice character.
type TTSConfig struct {
	Enabled    bool    `mapstructure:"enabled" json:"enabled"`
	APIKey     string  `mapstructure:"api_key" json:"api_key,omitempty"`
	BaseURL    string  `mapstructure:"base_url" json:"base_url"`
	Model      string  `mapstructure:"model" json:"model"`
	Voice      string  `mapstructure:"voice" json:"voice"`
	Speed      float64 `mapstructure:"speed" json:"speed"`
	PitchMult  float64 `mapstructure:"pitch_mult" json:"pitch_mult"`
	EchoMS     int     `mapstructure:"echo_ms" json:"echo_ms"`
	EchoGainDB float64 `mapstructure:"echo_gain_db" json:"echo_gain_db"`
	GainDB     float64 `mapstructure:"gain_db" json:"gain_db"`
	OutRate    int     `mapstructure:"out_rate" json:"out_rate"`
}

// AudioConfig describes the microphone stream.
type AudioConfig struct {
	SampleRate int `mapstructure:"sample_rate" json:"sample_rate"`
	Channels   int `mapstructure:"channels" json:"channels"`
	ChunkSize  int `mapstructure:"chunk_size" json:"chunk_size"`
}

// PushToTalkConfig names the trigger key.
type PushToTalkConfig struct {
	Key string `mapstructure:"key" json:"key"`
}

// OBSConfig locates the OBS WebSocket server.
type OBSConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled"`
	Host     string `mapstructure:"host" json:"host"`
	Port     int    `mapstructure:"port" json:"port"`
	Password string `mapstructure:"password" json:"password,omitempty"`
}

// WindowConfig names the game window.
type WindowConfig struct {
	Name string `mapstructure:"name" json:"name"`
}

// VisionConfig tunes the ultimate watcher.
type VisionConfig struct {
	Enabled        bool `mapstructure:"enabled" json:"enabled"`
	PollIntervalMS int  `mapstructure:"poll_interval_ms" json:"poll_interval_ms"`
	IdleMS         int  `mapstructure:"idle_ms" json:"idle_ms"`
}

// CacheConfig controls the reply cache. An empty Path keeps it in memory.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Path    string `mapstructure:"path" json:"path"`
	TTLSec  int    `mapstructure:"ttl_sec" json:"ttl_sec"`
}

// LogConfig mirrors logging.Options.
type LogConfig struct {
	Level      string `mapstructure:"level" json:"level"`
	File       string `mapstructure:"file" json:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" json:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" json:"max_age_days"`
	Compress   bool   `mapstructure:"compress" json:"compress"`
	NoColor    bool   `mapstructure:"no_color" json:"no_color"`
}

// CueConfig toggles the listen beep.
type CueConfig struct {
	Enabled bool `mapstructure:"enabled" json:"enabled"`
}

// SetDefaults registers a default for every key, which also makes every key
// visible to environment overrides.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.temperature", 0.6)
	v.SetDefault("llm.max_tokens", 256)
	v.SetDefault("llm.delimiter", "||")
	v.SetDefault("llm.timeout_sec", 20)

	v.SetDefault("stt.provider", "whisper-api")
	v.SetDefault("stt.api_key", "")
	v.SetDefault("stt.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("stt.model", "whisper-large-v3")
	v.SetDefault("stt.language", "en")

	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.api_key", "")
	v.SetDefault("tts.base_url", "https://api.openai.com/v1")
	v.SetDefault("tts.model", "gpt-4o-mini-tts")
	v.SetDefault("tts.voice", "onyx")
	v.SetDefault("tts.speed", 0.0)
	v.SetDefault("tts.pitch_mult", 0.96)
	v.SetDefault("tts.echo_ms", 60)
	v.SetDefault("tts.echo_gain_db", -8.0)
	v.SetDefault("tts.gain_db", 2.0)
	v.SetDefault("tts.out_rate", 44100)

	v.SetDefault("audio.sample_rate", 16000)
	v.SetDefault("audio.channels", 1)
	v.SetDefault("audio.chunk_size", 4096)

	v.SetDefault("push_to_talk.key", "u")

	v.SetDefault("obs.enabled", true)
	v.SetDefault("obs.host", "localhost")
	v.SetDefault("obs.port", 4455)
	v.SetDefault("obs.password", "")

	v.SetDefault("window.name", "rivals")

	v.SetDefault("vision.enabled", true)
	v.SetDefault("vision.poll_interval_ms", 2000)
	v.SetDefault("vision.idle_ms", 500)

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.path", "")
	v.SetDefault("cache.ttl_sec", 600)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	v.SetDefault("log.compress", true)
	v.SetDefault("log.no_color", false)

	v.SetDefault("cue.enabled", false)
}

// bindEnv wires ULTRON_* overrides plus the provider variables users
// already have exported.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("llm.api_key", "ULTRON_LLM_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("stt.api_key", "ULTRON_STT_API_KEY", "GROQ_API_KEY")
	_ = v.BindEnv("tts.api_key", "ULTRON_TTS_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("obs.host", "ULTRON_OBS_HOST", "OBS_HOST")
	_ = v.BindEnv("obs.port", "ULTRON_OBS_PORT", "OBS_PORT")
	_ = v.BindEnv("obs.password", "ULTRON_OBS_PASSWORD", "OBS_PASSWORD")
}

// Load reads the configuration file at path, or the default location when
// path is empty. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("get config path: %w", err)
		}
		path = p
	}

	v := viper.New()
	SetDefaults(v)
	bindEnv(v)
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.path = path
	return &cfg, nil
}

// Default returns the built-in configuration without reading any file or
// environment.
func Default() *Config {
	v := viper.New()
	SetDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Path returns the file the configuration was loaded from.
func (c *Config) Path() string { return c.path }

// Validate checks ranges and required fields.
func (c *Config) Validate() error {
	var errs []error
	if c.Audio.SampleRate < 8000 || c.Audio.SampleRate > 48000 {
		errs = append(errs, fmt.Errorf("audio.sample_rate %d out of range [8000, 48000]", c.Audio.SampleRate))
	}
	if c.Audio.Channels < 1 || c.Audio.Channels > 2 {
		errs = append(errs, fmt.Errorf("audio.channels %d must be 1 or 2", c.Audio.Channels))
	}
	if c.Audio.ChunkSize < 64 || c.Audio.ChunkSize > 65536 {
		errs = append(errs, fmt.Errorf("audio.chunk_size %d out of range [64, 65536]", c.Audio.ChunkSize))
	}
	if strings.TrimSpace(c.LLM.Delimiter) == "" {
		errs = append(errs, errors.New("llm.delimiter required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model required"))
	}
	if strings.TrimSpace(c.PushToTalk.Key) == "" {
		errs = append(errs, errors.New("push_to_talk.key required"))
	}
	if c.OBS.Port < 0 || c.OBS.Port > 65535 {
		errs = append(errs, fmt.Errorf("obs.port %d out of range", c.OBS.Port))
	}
	if c.Vision.PollIntervalMS <= 0 || c.Vision.IdleMS <= 0 {
		errs = append(errs, errors.New("vision intervals must be positive"))
	}
	if c.TTS.PitchMult <= 0 {
		errs = append(errs, errors.New("tts.pitch_mult must be positive"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Save persists the configuration to the file it was loaded from, or the
// default location.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return fmt.Errorf("get config path: %w", err)
		}
		path = p
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	// API keys may be stored here.
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	c.path = path
	return nil
}

// DefaultPath returns <UserConfigDir>/ultron/config.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("get user config dir: %w", err)
	}
	return filepath.Join(dir, appName, configFileName), nil
}

// DataDir returns the directory used for the reply cache and logs.
func DataDir() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("get user cache dir: %w", err)
	}
	return filepath.Join(dir, appName), nil
}
