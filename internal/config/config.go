// Package config provides the configuration structure for speak.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Defaults for every optional setting.
const (
	DefaultOutputDir           = "temp_audio"
	DefaultOutputFile          = "output.mp3"
	DefaultBackend             = "google"
	DefaultBaseURL             = "https://translate.google.com"
	DefaultMaxChunkChars       = 100
	DefaultBufferMillis        = 100
	DefaultAudioBucket         = "AUDIO_FILES"
	DefaultAudioCreatedSubject = "audio.chunk.created"
)

// OutputConfig names the fixed location the most recent result is written to.
type OutputConfig struct {
	Dir  string `toml:"dir"  env:"SPEAK_OUTPUT_DIR"`
	File string `toml:"file" env:"SPEAK_OUTPUT_FILE"`
}

// Path joins the output directory and file name.
func (o OutputConfig) Path() string {
	return filepath.Join(o.Dir, o.File)
}

// SynthesisConfig selects and tunes the speech synthesis backend.
type SynthesisConfig struct {
	Backend        string `toml:"backend"         env:"SPEAK_BACKEND"`
	BaseURL        string `toml:"base_url"        env:"SPEAK_BASE_URL"`
	Slow           bool   `toml:"slow"            env:"SPEAK_SLOW"`
	TimeoutSeconds int    `toml:"timeout_seconds" env:"SPEAK_TIMEOUT_SECONDS"`
	MaxChunkChars  int    `toml:"max_chunk_chars" env:"SPEAK_MAX_CHUNK_CHARS"`
}

// PlaybackConfig controls local audio output.
type PlaybackConfig struct {
	Enabled      bool `toml:"enabled"       env:"SPEAK_PLAYBACK"`
	BufferMillis int  `toml:"buffer_millis" env:"SPEAK_PLAYBACK_BUFFER_MILLIS"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir" env:"SPEAK_LOGS_DIR"`
}

// NATSConfig holds the optional archive sink. An empty URL disables it.
type NATSConfig struct {
	URL                    string `toml:"url"                       env:"SPEAK_NATS_URL"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket" env:"SPEAK_NATS_BUCKET"`
	AudioCreatedSubject    string `toml:"audio_created_subject"     env:"SPEAK_NATS_SUBJECT"`
}

// Config is the root configuration structure.
type Config struct {
	Output    OutputConfig    `toml:"output"`
	Synthesis SynthesisConfig `toml:"synthesis"`
	Playback  PlaybackConfig  `toml:"playback"`
	Paths     PathsConfig     `toml:"paths"`
	NATS      NATSConfig      `toml:"nats"`
}

// Default returns the configuration used when nothing else is supplied.
func Default() *Config {
	cfg := &Config{
		Playback: PlaybackConfig{Enabled: true},
	}
	cfg.applyDefaults()

	return cfg
}

// Load loads the configuration through the central configurator, then applies
// environment overrides and defaults.
func Load(log *logger.Logger) (*Config, error) {
	cfg := Default()

	err := configurator.Load(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return finish(cfg)
}

// LoadFile reads a TOML configuration file, then applies environment overrides
// and defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return finish(cfg)
}

// Parse decodes TOML data on top of the defaults. Keys absent from data keep
// their default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	err := toml.Unmarshal(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal TOML: %w", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

// FromEnv returns the defaults with environment overrides applied.
func FromEnv() (*Config, error) {
	return finish(Default())
}

func finish(cfg *Config) (*Config, error) {
	err := env.Parse(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

// applyDefaults fills every empty field. Booleans are left alone: their zero
// value is a valid choice.
func (c *Config) applyDefaults() {
	if c.Output.Dir == "" {
		c.Output.Dir = DefaultOutputDir
	}

	if c.Output.File == "" {
		c.Output.File = DefaultOutputFile
	}

	if c.Synthesis.Backend == "" {
		c.Synthesis.Backend = DefaultBackend
	}

	if c.Synthesis.BaseURL == "" {
		c.Synthesis.BaseURL = DefaultBaseURL
	}

	if c.Synthesis.MaxChunkChars <= 0 {
		c.Synthesis.MaxChunkChars = DefaultMaxChunkChars
	}

	if c.Playback.BufferMillis <= 0 {
		c.Playback.BufferMillis = DefaultBufferMillis
	}

	if c.Paths.BaseLogsDir == "" {
		c.Paths.BaseLogsDir = os.TempDir()
	}

	if c.NATS.AudioObjectStoreBucket == "" {
		c.NATS.AudioObjectStoreBucket = DefaultAudioBucket
	}

	if c.NATS.AudioCreatedSubject == "" {
		c.NATS.AudioCreatedSubject = DefaultAudioCreatedSubject
	}
}
