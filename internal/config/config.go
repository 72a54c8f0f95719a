package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config stores runtime configuration for the conversation client.
type Config struct {
	Azure        AzureConfig
	Conversation ConversationConfig
	Audio        AudioConfig
	Session      SessionConfig
	Log          LogConfig
}

type AzureConfig struct {
	Key               string
	Region            string
	SpeechEndpoint    string
	TTSEndpoint       string
	TokenEndpoint     string
	OutputFormat      string
	VerifyCredentials bool
}

type ConversationConfig struct {
	HomeTarget     string
	HomeLabel      string
	DefaultForeign string
	FallbackVoice  string
	LanguagesFile  string
}

type AudioConfig struct {
	RecorderCommand string
	PlayerCommand   string
	InputFormat     string
	InputDevice     string
	SampleRate      int
	Channels        int
}

type SessionConfig struct {
	ChunkSize      int
	StreamingGrace time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

// Load resolves configuration from environment variables, an optional dotenv
// file and defaults. Variables already set in the environment win over the file.
func Load() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, errors.New("could not determine home directory")
	}
	configDir := filepath.Join(home, ".config", "parley")

	dotenv, err := readDotenv(os.Getenv("PARLEY_ENV_FILE"), ".env", filepath.Join(configDir, "parley.env"))
	if err != nil {
		return Config{}, err
	}
	env := lookup(dotenv)

	languagesFile := env.str("PARLEY_LANGUAGES_FILE", "")
	if languagesFile == "" {
		languagesFile = firstExisting(filepath.Join(configDir, "languages.json"))
	}

	cfg := Config{
		Azure: AzureConfig{
			Key:               env.str("AZURE_SPEECH_KEY", ""),
			Region:            env.str("AZURE_SPEECH_REGION", "eastus"),
			SpeechEndpoint:    env.str("AZURE_SPEECH_ENDPOINT", ""),
			TTSEndpoint:       env.str("AZURE_TTS_ENDPOINT", ""),
			TokenEndpoint:     env.str("AZURE_TOKEN_ENDPOINT", ""),
			OutputFormat:      env.str("AZURE_TTS_OUTPUT_FORMAT", "riff-24khz-16bit-mono-pcm"),
			VerifyCredentials: env.boolean("PARLEY_VERIFY_CREDENTIALS", true),
		},
		Conversation: ConversationConfig{
			HomeTarget:     env.str("PARLEY_HOME_TARGET", "zh-Hans"),
			HomeLabel:      env.str("PARLEY_HOME_LABEL", "中文"),
			DefaultForeign: env.str("PARLEY_DEFAULT_FOREIGN", "en"),
			FallbackVoice:  env.str("PARLEY_FALLBACK_VOICE", "en-US-AvaNeural"),
			LanguagesFile:  languagesFile,
		},
		Audio: AudioConfig{
			RecorderCommand: env.str("PARLEY_FFMPEG_COMMAND", "ffmpeg"),
			PlayerCommand:   env.str("PARLEY_PLAYER_COMMAND", "ffplay"),
			InputFormat:     env.str("PARLEY_AUDIO_INPUT_FORMAT", "pulse"),
			InputDevice:     env.str("PARLEY_AUDIO_INPUT_DEVICE", "default"),
			SampleRate:      env.integer("PARLEY_SAMPLE_RATE", 16000),
			Channels:        env.integer("PARLEY_CHANNELS", 1),
		},
		Session: SessionConfig{
			ChunkSize:      env.integer("PARLEY_AUDIO_CHUNK_SIZE", 3200),
			StreamingGrace: time.Duration(env.integer("PARLEY_STREAMING_GRACE_MS", 500)) * time.Millisecond,
		},
		Log: LogConfig{
			Level:       env.str("PARLEY_LOG_LEVEL", "info"),
			Development: env.boolean("PARLEY_LOG_DEVELOPMENT", false),
		},
	}

	if cfg.Audio.SampleRate <= 0 {
		cfg.Audio.SampleRate = 16000
	}
	if cfg.Audio.Channels <= 0 {
		cfg.Audio.Channels = 1
	}
	if cfg.Session.ChunkSize < 256 {
		cfg.Session.ChunkSize = 3200
	}
	if cfg.Session.StreamingGrace < 0 {
		cfg.Session.StreamingGrace = 500 * time.Millisecond
	}

	return cfg, nil
}

// readDotenv parses the explicit file if given, otherwise the first existing
// default. A missing default file is not an error; a missing explicit one is.
func readDotenv(explicit string, defaults ...string) (map[string]string, error) {
	if path := strings.TrimSpace(explicit); path != "" {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("read env file %s: %w", path, err)
		}
		return values, nil
	}

	path := firstExisting(defaults...)
	if path == "" {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

func firstExisting(paths ...string) string {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}

type lookup map[string]string

func (l lookup) get(key string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return strings.TrimSpace(l[key])
}

func (l lookup) str(key string, fallback string) string {
	if value := l.get(key); value != "" {
		return value
	}
	return fallback
}

func (l lookup) integer(key string, fallback int) int {
	value := l.get(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func (l lookup) boolean(key string, fallback bool) bool {
	switch strings.ToLower(l.get(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
