// Package config handles loading and validating the bizassist configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for the bizassist daemon.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Transports   TransportsConfig   `mapstructure:"transports"`
	Data         DataConfig         `mapstructure:"data"`
	Language     LanguageConfig     `mapstructure:"language"`
	Translation  TranslationConfig  `mapstructure:"translation"`
	Interpreter  InterpreterConfig  `mapstructure:"interpreter"`
	TTS          TTSConfig          `mapstructure:"tts"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig holds the ops server settings.
type ServerConfig struct {
	HealthPort int `mapstructure:"health_port"`
}

// TransportsConfig holds the configuration for each listener.
type TransportsConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig configures the public JSON API.
type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxUploadMB    int64    `mapstructure:"max_upload_mb"`
}

// GRPCConfig configures the gRPC health listener.
type GRPCConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// DataConfig points at the business metrics document loaded at startup.
type DataConfig struct {
	Path string `mapstructure:"path"`
}

// LanguageConfig selects the language detection strategy.
type LanguageConfig struct {
	Detector string `mapstructure:"detector"` // "statistical" (default) or "heuristic"
}

// TranslationConfig configures the LibreTranslate backend.
type TranslationConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// InterpreterConfig selects and configures the LLM / speech-to-text backend.
type InterpreterConfig struct {
	Backend string       `mapstructure:"backend"` // "openai" or "local"
	OpenAI  OpenAIConfig `mapstructure:"openai"`
	Local   LocalConfig  `mapstructure:"local"`

	Temperature          float64       `mapstructure:"temperature"`
	MaxTokens            int           `mapstructure:"max_tokens"`
	CompletionTimeout    time.Duration `mapstructure:"completion_timeout"`
	TranscriptionTimeout time.Duration `mapstructure:"transcription_timeout"`
}

// OpenAIConfig holds settings for any OpenAI-compatible API (Groq by default).
type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	BaseURL            string `mapstructure:"base_url"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	CompletionModel    string `mapstructure:"completion_model"`
}

// LocalConfig holds self-hosted LLM settings.
type LocalConfig struct {
	WhisperEndpoint string `mapstructure:"whisper_endpoint"`
	WhisperType     string `mapstructure:"whisper_type"` // "openai" (default) or "asr" (ahmetoner/whisper-asr-webservice)
	WhisperModel    string `mapstructure:"whisper_model"`
	LLMEndpoint     string `mapstructure:"llm_endpoint"`
	LLMModel        string `mapstructure:"llm_model"` // Ollama model name (e.g., "llama3.2:1b")
}

// TTSConfig selects and configures the text-to-speech backend.
type TTSConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Backend string        `mapstructure:"backend"` // "gtts" or "piper"
	Timeout time.Duration `mapstructure:"timeout"`
	GTTS    GTTSConfig    `mapstructure:"gtts"`
	Piper   PiperConfig   `mapstructure:"piper"`
}

// GTTSConfig holds settings for the Google Translate TTS endpoint.
type GTTSConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	TLD      string `mapstructure:"tld"`
}

// PiperConfig holds Piper TTS settings (Wyoming protocol).
//
// For a single Piper instance that serves all languages, set Endpoint.
// For per-language instances, set Endpoints which maps ISO-639-1 codes to
// individual Wyoming TCP endpoints. Endpoints takes precedence.
type PiperConfig struct {
	Endpoint  string            `mapstructure:"endpoint"`
	Endpoints map[string]string `mapstructure:"endpoints"`
	Voices    map[string]string `mapstructure:"voices"`
}

// ConversationConfig bounds the in-memory session store.
type ConversationConfig struct {
	MaxMessages int           `mapstructure:"max_messages"`
	TTL         time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// A .env file in the working directory is loaded first (if present) so its
// values are visible to both viper and ${VAR} references.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./bizassist.yaml, ./configs/bizassist.yaml, /etc/bizassist/bizassist.yaml.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("bizassist")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/bizassist")
	}

	// Environment variables: BIZASSIST_TRANSPORTS_HTTP_PORT, BIZASSIST_DATA_PATH, etc.
	v.SetEnvPrefix("BIZASSIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional: env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GROQ_API_KEY}")
	cfg.Interpreter.OpenAI.APIKey = resolveEnvRef(cfg.Interpreter.OpenAI.APIKey)
	cfg.Translation.APIKey = resolveEnvRef(cfg.Translation.APIKey)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("transports.http.port", 5000)
	v.SetDefault("transports.http.allowed_origins", []string{"*"})
	v.SetDefault("transports.http.max_upload_mb", 25)
	v.SetDefault("transports.grpc.enabled", false)
	v.SetDefault("transports.grpc.port", 50051)
	v.SetDefault("data.path", "merchant_sales_3months.json")
	v.SetDefault("language.detector", "statistical")
	v.SetDefault("translation.enabled", true)
	v.SetDefault("translation.base_url", "http://localhost:5001")
	v.SetDefault("translation.api_key", "")
	v.SetDefault("translation.timeout", 10*time.Second)
	v.SetDefault("interpreter.backend", "openai")
	v.SetDefault("interpreter.openai.api_key", "${GROQ_API_KEY}")
	v.SetDefault("interpreter.openai.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("interpreter.openai.transcription_model", "whisper-large-v3")
	v.SetDefault("interpreter.openai.completion_model", "llama-3.3-70b-versatile")
	v.SetDefault("interpreter.local.whisper_endpoint", "http://localhost:8000/v1/audio/transcriptions")
	v.SetDefault("interpreter.local.whisper_type", "openai")
	v.SetDefault("interpreter.local.whisper_model", "whisper-large-v3")
	v.SetDefault("interpreter.local.llm_endpoint", "http://localhost:11434/api/generate")
	v.SetDefault("interpreter.local.llm_model", "llama3")
	v.SetDefault("interpreter.temperature", 0.7)
	v.SetDefault("interpreter.max_tokens", 800)
	v.SetDefault("interpreter.completion_timeout", 60*time.Second)
	v.SetDefault("interpreter.transcription_timeout", 30*time.Second)
	v.SetDefault("tts.enabled", true)
	v.SetDefault("tts.backend", "gtts")
	v.SetDefault("tts.timeout", 15*time.Second)
	v.SetDefault("tts.gtts.endpoint", "https://translate.google.com/translate_tts")
	v.SetDefault("tts.gtts.tld", "com")
	v.SetDefault("tts.piper.endpoint", "localhost:10200")
	v.SetDefault("conversation.max_messages", 10)
	v.SetDefault("conversation.ttl", 24*time.Hour)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Validate rejects configurations the daemon cannot start with.
func (c *Config) Validate() error {
	switch c.Interpreter.Backend {
	case "openai", "local":
	default:
		return fmt.Errorf("unknown interpreter backend %q", c.Interpreter.Backend)
	}
	switch c.Language.Detector {
	case "statistical", "heuristic":
	default:
		return fmt.Errorf("unknown language detector %q", c.Language.Detector)
	}
	if c.TTS.Enabled {
		switch c.TTS.Backend {
		case "gtts", "piper":
		default:
			return fmt.Errorf("unknown tts backend %q", c.TTS.Backend)
		}
	}
	if c.Conversation.MaxMessages <= 0 {
		return fmt.Errorf("conversation.max_messages must be positive, got %d", c.Conversation.MaxMessages)
	}
	if c.Transports.HTTP.Port <= 0 {
		return fmt.Errorf("transports.http.port must be positive, got %d", c.Transports.HTTP.Port)
	}
	return nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env var value.
// An unset variable resolves to the empty string.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
