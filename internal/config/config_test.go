package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/bizassist/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 5000, cfg.Transports.HTTP.Port)
	assert.Equal(t, "openai", cfg.Interpreter.Backend)
	assert.Equal(t, "gsk-test", cfg.Interpreter.OpenAI.APIKey)
	assert.Equal(t, "whisper-large-v3", cfg.Interpreter.OpenAI.TranscriptionModel)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.Interpreter.OpenAI.CompletionModel)
	assert.InDelta(t, 0.7, cfg.Interpreter.Temperature, 1e-9)
	assert.Equal(t, 800, cfg.Interpreter.MaxTokens)
	assert.Equal(t, 30*time.Second, cfg.Interpreter.TranscriptionTimeout)
	assert.Equal(t, 10, cfg.Conversation.MaxMessages)
	assert.Equal(t, 24*time.Hour, cfg.Conversation.TTL)
	assert.Equal(t, "gtts", cfg.TTS.Backend)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BIZASSIST_TRANSPORTS_HTTP_PORT", "9090")
	t.Setenv("BIZASSIST_DATA_PATH", "/srv/sales.json")
	t.Setenv("BIZASSIST_LANGUAGE_DETECTOR", "heuristic")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Transports.HTTP.Port)
	assert.Equal(t, "/srv/sales.json", cfg.Data.Path)
	assert.Equal(t, "heuristic", cfg.Language.Detector)
}

func TestLoad_DotEnvFeedsSecretReference(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	// Registered so the variable is restored after godotenv sets it.
	t.Setenv("GROQ_API_KEY", "")
	require.NoError(t, os.Unsetenv("GROQ_API_KEY"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("GROQ_API_KEY=from-dotenv\n"), 0o600))

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Interpreter.OpenAI.APIKey)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	yaml := `
interpreter:
  backend: local
  local:
    llm_model: "llama3.2:1b"
tts:
  backend: piper
  piper:
    endpoints:
      hi: "piper-hi:10200"
conversation:
  max_messages: 4
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Interpreter.Backend)
	assert.Equal(t, "llama3.2:1b", cfg.Interpreter.Local.LLMModel)
	assert.Equal(t, "piper", cfg.TTS.Backend)
	assert.Equal(t, "piper-hi:10200", cfg.TTS.Piper.Endpoints["hi"])
	assert.Equal(t, 4, cfg.Conversation.MaxMessages)
}

func TestValidate(t *testing.T) {
	base := func() config.Config {
		return config.Config{
			Transports:   config.TransportsConfig{HTTP: config.HTTPConfig{Port: 5000}},
			Language:     config.LanguageConfig{Detector: "statistical"},
			Interpreter:  config.InterpreterConfig{Backend: "openai"},
			TTS:          config.TTSConfig{Enabled: true, Backend: "gtts"},
			Conversation: config.ConversationConfig{MaxMessages: 10},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*config.Config) {}},
		{name: "unknown backend", mutate: func(c *config.Config) { c.Interpreter.Backend = "bard" }, wantErr: true},
		{name: "unknown detector", mutate: func(c *config.Config) { c.Language.Detector = "magic" }, wantErr: true},
		{name: "unknown tts backend", mutate: func(c *config.Config) { c.TTS.Backend = "espeak" }, wantErr: true},
		{name: "tts disabled ignores backend", mutate: func(c *config.Config) { c.TTS.Enabled = false; c.TTS.Backend = "" }},
		{name: "zero history cap", mutate: func(c *config.Config) { c.Conversation.MaxMessages = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
