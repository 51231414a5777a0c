package openai_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/bizassist/internal/config"
	"github.com/nadzzz/bizassist/internal/interpreter"
	"github.com/nadzzz/bizassist/internal/interpreter/openai"
)

func newInterpreter(url string) *openai.Interpreter {
	return openai.New(config.OpenAIConfig{
		APIKey:             "gsk-test",
		BaseURL:            url,
		TranscriptionModel: "whisper-large-v3",
		CompletionModel:    "llama-3.3-70b-versatile",
	})
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk-test", r.Header.Get("Authorization"))

		var body struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama-3.3-70b-versatile", body.Model)
		assert.InDelta(t, 0.7, body.Temperature, 1e-9)
		assert.Equal(t, 800, body.MaxTokens)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)
		assert.Equal(t, "the prompt", body.Messages[1].Content)

		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"  Sales are up. [\"Why?\"]  "}}]}`)
	}))
	defer srv.Close()

	out, err := newInterpreter(srv.URL).Complete(context.Background(), interpreter.CompletionRequest{
		System:      "be helpful",
		Prompt:      "the prompt",
		Temperature: 0.7,
		MaxTokens:   800,
	})
	require.NoError(t, err)
	assert.Equal(t, `Sales are up. ["Why?"]`, out)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "status", body: `{"error":"rate limited"}`, code: http.StatusTooManyRequests},
		{name: "no choices", body: `{"choices":[]}`, code: http.StatusOK},
		{name: "bad json", body: `not json`, code: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := newInterpreter(srv.URL).Complete(context.Background(), interpreter.CompletionRequest{Prompt: "p"})
			assert.Error(t, err)
		})
	}
}

func TestTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-large-v3", r.FormValue("model"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "voice.webm", hdr.Filename)
		assert.Equal(t, "audio/webm", hdr.Header.Get("Content-Type"))
		assert.Equal(t, "RIFFdata", string(data))

		_, _ = io.WriteString(w, `{"text":"हमारी बिक्री","language":"hindi"}`)
	}))
	defer srv.Close()

	res, err := newInterpreter(srv.URL).Transcribe(context.Background(), strings.NewReader("RIFFdata"), "voice.webm", interpreter.TranscribeOpts{})
	require.NoError(t, err)
	assert.Equal(t, "हमारी बिक्री", res.Text)
	assert.Equal(t, "hi", res.Language)
}

func TestTranscribe_ModelFromConfig(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		want       string
	}{
		{name: "configured", configured: "distil-whisper-large-v3-en", want: "distil-whisper-large-v3-en"},
		{name: "default", configured: "", want: openai.DefaultTranscriptionModel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.NoError(t, r.ParseMultipartForm(1<<20))
				got = r.FormValue("model")
				_, _ = io.WriteString(w, `{"text":"ok"}`)
			}))
			defer srv.Close()

			interp := openai.New(config.OpenAIConfig{BaseURL: srv.URL, TranscriptionModel: tt.configured})
			_, err := interp.Transcribe(context.Background(), strings.NewReader("x"), "a.webm", interpreter.TranscribeOpts{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranscribe_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad audio", http.StatusBadRequest)
	}))
	defer srv.Close()

	_, err := newInterpreter(srv.URL).Transcribe(context.Background(), strings.NewReader("x"), "a.webm", interpreter.TranscribeOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
