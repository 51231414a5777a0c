// Package local implements the Interpreter interface using self-hosted models.
//
// It supports any Whisper-compatible transcription endpoint (whisper.cpp
// server, faster-whisper, whisper-asr-webservice) and either Ollama's
// /api/generate or an OpenAI-compatible chat endpoint (Ollama, vLLM,
// llama.cpp server).
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/nadzzz/bizassist/internal/config"
	"github.com/nadzzz/bizassist/internal/interpreter"
	"github.com/nadzzz/bizassist/internal/language"
)

// Interpreter uses self-hosted models for transcription and completion.
type Interpreter struct {
	whisperEndpoint string
	whisperType     string // "openai" or "asr"
	whisperModel    string
	llmEndpoint     string
	llmModel        string
	client          *http.Client
}

// New creates a new local interpreter from config.
func New(cfg config.LocalConfig) *Interpreter {
	wt := cfg.WhisperType
	if wt == "" {
		wt = "openai"
	}
	model := cfg.LLMModel
	if model == "" {
		model = "llama3"
	}
	return &Interpreter{
		whisperEndpoint: cfg.WhisperEndpoint,
		whisperType:     wt,
		whisperModel:    cfg.WhisperModel,
		llmEndpoint:     cfg.LLMEndpoint,
		llmModel:        model,
		client:          &http.Client{},
	}
}

// Name returns the backend identifier.
func (i *Interpreter) Name() string { return "local" }

// Transcribe sends audio to the local Whisper-compatible endpoint.
// Supports two flavors:
//   - "openai": OpenAI-compatible API (whisper.cpp server, faster-whisper)
//   - "asr":    ahmetoner/whisper-asr-webservice (POST /asr with query params)
func (i *Interpreter) Transcribe(ctx context.Context, audio io.Reader, filename string, opts interpreter.TranscribeOpts) (*interpreter.TranscribeResult, error) {
	field := "file"
	endpoint := i.whisperEndpoint
	if i.whisperType == "asr" {
		field = "audio_file"
		q := make(url.Values)
		q.Set("task", "transcribe")
		q.Set("output", "json")
		q.Set("encode", "true")
		if opts.Language != "" {
			q.Set("language", opts.Language)
		}
		endpoint += "?" + q.Encode()
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("writing audio: %w", err)
	}
	if i.whisperType != "asr" {
		model := i.whisperModel
		if opts.Model != "" {
			model = opts.Model
		}
		if model != "" {
			_ = writer.WriteField("model", model)
		}
		if opts.Language != "" {
			_ = writer.WriteField("language", opts.Language)
		}
		_ = writer.WriteField("response_format", "verbose_json")
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("local transcription request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("local transcription failed (status %d): %s", resp.StatusCode, respBody)
	}

	var result struct {
		Text     string `json:"text"`
		Language string `json:"language"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding transcription: %w", err)
	}

	lang := ""
	if result.Language != "" {
		lang = language.Normalize(result.Language)
	}
	slog.Debug("local transcription complete", "text_length", len(result.Text), "language", lang)
	return &interpreter.TranscribeResult{
		Text:     strings.TrimSpace(result.Text),
		Language: lang,
	}, nil
}

// Complete sends the prompt to the local LLM endpoint.
// Endpoints ending in /api/generate use Ollama's native format; everything
// else is treated as OpenAI-compatible chat completions.
func (i *Interpreter) Complete(ctx context.Context, in interpreter.CompletionRequest) (string, error) {
	var reqBody map[string]any
	if strings.HasSuffix(i.llmEndpoint, "/api/generate") {
		reqBody = map[string]any{
			"model":  i.llmModel,
			"system": in.System,
			"prompt": in.Prompt,
			"stream": false,
			"options": map[string]any{
				"temperature": in.Temperature,
				"num_predict": in.MaxTokens,
			},
		}
	} else {
		reqBody = map[string]any{
			"model": i.llmModel,
			"messages": []map[string]string{
				{"role": "system", "content": in.System},
				{"role": "user", "content": in.Prompt},
			},
			"temperature": in.Temperature,
			"max_tokens":  in.MaxTokens,
			"stream":      false,
		}
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, i.llmEndpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("local LLM request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("local LLM failed (status %d): %s", resp.StatusCode, respBody)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading LLM response: %w", err)
	}

	content := strings.TrimSpace(extractContent(respData))
	if content == "" {
		return "", fmt.Errorf("empty response from local LLM")
	}
	slog.Debug("local completion received", "model", i.llmModel, "length", len(content))
	return content, nil
}

// Close is a no-op for the local interpreter.
func (i *Interpreter) Close() error { return nil }

func extractContent(data []byte) string {
	// OpenAI-compatible format: {"choices": [{"message": {"content": "..."}}]}
	var chatResp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &chatResp); err == nil && len(chatResp.Choices) > 0 {
		return chatResp.Choices[0].Message.Content
	}

	// Ollama format: {"response": "..."}
	var ollamaResp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(data, &ollamaResp); err == nil && ollamaResp.Response != "" {
		return ollamaResp.Response
	}

	return string(data)
}
