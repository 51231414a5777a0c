// Package interpreter defines the interface to the speech-to-text and
// chat-completion services behind the assistant.
//
// bizassist ships with two backends: OpenAI-compatible APIs (Groq by default)
// and Local (self-hosted whisper + Ollama).
package interpreter

import (
	"context"
	"io"
	"strings"
)

// TranscribeOpts controls transcription behavior.
type TranscribeOpts struct {
	// Language is the ISO-639-1 code (e.g., "hi", "kn") to guide transcription.
	Language string

	// Model overrides the default transcription model.
	Model string
}

// TranscribeResult holds the recognized text.
type TranscribeResult struct {
	Text string

	// Language is the language reported by the recognizer, normalized where possible.
	Language string
}

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Interpreter is the interface for audio transcription and text completion.
type Interpreter interface {
	// Name returns the backend identifier (e.g., "openai", "local").
	Name() string

	// Transcribe converts an audio stream to text. filename carries the
	// extension the recognizer uses to sniff the container format.
	Transcribe(ctx context.Context, audio io.Reader, filename string, opts TranscribeOpts) (*TranscribeResult, error)

	// Complete returns the model's reply text for the request.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Close releases any resources held by the interpreter.
	Close() error
}

// ContentTypeForFile guesses the audio MIME type from a filename.
func ContentTypeForFile(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".wav"):
		return "audio/wav"
	case strings.HasSuffix(lower, ".ogg"):
		return "audio/ogg"
	case strings.HasSuffix(lower, ".mp3"):
		return "audio/mpeg"
	case strings.HasSuffix(lower, ".flac"):
		return "audio/flac"
	case strings.HasSuffix(lower, ".m4a"):
		return "audio/mp4"
	default:
		return "audio/webm"
	}
}

