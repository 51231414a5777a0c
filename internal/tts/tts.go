// Package tts defines the interface for text-to-speech synthesis.
//
// bizassist speaks answers to audio queries back in the language the
// merchant used. Backends return a complete, playable audio file.
package tts

import "context"

// Audio formats reported to clients.
const (
	FormatMP3 = "mp3"
	FormatWAV = "wav"
)

// SynthesizeOpts controls synthesis behavior.
type SynthesizeOpts struct {
	// Language is the engine language code (e.g., "en", "hi", "kn", "or").
	Language string

	// Voice overrides automatic language-based voice selection.
	Voice string
}

// Synthesizer converts text to audio.
type Synthesizer interface {
	// Name returns the backend identifier (e.g., "gtts", "piper").
	Name() string

	// Synthesize generates a complete audio file for text.
	Synthesize(ctx context.Context, text string, opts SynthesizeOpts) (*SynthesizeResult, error)

	// Close releases any resources held by the synthesizer.
	Close() error
}

// SynthesizeResult holds the output of TTS synthesis.
type SynthesizeResult struct {
	// Audio is the encoded audio file.
	Audio []byte

	// Format is the container short name (FormatMP3 or FormatWAV).
	Format string

	// ContentType is the MIME type of the audio (e.g., "audio/mpeg").
	ContentType string
}
