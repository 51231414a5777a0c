// Package speech bridges the pipeline to the speech-to-text recognizer and
// the text-to-speech synthesizer.
//
// Synthesis is best effort and never fails a request: a failed or disabled
// synthesizer yields an empty Audio carrying the Cause. Transcription errors
// propagate to the caller.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/nadzzz/bizassist/internal/interpreter"
	"github.com/nadzzz/bizassist/internal/language"
	"github.com/nadzzz/bizassist/internal/metrics"
	"github.com/nadzzz/bizassist/internal/tts"
)

var (
	// ErrSynthesisDisabled is the Cause when no synthesizer is configured.
	ErrSynthesisDisabled = errors.New("speech synthesis disabled")

	// ErrEmptyText is the Cause when there is nothing to speak.
	ErrEmptyText = errors.New("nothing to synthesize")
)

// Audio is a synthesized answer. Data is empty when synthesis failed.
type Audio struct {
	Data        []byte
	Format      string
	ContentType string
	Cause       error
}

// Ok reports whether Audio holds playable data.
func (a Audio) Ok() bool { return len(a.Data) > 0 }

// Transcript is recognized speech.
type Transcript struct {
	Text string

	// Language is the recognizer's own language guess, normalized. Informational.
	Language string
}

// Options configures a Bridge.
type Options struct {
	TranscriptionTimeout time.Duration
	SynthesisTimeout     time.Duration

	// TempDir is where uploads are spooled; empty means os.TempDir().
	TempDir string
}

// Bridge owns the speech backends.
type Bridge struct {
	recognizer  interpreter.Interpreter
	synthesizer tts.Synthesizer
	opts        Options
	logger      *slog.Logger
}

// NewBridge creates a Bridge. A nil synthesizer disables synthesis.
func NewBridge(recognizer interpreter.Interpreter, synthesizer tts.Synthesizer, opts Options) *Bridge {
	return &Bridge{
		recognizer:  recognizer,
		synthesizer: synthesizer,
		opts:        opts,
		logger:      slog.Default().With("component", "speech"),
	}
}

// EngineLanguage maps a language code or locale tag to a synthesizer
// language, defaulting to English.
func EngineLanguage(code string) string {
	c := language.Normalize(strings.TrimSpace(code))
	if language.IsSupported(c) {
		return c
	}
	return language.English
}

// Synthesize speaks text in lang.
func (b *Bridge) Synthesize(ctx context.Context, text, lang string) Audio {
	if b.synthesizer == nil {
		metrics.RecordUpstream("synthesis", metrics.OutcomeSkipped, 0)
		return Audio{Cause: ErrSynthesisDisabled}
	}
	if strings.TrimSpace(text) == "" {
		return Audio{Cause: ErrEmptyText}
	}

	if b.opts.SynthesisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.SynthesisTimeout)
		defer cancel()
	}

	engineLang := EngineLanguage(lang)
	start := time.Now()
	res, err := b.synthesizer.Synthesize(ctx, text, tts.SynthesizeOpts{Language: engineLang})
	if err == nil && len(res.Audio) == 0 {
		err = errors.New("synthesizer returned no audio")
	}
	if err != nil {
		metrics.RecordUpstream("synthesis", metrics.OutcomeDegraded, time.Since(start))
		b.logger.Warn("speech synthesis failed", "backend", b.synthesizer.Name(), "language", engineLang, "error", err)
		return Audio{Cause: err}
	}

	metrics.RecordUpstream("synthesis", metrics.OutcomeSuccess, time.Since(start))
	return Audio{Data: res.Audio, Format: res.Format, ContentType: res.ContentType}
}

// Transcribe spools audio to a temporary file and sends it to the recognizer.
// The temporary file is removed before Transcribe returns.
func (b *Bridge) Transcribe(ctx context.Context, audio io.Reader, filename string) (Transcript, error) {
	f, err := os.CreateTemp(b.opts.TempDir, "audio-*.webm")
	if err != nil {
		return Transcript{}, fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		f.Close()
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			b.logger.Warn("removing temp audio", "path", f.Name(), "error", err)
		}
	}()

	n, err := io.Copy(f, audio)
	if err != nil {
		return Transcript{}, fmt.Errorf("spooling audio: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return Transcript{}, fmt.Errorf("rewinding audio: %w", err)
	}
	if filename == "" {
		filename = "audio.webm"
	}

	if b.opts.TranscriptionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.opts.TranscriptionTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := b.recognizer.Transcribe(ctx, f, filename, interpreter.TranscribeOpts{})
	if err != nil {
		metrics.RecordUpstream("transcription", metrics.OutcomeError, time.Since(start))
		return Transcript{}, err
	}
	metrics.RecordUpstream("transcription", metrics.OutcomeSuccess, time.Since(start))

	b.logger.Debug("transcribed upload", "bytes", n, "text_length", len(res.Text), "whisper_language", res.Language)
	return Transcript{Text: strings.TrimSpace(res.Text), Language: res.Language}, nil
}
