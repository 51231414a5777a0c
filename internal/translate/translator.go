// Package translate converts query text between languages.
//
// Translation is best effort: an outage must never block a reply, so the
// Service reports failures as a Degraded result that carries the original
// text instead of an error.
package translate

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nadzzz/bizassist/internal/metrics"
)

// ErrDisabled is the cause recorded when translation is turned off in config.
var ErrDisabled = errors.New("translation disabled")

// Translator defines the interface for machine translation backends.
type Translator interface {
	// Translate translates text from source language to target language.
	// sourceLang and targetLang are ISO 639-1 codes (e.g., "hi", "en").
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Result is the outcome of a translation attempt.
type Result struct {
	// Text is the translated text, or the original text when Degraded.
	Text string

	// Degraded is true when the backend failed and Text is the untranslated input.
	Degraded bool

	// Cause is the backend error behind a degraded result.
	Cause error
}

// Ok wraps successfully translated text.
func Ok(text string) Result { return Result{Text: text} }

// Degraded wraps the original text after a failed translation.
func Degraded(original string, cause error) Result {
	return Result{Text: original, Degraded: true, Cause: cause}
}

// Service applies the pipeline's translation policy on top of a backend.
type Service struct {
	backend Translator
	timeout time.Duration
	logger  *slog.Logger
}

// NewService creates a Service. A nil backend disables translation.
func NewService(backend Translator, timeout time.Duration) *Service {
	return &Service{
		backend: backend,
		timeout: timeout,
		logger:  slog.Default().With("component", "translate"),
	}
}

// Translate returns text unchanged when from == to, and the original text as a
// Degraded result when the backend fails.
func (s *Service) Translate(ctx context.Context, text, from, to string) Result {
	if from == to {
		return Ok(text)
	}
	if s.backend == nil {
		metrics.RecordUpstream("translate", metrics.OutcomeSkipped, 0)
		return Degraded(text, ErrDisabled)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	translated, err := s.backend.Translate(ctx, text, from, to)
	if err == nil && translated == "" && text != "" {
		err = errors.New("empty translation returned")
	}
	if err != nil {
		metrics.RecordUpstream("translate", metrics.OutcomeDegraded, time.Since(start))
		s.logger.Warn("translation failed, using original text",
			"source_lang", from, "target_lang", to, "error", err)
		return Degraded(text, err)
	}

	metrics.RecordUpstream("translate", metrics.OutcomeSuccess, time.Since(start))
	s.logger.Debug("translation complete", "source_lang", from, "target_lang", to, "text_length", len(translated))
	return Ok(translated)
}
