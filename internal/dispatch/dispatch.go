// Package dispatch implements the query pipeline.
//
// A text query runs detect → normalize → translate to English → build prompt
// → ask the model. An audio query is transcribed first and its answer is
// synthesized back in the detected language. The caller always receives a
// well-formed reply; errors returned alongside it tell the transport which
// status to use.
package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/nadzzz/bizassist/internal/business"
	"github.com/nadzzz/bizassist/internal/insight"
	"github.com/nadzzz/bizassist/internal/language"
	"github.com/nadzzz/bizassist/internal/message"
	"github.com/nadzzz/bizassist/internal/metrics"
	"github.com/nadzzz/bizassist/internal/prompt"
	"github.com/nadzzz/bizassist/internal/speech"
	"github.com/nadzzz/bizassist/internal/translate"
)

var (
	// ErrEmptyInput is returned for a text query that is blank after trimming.
	ErrEmptyInput = errors.New("empty input")

	// ErrNoAudio is returned for an audio query without a recording.
	ErrNoAudio = errors.New("no audio file")

	// ErrTranscription wraps recognizer failures.
	ErrTranscription = errors.New("audio transcription failed")

	// ErrCompletion wraps model failures. The reply still carries the apology.
	ErrCompletion = errors.New("completion failed")
)

// Detector guesses the language of a query.
type Detector interface {
	Detect(text string) string
}

// Translator converts text between languages, degrading to the original.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) translate.Result
}

// Asker answers a prompt.
type Asker interface {
	Ask(ctx context.Context, prompt string) (insight.Result, error)
}

// Speech transcribes uploads and synthesizes answers.
type Speech interface {
	Transcribe(ctx context.Context, audio io.Reader, filename string) (speech.Transcript, error)
	Synthesize(ctx context.Context, text, lang string) speech.Audio
}

// History records exchanges for a session.
type History interface {
	Append(id string, ex message.Exchange)
}

// Dispatcher is the central pipeline.
type Dispatcher struct {
	detector   Detector
	translator Translator
	record     *business.Record
	asker      Asker
	speech     Speech
	history    History
}

// New creates a Dispatcher. history may be nil.
func New(detector Detector, translator Translator, record *business.Record, asker Asker, sp Speech, history History) *Dispatcher {
	return &Dispatcher{
		detector:   detector,
		translator: translator,
		record:     record,
		asker:      asker,
		speech:     sp,
		history:    history,
	}
}

// analysis is the language-dependent part shared by both query kinds.
type analysis struct {
	lang       string
	translated translate.Result
	result     insight.Result
}

func (d *Dispatcher) analyze(ctx context.Context, logger *slog.Logger, text string) (analysis, error) {
	lang := language.Normalize(d.detector.Detect(text))
	metrics.RecordLanguage(lang)

	translated := d.translator.Translate(ctx, text, lang, language.English)
	if translated.Degraded {
		logger.Warn("continuing with untranslated query", "language", lang, "cause", translated.Cause)
	}

	p := prompt.Build(translated.Text, d.record, text, lang)
	res, err := d.asker.Ask(ctx, p)
	a := analysis{lang: lang, translated: translated, result: res}
	if err != nil {
		return a, fmt.Errorf("%w: %w", ErrCompletion, err)
	}
	return a, nil
}

func (a analysis) reply() message.Reply {
	recs := a.result.FollowUps
	if recs == nil {
		recs = []string{}
	}
	return message.Reply{
		Reply:            a.result.Answer,
		OriginalLanguage: a.lang,
		LangCode:         language.LocaleTag(a.lang),
		Recommendations:  recs,
	}
}

func (d *Dispatcher) remember(sessionID, user string, a analysis) {
	if sessionID == "" || d.history == nil {
		return
	}
	d.history.Append(sessionID, message.Exchange{
		User:     user,
		Bot:      a.result.Answer,
		Language: a.lang,
	})
}

// HandleQuery answers a typed query. On model failure the returned reply
// carries the apology text and the error wraps ErrCompletion.
func (d *Dispatcher) HandleQuery(ctx context.Context, q *message.Query) (*message.Reply, error) {
	start := time.Now()
	logger := slog.With("request_id", q.ID, "session_id", q.SessionID)

	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, ErrEmptyInput
	}

	a, err := d.analyze(ctx, logger, text)
	reply := a.reply()
	if err != nil {
		logger.Error("query failed", "language", a.lang, "error", err)
		return &reply, err
	}

	d.remember(q.SessionID, text, a)
	logger.Info("query answered",
		"language", a.lang,
		"translated", !a.translated.Degraded,
		"recommendations", len(reply.Recommendations),
		"duration", time.Since(start))
	return &reply, nil
}

// HandleAudio transcribes and answers a spoken query, then speaks the answer.
// Synthesis failures leave the audio fields null.
func (d *Dispatcher) HandleAudio(ctx context.Context, q *message.AudioQuery) (*message.AudioReply, error) {
	start := time.Now()
	logger := slog.With("request_id", q.ID, "session_id", q.SessionID)

	if !q.HasAudio() {
		return nil, ErrNoAudio
	}

	logger.Debug("transcribing audio", "filename", q.Filename, "bytes", len(q.Audio))
	transcript, err := d.speech.Transcribe(ctx, bytes.NewReader(q.Audio), q.Filename)
	if err != nil {
		logger.Error("transcription failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrTranscription, err)
	}
	logger.Info("transcription complete", "text_length", len(transcript.Text), "whisper_language", transcript.Language)

	a, err := d.analyze(ctx, logger, transcript.Text)
	reply := &message.AudioReply{
		Reply:      a.reply(),
		Transcript: transcript.Text,
		Spoken:     true,
	}
	if err != nil {
		logger.Error("audio query failed", "language", a.lang, "error", err)
		return reply, err
	}

	audio := d.speech.Synthesize(ctx, a.result.Answer, a.lang)
	if audio.Ok() {
		reply.SetAudio(audio.Data, audio.Format)
	} else {
		logger.Warn("replying without audio", "cause", audio.Cause)
	}

	d.remember(q.SessionID, transcript.Text, a)
	logger.Info("audio query answered",
		"language", a.lang,
		"audio_bytes", len(audio.Data),
		"duration", time.Since(start))
	return reply, nil
}
