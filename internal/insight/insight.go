// Package insight turns a synthesized prompt into a merchant-facing answer
// plus suggested follow-up questions.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/nadzzz/bizassist/internal/interpreter"
	"github.com/nadzzz/bizassist/internal/metrics"
)

// SystemInstruction is sent with every completion.
const SystemInstruction = "You are a helpful business assistant that provides concise, actionable insights."

// Apology is the answer returned when the completion backend fails.
const Apology = "Sorry, there was an error processing your request."

// bracketed matches innermost [...] spans that contain no nested brackets.
var bracketed = regexp.MustCompile(`\[[^\[\]]*\]`)

// Result is the parsed model reply.
type Result struct {
	Answer    string
	FollowUps []string

	// Degraded is true when Answer is the apology text.
	Degraded bool
}

// Options tunes the completion call.
type Options struct {
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Engine asks the completion backend and parses its reply.
type Engine struct {
	interp interpreter.Interpreter
	opts   Options
	logger *slog.Logger
}

// NewEngine creates an Engine on top of an interpreter backend.
func NewEngine(interp interpreter.Interpreter, opts Options) *Engine {
	return &Engine{
		interp: interp,
		opts:   opts,
		logger: slog.Default().With("component", "insight", "backend", interp.Name()),
	}
}

// Ask sends prompt to the model. On failure it returns the apology Result
// together with the backend error.
func (e *Engine) Ask(ctx context.Context, prompt string) (Result, error) {
	if e.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := e.interp.Complete(ctx, interpreter.CompletionRequest{
		System:      SystemInstruction,
		Prompt:      prompt,
		Temperature: e.opts.Temperature,
		MaxTokens:   e.opts.MaxTokens,
	})
	if err != nil {
		metrics.RecordUpstream("completion", metrics.OutcomeError, time.Since(start))
		e.logger.Error("completion failed", "error", err)
		return Result{Answer: Apology, FollowUps: []string{}, Degraded: true}, fmt.Errorf("completion: %w", err)
	}
	metrics.RecordUpstream("completion", metrics.OutcomeSuccess, time.Since(start))

	answer, followUps := ParseResponse(raw)
	e.logger.Debug("completion parsed", "answer_length", len(answer), "follow_ups", len(followUps))
	return Result{Answer: answer, FollowUps: followUps}, nil
}

// ParseResponse splits raw model output into the answer text and the first
// embedded JSON array of non-empty strings. The matched array text is removed
// from the answer. An empty array ends the scan with no follow-ups and the
// answer left whole. followUps is never nil.
func ParseResponse(raw string) (answer string, followUps []string) {
	for _, loc := range bracketed.FindAllStringIndex(raw, -1) {
		items, ok := stringArray(raw[loc[0]:loc[1]])
		if !ok {
			continue
		}
		if len(items) == 0 {
			break
		}
		answer = strings.TrimSpace(raw[:loc[0]] + raw[loc[1]:])
		return answer, items
	}
	return strings.TrimSpace(raw), []string{}
}

func stringArray(candidate string) ([]string, bool) {
	var values []any
	if err := json.Unmarshal([]byte(candidate), &values); err != nil {
		return nil, false
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
