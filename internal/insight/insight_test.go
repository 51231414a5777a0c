package insight_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/bizassist/internal/insight"
	"github.com/nadzzz/bizassist/internal/interpreter"
)

type fakeInterpreter struct {
	reply string
	err   error
	got   interpreter.CompletionRequest
}

func (f *fakeInterpreter) Name() string { return "fake" }

func (f *fakeInterpreter) Transcribe(context.Context, io.Reader, string, interpreter.TranscribeOpts) (*interpreter.TranscribeResult, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeInterpreter) Complete(_ context.Context, req interpreter.CompletionRequest) (string, error) {
	f.got = req
	return f.reply, f.err
}

func (f *fakeInterpreter) Close() error { return nil }

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantAnswer string
		wantFollow []string
	}{
		{
			name:       "answer with follow-ups",
			raw:        `Here is advice. ["Q1", "Q2"]`,
			wantAnswer: "Here is advice.",
			wantFollow: []string{"Q1", "Q2"},
		},
		{
			name:       "no array",
			raw:        "  Sales look steady this week.  ",
			wantAnswer: "Sales look steady this week.",
			wantFollow: []string{},
		},
		{
			name:       "non-string array skipped",
			raw:        `Top days [1, 2] then ask ["Which items sold best?"]`,
			wantAnswer: "Top days [1, 2] then ask",
			wantFollow: []string{"Which items sold best?"},
		},
		{
			name:       "only non-string arrays",
			raw:        `Values [1, 2, 3]`,
			wantAnswer: "Values [1, 2, 3]",
			wantFollow: []string{},
		},
		{
			name:       "empty array stops the scan",
			raw:        `A [] B ["Q"]`,
			wantAnswer: `A [] B ["Q"]`,
			wantFollow: []string{},
		},
		{
			name:       "empty string element rejected",
			raw:        `Hmm ["", "x"]`,
			wantAnswer: `Hmm ["", "x"]`,
			wantFollow: []string{},
		},
		{
			name:       "first valid array wins",
			raw:        `A ["one"] B ["two"]`,
			wantAnswer: `A  B ["two"]`,
			wantFollow: []string{"one"},
		},
		{
			name:       "array mid text",
			raw:        "Start.\n[\"Q1\"]\nEnd.",
			wantAnswer: "Start.\n\nEnd.",
			wantFollow: []string{"Q1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			answer, follow := insight.ParseResponse(tt.raw)
			assert.Equal(t, tt.wantAnswer, answer)
			assert.Equal(t, tt.wantFollow, follow)
		})
	}
}

func TestAsk(t *testing.T) {
	fake := &fakeInterpreter{reply: `Run a promotion on slow days. ["What sells best?", "When are peak hours?"]`}
	engine := insight.NewEngine(fake, insight.Options{Temperature: 0.7, MaxTokens: 800, Timeout: time.Second})

	res, err := engine.Ask(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "Run a promotion on slow days.", res.Answer)
	assert.Equal(t, []string{"What sells best?", "When are peak hours?"}, res.FollowUps)
	assert.False(t, res.Degraded)

	assert.Equal(t, insight.SystemInstruction, fake.got.System)
	assert.Equal(t, "prompt text", fake.got.Prompt)
	assert.InDelta(t, 0.7, fake.got.Temperature, 1e-9)
	assert.Equal(t, 800, fake.got.MaxTokens)
}

func TestAsk_BackendFailure(t *testing.T) {
	cause := errors.New("groq unavailable")
	engine := insight.NewEngine(&fakeInterpreter{err: cause}, insight.Options{})

	res, err := engine.Ask(context.Background(), "prompt")
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, insight.Apology, res.Answer)
	assert.NotNil(t, res.FollowUps)
	assert.Empty(t, res.FollowUps)
	assert.True(t, res.Degraded)
}
