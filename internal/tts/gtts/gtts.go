// Package gtts implements the TTS Synthesizer against the Google Translate
// speech endpoint, producing MP3 audio.
//
// The endpoint rejects long inputs, so text is split into chunks of at most
// MaxChunk characters on whitespace and the MP3 responses are concatenated.
package gtts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/nadzzz/bizassist/internal/config"
	"github.com/nadzzz/bizassist/internal/tts"
)

// MaxChunk is the longest text, in runes, sent in one request.
const MaxChunk = 100

var supported = map[string]bool{"en": true, "hi": true, "kn": true, "or": true}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// Synthesizer implements tts.Synthesizer using Google Translate TTS.
type Synthesizer struct {
	endpoint string
	client   *http.Client
	logger   *slog.Logger
}

// New creates a gTTS synthesizer. An empty endpoint is derived from the TLD.
func New(cfg config.GTTSConfig) *Synthesizer {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		tld := cfg.TLD
		if tld == "" {
			tld = "com"
		}
		endpoint = "https://translate.google." + tld + "/translate_tts"
	}
	return &Synthesizer{
		endpoint: endpoint,
		client:   &http.Client{},
		logger:   slog.Default().With("component", "tts", "backend", "gtts"),
	}
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "gtts" }

// Close is a no-op; each chunk is a separate HTTP request.
func (s *Synthesizer) Close() error { return nil }

// Synthesize returns MP3 audio for text. Unsupported languages are spoken as English.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	parts := Chunks(text, MaxChunk)
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty text for synthesis")
	}
	lang := opts.Language
	if !supported[lang] {
		lang = "en"
	}

	var audio bytes.Buffer
	for i, part := range parts {
		if err := s.fetch(ctx, &audio, part, lang, i, len(parts)); err != nil {
			return nil, fmt.Errorf("chunk %d/%d: %w", i+1, len(parts), err)
		}
	}

	s.logger.Debug("synthesis complete", "language", lang, "chunks", len(parts), "bytes", audio.Len())
	return &tts.SynthesizeResult{
		Audio:       audio.Bytes(),
		Format:      tts.FormatMP3,
		ContentType: "audio/mpeg",
	}, nil
}

func (s *Synthesizer) fetch(ctx context.Context, dst *bytes.Buffer, text, lang string, idx, total int) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("q", text)
	q.Set("tl", lang)
	q.Set("total", strconv.Itoa(total))
	q.Set("idx", strconv.Itoa(idx))
	q.Set("textlen", strconv.Itoa(len([]rune(text))))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")
	req.Header.Set("Referer", "https://translate.google.com/")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("tts failed (status %d): %s", resp.StatusCode, body)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("reading audio: %w", err)
	}
	return nil
}

// Chunks splits text into pieces of at most limit runes, breaking on
// whitespace where possible. Words longer than limit are hard-split.
func Chunks(text string, limit int) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if s := strings.TrimSpace(string(cur)); s != "" {
			out = append(out, s)
		}
		cur = cur[:0]
	}

	for _, word := range strings.FieldsFunc(text, unicode.IsSpace) {
		w := []rune(word)
		for len(w) > limit {
			flush()
			out = append(out, string(w[:limit]))
			w = w[limit:]
		}
		if len(cur) > 0 && len(cur)+1+len(w) > limit {
			flush()
		}
		if len(cur) > 0 {
			cur = append(cur, ' ')
		}
		cur = append(cur, w...)
	}
	flush()
	return out
}
