// Package piper implements the TTS Synthesizer against a Piper server
// speaking the Wyoming protocol (linuxserver/piper listens on TCP 10200).
package piper

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"strings"
	"time"

	"github.com/nadzzz/bizassist/internal/config"
	"github.com/nadzzz/bizassist/internal/tts"
)

// Piper publishes no Kannada or Odia voices; those languages fall back to
// English unless a voice is configured.
var defaultVoices = map[string]string{
	"en": "en_US-lessac-medium",
	"hi": "hi_IN-pratham-medium",
}

var _ tts.Synthesizer = (*Synthesizer)(nil)

// Synthesizer implements tts.Synthesizer using the Wyoming protocol.
type Synthesizer struct {
	endpoint  string
	endpoints map[string]string // language -> host:port
	voices    map[string]string // language -> voice name
	logger    *slog.Logger
}

// New creates a Piper synthesizer. Per-language Endpoints take precedence
// over the shared Endpoint.
func New(cfg config.PiperConfig) *Synthesizer {
	voices := maps.Clone(defaultVoices)
	maps.Copy(voices, cfg.Voices)

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for lang, ep := range cfg.Endpoints {
		endpoints[lang] = hostPort(ep)
	}

	return &Synthesizer{
		endpoint:  hostPort(cfg.Endpoint),
		endpoints: endpoints,
		voices:    voices,
		logger:    slog.Default().With("component", "tts", "backend", "piper"),
	}
}

func hostPort(ep string) string {
	ep = strings.TrimPrefix(ep, "tcp://")
	return strings.TrimPrefix(ep, "http://")
}

// Name returns the backend identifier.
func (s *Synthesizer) Name() string { return "piper" }

// Synthesize streams text to Piper and returns the collected PCM as a WAV file.
func (s *Synthesizer) Synthesize(ctx context.Context, text string, opts tts.SynthesizeOpts) (*tts.SynthesizeResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for synthesis")
	}

	voice := opts.Voice
	if voice == "" {
		voice = s.voices[opts.Language]
	}
	if voice == "" {
		voice = s.voices["en"]
	}

	endpoint := s.endpoints[opts.Language]
	if endpoint == "" {
		endpoint = s.endpoint
	}
	if endpoint == "" {
		return nil, fmt.Errorf("no piper endpoint configured for language %q", opts.Language)
	}

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", endpoint)
	if err != nil {
		return nil, fmt.Errorf("connecting to piper: %w", err)
	}
	defer conn.Close()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(30 * time.Second)
	}
	_ = conn.SetDeadline(deadline)

	s.logger.Debug("synthesizing", "voice", voice, "language", opts.Language, "endpoint", endpoint, "text_length", len(text))

	req := event{Type: "synthesize", Data: map[string]any{
		"text":  text,
		"voice": map[string]any{"name": voice},
	}}
	if err := writeEvent(conn, req, nil); err != nil {
		return nil, fmt.Errorf("sending synthesize event: %w", err)
	}

	var (
		pcm      bytes.Buffer
		rate     = 22050
		channels = 1
		width    = 2
		r        = bufio.NewReader(conn)
	)
	for {
		evt, payload, err := readEvent(r)
		if err != nil {
			return nil, fmt.Errorf("reading piper event: %w", err)
		}

		switch evt.Type {
		case "audio-start":
			rate = evt.number("rate", rate)
			channels = evt.number("channels", channels)
			width = evt.number("width", width)
		case "audio-chunk":
			pcm.Write(payload)
		case "audio-stop":
			s.logger.Debug("synthesis complete", "pcm_bytes", pcm.Len(), "rate", rate)
			return &tts.SynthesizeResult{
				Audio:       wavFile(pcm.Bytes(), rate, channels, width),
				Format:      tts.FormatWAV,
				ContentType: "audio/wav",
			}, nil
		case "error":
			msg, _ := evt.Data["text"].(string)
			if msg == "" {
				msg = "unknown error"
			}
			return nil, fmt.Errorf("piper error: %s", msg)
		}
	}
}

// Close is a no-op; connections are per request.
func (s *Synthesizer) Close() error { return nil }
