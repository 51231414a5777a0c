package piper

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nadzzz/bizassist/internal/config"
	"github.com/nadzzz/bizassist/internal/tts"
)

// fakePiper accepts one connection, records the synthesize request and
// answers with the given events.
func fakePiper(t *testing.T, reply func(w *bytes.Buffer)) (addr string, got chan *event) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	got = make(chan *event, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		evt, _, err := readEvent(bufio.NewReader(conn))
		if err != nil {
			close(got)
			return
		}
		got <- evt
		var out bytes.Buffer
		reply(&out)
		_, _ = conn.Write(out.Bytes())
	}()
	return ln.Addr().String(), got
}

func TestSynthesize(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0, 4, 0}
	addr, got := fakePiper(t, func(w *bytes.Buffer) {
		_ = writeEvent(w, event{Type: "audio-start", Data: map[string]any{"rate": 16000, "width": 2, "channels": 1}}, nil)
		_ = writeEvent(w, event{Type: "audio-chunk"}, pcm[:4])
		_ = writeEvent(w, event{Type: "audio-chunk"}, pcm[4:])
		_ = writeEvent(w, event{Type: "audio-stop"}, nil)
	})

	s := New(config.PiperConfig{Endpoint: "tcp://" + addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := s.Synthesize(ctx, "नमस्ते", tts.SynthesizeOpts{Language: "hi"})
	require.NoError(t, err)
	assert.Equal(t, tts.FormatWAV, res.Format)
	assert.Equal(t, "audio/wav", res.ContentType)

	require.Len(t, res.Audio, 44+len(pcm))
	assert.Equal(t, "RIFF", string(res.Audio[:4]))
	assert.Equal(t, "WAVE", string(res.Audio[8:12]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(res.Audio[24:28]))
	assert.Equal(t, pcm, res.Audio[44:])

	req := <-got
	require.NotNil(t, req)
	assert.Equal(t, "synthesize", req.Type)
	assert.Equal(t, "नमस्ते", req.Data["text"])
	assert.Equal(t, map[string]any{"name": "hi_IN-pratham-medium"}, req.Data["voice"])
}

func TestSynthesize_UnknownLanguageUsesEnglishVoice(t *testing.T) {
	addr, got := fakePiper(t, func(w *bytes.Buffer) {
		_ = writeEvent(w, event{Type: "audio-stop"}, nil)
	})

	s := New(config.PiperConfig{Endpoint: addr})
	_, err := s.Synthesize(context.Background(), "hello", tts.SynthesizeOpts{Language: "kn"})
	require.NoError(t, err)

	req := <-got
	assert.Equal(t, map[string]any{"name": "en_US-lessac-medium"}, req.Data["voice"])
}

func TestSynthesize_ServerError(t *testing.T) {
	addr, _ := fakePiper(t, func(w *bytes.Buffer) {
		_ = writeEvent(w, event{Type: "error", Data: map[string]any{"text": "voice not found"}}, nil)
	})

	_, err := New(config.PiperConfig{Endpoint: addr}).Synthesize(context.Background(), "hi", tts.SynthesizeOpts{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "voice not found")
}

func TestSynthesize_Validation(t *testing.T) {
	s := New(config.PiperConfig{})
	_, err := s.Synthesize(context.Background(), "  ", tts.SynthesizeOpts{})
	assert.Error(t, err)

	_, err = s.Synthesize(context.Background(), "text", tts.SynthesizeOpts{Language: "en"})
	assert.ErrorContains(t, err, "no piper endpoint")
}

func TestReadEvent_InvalidHeader(t *testing.T) {
	_, _, err := readEvent(bufio.NewReader(bytes.NewBufferString("garbage\n")))
	assert.Error(t, err)
}
