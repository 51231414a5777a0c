package piper

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// event is one Wyoming protocol message:
//
//	<json_length> <payload_length>\n
//	<json_bytes>\n
//	<payload_bytes>   (if payload_length > 0)
type event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

func (e *event) number(key string, fallback int) int {
	if v, ok := e.Data[key].(float64); ok {
		return int(v)
	}
	return fallback
}

func writeEvent(w io.Writer, evt event, payload []byte) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshalling event: %w", err)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d %d\n", len(body), len(payload))
	buf.Write(body)
	buf.WriteByte('\n')
	buf.Write(payload)

	_, err = w.Write(buf.Bytes())
	return err
}

func readEvent(r *bufio.Reader) (*event, []byte, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return nil, nil, fmt.Errorf("invalid wyoming header: %q", strings.TrimSpace(line))
	}
	jsonLen, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, nil, fmt.Errorf("parsing json length: %w", err)
	}
	payloadLen, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, nil, fmt.Errorf("parsing payload length: %w", err)
	}

	// JSON is followed by a newline that is not counted in jsonLen.
	body := make([]byte, jsonLen+1)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, fmt.Errorf("reading json: %w", err)
	}

	var evt event
	if err := json.Unmarshal(body[:jsonLen], &evt); err != nil {
		return nil, nil, fmt.Errorf("unmarshalling event: %w", err)
	}

	var payload []byte
	if payloadLen > 0 {
		payload = make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return nil, nil, fmt.Errorf("reading payload: %w", err)
		}
	}
	return &evt, payload, nil
}

// wavFile wraps raw PCM samples in a canonical 44-byte WAV header.
func wavFile(pcm []byte, rate, channels, width int) []byte {
	out := bytes.NewBuffer(make([]byte, 0, 44+len(pcm)))
	le := binary.LittleEndian

	out.WriteString("RIFF")
	_ = binary.Write(out, le, uint32(36+len(pcm)))
	out.WriteString("WAVE")

	out.WriteString("fmt ")
	_ = binary.Write(out, le, uint32(16))
	_ = binary.Write(out, le, uint16(1)) // PCM
	_ = binary.Write(out, le, uint16(channels))
	_ = binary.Write(out, le, uint32(rate))
	_ = binary.Write(out, le, uint32(rate*channels*width))
	_ = binary.Write(out, le, uint16(channels*width))
	_ = binary.Write(out, le, uint16(width*8))

	out.WriteString("data")
	_ = binary.Write(out, le, uint32(len(pcm)))
	out.Write(pcm)
	return out.Bytes()
}
