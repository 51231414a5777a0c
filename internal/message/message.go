// Package message defines the core data types flowing through the bizassist pipeline.
package message

import (
	"encoding/base64"
	"time"
)

// Query is a typed merchant question from any transport.
type Query struct {
	// ID is a unique identifier for this request (UUID).
	ID string `json:"-"`

	// Text is the question as typed, in any supported language.
	Text string `json:"text"`

	// SessionID links the exchange to a conversation. Optional.
	SessionID string `json:"session_id,omitempty"`
}

// AudioQuery is a spoken merchant question.
type AudioQuery struct {
	ID string

	// Audio is the uploaded recording (typically webm from a browser).
	Audio []byte

	// Filename is the client-supplied upload name, used to sniff the container.
	Filename string

	SessionID string
}

// HasAudio returns true if the query carries a recording.
func (q *AudioQuery) HasAudio() bool {
	return len(q.Audio) > 0
}

// Reply is the answer to a text query.
type Reply struct {
	// Reply is the answer text with the follow-up array removed.
	Reply string `json:"reply"`

	// OriginalLanguage is the canonical detected code (en, hi, kn, or).
	OriginalLanguage string `json:"original_language"`

	// LangCode is the locale tag of OriginalLanguage (e.g., "hi-IN").
	LangCode string `json:"lang_code"`

	// Recommendations are suggested follow-up questions. Never null.
	Recommendations []string `json:"recommendations"`
}

// AudioReply is the answer to a spoken query.
type AudioReply struct {
	Reply

	Transcript string `json:"transcript"`

	// Spoken is always true for audio replies.
	Spoken bool `json:"spoken"`

	// Audio is the base64-encoded synthesized answer, null when synthesis failed.
	Audio *string `json:"audio"`

	// AudioFormat is "mp3" or "wav", null when Audio is null.
	AudioFormat *string `json:"audio_format"`
}

// SetAudio base64-encodes synthesized audio into the reply. Empty audio leaves
// both fields null.
func (r *AudioReply) SetAudio(audio []byte, format string) {
	if len(audio) == 0 {
		r.Audio, r.AudioFormat = nil, nil
		return
	}
	encoded := base64.StdEncoding.EncodeToString(audio)
	r.Audio = &encoded
	r.AudioFormat = &format
}

// Exchange is one user/assistant turn kept in a conversation.
type Exchange struct {
	User      string    `json:"user"`
	Bot       string    `json:"bot"`
	Language  string    `json:"language"`
	Timestamp time.Time `json:"timestamp"`
}

// Error is the JSON body of a failed request.
type Error struct {
	Error string `json:"error"`
}

// Session is the body returned by /start-session.
type Session struct {
	SessionID string `json:"session_id"`
}

// History is the body returned by /conversation-history.
type History struct {
	History []Exchange `json:"history"`
}

// Notice is a plain confirmation body.
type Notice struct {
	Message string `json:"message"`
}

// Health is the body returned by /health.
type Health struct {
	Status     string `json:"status"`
	DataLoaded bool   `json:"data_loaded"`
}
