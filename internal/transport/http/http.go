// Package http implements the public JSON API for bizassist.
//
// Browser clients start a session, send typed or recorded questions and read
// back the conversation. All responses are JSON.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/nadzzz/bizassist/internal/config"
	"github.com/nadzzz/bizassist/internal/dispatch"
	"github.com/nadzzz/bizassist/internal/message"
	"github.com/nadzzz/bizassist/internal/transport"
)

// SessionHeader may carry the session id instead of the request body.
const SessionHeader = "X-Session-ID"

// Transport implements transport.Transport over HTTP.
type Transport struct {
	port           int
	allowedOrigins []string
	maxBodyBytes   int64
	pipeline       transport.Pipeline
	sessions       transport.Sessions
	dataLoaded     bool
	server         *http.Server
}

// New creates the HTTP transport. dataLoaded is reported by /health.
func New(cfg config.HTTPConfig, pipeline transport.Pipeline, sessions transport.Sessions, dataLoaded bool) *Transport {
	return &Transport{
		port:           cfg.Port,
		allowedOrigins: cfg.AllowedOrigins,
		maxBodyBytes:   cfg.MaxUploadMB << 20,
		pipeline:       pipeline,
		sessions:       sessions,
		dataLoaded:     dataLoaded,
	}
}

// Name returns the transport identifier.
func (t *Transport) Name() string { return "http" }

// Handler returns the routed API with its middleware chain.
func (t *Transport) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /start-session", t.handleStartSession)
	mux.HandleFunc("POST /query", t.handleQuery)
	mux.HandleFunc("POST /audio-query", t.handleAudioQuery)
	mux.HandleFunc("GET /conversation-history/{id}", t.handleHistory)
	mux.HandleFunc("DELETE /clear-conversation/{id}", t.handleClear)
	mux.HandleFunc("GET /health", t.handleHealth)

	// Swagger UI serving the generated OpenAPI docs.
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	var h http.Handler = mux
	h = withMetrics(h)
	h = withBodyLimit(t.maxBodyBytes, h)
	h = withEviction(t.sessions, h)
	h = withCORS(t.allowedOrigins, h)
	h = withSecurityHeaders(h)
	return withRequestID(h)
}

// Listen starts the HTTP server and blocks until ctx is cancelled.
func (t *Transport) Listen(ctx context.Context) error {
	t.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", t.port),
		Handler:           t.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http transport listening", "port", t.port)

	go func() {
		<-ctx.Done()
		slog.Info("http transport shutting down")
		_ = t.Close()
	}()

	if err := t.server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http listen: %w", err)
	}
	return nil
}

// Close gracefully shuts down the HTTP server.
func (t *Transport) Close() error {
	if t.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return t.server.Shutdown(ctx)
}

// handleStartSession creates a conversation.
//
// @Summary     Start a conversation
// @Description Creates an empty conversation and returns its id. Pass the id with later queries to record the exchange.
// @Tags        sessions
// @Produce     json
// @Success     200  {object}  message.Session
// @Router      /start-session [post]
func (t *Transport) handleStartSession(w http.ResponseWriter, r *http.Request) {
	id := t.sessions.Create()
	slog.Info("session started", "request_id", requestID(r.Context()), "session_id", id)
	writeJSON(w, http.StatusOK, message.Session{SessionID: id})
}

// handleQuery answers a typed question.
//
// @Summary     Ask a question
// @Description Detects the language of the question, translates it to English, and answers it from the merchant's sales data.
// @Description Suggested follow-up questions are returned as recommendations.
// @Tags        queries
// @Accept      json
// @Produce     json
// @Param       query         body    message.Query  true   "Question text and optional session id"
// @Param       X-Session-ID  header  string         false  "Session id (alternative to the body field)"
// @Success     200  {object}  message.Reply
// @Failure     400  {object}  message.Error  "Empty or malformed input"
// @Failure     500  {object}  message.Reply  "Model failure; reply holds an apology"
// @Router      /query [post]
func (t *Transport) handleQuery(w http.ResponseWriter, r *http.Request) {
	var q message.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return
	}
	q.ID = requestID(r.Context())
	if q.SessionID == "" {
		q.SessionID = r.Header.Get(SessionHeader)
	}

	reply, err := t.pipeline.HandleQuery(r.Context(), &q)
	switch {
	case errors.Is(err, dispatch.ErrEmptyInput):
		writeError(w, http.StatusBadRequest, "Empty input provided")
	case errors.Is(err, dispatch.ErrCompletion) && reply != nil:
		writeJSON(w, http.StatusInternalServerError, reply)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, reply)
	}
}

// handleAudioQuery answers a recorded question and speaks the answer.
//
// @Summary     Ask a spoken question
// @Description Transcribes the uploaded recording, answers it like /query, and synthesizes the answer in the detected language.
// @Description audio and audio_format are null when synthesis fails.
// @Tags        queries
// @Accept      multipart/form-data
// @Produce     json
// @Param       audio         formData  file    true   "Recording (webm, wav, ogg, mp3)"
// @Param       session_id    formData  string  false  "Session id"
// @Param       X-Session-ID  header    string  false  "Session id (alternative to the form field)"
// @Success     200  {object}  message.AudioReply
// @Failure     400  {object}  message.Error  "No audio file provided"
// @Failure     500  {object}  message.Error  "Transcription failure, or an AudioReply with an apology on model failure"
// @Router      /audio-query [post]
func (t *Transport) handleAudioQuery(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "audio file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid form: "+err.Error())
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	q := message.AudioQuery{
		ID:        requestID(r.Context()),
		SessionID: r.FormValue("session_id"),
	}
	if q.SessionID == "" {
		q.SessionID = r.Header.Get(SessionHeader)
	}

	file, hdr, err := r.FormFile("audio")
	if err == nil {
		defer file.Close()
		q.Filename = hdr.Filename
		if q.Audio, err = io.ReadAll(file); err != nil {
			writeError(w, http.StatusBadRequest, "reading audio: "+err.Error())
			return
		}
	}

	reply, err := t.pipeline.HandleAudio(r.Context(), &q)
	switch {
	case errors.Is(err, dispatch.ErrNoAudio):
		writeError(w, http.StatusBadRequest, "No audio file provided")
	case errors.Is(err, dispatch.ErrTranscription):
		cause := strings.TrimPrefix(err.Error(), dispatch.ErrTranscription.Error()+": ")
		writeError(w, http.StatusInternalServerError, "Audio transcription failed: "+cause)
	case errors.Is(err, dispatch.ErrCompletion) && reply != nil:
		writeJSON(w, http.StatusInternalServerError, reply)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, reply)
	}
}

// handleHistory returns a conversation.
//
// @Summary     Conversation history
// @Description Returns up to the last ten exchanges, oldest first. Unknown ids return an empty list.
// @Tags        sessions
// @Produce     json
// @Param       id   path      string  true  "Session id"
// @Success     200  {object}  message.History
// @Router      /conversation-history/{id} [get]
func (t *Transport) handleHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, message.History{History: t.sessions.History(r.PathValue("id"))})
}

// handleClear deletes a conversation.
//
// @Summary     Clear a conversation
// @Tags        sessions
// @Produce     json
// @Param       id   path      string  true  "Session id"
// @Success     200  {object}  message.Notice
// @Failure     404  {object}  message.Error  "Session not found"
// @Router      /clear-conversation/{id} [delete]
func (t *Transport) handleClear(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !t.sessions.Clear(id) {
		writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	slog.Info("session cleared", "request_id", requestID(r.Context()), "session_id", id)
	writeJSON(w, http.StatusOK, message.Notice{Message: "Conversation cleared"})
}

// handleHealth reports liveness and whether business data was loaded.
//
// @Summary     Health check
// @Tags        health
// @Produce     json
// @Success     200  {object}  message.Health
// @Router      /health [get]
func (t *Transport) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, message.Health{Status: "healthy", DataLoaded: t.dataLoaded})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, message.Error{Error: msg})
}

var _ transport.Transport = (*Transport)(nil)
