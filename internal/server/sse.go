package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/recruit-portal/internal/testsession"
)

// SSEWriter writes Server-Sent Events.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sets the event-stream headers. It fails when w cannot flush.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends one named event with a JSON payload.
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// tickEvent is the payload of "tick" events.
type tickEvent struct {
	Remaining int    `json:"remaining"`
	Clock     string `json:"clock"`
	Hurry     bool   `json:"hurry"`
	Answered  int    `json:"answered"`
	Total     int    `json:"total"`
}

// submittedEvent is the payload of the final "submitted" event.
type submittedEvent struct {
	Message    string `json:"message"`
	Redirect   string `json:"redirect"`
	DelayMilli int64  `json:"delay_ms"`
}

// navigateEvent is the payload of the final "navigate" event.
type navigateEvent struct {
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect"`
}

// WriteNavigate tells the page to leave for redirect right away.
func (s *SSEWriter) WriteNavigate(redirect, message string) error {
	return s.WriteEvent("navigate", navigateEvent{Message: message, Redirect: redirect})
}

// WriteTick sends the countdown state.
func (s *SSEWriter) WriteTick(snap testsession.Snapshot) error {
	return s.WriteEvent("tick", tickEvent{
		Remaining: snap.Remaining,
		Clock:     snap.Clock,
		Hurry:     snap.Hurry,
		Answered:  snap.Answered,
		Total:     snap.Total,
	})
}

// WriteSubmitted tells the page the test is over and where to go next.
func (s *SSEWriter) WriteSubmitted(message, redirect string, delayMilli int64) error {
	return s.WriteEvent("submitted", submittedEvent{
		Message:    message,
		Redirect:   redirect,
		DelayMilli: delayMilli,
	})
}

// WriteError sends an error event.
func (s *SSEWriter) WriteError(message string) {
	s.WriteEvent("error", map[string]string{"error": message}) //nolint:errcheck
}
