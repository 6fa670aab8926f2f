package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrUnauthorized matches any error produced by a 401 response, after the
// global unauthorized handling has cleared the session.
var ErrUnauthorized = errors.New("unauthorized")

// Kind classifies a failed call.
type Kind int

const (
	// KindTransport means no usable HTTP response was received.
	KindTransport Kind = iota
	// KindBackend means the backend answered with a non-2xx status.
	KindBackend
	// KindDecode means a 2xx body could not be parsed.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindBackend:
		return "backend"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// Error is returned for every failed call.
type Error struct {
	Kind    Kind
	Client  string
	Method  string
	Path    string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s %s", e.Client, e.Method, e.Path)
	if e.Status != 0 {
		fmt.Fprintf(&sb, ": %d", e.Status)
	}
	if e.Message != "" {
		fmt.Fprintf(&sb, ": %s", e.Message)
	}
	if e.Cause != nil {
		fmt.Fprintf(&sb, ": %v", e.Cause)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is lets errors.Is(err, ErrUnauthorized) match 401 responses.
func (e *Error) Is(target error) bool {
	return target == ErrUnauthorized && e.Status == http.StatusUnauthorized
}

// UserMessage returns the backend-provided message carried by err, or fallback.
func UserMessage(err error, fallback string) string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindBackend && e.Message != "" {
		return e.Message
	}
	return fallback
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Status
	}
	return 0
}

// backendMessage extracts "message" or "error" from a JSON error body.
func backendMessage(body []byte) string {
	var payload struct {
		Message any `json:"message"`
		Error   any `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, v := range []any{payload.Message, payload.Error} {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}
