// Package server serves the recruitment portal: the route tree, role guards,
// server-rendered pages and the timed test flow.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/testsession"
)

// ErrNotFound indicates a route parameter names a record that does not exist.
type ErrNotFound struct {
	What string
	ID   string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.What, e.ID)
}

// ErrValidation carries per-field form errors keyed by field name.
type ErrValidation struct {
	Fields map[string]string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation failed on %d field(s)", len(e.Fields))
}

// HTTPStatus maps an error to the status a page should be rendered with.
func HTTPStatus(err error) int {
	var (
		notFound *ErrNotFound
		invalid  *ErrValidation
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, httpclient.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, testsession.ErrAlreadySubmitted), errors.Is(err, testsession.ErrAlreadySubmitting):
		return http.StatusConflict
	case errors.Is(err, testsession.ErrNotStarted), errors.Is(err, testsession.ErrUnknownQuestion):
		return http.StatusBadRequest
	}

	switch code := httpclient.StatusCode(err); {
	case code == http.StatusNotFound:
		return http.StatusNotFound
	case code == http.StatusForbidden:
		return http.StatusForbidden
	case code >= 400 && code < 500:
		return http.StatusBadRequest
	}

	var ce *httpclient.Error
	if errors.As(err, &ce) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
