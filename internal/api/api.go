// Package api exposes one method per backend operation. Each method issues
// exactly one HTTP call and returns the parsed body; retries, caching and
// validation are left to callers.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/jonathan/recruit-portal/internal/httpclient"
	"github.com/jonathan/recruit-portal/internal/storage"
)

// Client groups the resource modules.
type Client struct {
	JDs         *JDs
	Resumes     *Resumes
	Assessments *Assessments
	Interviews  *Interviews
	Offers      *Offers
	Auth        *Auth
}

// New wires every resource module. main serves the business resources and
// auth serves login, registration and token validation.
func New(main, auth *httpclient.Client, tokens *storage.TokenStore) *Client {
	return &Client{
		JDs:         &JDs{c: main},
		Resumes:     &Resumes{c: main},
		Assessments: &Assessments{c: main},
		Interviews:  &Interviews{c: main},
		Offers:      &Offers{c: main},
		Auth:        &Auth{c: auth, tokens: tokens},
	}
}

// unwrapField decodes body[field] into T when body is an object carrying a
// non-null field, otherwise decodes the whole body. Backends are inconsistent
// about wrapping lists in envelopes.
func unwrapField[T any](body json.RawMessage, field string) (T, error) {
	var out T
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return out, nil
	}

	if trimmed[0] == '{' {
		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &envelope); err == nil {
			if inner, ok := envelope[field]; ok && !bytes.Equal(bytes.TrimSpace(inner), []byte("null")) {
				if err := json.Unmarshal(inner, &out); err != nil {
					return out, fmt.Errorf("failed to decode %q: %w", field, err)
				}
				return out, nil
			}
		}
	}

	if err := json.Unmarshal(trimmed, &out); err != nil {
		return out, fmt.Errorf("failed to decode response: %w", err)
	}
	return out, nil
}

func seg(id string) string {
	return "/" + url.PathEscape(id)
}
