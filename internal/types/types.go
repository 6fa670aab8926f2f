// Package types defines the backend-owned records the portal reads and the
// request payloads it sends. Lifecycle statuses are carried as-is; the portal
// never validates transitions.
package types

import (
	"strings"
	"time"
)

// Entity is implemented by every record that carries an identifier.
type Entity interface {
	Key() string
}

// IDs holds the two identifier spellings the backends use.
// Key prefers _id and falls back to id.
type IDs struct {
	ID    string `json:"_id,omitempty"`
	AltID string `json:"id,omitempty"`
}

// Key returns the record identifier.
func (i IDs) Key() string {
	if i.ID != "" {
		return i.ID
	}
	return i.AltID
}

// Humanize turns an enum value like "pending_approval" into "Pending approval".
func Humanize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseTime parses the timestamp formats the backends emit.
func ParseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func oneOf[T ~string](v T, known ...T) bool {
	for _, k := range known {
		if v == k {
			return true
		}
	}
	return false
}
