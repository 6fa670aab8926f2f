package server

import (
	"net/url"

	"github.com/jonathan/recruit-portal/internal/types"
)

// form carries submitted values and per-field errors back into a template.
type form struct {
	Values url.Values
	Errors map[string]string
	// Message is a form-level error, such as a rejected login.
	Message string
}

func newForm(values url.Values) *form {
	if values == nil {
		values = url.Values{}
	}
	return &form{Values: values, Errors: map[string]string{}}
}

// Get returns the submitted value of field.
func (f *form) Get(field string) string {
	return f.Values.Get(field)
}

// Err returns the error for field, or "".
func (f *form) Err(field string) string {
	return f.Errors[field]
}

// Invalid reports whether any field has an error.
func (f *form) Invalid() bool {
	return len(f.Errors) > 0 || f.Message != ""
}

type validatable interface {
	Validate() error
}

// check validates req and records field errors on f. It reports whether req is valid.
func (f *form) check(req validatable) bool {
	err := req.Validate()
	if err == nil {
		return true
	}
	if fields := types.FieldErrors(err); fields != nil {
		for k, v := range fields {
			f.Errors[k] = v
		}
	} else {
		f.Message = err.Error()
	}
	return false
}
