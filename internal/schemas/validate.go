// Package schemas validates JSON documents (the config file and the CLI
// storage file) against embedded JSON Schemas.
package schemas

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// FieldError is one schema violation at a field path.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every violation found in a document, sorted by field.
type ValidationError struct {
	Schema string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s document is invalid:", ve.Schema)
	for _, fe := range ve.Errors {
		fmt.Fprintf(&sb, "\n  - %s: %s", fe.Field, fe.Message)
	}
	return sb.String()
}

// Fields returns the offending field paths.
func (ve *ValidationError) Fields() []string {
	out := make([]string, len(ve.Errors))
	for i, fe := range ve.Errors {
		out[i] = fe.Field
	}
	return out
}

// SchemaLoadError means the schema itself could not be compiled.
type SchemaLoadError struct {
	Schema string
	Cause  error
}

func (e *SchemaLoadError) Error() string {
	return fmt.Sprintf("failed to compile %s schema: %v", e.Schema, e.Cause)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// Schema is a named JSON Schema compiled on first use.
type Schema struct {
	name    string
	content string

	once     sync.Once
	compiled *gojsonschema.Schema
	err      error
}

// New returns a schema named name with the given JSON Schema source.
func New(name, content string) *Schema {
	return &Schema{name: name, content: content}
}

// Name returns the schema name used in error messages.
func (s *Schema) Name() string {
	return s.name
}

func (s *Schema) compile() (*gojsonschema.Schema, error) {
	s.once.Do(func() {
		s.compiled, s.err = gojsonschema.NewSchema(gojsonschema.NewStringLoader(s.content))
		if s.err != nil {
			s.err = &SchemaLoadError{Schema: s.name, Cause: s.err}
		}
	})
	return s.compiled, s.err
}

// Validate checks raw JSON bytes.
func (s *Schema) Validate(data []byte) error {
	return s.validate(gojsonschema.NewBytesLoader(data))
}

// ValidateValue checks an already decoded Go value.
func (s *Schema) ValidateValue(v any) error {
	return s.validate(gojsonschema.NewGoLoader(v))
}

func (s *Schema) validate(doc gojsonschema.JSONLoader) error {
	compiled, err := s.compile()
	if err != nil {
		return err
	}
	result, err := compiled.Validate(doc)
	if err != nil {
		return fmt.Errorf("%s document is not valid JSON: %w", s.name, err)
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Schema: s.name, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" || field == "(root)" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	sort.SliceStable(ve.Errors, func(i, j int) bool { return ve.Errors[i].Field < ve.Errors[j].Field })
	return ve
}
