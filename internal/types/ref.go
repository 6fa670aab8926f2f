package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref is a reference to another record. Backends send either the bare id
// or the populated record; both decode into a Ref.
type Ref[T any] struct {
	ID    string
	Value *T
}

// RefTo builds an unpopulated reference.
func RefTo[T any](id string) Ref[T] {
	return Ref[T]{ID: id}
}

// Populated reports whether the referenced record was embedded.
func (r Ref[T]) Populated() bool {
	return r.Value != nil
}

func (r Ref[T]) String() string {
	return r.ID
}

func (r *Ref[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = Ref[T]{}
		return nil
	case data[0] == '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref[T]{ID: id}
		return nil
	case data[0] == '{':
		var ids IDs
		if err := json.Unmarshal(data, &ids); err != nil {
			return err
		}
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*r = Ref[T]{ID: ids.Key(), Value: &v}
		return nil
	default:
		return fmt.Errorf("types: reference must be a string or an object, got %s", data)
	}
}

func (r Ref[T]) MarshalJSON() ([]byte, error) {
	if r.Value != nil {
		return json.Marshal(r.Value)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}
