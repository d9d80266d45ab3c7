// Package optional distinguishes "field not supplied" from "field supplied"
// in partial-update requests, including an explicit JSON null.
package optional

import "encoding/json"

// Field holds a value that may or may not have been supplied.
type Field[T any] struct {
	Set   bool
	Value T
}

// Of returns a supplied Field holding v.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Get returns the value and whether it was supplied.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set
}

// Or returns the value when supplied, fallback otherwise.
func (f Field[T]) Or(fallback T) T {
	if f.Set {
		return f.Value
	}
	return fallback
}

// UnmarshalJSON marks the field as supplied. encoding/json only calls it when
// the key is present, so an explicit null yields Set with the zero Value.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		var zero T
		f.Value = zero
		return nil
	}
	return json.Unmarshal(data, &f.Value)
}

// MarshalJSON writes the value, or null when not supplied.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
