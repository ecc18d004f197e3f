package models

import (
	"bytes"
	"encoding/json"
)

// Nullable is a patch value that tells "absent" apart from "explicit null".
// Set is true when the field was supplied at all; Valid is false when it was
// supplied as null.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// UnmarshalJSON is only called for keys present in the payload, which is
// what makes Set meaningful.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
