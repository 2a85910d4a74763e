package models

import (
	"bytes"
	"encoding/json"
)

// Nullable distinguishes an omitted JSON key from an explicit null.
//
//	{}                 -> Set=false
//	{"field": null}    -> Set=true, Value=nil
//	{"field": "x"}     -> Set=true, Value=&"x"
type Nullable[T any] struct {
	Set   bool
	Value *T
}

func NewNullable[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Set || n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
