package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInput signals a missing or invalid field at the request boundary.
	ErrInput = errors.New("invalid input")
	// ErrProviderUnavailable signals an embedding or model provider failure.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrMalformedVector signals non-numeric data inside an embedding.
	ErrMalformedVector = errors.New("malformed vector")
)

// MalformedVectorError pinpoints the element that broke the provider's vector contract.
type MalformedVectorError struct {
	Index int
	Value any
}

func (e *MalformedVectorError) Error() string {
	return fmt.Sprintf("%s: element %d is %T, want number", ErrMalformedVector.Error(), e.Index, e.Value)
}

func (e *MalformedVectorError) Unwrap() error { return ErrMalformedVector }

// NewMalformedVector creates a malformed vector error for the element at index.
func NewMalformedVector(index int, value any) error {
	return &MalformedVectorError{Index: index, Value: value}
}
