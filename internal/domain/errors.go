package domain

import "errors"

var (
	// ErrInvalidInput signals a malformed document or question.
	ErrInvalidInput = errors.New("invalid input")
	// ErrStoreUnavailable signals the content store was used before Open or after Close.
	ErrStoreUnavailable = errors.New("content store unavailable")
	// ErrStoreIO signals an underlying store read/write failure.
	ErrStoreIO = errors.New("content store I/O failure")
	// ErrBackendUnavailable signals a generative backend failure or timeout.
	ErrBackendUnavailable = errors.New("generation backend unavailable")
)
