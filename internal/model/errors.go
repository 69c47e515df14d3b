package model

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrDimensionMismatch  = errors.New("embedding dimension mismatch")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrStreamInterrupted  = errors.New("stream interrupted")
)
