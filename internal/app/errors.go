package service

import "errors"

// Sentinel errors returned by the Service.
var (
	// ErrBatchTooLarge is returned when a batch exceeds the configured maximum.
	ErrBatchTooLarge = errors.New("batch too large")
	// ErrNotStarted is returned when scoring is attempted before Start.
	ErrNotStarted = errors.New("service not started")
)
