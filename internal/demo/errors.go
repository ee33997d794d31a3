package demo

import "errors"

// Sentinel errors returned by the demo runner.
var (
	ErrMismatch        = errors.New("server result does not match local engine")
	ErrInvalidScenario = errors.New("invalid scenario")
	ErrServer          = errors.New("server request failed")
)
