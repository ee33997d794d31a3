// Package worker runs shot scoring on a fixed pool of goroutines.
package worker

import (
	"github.com/okian/icexg/pkg/logger"
)

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithLogger sets a custom logger for the pool and its workers.
func WithLogger(l logger.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithInlineThreshold sets the batch size at or below which shots are scored
// on the calling goroutine. Zero sends every batch through the workers.
func WithInlineThreshold(n int) Option {
	return func(p *Pool) {
		if n >= 0 {
			p.inlineThreshold = n
		}
	}
}
