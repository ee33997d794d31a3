package api

import (
	"github.com/okian/icexg/pkg/logger"
)

// Default server configuration constants.
const (
	defaultMaxBodyBytes = 4 << 20
	defaultCORSOrigin   = "*"
)

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps request body size.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithRateLimit configures the shared token bucket for prediction routes and
// the per-connection bucket for live streams. A non-positive rps disables
// limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		s.rateLimitRPS = rps
		s.rateLimitBurst = burst
	}
}

// WithCORSOrigin sets the Access-Control-Allow-Origin value.
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

// WithLogger sets a custom logger for the server.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
