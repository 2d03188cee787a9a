package engine

import "log/slog"

// DefaultLookAhead is the number of trailing elements that, once the read
// position comes within them, triggers loading the next increment.
const DefaultLookAhead = 5

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	lookAhead int
	logger    *slog.Logger
	ids       IDGenerator
}

// WithLookAhead sets the look-ahead distance.
//
// Default: 5 (DefaultLookAhead). Zero loads only when the last element is
// read. Negative values make New fail with ErrNegativeLookAhead.
func WithLookAhead(n int) Option {
	return func(s *settings) {
		s.lookAhead = n
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator sets how the engine names itself. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *settings) {
		if g != nil {
			s.ids = g
		}
	}
}
