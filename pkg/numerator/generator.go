package numerator

import (
	"context"
	"time"
)

// Generator generates sequential document and item numbers.
// Domain services depend on this contract; Service is the PostgreSQL
// implementation, MockGenerator serves unit tests.
type Generator interface {
	// GetNextNumber generates the next number.
	// Pattern: PREFIX-YEAR-XXXXX (e.g., SI-2026-00001)
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// SetNextNumber sets the next number value (for migration purposes).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// Ensure compile-time interface compliance.
var _ Generator = (*Service)(nil)
