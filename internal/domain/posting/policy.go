package posting

import (
	"context"
	"time"

	"pharmabill/internal/core/apperror"
)

// Policy defines rules for document posting into closed periods.
type Policy interface {
	// CanPost checks if a document can be posted with the given date
	CanPost(ctx context.Context, docDate time.Time) error

	// CanUnpost checks if a posted document can be unposted
	CanUnpost(ctx context.Context, docDate time.Time) error

	// GetClosedPeriod returns the date until which the period is closed
	GetClosedPeriod(ctx context.Context) time.Time
}

// StrictPolicy forbids any changes to a closed period.
// Used once GST returns for the period have been filed.
type StrictPolicy struct {
	closedUntil time.Time
}

// NewStrictPolicy creates a policy that forbids changes before closedUntil.
func NewStrictPolicy(closedUntil time.Time) *StrictPolicy {
	return &StrictPolicy{closedUntil: closedUntil}
}

func (p *StrictPolicy) CanPost(ctx context.Context, docDate time.Time) error {
	if docDate.Before(p.closedUntil) {
		return apperror.NewPeriodClosed(p.closedUntil.Format("2006-01"))
	}
	return nil
}

func (p *StrictPolicy) CanUnpost(ctx context.Context, docDate time.Time) error {
	return p.CanPost(ctx, docDate)
}

func (p *StrictPolicy) GetClosedPeriod(ctx context.Context) time.Time {
	return p.closedUntil
}

// OpenPolicy allows all operations. Suitable for a single-store setup
// before any filing has happened, and for tests.
type OpenPolicy struct{}

func (OpenPolicy) CanPost(ctx context.Context, docDate time.Time) error   { return nil }
func (OpenPolicy) CanUnpost(ctx context.Context, docDate time.Time) error { return nil }
func (OpenPolicy) GetClosedPeriod(ctx context.Context) time.Time          { return time.Time{} }
