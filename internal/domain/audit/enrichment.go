// Package audit stamps documents with the acting user.
package audit

import (
	"context"

	"pharmabill/internal/core/security"
)

// EnrichCreatedBy sets both audit fields from the context user.
// No-op when the request is unauthenticated (seeders, CLI imports).
func EnrichCreatedBy(ctx context.Context, createdBy, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID != "" && createdBy != nil && updatedBy != nil {
		*createdBy = userID
		*updatedBy = userID
	}
}

// EnrichUpdatedBy sets only UpdatedBy from the context user.
func EnrichUpdatedBy(ctx context.Context, updatedBy *string) {
	userID := security.GetUserID(ctx)
	if userID != "" && updatedBy != nil {
		*updatedBy = userID
	}
}
