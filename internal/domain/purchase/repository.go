package purchase

import (
	"context"

	"github.com/stylora-app/stylora/internal/domain/subscription"
)

// Repository persists the purchase audit trail. Upsert must be idempotent on
// the (userID, platform, externalID) natural key at the persistence layer so
// webhook redeliveries and concurrent sync calls never produce two rows.
type Repository interface {
	// Upsert creates the row on first sight and updates its mutable fields
	// (status, period, amount, metadata) on every later sight.
	Upsert(ctx context.Context, p *Purchase) error

	// GetByNaturalKey returns the row for the natural key, or nil.
	GetByNaturalKey(ctx context.Context, userID uint, platform subscription.Platform, externalID string) (*Purchase, error)

	// ListByUserID returns a user's full purchase history, newest first.
	ListByUserID(ctx context.Context, userID uint) ([]*Purchase, error)
}
