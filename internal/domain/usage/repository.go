package usage

import (
	"context"

	"github.com/stylora-app/stylora/internal/domain/subscription"
)

// Repository persists usage counters. Increment must be an atomic
// increment-or-create at the persistence layer (unique key + upsert with a
// column expression), never a read-then-write, so concurrent recordings for
// one user count exactly.
type Repository interface {
	// Increment adds one to the feature counter for (userID, month),
	// creating the row when absent.
	Increment(ctx context.Context, userID uint, month string, feature subscription.Feature) error

	// GetByUserMonth returns the counter row, or nil when the user has not
	// used anything that month.
	GetByUserMonth(ctx context.Context, userID uint, month string) (*Counter, error)

	// ResetMonth zeroes every counter whose month key equals month and
	// returns the number of rows affected.
	ResetMonth(ctx context.Context, month string) (int64, error)
}
