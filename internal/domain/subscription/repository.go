package subscription

import "context"

// Repository persists the canonical per-user subscription record.
// Upsert must be keyed by userID at the persistence layer (unique
// constraint + upsert, not read-then-write) so concurrent reconcilers
// cannot create two rows for one user.
type Repository interface {
	// GetByUserID returns the stored record, or nil when the user has none.
	GetByUserID(ctx context.Context, userID uint) (*Subscription, error)

	// GetOrDefaultStarter returns the stored record or a synthesized
	// starter default when no row exists. The default is not persisted.
	GetOrDefaultStarter(ctx context.Context, userID uint) (*Subscription, error)

	// GetByStripeCustomerID resolves a record via the payment-provider
	// customer id, or nil when no record matches.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*Subscription, error)

	// Upsert writes the full record, creating or replacing on the userID
	// natural key.
	Upsert(ctx context.Context, sub *Subscription) error
}
