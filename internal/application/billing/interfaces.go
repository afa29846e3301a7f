// Package billing defines the outbound ports the billing use cases depend
// on. Infrastructure adapters implement them; use cases never see a
// provider-specific response shape.
package billing

import (
	"context"

	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/subscription"
)

// CheckoutSession is a hosted payment page created for a user.
type CheckoutSession struct {
	ID  string
	URL string
}

// WebhookEvent is a signature-verified provider event. Only the identifiers
// are carried; the current truth is always re-fetched from the provider.
type WebhookEvent struct {
	Type           string
	SubscriptionID string
	CustomerID     string
	// UserID is the internal user id recovered from checkout metadata, 0
	// when the event did not carry one.
	UserID uint
}

// PaymentGateway is the card-payment provider port (web and android
// purchases).
type PaymentGateway interface {
	// EnsureCustomer returns the provider customer id for the user, creating
	// one when none exists yet.
	EnsureCustomer(ctx context.Context, userID uint, existingCustomerID string) (string, error)

	// CreateCheckoutSession opens a hosted subscription checkout for the
	// given price.
	CreateCheckoutSession(ctx context.Context, userID uint, customerID, priceID string) (*CheckoutSession, error)

	// RetrieveCheckoutSession fetches a completed checkout and returns the
	// subscription fact behind it, or nil when the session has no
	// subscription yet.
	RetrieveCheckoutSession(ctx context.Context, sessionID string) (*subscription.Fact, error)

	// RetrieveSubscription fetches the provider's current view of a
	// subscription as a fact.
	RetrieveSubscription(ctx context.Context, subscriptionID string) (*subscription.Fact, error)

	// SetCancelAtPeriodEnd flips auto-renewal at the provider and returns
	// the resulting fact.
	SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*subscription.Fact, error)

	// VerifyWebhookSignature authenticates a raw webhook payload and
	// extracts the event identifiers.
	VerifyWebhookSignature(payload []byte, signature string) (*WebhookEvent, error)
}

// ReceiptVerifier is the mobile in-app purchase port (ios purchases).
type ReceiptVerifier interface {
	// VerifyReceipt validates a raw base64 receipt with the store and
	// returns the best subscription fact it contains, or nil when the
	// receipt holds no relevant transaction.
	VerifyReceipt(ctx context.Context, receiptData string) (*subscription.Fact, error)
}

// EntitlementCache is an optional read-through cache for status snapshots.
// Implementations must be safe to call when the backing store is down;
// callers treat every error as a miss.
type EntitlementCache interface {
	GetStatus(ctx context.Context, userID uint) (*dto.SubscriptionStatus, error)
	SetStatus(ctx context.Context, userID uint, status *dto.SubscriptionStatus) error
	Invalidate(ctx context.Context, userID uint) error
}
