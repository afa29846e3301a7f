package subscription

import (
	"fmt"
	"time"
)

// Fact is a normalized, validated snapshot of subscription state from one
// external source (payment-provider fetch, webhook-triggered re-fetch, or
// receipt validation). It is the only input the reconciliation engine
// accepts; adapters never hand provider-specific response shapes downstream.
type Fact struct {
	// ExternalID is the provider subscription id (web/android) or the IAP
	// original transaction id (ios). Required.
	ExternalID string

	// CustomerID is the payment-provider customer id, used to resolve the
	// internal user when event metadata lacks one. Empty for IAP facts.
	CustomerID string

	// UserID is the internal user id when the source knew it; 0 otherwise.
	UserID uint

	Plan      Plan
	Status    Status
	ProductID string

	PeriodStart *time.Time
	PeriodEnd   *time.Time

	// CancelAtPeriodEnd is nil when the source does not report auto-renew
	// intent (IAP facts); a fresh active fact without it clears any prior
	// cancellation intent.
	CancelAtPeriodEnd *bool

	// Receipt carries the raw base64 receipt blob for ios facts so later
	// restores can re-validate without the client resending it.
	Receipt string

	// Amount and Currency are optional audit fields for the purchase log.
	Amount   int64
	Currency string
}

// Validate checks the fact is well-formed enough to reconcile.
func (f *Fact) Validate() error {
	if f.ExternalID == "" {
		return fmt.Errorf("fact external ID is required")
	}
	if !f.Plan.IsValid() {
		return fmt.Errorf("invalid fact plan: %s", f.Plan)
	}
	if !f.Status.IsValid() {
		return fmt.Errorf("invalid fact status: %s", f.Status)
	}
	if f.PeriodStart != nil && f.PeriodEnd != nil && f.PeriodEnd.Before(*f.PeriodStart) {
		return fmt.Errorf("fact period end must not precede period start")
	}
	return nil
}

// Equal reports whether two facts describe the same external state.
// Reconciliation is commutative for equal facts.
func (f *Fact) Equal(other *Fact) bool {
	if other == nil {
		return false
	}
	return f.ExternalID == other.ExternalID &&
		f.Plan == other.Plan &&
		f.Status == other.Status &&
		f.ProductID == other.ProductID &&
		timePtrEqual(f.PeriodStart, other.PeriodStart) &&
		timePtrEqual(f.PeriodEnd, other.PeriodEnd) &&
		boolPtrEqual(f.CancelAtPeriodEnd, other.CancelAtPeriodEnd)
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func boolPtrEqual(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
