// Package purchase holds the append-only audit trail of every external
// subscription fact observed from any source. The subscription record is the
// current state; purchases are the history it was derived from.
package purchase

import (
	"fmt"
	"time"

	"github.com/stylora-app/stylora/internal/domain/subscription"
)

// Purchase is one observed external purchase, keyed by
// (userID, platform, externalID). Replaying the same external event updates
// the existing row; it never creates a duplicate and rows are never deleted.
type Purchase struct {
	id         uint
	userID     uint
	platform   subscription.Platform
	externalID string

	plan      subscription.Plan
	status    subscription.Status
	productID string

	periodStart *time.Time
	periodEnd   *time.Time

	amount   int64
	currency string
	metadata map[string]any

	createdAt time.Time
	updatedAt time.Time
}

// NewFromFact creates a purchase audit record from a validated fact.
func NewFromFact(userID uint, platform subscription.Platform, fact *subscription.Fact) (*Purchase, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !platform.IsValid() {
		return nil, fmt.Errorf("invalid platform: %s", platform)
	}
	if err := fact.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Purchase{
		userID:      userID,
		platform:    platform,
		externalID:  fact.ExternalID,
		plan:        fact.Plan,
		status:      fact.Status,
		productID:   fact.ProductID,
		periodStart: fact.PeriodStart,
		periodEnd:   fact.PeriodEnd,
		amount:      fact.Amount,
		currency:    fact.Currency,
		metadata:    make(map[string]any),
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// ReconstructPurchase reconstructs a purchase from persistence.
func ReconstructPurchase(
	id, userID uint,
	platform subscription.Platform,
	externalID string,
	plan subscription.Plan,
	status subscription.Status,
	productID string,
	periodStart, periodEnd *time.Time,
	amount int64,
	currency string,
	metadata map[string]any,
	createdAt, updatedAt time.Time,
) (*Purchase, error) {
	if id == 0 {
		return nil, fmt.Errorf("purchase ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if externalID == "" {
		return nil, fmt.Errorf("external ID is required")
	}

	if metadata == nil {
		metadata = make(map[string]any)
	}

	return &Purchase{
		id:          id,
		userID:      userID,
		platform:    platform,
		externalID:  externalID,
		plan:        plan,
		status:      status,
		productID:   productID,
		periodStart: periodStart,
		periodEnd:   periodEnd,
		amount:      amount,
		currency:    currency,
		metadata:    metadata,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

// ID returns the purchase ID
func (p *Purchase) ID() uint { return p.id }

// UserID returns the user ID
func (p *Purchase) UserID() uint { return p.userID }

// Platform returns the source platform
func (p *Purchase) Platform() subscription.Platform { return p.platform }

// ExternalID returns the provider subscription id or IAP original transaction id
func (p *Purchase) ExternalID() string { return p.externalID }

// Plan returns the plan observed at the time of the last observation
func (p *Purchase) Plan() subscription.Plan { return p.plan }

// Status returns the status observed at the time of the last observation
func (p *Purchase) Status() subscription.Status { return p.status }

// ProductID returns the external product/price id
func (p *Purchase) ProductID() string { return p.productID }

// PeriodStart returns the observed period start
func (p *Purchase) PeriodStart() *time.Time { return p.periodStart }

// PeriodEnd returns the observed period end
func (p *Purchase) PeriodEnd() *time.Time { return p.periodEnd }

// Amount returns the observed amount in minor units
func (p *Purchase) Amount() int64 { return p.amount }

// Currency returns the observed currency code
func (p *Purchase) Currency() string { return p.currency }

// Metadata returns the purchase metadata
func (p *Purchase) Metadata() map[string]any { return p.metadata }

// CreatedAt returns when the purchase was first observed
func (p *Purchase) CreatedAt() time.Time { return p.createdAt }

// UpdatedAt returns when the purchase was last observed
func (p *Purchase) UpdatedAt() time.Time { return p.updatedAt }

// SetID sets the purchase ID (only for persistence layer use)
func (p *Purchase) SetID(id uint) error {
	if p.id != 0 {
		return fmt.Errorf("purchase ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("purchase ID cannot be zero")
	}
	p.id = id
	return nil
}

// SetMetadata sets a metadata value
func (p *Purchase) SetMetadata(key string, value any) {
	if p.metadata == nil {
		p.metadata = make(map[string]any)
	}
	p.metadata[key] = value
	p.updatedAt = time.Now().UTC()
}
