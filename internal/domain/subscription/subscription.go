package subscription

import (
	"fmt"
	"time"
)

// Subscription is the canonical per-user subscription record. It is the
// merge target for every external source (payment-provider webhooks, client
// sync calls, receipt validation, restores) and the single row the
// entitlement guard reads.
type Subscription struct {
	id     uint
	userID uint

	plan     Plan
	status   Status
	platform Platform

	currentPeriodStart *time.Time
	currentPeriodEnd   *time.Time
	cancelAtPeriodEnd  bool

	stripeCustomerID         string
	stripeSubscriptionID     string
	iapOriginalTransactionID string
	iapProductID             string
	iapReceipt               string

	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewSubscription creates a subscription for a user with the implicit
// starter defaults. A row is only persisted once something meaningful
// happens (trial grant or purchase); before that callers use
// NewStarterDefault.
func NewSubscription(userID uint) (*Subscription, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}

	now := time.Now().UTC()
	return &Subscription{
		userID:    userID,
		plan:      PlanStarter,
		status:    StatusActive,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// NewStarterDefault synthesizes the implicit starter record for a user with
// no stored row. It carries id 0 and must not be persisted as-is.
func NewStarterDefault(userID uint) *Subscription {
	now := time.Now().UTC()
	return &Subscription{
		userID:    userID,
		plan:      PlanStarter,
		status:    StatusActive,
		createdAt: now,
		updatedAt: now,
	}
}

// ReconstructSubscription reconstructs a subscription from persistence.
func ReconstructSubscription(
	id, userID uint,
	plan Plan,
	status Status,
	platform Platform,
	currentPeriodStart, currentPeriodEnd *time.Time,
	cancelAtPeriodEnd bool,
	stripeCustomerID, stripeSubscriptionID string,
	iapOriginalTransactionID, iapProductID, iapReceipt string,
	version int,
	createdAt, updatedAt time.Time,
) (*Subscription, error) {
	if id == 0 {
		return nil, fmt.Errorf("subscription ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if !plan.IsValid() {
		return nil, fmt.Errorf("invalid plan: %s", plan)
	}
	if !ValidStatuses[status] {
		return nil, fmt.Errorf("invalid subscription status: %s", status)
	}

	return &Subscription{
		id:                       id,
		userID:                   userID,
		plan:                     plan,
		status:                   status,
		platform:                 platform,
		currentPeriodStart:       currentPeriodStart,
		currentPeriodEnd:         currentPeriodEnd,
		cancelAtPeriodEnd:        cancelAtPeriodEnd,
		stripeCustomerID:         stripeCustomerID,
		stripeSubscriptionID:     stripeSubscriptionID,
		iapOriginalTransactionID: iapOriginalTransactionID,
		iapProductID:             iapProductID,
		iapReceipt:               iapReceipt,
		version:                  version,
		createdAt:                createdAt,
		updatedAt:                updatedAt,
	}, nil
}

// ID returns the subscription ID
func (s *Subscription) ID() uint { return s.id }

// UserID returns the user ID
func (s *Subscription) UserID() uint { return s.userID }

// Plan returns the current plan
func (s *Subscription) Plan() Plan { return s.plan }

// Status returns the subscription status
func (s *Subscription) Status() Status { return s.status }

// Platform returns which source last wrote this record
func (s *Subscription) Platform() Platform { return s.platform }

// CurrentPeriodStart returns the current period start
func (s *Subscription) CurrentPeriodStart() *time.Time { return s.currentPeriodStart }

// CurrentPeriodEnd returns the authoritative access boundary
func (s *Subscription) CurrentPeriodEnd() *time.Time { return s.currentPeriodEnd }

// CancelAtPeriodEnd reports whether the subscription will not renew
func (s *Subscription) CancelAtPeriodEnd() bool { return s.cancelAtPeriodEnd }

// StripeCustomerID returns the payment-provider customer id
func (s *Subscription) StripeCustomerID() string { return s.stripeCustomerID }

// StripeSubscriptionID returns the payment-provider subscription id
func (s *Subscription) StripeSubscriptionID() string { return s.stripeSubscriptionID }

// IAPOriginalTransactionID returns the mobile-ledger original transaction id
func (s *Subscription) IAPOriginalTransactionID() string { return s.iapOriginalTransactionID }

// IAPProductID returns the mobile-ledger product id
func (s *Subscription) IAPProductID() string { return s.iapProductID }

// IAPReceipt returns the stored raw receipt blob
func (s *Subscription) IAPReceipt() string { return s.iapReceipt }

// Version returns the aggregate version
func (s *Subscription) Version() int { return s.version }

// CreatedAt returns when the subscription was created
func (s *Subscription) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns when the subscription was last updated
func (s *Subscription) UpdatedAt() time.Time { return s.updatedAt }

// SetID sets the subscription ID (only for persistence layer use)
func (s *Subscription) SetID(id uint) error {
	if s.id != 0 {
		return fmt.Errorf("subscription ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("subscription ID cannot be zero")
	}
	s.id = id
	return nil
}

// SetStripeCustomerID records the payment-provider customer id (set when a
// checkout customer is created before any subscription exists).
func (s *Subscription) SetStripeCustomerID(customerID string) {
	if s.stripeCustomerID == customerID {
		return
	}
	s.stripeCustomerID = customerID
	s.touch()
}

// ApplyFact replaces the subscription state with a validated external fact.
// This is a full replace of plan/status/period, never a partial field merge:
// concurrent writers racing on the same row each write a complete snapshot
// and the last one wins.
func (s *Subscription) ApplyFact(platform Platform, fact *Fact) error {
	if !platform.IsValid() {
		return fmt.Errorf("invalid platform: %s", platform)
	}
	if err := fact.Validate(); err != nil {
		return err
	}

	s.plan = fact.Plan
	s.status = fact.Status
	s.platform = platform
	s.currentPeriodStart = fact.PeriodStart
	s.currentPeriodEnd = fact.PeriodEnd

	switch {
	case fact.CancelAtPeriodEnd != nil:
		s.cancelAtPeriodEnd = *fact.CancelAtPeriodEnd
	case fact.Status == StatusActive:
		// A fresh active purchase observation clears prior cancellation intent.
		s.cancelAtPeriodEnd = false
	}

	if platform == PlatformIOS {
		s.iapOriginalTransactionID = fact.ExternalID
		s.iapProductID = fact.ProductID
		if fact.Receipt != "" {
			s.iapReceipt = fact.Receipt
		}
	} else {
		s.stripeSubscriptionID = fact.ExternalID
		if fact.CustomerID != "" {
			s.stripeCustomerID = fact.CustomerID
		}
	}

	s.touch()
	return nil
}

// RefreshStatus applies lazy expiration correction: an active record whose
// period end has passed is corrected to expired before it is used for any
// decision. Returns true when the status changed so callers can write the
// correction back.
func (s *Subscription) RefreshStatus(now time.Time) bool {
	if s.status != StatusActive {
		return false
	}
	if s.plan == PlanStarter {
		// The implicit starter plan has no period boundary.
		return false
	}
	if s.currentPeriodEnd == nil || !now.After(*s.currentPeriodEnd) {
		return false
	}

	s.status = StatusExpired
	s.touch()
	return true
}

// SetCancelAtPeriodEnd updates the local auto-renew flag. Callers must have
// already toggled the flag at the payment provider; the local write never
// happens first.
func (s *Subscription) SetCancelAtPeriodEnd(cancel bool) {
	if s.cancelAtPeriodEnd == cancel {
		return
	}
	s.cancelAtPeriodEnd = cancel
	s.touch()
}

// GrantTrial puts the subscription on a local trial grant.
func (s *Subscription) GrantTrial(plan Plan, start, end time.Time) error {
	if !plan.IsValid() {
		return fmt.Errorf("invalid trial plan: %s", plan)
	}
	if end.Before(start) {
		return fmt.Errorf("trial end must be after trial start")
	}
	if s.status == StatusActive && s.plan != PlanStarter {
		return fmt.Errorf("cannot grant trial over an active %s subscription", s.plan)
	}

	s.plan = plan
	s.status = StatusActive
	s.currentPeriodStart = &start
	s.currentPeriodEnd = &end
	s.cancelAtPeriodEnd = false
	s.touch()
	return nil
}

// IsActive reports whether the subscription grants access right now.
func (s *Subscription) IsActive(now time.Time) bool {
	if s.status != StatusActive {
		return false
	}
	if s.plan == PlanStarter {
		return true
	}
	return s.currentPeriodEnd == nil || now.Before(*s.currentPeriodEnd)
}

func (s *Subscription) touch() {
	s.updatedAt = time.Now().UTC()
	s.version++
}
