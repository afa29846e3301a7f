// Package dto defines the data transfer objects exchanged between the
// billing use cases and the interface layer.
package dto

import "time"

// FeatureUsage reports one metered feature's quota position for the current
// month. Remaining is a large sentinel for unlimited features.
type FeatureUsage struct {
	Limit     int64 `json:"limit"`
	Used      int64 `json:"used"`
	Remaining int64 `json:"remaining"`
	Unlimited bool  `json:"unlimited"`
}

// SubscriptionStatus is the full entitlement snapshot returned to clients.
type SubscriptionStatus struct {
	Plan               string                  `json:"plan"`
	Status             string                  `json:"status"`
	Platform           string                  `json:"platform,omitempty"`
	CurrentPeriodStart *time.Time              `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time              `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool                    `json:"cancel_at_period_end"`
	Month              string                  `json:"month"`
	Features           map[string]FeatureUsage `json:"features"`
}

// CheckoutResult carries the hosted checkout redirect back to the client.
type CheckoutResult struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// AuthorizeResult is the entitlement guard's decision for one request.
type AuthorizeResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Feature string `json:"feature,omitempty"`
}

// Denial reasons reported by the entitlement guard.
const (
	DenySubscriptionRequired = "subscription_required"
	DenyLimitReached         = "limit_reached"
)

// UsageResult reports the counter position after a recording.
type UsageResult struct {
	Feature   string `json:"feature"`
	Month     string `json:"month"`
	Used      int64  `json:"used"`
	Limit     int64  `json:"limit"`
	Remaining int64  `json:"remaining"`
}

// ReconcileResult summarizes what a reconciliation pass did.
type ReconcileResult struct {
	UserID  uint   `json:"user_id"`
	Plan    string `json:"plan"`
	Status  string `json:"status"`
	Applied bool   `json:"applied"`
}

// PurchaseRecord is one row of a user's purchase history.
type PurchaseRecord struct {
	Platform    string     `json:"platform"`
	ExternalID  string     `json:"external_id"`
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	ProductID   string     `json:"product_id,omitempty"`
	PeriodStart *time.Time `json:"period_start,omitempty"`
	PeriodEnd   *time.Time `json:"period_end,omitempty"`
	Amount      int64      `json:"amount,omitempty"`
	Currency    string     `json:"currency,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
