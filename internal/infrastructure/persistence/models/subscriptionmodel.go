package models

import (
	"time"
)

// SubscriptionModel is the database persistence model for the canonical
// per-user subscription record. One row per user, enforced by the unique
// index so reconciliation upserts can never fork the record.
type SubscriptionModel struct {
	ID     uint `gorm:"primarykey"`
	UserID uint `gorm:"not null;uniqueIndex:idx_subscription_user"`

	Plan     string `gorm:"size:20;not null;default:'starter'"`
	Status   string `gorm:"size:20;not null;default:'inactive'"`
	Platform string `gorm:"size:10"`

	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time `gorm:"index:idx_subscription_period_end"`
	CancelAtPeriodEnd  bool       `gorm:"not null;default:false"`

	StripeCustomerID         string `gorm:"size:64;index:idx_subscription_stripe_customer"`
	StripeSubscriptionID     string `gorm:"size:64;index:idx_subscription_stripe_sub"`
	IAPOriginalTransactionID string `gorm:"size:100;index:idx_subscription_iap_txn"`
	IAPProductID             string `gorm:"size:100"`
	IAPReceipt               string `gorm:"type:text"`

	Version   int `gorm:"not null;default:1"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (SubscriptionModel) TableName() string {
	return "subscriptions"
}
