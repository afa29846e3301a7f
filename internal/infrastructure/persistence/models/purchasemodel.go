package models

import (
	"time"

	"gorm.io/datatypes"
)

// PurchaseModel is the database persistence model for the append-only
// purchase audit trail. The composite unique index is the natural key that
// makes webhook replays and racing sync calls idempotent at the store.
type PurchaseModel struct {
	ID         uint   `gorm:"primarykey"`
	UserID     uint   `gorm:"not null;uniqueIndex:idx_purchase_natural"`
	Platform   string `gorm:"size:10;not null;uniqueIndex:idx_purchase_natural"`
	ExternalID string `gorm:"size:100;not null;uniqueIndex:idx_purchase_natural"`

	Plan      string `gorm:"size:20;not null"`
	Status    string `gorm:"size:20;not null"`
	ProductID string `gorm:"size:100"`

	PeriodStart *time.Time
	PeriodEnd   *time.Time

	Amount   int64
	Currency string         `gorm:"size:3"`
	Metadata datatypes.JSON `gorm:"type:json"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for GORM
func (PurchaseModel) TableName() string {
	return "purchases"
}
