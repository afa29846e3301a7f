package models

import (
	"time"
)

// UsageCounterModel is the database persistence model for monthly metered
// feature usage. One row per user per UTC calendar month.
type UsageCounterModel struct {
	ID     uint   `gorm:"primarykey"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_usage_user_month"`
	Month  string `gorm:"size:7;not null;uniqueIndex:idx_usage_user_month;index:idx_usage_month"`

	AIGenerations int64 `gorm:"column:ai_generations;not null;default:0"`
	TryOnRenders  int64 `gorm:"not null;default:0"`
	WeeklyPlans   int64 `gorm:"not null;default:0"`

	LastResetAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName specifies the table name for GORM
func (UsageCounterModel) TableName() string {
	return "usage_counters"
}
