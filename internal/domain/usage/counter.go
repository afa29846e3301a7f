// Package usage tracks monthly per-user counters for each metered feature.
// Counters only move forward within a month; the only way down is the
// explicit bulk reset of an exact month key.
package usage

import (
	"fmt"
	"time"

	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/biztime"
)

// Counter is the usage record for one user and one UTC calendar month.
type Counter struct {
	id     uint
	userID uint
	month  string // "YYYY-MM" in UTC

	aiGenerations int64
	tryOnRenders  int64
	weeklyPlans   int64

	updatedAt time.Time
}

// NewCounter creates an empty counter for the given user and month.
func NewCounter(userID uint, month string) (*Counter, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if err := biztime.ValidateMonthKey(month); err != nil {
		return nil, err
	}

	return &Counter{
		userID:    userID,
		month:     month,
		updatedAt: time.Now().UTC(),
	}, nil
}

// ReconstructCounter reconstructs a counter from persistence.
func ReconstructCounter(
	id, userID uint,
	month string,
	aiGenerations, tryOnRenders, weeklyPlans int64,
	updatedAt time.Time,
) (*Counter, error) {
	if id == 0 {
		return nil, fmt.Errorf("counter ID cannot be zero")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if err := biztime.ValidateMonthKey(month); err != nil {
		return nil, err
	}

	return &Counter{
		id:            id,
		userID:        userID,
		month:         month,
		aiGenerations: aiGenerations,
		tryOnRenders:  tryOnRenders,
		weeklyPlans:   weeklyPlans,
		updatedAt:     updatedAt,
	}, nil
}

// ID returns the counter ID
func (c *Counter) ID() uint { return c.id }

// UserID returns the user ID
func (c *Counter) UserID() uint { return c.userID }

// Month returns the "YYYY-MM" month key
func (c *Counter) Month() string { return c.month }

// UpdatedAt returns when the counter was last written
func (c *Counter) UpdatedAt() time.Time { return c.updatedAt }

// Used returns the used count for one feature.
func (c *Counter) Used(feature subscription.Feature) int64 {
	switch feature {
	case subscription.FeatureAIGeneration:
		return c.aiGenerations
	case subscription.FeatureTryOn:
		return c.tryOnRenders
	case subscription.FeatureWeeklyPlan:
		return c.weeklyPlans
	}
	return 0
}

// SetID sets the counter ID (only for persistence layer use)
func (c *Counter) SetID(id uint) error {
	if c.id != 0 {
		return fmt.Errorf("counter ID is already set")
	}
	if id == 0 {
		return fmt.Errorf("counter ID cannot be zero")
	}
	c.id = id
	return nil
}
