package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/config"
	"github.com/stylora-app/stylora/internal/shared/errors"
)

func newTrialFixture(cfg *config.TrialConfig) (*GrantTrialUseCase, *fakeSubscriptionRepo, *fakeCache) {
	if cfg == nil {
		cfg = &config.TrialConfig{Enabled: true, Plan: "pro", Months: 3}
	}
	subRepo := newFakeSubscriptionRepo()
	cache := newFakeCache()
	uc := NewGrantTrialUseCase(subRepo, cache, cfg, noopLogger{})
	return uc, subRepo, cache
}

func TestGrantTrialUseCase_GrantsForNewUser(t *testing.T) {
	uc, subRepo, cache := newTrialFixture(nil)

	result, err := uc.Execute(context.Background(), GrantTrialCommand{UserID: 7})

	assert.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "pro", result.Plan)
	assert.Equal(t, "active", result.Status)

	sub := subRepo.subs[7]
	assert.NotNil(t, sub)
	assert.Equal(t, subscription.PlanPro, sub.Plan())
	assert.NotNil(t, sub.CurrentPeriodEnd())

	// Roughly three months out.
	expectedEnd := time.Now().UTC().AddDate(0, 3, 0)
	assert.WithinDuration(t, expectedEnd, *sub.CurrentPeriodEnd(), time.Minute)

	assert.Contains(t, cache.invalidated, uint(7))
}

func TestGrantTrialUseCase_ConflictsWithActivePaidPlan(t *testing.T) {
	uc, subRepo, _ := newTrialFixture(nil)
	subRepo.seedSubscription(7, subscription.PlatformWeb, activeProFact("sub_7"))

	result, err := uc.Execute(context.Background(), GrantTrialCommand{UserID: 7})

	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	assert.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeConflict, appErr.Type)
}

func TestGrantTrialUseCase_GrantsOverExpiredPaidPlan(t *testing.T) {
	uc, subRepo, _ := newTrialFixture(nil)
	subRepo.seedSubscription(7, subscription.PlatformWeb, expiredProFact("sub_7"))

	result, err := uc.Execute(context.Background(), GrantTrialCommand{UserID: 7})

	assert.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, subscription.StatusActive, subRepo.subs[7].Status())
}

func TestGrantTrialUseCase_Disabled(t *testing.T) {
	uc, _, _ := newTrialFixture(&config.TrialConfig{Enabled: false})

	result, err := uc.Execute(context.Background(), GrantTrialCommand{UserID: 7})

	assert.Nil(t, result)
	appErr := errors.GetAppError(err)
	assert.NotNil(t, appErr)
	assert.Equal(t, errors.ErrorTypeForbidden, appErr.Type)
}

func TestGrantTrialUseCase_DefaultsForSparseConfig(t *testing.T) {
	uc, subRepo, _ := newTrialFixture(&config.TrialConfig{Enabled: true})

	result, err := uc.Execute(context.Background(), GrantTrialCommand{UserID: 7})

	assert.NoError(t, err)
	assert.Equal(t, "pro", result.Plan)

	expectedEnd := time.Now().UTC().AddDate(0, 3, 0)
	assert.WithinDuration(t, expectedEnd, *subRepo.subs[7].CurrentPeriodEnd(), time.Minute)
}

func TestGrantTrialUseCase_ZeroUserID(t *testing.T) {
	uc, _, _ := newTrialFixture(nil)

	result, err := uc.Execute(context.Background(), GrantTrialCommand{})

	assert.Error(t, err)
	assert.Nil(t, result)
}
