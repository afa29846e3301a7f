package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/biztime"
)

func newAuthorizeFixture() (*AuthorizeFeatureUseCase, *fakeSubscriptionRepo, *fakeUsageRepo) {
	subRepo := newFakeSubscriptionRepo()
	usageRepo := newFakeUsageRepo()
	catalog := subscription.NewPlanCatalog(nil)
	uc := NewAuthorizeFeatureUseCase(subRepo, usageRepo, catalog, noopLogger{})
	return uc, subRepo, usageRepo
}

func activeProFact(externalID string) *subscription.Fact {
	end := time.Now().UTC().AddDate(0, 1, 0)
	return &subscription.Fact{
		ExternalID: externalID,
		Plan:       subscription.PlanPro,
		Status:     subscription.StatusActive,
		ProductID:  "price_stylora_pro_monthly",
		PeriodEnd:  &end,
	}
}

func expiredProFact(externalID string) *subscription.Fact {
	end := time.Now().UTC().AddDate(0, -1, 0)
	return &subscription.Fact{
		ExternalID: externalID,
		Plan:       subscription.PlanPro,
		Status:     subscription.StatusActive,
		ProductID:  "price_stylora_pro_monthly",
		PeriodEnd:  &end,
	}
}

func TestAuthorizeFeatureUseCase_StarterWithinQuota(t *testing.T) {
	uc, _, _ := newAuthorizeFixture()

	result, err := uc.Execute(context.Background(), AuthorizeFeatureCommand{
		UserID:   1,
		Features: []subscription.Feature{subscription.FeatureAIGeneration},
	})

	assert.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Empty(t, result.Reason)
}

func TestAuthorizeFeatureUseCase_StarterLimitReached(t *testing.T) {
	uc, _, usageRepo := newAuthorizeFixture()
	usageRepo.setUsed(1, biztime.CurrentMonthKey(), subscription.FeatureAIGeneration, 3)

	result, err := uc.Execute(context.Background(), AuthorizeFeatureCommand{
		UserID:   1,
		Features: []subscription.Feature{subscription.FeatureAIGeneration},
	})

	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, dto.DenyLimitReached, result.Reason)
	assert.Equal(t, subscription.FeatureAIGeneration.String(), result.Feature)
}

func TestAuthorizeFeatureUseCase_ProUnlimitedIgnoresUsage(t *testing.T) {
	uc, subRepo, usageRepo := newAuthorizeFixture()
	subRepo.seedSubscription(1, subscription.PlatformWeb, activeProFact("sub_1"))
	usageRepo.setUsed(1, biztime.CurrentMonthKey(), subscription.FeatureAIGeneration, 5000)

	result, err := uc.Execute(context.Background(), AuthorizeFeatureCommand{
		UserID:   1,
		Features: []subscription.Feature{subscription.FeatureAIGeneration},
	})

	assert.NoError(t, err)
	assert.True(t, result.Allowed)
}

func TestAuthorizeFeatureUseCase_MultiFeatureAllOrNothing(t *testing.T) {
	uc, subRepo, usageRepo := newAuthorizeFixture()
	subRepo.seedSubscription(1, subscription.PlatformWeb, activeProFact("sub_1"))
	// AI generation is unlimited on pro, but try-on is exhausted; the
	// combined request must fail as a whole.
	usageRepo.setUsed(1, biztime.CurrentMonthKey(), subscription.FeatureTryOn, 30)

	result, err := uc.Execute(context.Background(), AuthorizeFeatureCommand{
		UserID: 1,
		Features: []subscription.Feature{
			subscription.FeatureAIGeneration,
			subscription.FeatureTryOn,
		},
	})

	assert.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, dto.DenyLimitReached, result.Reason)
	assert.Equal(t, subscription.FeatureTryOn.String(), result.Feature)
}

func TestAuthorizeFeatureUseCase_InactiveSubscriptionDenied(t *testing.T) {
	cancelled := func(externalID string) *subscription.Fact {
		fact := activeProFact(externalID)
		fact.Status = subscription.StatusCancelled
		return fact
	}

	tests := []struct {
		name string
		fact *subscription.Fact
	}{
		// A stale active record whose period ran out a month ago.
		{"lapsed period", expiredProFact("sub_1")},
		{"cancelled", cancelled("sub_1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, subRepo, _ := newAuthorizeFixture()
			subRepo.seedSubscription(1, subscription.PlatformWeb, tt.fact)

			result, err := uc.Execute(context.Background(), AuthorizeFeatureCommand{
				UserID:   1,
				Features: []subscription.Feature{subscription.FeatureAIGeneration},
			})

			assert.NoError(t, err)
			assert.False(t, result.Allowed, "an inactive record must not grant access")
			assert.Equal(t, dto.DenySubscriptionRequired, result.Reason)
			// Authorization stays a pure read even when it corrects status.
			assert.Empty(t, subRepo.upsertsFor)
		})
	}
}

func TestAuthorizeFeatureUseCase_NoSideEffects(t *testing.T) {
	uc, subRepo, usageRepo := newAuthorizeFixture()

	_, err := uc.Execute(context.Background(), AuthorizeFeatureCommand{
		UserID:   1,
		Features: []subscription.Feature{subscription.FeatureAIGeneration},
	})

	assert.NoError(t, err)
	assert.Empty(t, subRepo.upsertsFor, "authorization must not write subscriptions")
	assert.Empty(t, usageRepo.counts, "authorization must not consume quota")
}

func TestAuthorizeFeatureUseCase_Validation(t *testing.T) {
	uc, _, _ := newAuthorizeFixture()

	tests := []struct {
		name string
		cmd  AuthorizeFeatureCommand
	}{
		{"missing user", AuthorizeFeatureCommand{Features: []subscription.Feature{subscription.FeatureTryOn}}},
		{"no features", AuthorizeFeatureCommand{UserID: 1}},
		{"unknown feature", AuthorizeFeatureCommand{UserID: 1, Features: []subscription.Feature{"export_pdf"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := uc.Execute(context.Background(), tt.cmd)
			assert.Error(t, err)
			assert.Nil(t, result)
		})
	}
}
