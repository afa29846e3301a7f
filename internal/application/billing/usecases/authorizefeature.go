package usecases

import (
	"context"
	"fmt"

	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/domain/usage"
	"github.com/stylora-app/stylora/internal/shared/biztime"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

type AuthorizeFeatureCommand struct {
	UserID uint
	// Features are checked together; all must pass for an allow. A request
	// that consumes several features is denied whole, never half-granted.
	Features []subscription.Feature
}

// AuthorizeFeatureUseCase is the entitlement guard: a pure read that decides
// whether a request may proceed. It never consumes quota; recording happens
// separately after the feature work succeeds.
type AuthorizeFeatureUseCase struct {
	subscriptionRepo subscription.Repository
	usageRepo        usage.Repository
	catalog          *subscription.PlanCatalog
	logger           logger.Interface
}

func NewAuthorizeFeatureUseCase(
	subscriptionRepo subscription.Repository,
	usageRepo usage.Repository,
	catalog *subscription.PlanCatalog,
	logger logger.Interface,
) *AuthorizeFeatureUseCase {
	return &AuthorizeFeatureUseCase{
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		catalog:          catalog,
		logger:           logger,
	}
}

func (uc *AuthorizeFeatureUseCase) Execute(ctx context.Context, cmd AuthorizeFeatureCommand) (*dto.AuthorizeResult, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}
	if len(cmd.Features) == 0 {
		return nil, errors.NewValidationError("at least one feature is required")
	}
	for _, f := range cmd.Features {
		if !f.IsValid() {
			return nil, errors.NewValidationError(fmt.Sprintf("unknown feature: %s", f))
		}
	}

	sub, err := uc.subscriptionRepo.GetOrDefaultStarter(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	now := biztime.NowUTC()
	sub.RefreshStatus(now)

	// A stored record that is not active grants nothing, whatever quota its
	// plan would carry. The implicit starter default only ever applies to
	// users with no record at all, and is synthesized active.
	if !sub.IsActive(now) {
		return &dto.AuthorizeResult{
			Allowed: false,
			Reason:  dto.DenySubscriptionRequired,
		}, nil
	}
	plan := sub.Plan()

	month := biztime.CurrentMonthKey()
	counter, err := uc.usageRepo.GetByUserMonth(ctx, cmd.UserID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	for _, feature := range cmd.Features {
		limit := uc.catalog.LimitFor(plan, feature)
		if limit == subscription.UnlimitedQuota {
			continue
		}
		if limit == 0 {
			return &dto.AuthorizeResult{
				Allowed: false,
				Reason:  dto.DenySubscriptionRequired,
				Feature: feature.String(),
			}, nil
		}

		var used int64
		if counter != nil {
			used = counter.Used(feature)
		}
		if used >= limit {
			return &dto.AuthorizeResult{
				Allowed: false,
				Reason:  dto.DenyLimitReached,
				Feature: feature.String(),
			}, nil
		}
	}

	return &dto.AuthorizeResult{Allowed: true}, nil
}
