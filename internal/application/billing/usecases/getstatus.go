package usecases

import (
	"context"
	"fmt"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/domain/usage"
	"github.com/stylora-app/stylora/internal/shared/biztime"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

// GetStatusUseCase builds the full entitlement snapshot for a user: plan,
// status, period, and per-feature quota positions for the current month.
// Reading applies lazy expiration, so a stale active record is corrected
// before it leaks into any decision.
type GetStatusUseCase struct {
	subscriptionRepo subscription.Repository
	usageRepo        usage.Repository
	catalog          *subscription.PlanCatalog
	cache            billing.EntitlementCache
	logger           logger.Interface
}

func NewGetStatusUseCase(
	subscriptionRepo subscription.Repository,
	usageRepo usage.Repository,
	catalog *subscription.PlanCatalog,
	cache billing.EntitlementCache,
	logger logger.Interface,
) *GetStatusUseCase {
	return &GetStatusUseCase{
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		catalog:          catalog,
		cache:            cache,
		logger:           logger,
	}
}

func (uc *GetStatusUseCase) Execute(ctx context.Context, userID uint) (*dto.SubscriptionStatus, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}

	if cached, err := uc.cache.GetStatus(ctx, userID); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		uc.logger.Warnw("status cache read failed", "error", err, "user_id", userID)
	}

	status, err := uc.buildStatus(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := uc.cache.SetStatus(ctx, userID, status); err != nil {
		uc.logger.Warnw("status cache write failed", "error", err, "user_id", userID)
	}

	return status, nil
}

func (uc *GetStatusUseCase) buildStatus(ctx context.Context, userID uint) (*dto.SubscriptionStatus, error) {
	sub, err := uc.subscriptionRepo.GetOrDefaultStarter(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	now := biztime.NowUTC()
	if sub.RefreshStatus(now) && sub.ID() != 0 {
		// Best effort: the corrected status is served either way, and the
		// next read retries the write-back.
		if err := uc.subscriptionRepo.Upsert(ctx, sub); err != nil {
			uc.logger.Warnw("failed to persist lazy expiration", "error", err, "user_id", userID)
		}
	}

	// A record that is not active grants nothing until a new fact revives
	// it; the implicit starter default only applies to users with no record.
	entitled := sub.IsActive(now)

	month := biztime.CurrentMonthKey()
	counter, err := uc.usageRepo.GetByUserMonth(ctx, userID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	features := make(map[string]dto.FeatureUsage, len(subscription.MeteredFeatures))
	for _, feature := range subscription.MeteredFeatures {
		var used int64
		if counter != nil {
			used = counter.Used(feature)
		}
		fu := dto.FeatureUsage{Used: used}
		if entitled {
			limit := uc.catalog.LimitFor(sub.Plan(), feature)
			fu.Limit = limit
			fu.Remaining = uc.catalog.Remaining(sub.Plan(), feature, used)
			fu.Unlimited = limit == subscription.UnlimitedQuota
		}
		features[feature.String()] = fu
	}

	return &dto.SubscriptionStatus{
		Plan:               sub.Plan().String(),
		Status:             sub.Status().String(),
		Platform:           sub.Platform().String(),
		CurrentPeriodStart: sub.CurrentPeriodStart(),
		CurrentPeriodEnd:   sub.CurrentPeriodEnd(),
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd(),
		Month:              month,
		Features:           features,
	}, nil
}
