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

type RecordUsageCommand struct {
	UserID  uint
	Feature subscription.Feature
}

// RecordUsageUseCase consumes one unit of a metered feature after the work
// succeeded. The increment is atomic at the store, so racing requests for
// the same user all count.
type RecordUsageUseCase struct {
	subscriptionRepo subscription.Repository
	usageRepo        usage.Repository
	catalog          *subscription.PlanCatalog
	cache            billing.EntitlementCache
	logger           logger.Interface
}

func NewRecordUsageUseCase(
	subscriptionRepo subscription.Repository,
	usageRepo usage.Repository,
	catalog *subscription.PlanCatalog,
	cache billing.EntitlementCache,
	logger logger.Interface,
) *RecordUsageUseCase {
	return &RecordUsageUseCase{
		subscriptionRepo: subscriptionRepo,
		usageRepo:        usageRepo,
		catalog:          catalog,
		cache:            cache,
		logger:           logger,
	}
}

func (uc *RecordUsageUseCase) Execute(ctx context.Context, cmd RecordUsageCommand) (*dto.UsageResult, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}
	if !cmd.Feature.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown feature: %s", cmd.Feature))
	}

	month := biztime.CurrentMonthKey()
	if err := uc.usageRepo.Increment(ctx, cmd.UserID, month, cmd.Feature); err != nil {
		return nil, fmt.Errorf("failed to record usage: %w", err)
	}

	if cacheErr := uc.cache.Invalidate(ctx, cmd.UserID); cacheErr != nil {
		uc.logger.Warnw("failed to invalidate status cache", "error", cacheErr, "user_id", cmd.UserID)
	}

	counter, err := uc.usageRepo.GetByUserMonth(ctx, cmd.UserID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to read usage back: %w", err)
	}

	var used int64
	if counter != nil {
		used = counter.Used(cmd.Feature)
	}

	sub, err := uc.subscriptionRepo.GetOrDefaultStarter(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	now := biztime.NowUTC()
	sub.RefreshStatus(now)

	// An inactive record reports no quota; the increment above still counted
	// because gating is the authorization path's job, not this one's.
	var limit, remaining int64
	if sub.IsActive(now) {
		limit = uc.catalog.LimitFor(sub.Plan(), cmd.Feature)
		remaining = uc.catalog.Remaining(sub.Plan(), cmd.Feature, used)
	}

	return &dto.UsageResult{
		Feature:   cmd.Feature.String(),
		Month:     month,
		Used:      used,
		Limit:     limit,
		Remaining: remaining,
	}, nil
}
