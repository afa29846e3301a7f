package usecases

import (
	"context"
	"fmt"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/biztime"
	"github.com/stylora-app/stylora/internal/shared/config"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

type GrantTrialCommand struct {
	UserID uint
}

// GrantTrialUseCase applies the registration free trial. The trial is a
// local grant with no external purchase behind it, so it writes the
// subscription record only; the purchase trail stays reserved for verified
// external facts.
type GrantTrialUseCase struct {
	subscriptionRepo subscription.Repository
	cache            billing.EntitlementCache
	trialCfg         *config.TrialConfig
	logger           logger.Interface
}

func NewGrantTrialUseCase(
	subscriptionRepo subscription.Repository,
	cache billing.EntitlementCache,
	trialCfg *config.TrialConfig,
	logger logger.Interface,
) *GrantTrialUseCase {
	return &GrantTrialUseCase{
		subscriptionRepo: subscriptionRepo,
		cache:            cache,
		trialCfg:         trialCfg,
		logger:           logger,
	}
}

func (uc *GrantTrialUseCase) Execute(ctx context.Context, cmd GrantTrialCommand) (*dto.ReconcileResult, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}
	if !uc.trialCfg.Enabled {
		return nil, errors.NewForbiddenError("trial grants are disabled")
	}

	plan := subscription.Plan(uc.trialCfg.Plan)
	if !plan.IsValid() {
		plan = subscription.PlanPro
	}
	months := uc.trialCfg.Months
	if months <= 0 {
		months = 3
	}

	sub, err := uc.subscriptionRepo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil {
		sub, err = subscription.NewSubscription(cmd.UserID)
		if err != nil {
			return nil, err
		}
	}

	now := biztime.NowUTC()
	sub.RefreshStatus(now)

	if err := sub.GrantTrial(plan, now, now.AddDate(0, months, 0)); err != nil {
		return nil, errors.NewConflictError("trial cannot be granted", err.Error())
	}

	if err := uc.subscriptionRepo.Upsert(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to store trial grant: %w", err)
	}

	if cacheErr := uc.cache.Invalidate(ctx, cmd.UserID); cacheErr != nil {
		uc.logger.Warnw("failed to invalidate status cache", "error", cacheErr, "user_id", cmd.UserID)
	}

	uc.logger.Infow("granted trial",
		"user_id", cmd.UserID,
		"plan", plan,
		"months", months,
	)

	return &dto.ReconcileResult{
		UserID:  cmd.UserID,
		Plan:    sub.Plan().String(),
		Status:  sub.Status().String(),
		Applied: true,
	}, nil
}
