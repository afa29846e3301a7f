package usecases

import (
	"context"
	"fmt"

	"github.com/stylora-app/stylora/internal/domain/usage"
	"github.com/stylora-app/stylora/internal/shared/biztime"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

// ResetMonthlyUsageUseCase zeroes all counters of one exact month. It is
// driven by the monthly scheduler and exposed on an internal route so a
// missed run can be replayed by hand. Resetting the same month twice is
// harmless.
type ResetMonthlyUsageUseCase struct {
	usageRepo usage.Repository
	logger    logger.Interface
}

func NewResetMonthlyUsageUseCase(
	usageRepo usage.Repository,
	logger logger.Interface,
) *ResetMonthlyUsageUseCase {
	return &ResetMonthlyUsageUseCase{
		usageRepo: usageRepo,
		logger:    logger,
	}
}

func (uc *ResetMonthlyUsageUseCase) Execute(ctx context.Context, month string) (int64, error) {
	if err := biztime.ValidateMonthKey(month); err != nil {
		return 0, err
	}

	count, err := uc.usageRepo.ResetMonth(ctx, month)
	if err != nil {
		uc.logger.Errorw("failed to reset monthly usage", "error", err, "month", month)
		return 0, fmt.Errorf("failed to reset monthly usage: %w", err)
	}

	uc.logger.Infow("monthly usage reset", "month", month, "counters_reset", count)
	return count, nil
}
