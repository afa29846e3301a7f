package usecases

import (
	"context"
	"fmt"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

type CancelSubscriptionCommand struct {
	UserID uint
	// Cancel true schedules cancellation at period end; false reverses a
	// pending cancellation.
	Cancel bool
}

// CancelSubscriptionUseCase toggles auto-renewal. The provider is updated
// first; the local record is only written from the provider's response, so a
// provider failure leaves the local state untouched.
type CancelSubscriptionUseCase struct {
	subscriptionRepo subscription.Repository
	gateway          billing.PaymentGateway
	reconcile        *ReconcileFactUseCase
	logger           logger.Interface
}

func NewCancelSubscriptionUseCase(
	subscriptionRepo subscription.Repository,
	gateway billing.PaymentGateway,
	reconcile *ReconcileFactUseCase,
	logger logger.Interface,
) *CancelSubscriptionUseCase {
	return &CancelSubscriptionUseCase{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		reconcile:        reconcile,
		logger:           logger,
	}
}

func (uc *CancelSubscriptionUseCase) Execute(ctx context.Context, cmd CancelSubscriptionCommand) (*dto.ReconcileResult, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}

	sub, err := uc.subscriptionRepo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil {
		return nil, errors.NewNotFoundError("no subscription to cancel")
	}
	if sub.Platform() == subscription.PlatformIOS {
		return nil, errors.NewValidationError("ios subscriptions are managed through App Store settings")
	}
	if sub.StripeSubscriptionID() == "" {
		return nil, errors.NewNotFoundError("no provider subscription to cancel")
	}

	fact, err := uc.gateway.SetCancelAtPeriodEnd(ctx, sub.StripeSubscriptionID(), cmd.Cancel)
	if err != nil {
		return nil, err
	}
	fact.UserID = cmd.UserID

	platform := sub.Platform()
	if !platform.IsValid() {
		platform = subscription.PlatformWeb
	}

	result, err := uc.reconcile.Execute(ctx, ReconcileFactCommand{
		Platform: platform,
		Fact:     fact,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("updated subscription auto-renewal",
		"user_id", cmd.UserID,
		"cancel_at_period_end", cmd.Cancel,
	)
	return result, nil
}
