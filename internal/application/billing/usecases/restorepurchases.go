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

type RestorePurchasesCommand struct {
	UserID   uint
	Platform subscription.Platform
	// Receipt optionally carries a fresh receipt from the device; when empty
	// the stored one is re-validated.
	Receipt string
}

// RestorePurchasesUseCase rebuilds a user's entitlement from the source of
// truth, for reinstalls and device switches. Restoring twice is harmless:
// the same facts reconcile to the same state.
type RestorePurchasesUseCase struct {
	subscriptionRepo subscription.Repository
	gateway          billing.PaymentGateway
	verifier         billing.ReceiptVerifier
	reconcile        *ReconcileFactUseCase
	logger           logger.Interface
}

func NewRestorePurchasesUseCase(
	subscriptionRepo subscription.Repository,
	gateway billing.PaymentGateway,
	verifier billing.ReceiptVerifier,
	reconcile *ReconcileFactUseCase,
	logger logger.Interface,
) *RestorePurchasesUseCase {
	return &RestorePurchasesUseCase{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		verifier:         verifier,
		reconcile:        reconcile,
		logger:           logger,
	}
}

func (uc *RestorePurchasesUseCase) Execute(ctx context.Context, cmd RestorePurchasesCommand) (*dto.ReconcileResult, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}

	sub, err := uc.subscriptionRepo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	// Receipt-first: a device receipt (fresh or stored) is the richest
	// source. Fall back to re-querying the card-payment provider.
	receipt := cmd.Receipt
	if receipt == "" && sub != nil {
		receipt = sub.IAPReceipt()
	}

	if cmd.Platform == subscription.PlatformIOS || (cmd.Platform == subscription.PlatformUnknown && receipt != "") {
		if receipt == "" {
			return nil, errors.NewNotFoundError("no receipt available to restore from")
		}
		fact, err := uc.verifier.VerifyReceipt(ctx, receipt)
		if err != nil {
			return nil, err
		}
		if fact == nil {
			return nil, errors.NewNotFoundError("receipt holds no restorable subscription")
		}
		fact.UserID = cmd.UserID
		return uc.reconcile.Execute(ctx, ReconcileFactCommand{
			Platform: subscription.PlatformIOS,
			Fact:     fact,
		})
	}

	if sub == nil || sub.StripeSubscriptionID() == "" {
		return nil, errors.NewNotFoundError("no subscription found to restore")
	}

	fact, err := uc.gateway.RetrieveSubscription(ctx, sub.StripeSubscriptionID())
	if err != nil {
		return nil, err
	}
	fact.UserID = cmd.UserID

	platform := cmd.Platform
	if platform == subscription.PlatformUnknown {
		platform = sub.Platform()
	}
	if !platform.IsValid() {
		platform = subscription.PlatformWeb
	}

	return uc.reconcile.Execute(ctx, ReconcileFactCommand{
		Platform: platform,
		Fact:     fact,
	})
}
