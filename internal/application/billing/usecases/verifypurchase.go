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

type VerifyPurchaseCommand struct {
	UserID   uint
	Platform subscription.Platform
	// Receipt is the raw base64 receipt blob (ios).
	Receipt string
	// SessionID is the completed checkout session id (web/android).
	SessionID string
}

// VerifyPurchaseUseCase is the client sync path: the app reports a purchase
// it just made and the server verifies it with the source of truth before
// granting anything.
type VerifyPurchaseUseCase struct {
	subscriptionRepo subscription.Repository
	gateway          billing.PaymentGateway
	verifier         billing.ReceiptVerifier
	reconcile        *ReconcileFactUseCase
	logger           logger.Interface
}

func NewVerifyPurchaseUseCase(
	subscriptionRepo subscription.Repository,
	gateway billing.PaymentGateway,
	verifier billing.ReceiptVerifier,
	reconcile *ReconcileFactUseCase,
	logger logger.Interface,
) *VerifyPurchaseUseCase {
	return &VerifyPurchaseUseCase{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		verifier:         verifier,
		reconcile:        reconcile,
		logger:           logger,
	}
}

func (uc *VerifyPurchaseUseCase) Execute(ctx context.Context, cmd VerifyPurchaseCommand) (*dto.ReconcileResult, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}
	if !cmd.Platform.IsValid() {
		return nil, errors.NewValidationError(fmt.Sprintf("invalid platform: %s", cmd.Platform))
	}

	var (
		fact *subscription.Fact
		err  error
	)

	switch {
	case cmd.Platform == subscription.PlatformIOS:
		if cmd.Receipt == "" {
			return nil, errors.NewValidationError("receipt is required for ios verification")
		}
		fact, err = uc.verifier.VerifyReceipt(ctx, cmd.Receipt)
	case cmd.SessionID != "":
		fact, err = uc.gateway.RetrieveCheckoutSession(ctx, cmd.SessionID)
	default:
		fact, err = uc.factFromStoredSubscription(ctx, cmd.UserID)
	}
	if err != nil {
		return nil, err
	}
	if fact == nil {
		return nil, errors.NewNotFoundError("no subscription purchase found to verify")
	}

	// The caller is authenticated; their identity overrides whatever the
	// provider metadata carried.
	fact.UserID = cmd.UserID

	return uc.reconcile.Execute(ctx, ReconcileFactCommand{
		Platform: cmd.Platform,
		Fact:     fact,
	})
}

// factFromStoredSubscription re-fetches the provider state for the user's
// known subscription id, used when the client syncs without a session id.
func (uc *VerifyPurchaseUseCase) factFromStoredSubscription(ctx context.Context, userID uint) (*subscription.Fact, error) {
	sub, err := uc.subscriptionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil || sub.StripeSubscriptionID() == "" {
		return nil, nil
	}
	return uc.gateway.RetrieveSubscription(ctx, sub.StripeSubscriptionID())
}
