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

type CreateCheckoutCommand struct {
	UserID uint
	// PriceID selects the plan; empty picks the configured default.
	PriceID string
}

// CreateCheckoutUseCase opens a hosted checkout session for a user, creating
// and persisting a provider customer on first use so later webhooks can be
// resolved back to the user.
type CreateCheckoutUseCase struct {
	subscriptionRepo subscription.Repository
	gateway          billing.PaymentGateway
	logger           logger.Interface
}

func NewCreateCheckoutUseCase(
	subscriptionRepo subscription.Repository,
	gateway billing.PaymentGateway,
	logger logger.Interface,
) *CreateCheckoutUseCase {
	return &CreateCheckoutUseCase{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		logger:           logger,
	}
}

func (uc *CreateCheckoutUseCase) Execute(ctx context.Context, cmd CreateCheckoutCommand) (*dto.CheckoutResult, error) {
	if cmd.UserID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}

	sub, err := uc.subscriptionRepo.GetByUserID(ctx, cmd.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}

	existingCustomerID := ""
	if sub != nil {
		existingCustomerID = sub.StripeCustomerID()
	}

	customerID, err := uc.gateway.EnsureCustomer(ctx, cmd.UserID, existingCustomerID)
	if err != nil {
		return nil, err
	}

	// Persist the customer mapping before checkout so the completion webhook
	// can resolve the user even if the client never calls back.
	if customerID != existingCustomerID {
		if sub == nil {
			sub, err = subscription.NewSubscription(cmd.UserID)
			if err != nil {
				return nil, err
			}
		}
		sub.SetStripeCustomerID(customerID)
		if err := uc.subscriptionRepo.Upsert(ctx, sub); err != nil {
			return nil, fmt.Errorf("failed to store customer mapping: %w", err)
		}
	}

	session, err := uc.gateway.CreateCheckoutSession(ctx, cmd.UserID, customerID, cmd.PriceID)
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("created checkout session",
		"user_id", cmd.UserID,
		"session_id", session.ID,
	)

	return &dto.CheckoutResult{
		SessionID: session.ID,
		URL:       session.URL,
	}, nil
}
