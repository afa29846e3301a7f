package usecases

import (
	"context"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

type ProcessWebhookCommand struct {
	Payload   []byte
	Signature string
}

// handledWebhookEvents are the provider events that can change entitlement.
// Everything else is acknowledged and dropped.
var handledWebhookEvents = map[string]bool{
	"checkout.session.completed":    true,
	"customer.subscription.created": true,
	"customer.subscription.updated": true,
	"customer.subscription.deleted": true,
	"invoice.payment_failed":        true,
}

// ProcessWebhookUseCase handles provider webhooks. The payload is only
// trusted for identifiers; the entitlement-bearing state is always re-fetched
// from the provider, which makes event ordering and duplicate delivery
// irrelevant.
type ProcessWebhookUseCase struct {
	subscriptionRepo subscription.Repository
	gateway          billing.PaymentGateway
	reconcile        *ReconcileFactUseCase
	logger           logger.Interface
}

func NewProcessWebhookUseCase(
	subscriptionRepo subscription.Repository,
	gateway billing.PaymentGateway,
	reconcile *ReconcileFactUseCase,
	logger logger.Interface,
) *ProcessWebhookUseCase {
	return &ProcessWebhookUseCase{
		subscriptionRepo: subscriptionRepo,
		gateway:          gateway,
		reconcile:        reconcile,
		logger:           logger,
	}
}

func (uc *ProcessWebhookUseCase) Execute(ctx context.Context, cmd ProcessWebhookCommand) (*dto.ReconcileResult, error) {
	event, err := uc.gateway.VerifyWebhookSignature(cmd.Payload, cmd.Signature)
	if err != nil {
		return nil, err
	}

	if !handledWebhookEvents[event.Type] {
		uc.logger.Debugw("ignoring webhook event", "type", event.Type)
		return &dto.ReconcileResult{Applied: false}, nil
	}
	if event.SubscriptionID == "" {
		uc.logger.Debugw("webhook event carries no subscription id", "type", event.Type)
		return &dto.ReconcileResult{Applied: false}, nil
	}

	fact, err := uc.gateway.RetrieveSubscription(ctx, event.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if fact.UserID == 0 {
		fact.UserID = event.UserID
	}
	if fact.CustomerID == "" {
		fact.CustomerID = event.CustomerID
	}

	platform := uc.resolvePlatform(ctx, fact)

	result, err := uc.reconcile.Execute(ctx, ReconcileFactCommand{
		Platform: platform,
		Fact:     fact,
	})
	if err != nil {
		return nil, err
	}

	uc.logger.Infow("processed webhook event",
		"type", event.Type,
		"subscription_id", event.SubscriptionID,
		"applied", result.Applied,
	)
	return result, nil
}

// resolvePlatform keeps the stored platform when the user already purchased
// through the card-payment provider, so android records are not rewritten as
// web ones by a webhook.
func (uc *ProcessWebhookUseCase) resolvePlatform(ctx context.Context, fact *subscription.Fact) subscription.Platform {
	var sub *subscription.Subscription
	var err error

	if fact.UserID != 0 {
		sub, err = uc.subscriptionRepo.GetByUserID(ctx, fact.UserID)
	} else if fact.CustomerID != "" {
		sub, err = uc.subscriptionRepo.GetByStripeCustomerID(ctx, fact.CustomerID)
	}
	if err != nil {
		uc.logger.Warnw("failed to resolve platform for webhook fact", "error", err)
	}
	if sub != nil && sub.Platform().UsesStripe() {
		return sub.Platform()
	}
	return subscription.PlatformWeb
}
