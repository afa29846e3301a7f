// Package payment holds the external payment-provider adapters.
package payment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	stripesub "github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/config"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

// userIDMetadataKey links provider objects back to internal users.
const userIDMetadataKey = "user_id"

// StripeGateway implements the card-payment provider port on Stripe.
type StripeGateway struct {
	cfg     *config.BillingConfig
	catalog *subscription.PlanCatalog
	logger  logger.Interface
}

var _ billing.PaymentGateway = (*StripeGateway)(nil)

// NewStripeGateway wires the global Stripe API key and returns the gateway.
func NewStripeGateway(cfg *config.BillingConfig, catalog *subscription.PlanCatalog, logger logger.Interface) *StripeGateway {
	stripe.Key = cfg.StripeSecretKey
	return &StripeGateway{
		cfg:     cfg,
		catalog: catalog,
		logger:  logger,
	}
}

func (g *StripeGateway) EnsureCustomer(ctx context.Context, userID uint, existingCustomerID string) (string, error) {
	if existingCustomerID != "" {
		return existingCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Metadata: map[string]string{
			userIDMetadataKey: strconv.FormatUint(uint64(userID), 10),
		},
	}
	params.Context = ctx

	cust, err := customer.New(params)
	if err != nil {
		g.logger.Errorw("failed to create stripe customer", "error", err, "user_id", userID)
		return "", errors.NewUnavailableError("payment provider unavailable", err.Error())
	}

	g.logger.Infow("created stripe customer", "user_id", userID, "customer_id", cust.ID)
	return cust.ID, nil
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, userID uint, customerID, priceID string) (*billing.CheckoutSession, error) {
	if priceID == "" {
		priceID = g.cfg.DefaultPriceID
	}
	if priceID == "" {
		return nil, errors.NewValidationError("no price configured for checkout")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(g.cfg.SuccessURL),
		CancelURL:         stripe.String(g.cfg.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatUint(uint64(userID), 10)),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				userIDMetadataKey: strconv.FormatUint(uint64(userID), 10),
			},
		},
	}
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		g.logger.Errorw("failed to create checkout session", "error", err, "user_id", userID)
		return nil, errors.NewUnavailableError("payment provider unavailable", err.Error())
	}

	return &billing.CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}, nil
}

func (g *StripeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*subscription.Fact, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	params.AddExpand("subscription")

	sess, err := session.Get(sessionID, params)
	if err != nil {
		g.logger.Errorw("failed to retrieve checkout session", "error", err, "session_id", sessionID)
		return nil, errors.NewUnavailableError("payment provider unavailable", err.Error())
	}

	if sess.Subscription == nil {
		return nil, nil
	}

	fact := g.toFact(sess.Subscription)
	if fact.UserID == 0 && sess.ClientReferenceID != "" {
		if id, err := strconv.ParseUint(sess.ClientReferenceID, 10, 64); err == nil {
			fact.UserID = uint(id)
		}
	}
	return fact, nil
}

func (g *StripeGateway) RetrieveSubscription(ctx context.Context, subscriptionID string) (*subscription.Fact, error) {
	params := &stripe.SubscriptionParams{}
	params.Context = ctx

	sub, err := stripesub.Get(subscriptionID, params)
	if err != nil {
		g.logger.Errorw("failed to retrieve subscription", "error", err, "subscription_id", subscriptionID)
		return nil, errors.NewUnavailableError("payment provider unavailable", err.Error())
	}

	return g.toFact(sub), nil
}

func (g *StripeGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*subscription.Fact, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(cancel),
	}
	params.Context = ctx

	sub, err := stripesub.Update(subscriptionID, params)
	if err != nil {
		g.logger.Errorw("failed to update subscription cancellation",
			"error", err,
			"subscription_id", subscriptionID,
			"cancel", cancel,
		)
		return nil, errors.NewUnavailableError("payment provider unavailable", err.Error())
	}

	return g.toFact(sub), nil
}

func (g *StripeGateway) VerifyWebhookSignature(payload []byte, signature string) (*billing.WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		g.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, errors.NewUnauthorizedError("webhook signature verification failed")
	}

	we := &billing.WebhookEvent{Type: string(event.Type)}

	if id, ok := event.Data.Object["id"].(string); ok {
		switch {
		case len(id) > 4 && id[:4] == "sub_":
			we.SubscriptionID = id
		case len(id) > 3 && id[:3] == "cs_":
			// checkout session object; the subscription id is nested
			if subID, ok := event.Data.Object["subscription"].(string); ok {
				we.SubscriptionID = subID
			}
			if ref, ok := event.Data.Object["client_reference_id"].(string); ok {
				if uid, err := strconv.ParseUint(ref, 10, 64); err == nil {
					we.UserID = uint(uid)
				}
			}
		}
	}
	if we.SubscriptionID == "" {
		if subID, ok := event.Data.Object["subscription"].(string); ok {
			we.SubscriptionID = subID
		}
	}
	if cust, ok := event.Data.Object["customer"].(string); ok {
		we.CustomerID = cust
	}
	if meta, ok := event.Data.Object["metadata"].(map[string]interface{}); ok {
		if raw, ok := meta[userIDMetadataKey].(string); ok {
			if uid, err := strconv.ParseUint(raw, 10, 64); err == nil {
				we.UserID = uint(uid)
			}
		}
	}

	return we, nil
}

// toFact normalizes a provider subscription into a fact. Unrecognized price
// ids still grant the mid-tier plan; a paid subscription must never lose
// access because the catalog lags behind the provider dashboard.
func (g *StripeGateway) toFact(sub *stripe.Subscription) *subscription.Fact {
	fact := &subscription.Fact{
		ExternalID: sub.ID,
		Status:     mapStripeStatus(sub.Status),
	}

	if sub.Customer != nil {
		fact.CustomerID = sub.Customer.ID
	}
	if raw, ok := sub.Metadata[userIDMetadataKey]; ok {
		if uid, err := strconv.ParseUint(raw, 10, 64); err == nil {
			fact.UserID = uint(uid)
		}
	}

	if sub.CurrentPeriodStart > 0 {
		start := time.Unix(sub.CurrentPeriodStart, 0).UTC()
		fact.PeriodStart = &start
	}
	if sub.CurrentPeriodEnd > 0 {
		end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		fact.PeriodEnd = &end
	}

	cancel := sub.CancelAtPeriodEnd
	fact.CancelAtPeriodEnd = &cancel

	if sub.Items != nil && len(sub.Items.Data) > 0 && sub.Items.Data[0].Price != nil {
		price := sub.Items.Data[0].Price
		fact.ProductID = price.ID
		fact.Amount = price.UnitAmount
		fact.Currency = string(price.Currency)
	}

	plan, recognized := g.catalog.PlanForProductID(fact.ProductID)
	if !recognized {
		g.logger.Warnw("unrecognized price id, defaulting plan",
			"price_id", fact.ProductID,
			"subscription_id", sub.ID,
			"plan", plan,
		)
	}
	fact.Plan = plan

	return fact
}

func mapStripeStatus(status stripe.SubscriptionStatus) subscription.Status {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return subscription.StatusActive
	case stripe.SubscriptionStatusCanceled:
		return subscription.StatusCancelled
	case stripe.SubscriptionStatusIncomplete, stripe.SubscriptionStatusIncompleteExpired,
		stripe.SubscriptionStatusPastDue, stripe.SubscriptionStatusUnpaid:
		return subscription.StatusExpired
	default:
		return subscription.StatusInactive
	}
}

// CheckConfigured returns a configuration error when the gateway cannot
// operate, for fail-fast startup checks.
func (g *StripeGateway) CheckConfigured() error {
	if !g.cfg.Configured() {
		return fmt.Errorf("stripe secret key is not configured")
	}
	return nil
}
