package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/purchase"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/domain/usage"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

type noopLogger struct{}

func (noopLogger) Debug(msg string, args ...any)                   {}
func (noopLogger) Info(msg string, args ...any)                    {}
func (noopLogger) Warn(msg string, args ...any)                    {}
func (noopLogger) Error(msg string, args ...any)                   {}
func (n noopLogger) With(args ...any) logger.Interface             { return n }
func (n noopLogger) Named(name string) logger.Interface            { return n }
func (noopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Errorw(msg string, keysAndValues ...interface{}) {}

type fakeSubscriptionRepo struct {
	subs       map[uint]*subscription.Subscription
	upsertErr  error
	upsertsFor []uint
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[uint]*subscription.Subscription)}
}

func (r *fakeSubscriptionRepo) GetByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	return r.subs[userID], nil
}

func (r *fakeSubscriptionRepo) GetOrDefaultStarter(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	if sub, ok := r.subs[userID]; ok {
		return sub, nil
	}
	return subscription.NewStarterDefault(userID), nil
}

func (r *fakeSubscriptionRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	for _, sub := range r.subs {
		if sub.StripeCustomerID() == customerID {
			return sub, nil
		}
	}
	return nil, nil
}

func (r *fakeSubscriptionRepo) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	if r.upsertErr != nil {
		return r.upsertErr
	}
	r.upsertsFor = append(r.upsertsFor, sub.UserID())
	if sub.ID() == 0 {
		sub.SetID(uint(len(r.subs) + 1))
	}
	r.subs[sub.UserID()] = sub
	return nil
}

// seedSubscription stores a subscription built from a fact so tests start
// from a persisted paid record.
func (r *fakeSubscriptionRepo) seedSubscription(userID uint, platform subscription.Platform, fact *subscription.Fact) *subscription.Subscription {
	sub, err := subscription.NewSubscription(userID)
	if err != nil {
		panic(err)
	}
	if err := sub.ApplyFact(platform, fact); err != nil {
		panic(err)
	}
	sub.SetID(uint(len(r.subs) + 1))
	r.subs[userID] = sub
	return sub
}

type fakeUsageRepo struct {
	counts   map[string]map[subscription.Feature]int64
	resets   []string
	resetN   int64
	resetErr error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: make(map[string]map[subscription.Feature]int64)}
}

func usageKey(userID uint, month string) string {
	return fmt.Sprintf("%d/%s", userID, month)
}

func (r *fakeUsageRepo) Increment(ctx context.Context, userID uint, month string, feature subscription.Feature) error {
	key := usageKey(userID, month)
	if r.counts[key] == nil {
		r.counts[key] = make(map[subscription.Feature]int64)
	}
	r.counts[key][feature]++
	return nil
}

func (r *fakeUsageRepo) GetByUserMonth(ctx context.Context, userID uint, month string) (*usage.Counter, error) {
	key := usageKey(userID, month)
	features, ok := r.counts[key]
	if !ok {
		return nil, nil
	}
	return usage.ReconstructCounter(
		1, userID, month,
		features[subscription.FeatureAIGeneration],
		features[subscription.FeatureTryOn],
		features[subscription.FeatureWeeklyPlan],
		time.Now().UTC(),
	)
}

func (r *fakeUsageRepo) ResetMonth(ctx context.Context, month string) (int64, error) {
	if r.resetErr != nil {
		return 0, r.resetErr
	}
	r.resets = append(r.resets, month)
	return r.resetN, nil
}

// setUsed seeds an absolute used count for a feature.
func (r *fakeUsageRepo) setUsed(userID uint, month string, feature subscription.Feature, used int64) {
	key := usageKey(userID, month)
	if r.counts[key] == nil {
		r.counts[key] = make(map[subscription.Feature]int64)
	}
	r.counts[key][feature] = used
}

// fakeTxRunner invokes the function directly; calls counts how many
// transactions were opened.
type fakeTxRunner struct {
	calls int
	err   error
}

func (r *fakeTxRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	if r.err != nil {
		return r.err
	}
	return fn(ctx)
}

type fakePurchaseRepo struct {
	rows    map[string]*purchase.Purchase
	upserts int
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{rows: make(map[string]*purchase.Purchase)}
}

func purchaseKey(userID uint, platform subscription.Platform, externalID string) string {
	return fmt.Sprintf("%d/%s/%s", userID, platform, externalID)
}

func (r *fakePurchaseRepo) Upsert(ctx context.Context, p *purchase.Purchase) error {
	r.upserts++
	r.rows[purchaseKey(p.UserID(), p.Platform(), p.ExternalID())] = p
	return nil
}

func (r *fakePurchaseRepo) GetByNaturalKey(ctx context.Context, userID uint, platform subscription.Platform, externalID string) (*purchase.Purchase, error) {
	return r.rows[purchaseKey(userID, platform, externalID)], nil
}

func (r *fakePurchaseRepo) ListByUserID(ctx context.Context, userID uint) ([]*purchase.Purchase, error) {
	var out []*purchase.Purchase
	for _, p := range r.rows {
		if p.UserID() == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeGateway serves canned facts keyed by subscription or session id.
type fakeGateway struct {
	subs         map[string]*subscription.Fact
	sessionFacts map[string]*subscription.Fact
	cancelErr    error
	cancelCalls  int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		subs:         make(map[string]*subscription.Fact),
		sessionFacts: make(map[string]*subscription.Fact),
	}
}

func (g *fakeGateway) EnsureCustomer(ctx context.Context, userID uint, existingCustomerID string) (string, error) {
	if existingCustomerID != "" {
		return existingCustomerID, nil
	}
	return fmt.Sprintf("cus_%d", userID), nil
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, userID uint, customerID, priceID string) (*billing.CheckoutSession, error) {
	return &billing.CheckoutSession{ID: "cs_test", URL: "https://checkout.test/cs_test"}, nil
}

func (g *fakeGateway) RetrieveCheckoutSession(ctx context.Context, sessionID string) (*subscription.Fact, error) {
	fact, ok := g.sessionFacts[sessionID]
	if !ok {
		return nil, errors.NewNotFoundError("unknown checkout session")
	}
	out := *fact
	return &out, nil
}

func (g *fakeGateway) RetrieveSubscription(ctx context.Context, subscriptionID string) (*subscription.Fact, error) {
	fact, ok := g.subs[subscriptionID]
	if !ok {
		return nil, errors.NewNotFoundError("unknown subscription")
	}
	out := *fact
	return &out, nil
}

func (g *fakeGateway) SetCancelAtPeriodEnd(ctx context.Context, subscriptionID string, cancel bool) (*subscription.Fact, error) {
	g.cancelCalls++
	if g.cancelErr != nil {
		return nil, g.cancelErr
	}
	fact, ok := g.subs[subscriptionID]
	if !ok {
		return nil, errors.NewNotFoundError("unknown subscription")
	}
	out := *fact
	out.CancelAtPeriodEnd = &cancel
	return &out, nil
}

func (g *fakeGateway) VerifyWebhookSignature(payload []byte, signature string) (*billing.WebhookEvent, error) {
	return nil, errors.NewUnauthorizedError("not implemented")
}

type fakeVerifier struct {
	fact            *subscription.Fact
	err             error
	receivedReceipt string
}

func (v *fakeVerifier) VerifyReceipt(ctx context.Context, receiptData string) (*subscription.Fact, error) {
	v.receivedReceipt = receiptData
	if v.err != nil {
		return nil, v.err
	}
	if v.fact == nil {
		return nil, nil
	}
	out := *v.fact
	return &out, nil
}

type fakeCache struct {
	statuses     map[uint]*dto.SubscriptionStatus
	invalidated  []uint
	getErr       error
	setCallCount int
}

func newFakeCache() *fakeCache {
	return &fakeCache{statuses: make(map[uint]*dto.SubscriptionStatus)}
}

func (c *fakeCache) GetStatus(ctx context.Context, userID uint) (*dto.SubscriptionStatus, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.statuses[userID], nil
}

func (c *fakeCache) SetStatus(ctx context.Context, userID uint, status *dto.SubscriptionStatus) error {
	c.setCallCount++
	c.statuses[userID] = status
	return nil
}

func (c *fakeCache) Invalidate(ctx context.Context, userID uint) error {
	c.invalidated = append(c.invalidated, userID)
	delete(c.statuses, userID)
	return nil
}
