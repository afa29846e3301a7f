// Package usecases implements the billing application operations. Every
// write path funnels through ReconcileFactUseCase so all sources converge on
// the same subscription row with the same semantics.
package usecases

import (
	"context"
	"fmt"

	"github.com/stylora-app/stylora/internal/application/billing"
	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/purchase"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/shared/db"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

type ReconcileFactCommand struct {
	Platform subscription.Platform
	Fact     *subscription.Fact
}

// ReconcileFactUseCase applies one validated external fact to the canonical
// subscription record and appends it to the purchase audit trail, in one
// transaction. Replaying the same fact is a no-op at the data level.
type ReconcileFactUseCase struct {
	subscriptionRepo subscription.Repository
	purchaseRepo     purchase.Repository
	txManager        db.TxRunner
	cache            billing.EntitlementCache
	logger           logger.Interface
}

func NewReconcileFactUseCase(
	subscriptionRepo subscription.Repository,
	purchaseRepo purchase.Repository,
	txManager db.TxRunner,
	cache billing.EntitlementCache,
	logger logger.Interface,
) *ReconcileFactUseCase {
	return &ReconcileFactUseCase{
		subscriptionRepo: subscriptionRepo,
		purchaseRepo:     purchaseRepo,
		txManager:        txManager,
		cache:            cache,
		logger:           logger,
	}
}

func (uc *ReconcileFactUseCase) Execute(ctx context.Context, cmd ReconcileFactCommand) (*dto.ReconcileResult, error) {
	fact := cmd.Fact
	if err := fact.Validate(); err != nil {
		return nil, err
	}

	userID, err := uc.resolveUserID(ctx, fact)
	if err != nil {
		return nil, err
	}
	if userID == 0 {
		// An event for a customer we have never seen. Acknowledge and move
		// on; the next client sync will converge the record.
		uc.logger.Debugw("skipping fact for unresolvable user",
			"external_id", fact.ExternalID,
			"customer_id", fact.CustomerID,
		)
		return &dto.ReconcileResult{Applied: false}, nil
	}

	var sub *subscription.Subscription
	err = uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var err error
		sub, err = uc.subscriptionRepo.GetByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		if sub == nil {
			sub, err = subscription.NewSubscription(userID)
			if err != nil {
				return err
			}
		}

		if err := sub.ApplyFact(cmd.Platform, fact); err != nil {
			return err
		}
		if err := uc.subscriptionRepo.Upsert(txCtx, sub); err != nil {
			return err
		}

		p, err := purchase.NewFromFact(userID, cmd.Platform, fact)
		if err != nil {
			return err
		}
		if err := uc.purchaseRepo.Upsert(txCtx, p); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to reconcile fact",
			"error", err,
			"user_id", userID,
			"external_id", fact.ExternalID,
		)
		return nil, fmt.Errorf("failed to reconcile fact: %w", err)
	}

	if cacheErr := uc.cache.Invalidate(ctx, userID); cacheErr != nil {
		uc.logger.Warnw("failed to invalidate status cache", "error", cacheErr, "user_id", userID)
	}

	uc.logger.Infow("reconciled subscription fact",
		"user_id", userID,
		"platform", cmd.Platform,
		"plan", sub.Plan(),
		"status", sub.Status(),
		"external_id", fact.ExternalID,
	)

	return &dto.ReconcileResult{
		UserID:  userID,
		Plan:    sub.Plan().String(),
		Status:  sub.Status().String(),
		Applied: true,
	}, nil
}

// resolveUserID finds the internal user a fact belongs to: the fact's own
// user id when the source knew it, otherwise the stored customer mapping.
func (uc *ReconcileFactUseCase) resolveUserID(ctx context.Context, fact *subscription.Fact) (uint, error) {
	if fact.UserID != 0 {
		return fact.UserID, nil
	}
	if fact.CustomerID == "" {
		return 0, nil
	}

	sub, err := uc.subscriptionRepo.GetByStripeCustomerID(ctx, fact.CustomerID)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve user for customer %s: %w", fact.CustomerID, err)
	}
	if sub == nil {
		return 0, nil
	}
	return sub.UserID(), nil
}
