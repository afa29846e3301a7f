package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/infrastructure/persistence/models"
	"github.com/stylora-app/stylora/internal/shared/db"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewSubscriptionRepository(database *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     database,
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) GetByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		First(&model).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return r.toEntity(&model)
}

func (r *SubscriptionRepositoryImpl) GetOrDefaultStarter(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	sub, err := r.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return subscription.NewStarterDefault(userID), nil
	}
	return sub, nil
}

func (r *SubscriptionRepositoryImpl) GetByStripeCustomerID(ctx context.Context, customerID string) (*subscription.Subscription, error) {
	if customerID == "" {
		return nil, nil
	}

	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("stripe_customer_id = ?", customerID).
		First(&model).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get subscription by customer id", "error", err, "customer_id", customerID)
		return nil, fmt.Errorf("failed to get subscription by customer id: %w", err)
	}

	return r.toEntity(&model)
}

func (r *SubscriptionRepositoryImpl) Upsert(ctx context.Context, sub *subscription.Subscription) error {
	model := r.toModel(sub)

	result := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan",
			"status",
			"platform",
			"current_period_start",
			"current_period_end",
			"cancel_at_period_end",
			"stripe_customer_id",
			"stripe_subscription_id",
			"iap_original_transaction_id",
			"iap_product_id",
			"iap_receipt",
			"version",
			"updated_at",
		}),
	}).Create(model)

	if result.Error != nil {
		r.logger.Errorw("failed to upsert subscription", "error", result.Error, "user_id", sub.UserID())
		return fmt.Errorf("failed to upsert subscription: %w", result.Error)
	}

	if sub.ID() == 0 && model.ID > 0 {
		if err := sub.SetID(model.ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *SubscriptionRepositoryImpl) toEntity(model *models.SubscriptionModel) (*subscription.Subscription, error) {
	if model == nil {
		return nil, nil
	}

	return subscription.ReconstructSubscription(
		model.ID,
		model.UserID,
		subscription.Plan(model.Plan),
		subscription.Status(model.Status),
		subscription.Platform(model.Platform),
		model.CurrentPeriodStart,
		model.CurrentPeriodEnd,
		model.CancelAtPeriodEnd,
		model.StripeCustomerID,
		model.StripeSubscriptionID,
		model.IAPOriginalTransactionID,
		model.IAPProductID,
		model.IAPReceipt,
		model.Version,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (r *SubscriptionRepositoryImpl) toModel(sub *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:                       sub.ID(),
		UserID:                   sub.UserID(),
		Plan:                     sub.Plan().String(),
		Status:                   sub.Status().String(),
		Platform:                 sub.Platform().String(),
		CurrentPeriodStart:       sub.CurrentPeriodStart(),
		CurrentPeriodEnd:         sub.CurrentPeriodEnd(),
		CancelAtPeriodEnd:        sub.CancelAtPeriodEnd(),
		StripeCustomerID:         sub.StripeCustomerID(),
		StripeSubscriptionID:     sub.StripeSubscriptionID(),
		IAPOriginalTransactionID: sub.IAPOriginalTransactionID(),
		IAPProductID:             sub.IAPProductID(),
		IAPReceipt:               sub.IAPReceipt(),
		Version:                  sub.Version(),
		CreatedAt:                sub.CreatedAt(),
		UpdatedAt:                sub.UpdatedAt(),
	}
}
