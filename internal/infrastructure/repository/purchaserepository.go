package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stylora-app/stylora/internal/domain/purchase"
	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/infrastructure/persistence/models"
	"github.com/stylora-app/stylora/internal/shared/db"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

type PurchaseRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewPurchaseRepository(database *gorm.DB, logger logger.Interface) purchase.Repository {
	return &PurchaseRepositoryImpl{
		db:     database,
		logger: logger,
	}
}

func (r *PurchaseRepositoryImpl) Upsert(ctx context.Context, p *purchase.Purchase) error {
	model, err := r.toModel(p)
	if err != nil {
		return err
	}

	result := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "platform"},
			{Name: "external_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan",
			"status",
			"product_id",
			"period_start",
			"period_end",
			"amount",
			"currency",
			"metadata",
			"updated_at",
		}),
	}).Create(model)

	if result.Error != nil {
		r.logger.Errorw("failed to upsert purchase",
			"error", result.Error,
			"user_id", p.UserID(),
			"platform", p.Platform(),
			"external_id", p.ExternalID(),
		)
		return fmt.Errorf("failed to upsert purchase: %w", result.Error)
	}

	if p.ID() == 0 && model.ID > 0 {
		if err := p.SetID(model.ID); err != nil {
			return err
		}
	}

	return nil
}

func (r *PurchaseRepositoryImpl) GetByNaturalKey(ctx context.Context, userID uint, platform subscription.Platform, externalID string) (*purchase.Purchase, error) {
	var model models.PurchaseModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND platform = ? AND external_id = ?", userID, platform.String(), externalID).
		First(&model).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get purchase", "error", err, "user_id", userID, "external_id", externalID)
		return nil, fmt.Errorf("failed to get purchase: %w", err)
	}

	return r.toEntity(&model)
}

func (r *PurchaseRepositoryImpl) ListByUserID(ctx context.Context, userID uint) ([]*purchase.Purchase, error) {
	var rows []models.PurchaseModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error

	if err != nil {
		r.logger.Errorw("failed to list purchases", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	purchases := make([]*purchase.Purchase, 0, len(rows))
	for i := range rows {
		p, err := r.toEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
	}
	return purchases, nil
}

func (r *PurchaseRepositoryImpl) toEntity(model *models.PurchaseModel) (*purchase.Purchase, error) {
	if model == nil {
		return nil, nil
	}

	metadata := make(map[string]any)
	if len(model.Metadata) > 0 {
		if err := json.Unmarshal(model.Metadata, &metadata); err != nil {
			r.logger.Warnw("failed to decode purchase metadata", "error", err, "purchase_id", model.ID)
			metadata = make(map[string]any)
		}
	}

	return purchase.ReconstructPurchase(
		model.ID,
		model.UserID,
		subscription.Platform(model.Platform),
		model.ExternalID,
		subscription.Plan(model.Plan),
		subscription.Status(model.Status),
		model.ProductID,
		model.PeriodStart,
		model.PeriodEnd,
		model.Amount,
		model.Currency,
		metadata,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func (r *PurchaseRepositoryImpl) toModel(p *purchase.Purchase) (*models.PurchaseModel, error) {
	metadata, err := json.Marshal(p.Metadata())
	if err != nil {
		return nil, fmt.Errorf("failed to encode purchase metadata: %w", err)
	}

	return &models.PurchaseModel{
		ID:          p.ID(),
		UserID:      p.UserID(),
		Platform:    p.Platform().String(),
		ExternalID:  p.ExternalID(),
		Plan:        p.Plan().String(),
		Status:      p.Status().String(),
		ProductID:   p.ProductID(),
		PeriodStart: p.PeriodStart(),
		PeriodEnd:   p.PeriodEnd(),
		Amount:      p.Amount(),
		Currency:    p.Currency(),
		Metadata:    datatypes.JSON(metadata),
		CreatedAt:   p.CreatedAt(),
		UpdatedAt:   p.UpdatedAt(),
	}, nil
}
