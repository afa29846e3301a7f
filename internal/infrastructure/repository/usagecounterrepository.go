package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stylora-app/stylora/internal/domain/subscription"
	"github.com/stylora-app/stylora/internal/domain/usage"
	"github.com/stylora-app/stylora/internal/infrastructure/persistence/models"
	"github.com/stylora-app/stylora/internal/shared/biztime"
	"github.com/stylora-app/stylora/internal/shared/db"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

// featureColumns maps a metered feature to its counter column. Only columns
// listed here may appear in the increment expression.
var featureColumns = map[subscription.Feature]string{
	subscription.FeatureAIGeneration: "ai_generations",
	subscription.FeatureTryOn:        "try_on_renders",
	subscription.FeatureWeeklyPlan:   "weekly_plans",
}

type UsageCounterRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUsageCounterRepository(database *gorm.DB, logger logger.Interface) usage.Repository {
	return &UsageCounterRepositoryImpl{
		db:     database,
		logger: logger,
	}
}

// Increment is a single atomic insert-or-increment. The unique index on
// (user_id, month) routes concurrent calls for the same user into the
// ON DUPLICATE KEY branch, so no recording is ever lost or double counted.
func (r *UsageCounterRepositoryImpl) Increment(ctx context.Context, userID uint, month string, feature subscription.Feature) error {
	column, ok := featureColumns[feature]
	if !ok {
		return fmt.Errorf("feature is not metered: %s", feature)
	}
	if err := biztime.ValidateMonthKey(month); err != nil {
		return err
	}

	now := time.Now().UTC()
	model := models.UsageCounterModel{
		UserID:    userID,
		Month:     month,
		CreatedAt: now,
		UpdatedAt: now,
	}
	switch feature {
	case subscription.FeatureAIGeneration:
		model.AIGenerations = 1
	case subscription.FeatureTryOn:
		model.TryOnRenders = 1
	case subscription.FeatureWeeklyPlan:
		model.WeeklyPlans = 1
	}

	result := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column:       gorm.Expr(column+" + ?", 1),
			"updated_at": now,
		}),
	}).Create(&model)

	if result.Error != nil {
		r.logger.Errorw("failed to increment usage counter",
			"error", result.Error,
			"user_id", userID,
			"month", month,
			"feature", feature,
		)
		return fmt.Errorf("failed to increment usage counter: %w", result.Error)
	}

	return nil
}

func (r *UsageCounterRepositoryImpl) GetByUserMonth(ctx context.Context, userID uint, month string) (*usage.Counter, error) {
	var model models.UsageCounterModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND month = ?", userID, month).
		First(&model).Error

	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		r.logger.Errorw("failed to get usage counter", "error", err, "user_id", userID, "month", month)
		return nil, fmt.Errorf("failed to get usage counter: %w", err)
	}

	return r.toEntity(&model)
}

// ResetMonth zeroes every counter for the exact month key. Counters for other
// months are untouched, so a late reset never wipes usage already recorded in
// the new month.
func (r *UsageCounterRepositoryImpl) ResetMonth(ctx context.Context, month string) (int64, error) {
	if err := biztime.ValidateMonthKey(month); err != nil {
		return 0, err
	}

	now := time.Now().UTC()
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UsageCounterModel{}).
		Where("month = ?", month).
		Updates(map[string]interface{}{
			"ai_generations": 0,
			"try_on_renders": 0,
			"weekly_plans":   0,
			"last_reset_at":  now,
			"updated_at":     now,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to reset usage counters", "error", result.Error, "month", month)
		return 0, fmt.Errorf("failed to reset usage counters: %w", result.Error)
	}

	return result.RowsAffected, nil
}

func (r *UsageCounterRepositoryImpl) toEntity(model *models.UsageCounterModel) (*usage.Counter, error) {
	if model == nil {
		return nil, nil
	}

	return usage.ReconstructCounter(
		model.ID,
		model.UserID,
		model.Month,
		model.AIGenerations,
		model.TryOnRenders,
		model.WeeklyPlans,
		model.UpdatedAt,
	)
}
