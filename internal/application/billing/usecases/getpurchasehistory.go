package usecases

import (
	"context"
	"fmt"

	"github.com/stylora-app/stylora/internal/application/billing/dto"
	"github.com/stylora-app/stylora/internal/domain/purchase"
	"github.com/stylora-app/stylora/internal/shared/errors"
	"github.com/stylora-app/stylora/internal/shared/logger"
)

// GetPurchaseHistoryUseCase returns a user's purchase audit trail, newest
// first.
type GetPurchaseHistoryUseCase struct {
	purchaseRepo purchase.Repository
	logger       logger.Interface
}

func NewGetPurchaseHistoryUseCase(
	purchaseRepo purchase.Repository,
	logger logger.Interface,
) *GetPurchaseHistoryUseCase {
	return &GetPurchaseHistoryUseCase{
		purchaseRepo: purchaseRepo,
		logger:       logger,
	}
}

func (uc *GetPurchaseHistoryUseCase) Execute(ctx context.Context, userID uint) ([]dto.PurchaseRecord, error) {
	if userID == 0 {
		return nil, errors.NewValidationError("user ID is required")
	}

	purchases, err := uc.purchaseRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	records := make([]dto.PurchaseRecord, 0, len(purchases))
	for _, p := range purchases {
		records = append(records, dto.PurchaseRecord{
			Platform:    p.Platform().String(),
			ExternalID:  p.ExternalID(),
			Plan:        p.Plan().String(),
			Status:      p.Status().String(),
			ProductID:   p.ProductID(),
			PeriodStart: p.PeriodStart(),
			PeriodEnd:   p.PeriodEnd(),
			Amount:      p.Amount(),
			Currency:    p.Currency(),
			CreatedAt:   p.CreatedAt(),
		})
	}

	return records, nil
}
