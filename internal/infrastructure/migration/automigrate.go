package migration

import (
	"github.com/stylora-app/stylora/internal/infrastructure/persistence/models"
)

func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.SubscriptionModel{},
		&models.PurchaseModel{},
		&models.UsageCounterModel{},
	}
}
