package order

import (
	"gorm.io/gorm"

	"github.com/tair/orderflow/internal/order/domain"
	"github.com/tair/orderflow/internal/order/repository"
)

// ProvideOrderRepository provides the order repository
func ProvideOrderRepository(db *gorm.DB) domain.OrderRepository {
	return repository.NewGormOrderRepository(db)
}
