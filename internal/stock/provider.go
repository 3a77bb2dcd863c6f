package stock

import (
	"gorm.io/gorm"

	"github.com/tair/orderflow/internal/stock/domain"
	"github.com/tair/orderflow/internal/stock/repository"
)

// ProvideStockRepository provides the stock ledger repository
func ProvideStockRepository(db *gorm.DB) domain.StockRepository {
	return repository.NewGormStockRepository(db)
}
