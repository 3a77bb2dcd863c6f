//go:build wireinject
// +build wireinject

package stock

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/orderflow/internal/stock/delivery/http"
	userdomain "github.com/tair/orderflow/internal/user/domain"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStockRepository,
)

// InitializeHTTPHandler initializes the stock HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, users userdomain.UserRepository) (*httpDelivery.StockHandler, error) {
	wire.Build(
		RepositorySet,
		httpDelivery.NewStockHandler,
	)
	return nil, nil
}
