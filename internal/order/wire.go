//go:build wireinject
// +build wireinject

package order

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/orderflow/internal/order/delivery/http"
	userdomain "github.com/tair/orderflow/internal/user/domain"
)

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideOrderRepository,
)

// InitializeHTTPHandler initializes the order HTTP handler with all dependencies
func InitializeHTTPHandler(db *gorm.DB, users userdomain.UserRepository) (*httpDelivery.OrderHandler, error) {
	wire.Build(
		RepositorySet,
		httpDelivery.NewOrderHandler,
	)
	return nil, nil
}
