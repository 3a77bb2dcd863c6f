//go:build wireinject
// +build wireinject

package checkout

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	httpDelivery "github.com/tair/orderflow/internal/checkout/delivery/http"
	"github.com/tair/orderflow/internal/checkout/domain"
	"github.com/tair/orderflow/internal/checkout/usecase/command"
	"github.com/tair/orderflow/internal/checkout/usecase/query"
	"github.com/tair/orderflow/internal/order"
	"github.com/tair/orderflow/internal/stock"
	"github.com/tair/orderflow/internal/user"
)

// Wire sets
var WorkflowSet = wire.NewSet(
	user.ProvideUserRepository,
	stock.ProvideStockRepository,
	order.ProvideOrderRepository,
	command.NewPlaceOrderHandler,
	command.NewCancelOrderHandler,
	command.NewConfirmOrderHandler,
	query.NewValidateStockHandler,
)

// InitializeHTTPHandler initializes the checkout HTTP handler with all dependencies
func InitializeHTTPHandler(
	db *gorm.DB,
	catalog domain.CatalogGateway,
	payment domain.PaymentGateway,
	events domain.EventPublisher,
) (*httpDelivery.CheckoutHandler, error) {
	wire.Build(
		WorkflowSet,
		httpDelivery.NewCheckoutHandler,
	)
	return nil, nil
}
