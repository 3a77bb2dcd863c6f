package checkout

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/tair/orderflow/internal/checkout/domain"
	"github.com/tair/orderflow/internal/checkout/sweeper"
	"github.com/tair/orderflow/internal/checkout/usecase/command"
	"github.com/tair/orderflow/internal/order"
	"github.com/tair/orderflow/internal/stock"
)

// NewSweeper builds the abandoned-order sweeper on top of the same
// cancellation path the confirmation workflow uses.
func NewSweeper(db *gorm.DB, events domain.EventPublisher, interval, threshold time.Duration, reg prometheus.Registerer) *sweeper.Sweeper {
	stockRepository := stock.ProvideStockRepository(db)
	orderRepository := order.ProvideOrderRepository(db)
	cancelOrderHandler := command.NewCancelOrderHandler(orderRepository, stockRepository, events)
	return sweeper.New(orderRepository, cancelOrderHandler, interval, threshold, reg)
}
