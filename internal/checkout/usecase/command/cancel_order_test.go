package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderdomain "github.com/tair/orderflow/internal/order/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
)

func TestCancelOrder(t *testing.T) {
	t.Run("records cancellation before restoring stock", func(t *testing.T) {
		stock := newMemStockRepository()
		orders := newMemOrderRepository()
		events := &stubEvents{}
		handler := NewCancelOrderHandler(orders, stock, events)

		stock.add("MUG-01", 0)
		order := pendingOrder(t, orders, 1, orderdomain.OrderItem{SKU: "MUG-01", Quantity: 4})

		err := handler.Handle(context.Background(), order, "cancelled by customer", stockdomain.ReasonCustomerCancel)

		require.NoError(t, err)
		stored, _ := orders.FindByPublicID(order.PublicID, 1)
		assert.Equal(t, orderdomain.StatusCancelled, stored.Status)
		assert.Equal(t, orderdomain.PaymentFailed, stored.PaymentStatus)
		assert.Equal(t, 4, stock.quantity("MUG-01"))

		movements, _ := stock.ListMovements(stock.bySKU["MUG-01"])
		require.Len(t, movements, 1)
		assert.Equal(t, stockdomain.ReasonCustomerCancel, movements[0].Reason)
	})

	t.Run("a failed restoration never blocks the remaining lines", func(t *testing.T) {
		stock := newMemStockRepository()
		orders := newMemOrderRepository()
		handler := NewCancelOrderHandler(orders, stock, nil)

		// GHOST-SKU has no stock item, so its restoration fails
		stock.add("MUG-01", 0)
		order := pendingOrder(t, orders, 1,
			orderdomain.OrderItem{SKU: "GHOST-SKU", Quantity: 2},
			orderdomain.OrderItem{SKU: "MUG-01", Quantity: 4},
		)

		err := handler.Handle(context.Background(), order, "", stockdomain.ReasonOrderAbandoned)

		require.NoError(t, err)
		stored, _ := orders.FindByPublicID(order.PublicID, 1)
		assert.Equal(t, orderdomain.StatusCancelled, stored.Status)
		assert.Equal(t, 4, stock.quantity("MUG-01"))
	})

	t.Run("rejects terminal states", func(t *testing.T) {
		stock := newMemStockRepository()
		orders := newMemOrderRepository()
		handler := NewCancelOrderHandler(orders, stock, nil)

		order := &orderdomain.Order{
			PublicID: "ord-pub-2",
			UserID:   1,
			Status:   orderdomain.StatusDelivered,
		}
		require.NoError(t, orders.CreateWithItems(order))

		err := handler.Handle(context.Background(), order, "", stockdomain.ReasonCustomerCancel)

		assert.ErrorIs(t, err, orderdomain.ErrInvalidOrderState)
		stored, _ := orders.FindByPublicID("ord-pub-2", 1)
		assert.Equal(t, orderdomain.StatusDelivered, stored.Status)
	})
}
