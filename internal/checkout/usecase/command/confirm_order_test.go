package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tair/orderflow/internal/checkout/domain"
	orderdomain "github.com/tair/orderflow/internal/order/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
	"github.com/tair/orderflow/kafka"
)

func confirmOrderSetup(payment *stubPayment) (*ConfirmOrderHandler, *memStockRepository, *memOrderRepository, *stubEvents) {
	stock := newMemStockRepository()
	orders := newMemOrderRepository()
	events := &stubEvents{}
	cancel := NewCancelOrderHandler(orders, stock, events)
	handler := NewConfirmOrderHandler(orders, payment, cancel, events)
	return handler, stock, orders, events
}

func pendingOrder(t *testing.T, orders *memOrderRepository, userID uint, lines ...orderdomain.OrderItem) *orderdomain.Order {
	t.Helper()
	order := &orderdomain.Order{
		PublicID:      "ord-pub-1",
		UserID:        userID,
		Status:        orderdomain.StatusPending,
		PaymentStatus: orderdomain.PaymentPending,
		TotalAmount:   60.0,
		Items:         lines,
	}
	require.NoError(t, orders.CreateWithItems(order))
	return order
}

func TestConfirmOrder(t *testing.T) {
	paid := &stubPayment{result: &domain.PaymentVerification{
		PaymentStatus: "paid",
		SessionStatus: "complete",
		PaymentMethod: "card",
	}}
	rejected := &stubPayment{result: &domain.PaymentVerification{
		PaymentStatus: "unpaid",
		SessionStatus: "expired",
	}}

	t.Run("confirms on verified payment without touching stock", func(t *testing.T) {
		handler, stock, orders, events := confirmOrderSetup(paid)
		stock.add("MUG-01", 2) // already reserved at placement
		pendingOrder(t, orders, 1, orderdomain.OrderItem{SKU: "MUG-01", Quantity: 3})

		order, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID:        1,
			OrderPublicID: "ord-pub-1",
			SessionID:     "sess_123",
		})

		require.NoError(t, err)
		assert.Equal(t, orderdomain.StatusConfirmed, order.Status)
		assert.Equal(t, orderdomain.PaymentPaid, order.PaymentStatus)
		assert.Equal(t, "card", order.PaymentMethod)
		assert.Equal(t, "sess_123", order.PaymentSessionID)

		stored, _ := orders.FindByPublicID("ord-pub-1", 1)
		assert.Equal(t, orderdomain.StatusConfirmed, stored.Status)

		// Stock was decremented at reservation time; confirmation must not touch it.
		assert.Equal(t, 2, stock.quantity("MUG-01"))
		movements, _ := stock.ListMovements(stock.bySKU["MUG-01"])
		assert.Empty(t, movements)

		require.Len(t, events.published, 1)
		assert.Equal(t, kafka.EventTypeOrderConfirmed, events.published[0].EventType)
	})

	t.Run("repeat confirmation of a paid order is a no-op", func(t *testing.T) {
		handler, stock, orders, events := confirmOrderSetup(paid)
		stock.add("MUG-01", 2)
		pendingOrder(t, orders, 1, orderdomain.OrderItem{SKU: "MUG-01", Quantity: 3})

		_, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID: 1, OrderPublicID: "ord-pub-1", SessionID: "sess_123",
		})
		require.NoError(t, err)

		order, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID: 1, OrderPublicID: "ord-pub-1", SessionID: "sess_123",
		})
		require.NoError(t, err)
		assert.Equal(t, orderdomain.StatusConfirmed, order.Status)

		assert.Equal(t, 2, stock.quantity("MUG-01"))
		assert.Len(t, events.published, 1)
	})

	t.Run("cancels and restores stock on rejected payment", func(t *testing.T) {
		handler, stock, orders, events := confirmOrderSetup(rejected)
		stock.add("MUG-01", 2)
		pendingOrder(t, orders, 1, orderdomain.OrderItem{SKU: "MUG-01", Quantity: 3})

		order, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID:        1,
			OrderPublicID: "ord-pub-1",
			SessionID:     "sess_456",
		})

		require.NoError(t, err)
		assert.Equal(t, orderdomain.StatusCancelled, order.Status)
		assert.Equal(t, orderdomain.PaymentFailed, order.PaymentStatus)
		assert.Contains(t, order.Notes, "sess_456")

		assert.Equal(t, 5, stock.quantity("MUG-01"))
		movements, _ := stock.ListMovements(stock.bySKU["MUG-01"])
		require.Len(t, movements, 1)
		assert.Equal(t, stockdomain.MovementIn, movements[0].Type)
		assert.Equal(t, stockdomain.ReasonPaymentRejected, movements[0].Reason)

		require.Len(t, events.published, 1)
		assert.Equal(t, kafka.EventTypeOrderCancelled, events.published[0].EventType)
	})

	t.Run("repeat rejection of a cancelled order does not restore twice", func(t *testing.T) {
		handler, stock, orders, _ := confirmOrderSetup(rejected)
		stock.add("MUG-01", 2)
		pendingOrder(t, orders, 1, orderdomain.OrderItem{SKU: "MUG-01", Quantity: 3})

		_, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID: 1, OrderPublicID: "ord-pub-1", SessionID: "sess_456",
		})
		require.NoError(t, err)
		require.Equal(t, 5, stock.quantity("MUG-01"))

		order, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID: 1, OrderPublicID: "ord-pub-1", SessionID: "sess_456",
		})
		require.NoError(t, err)
		assert.Equal(t, orderdomain.StatusCancelled, order.Status)
		assert.Equal(t, 5, stock.quantity("MUG-01"))
	})

	t.Run("verification error leaves the order untouched", func(t *testing.T) {
		failing := &stubPayment{err: errors.New("provider timeout")}
		handler, _, orders, events := confirmOrderSetup(failing)
		pendingOrder(t, orders, 1, orderdomain.OrderItem{SKU: "MUG-01", Quantity: 3})

		_, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID: 1, OrderPublicID: "ord-pub-1", SessionID: "sess_789",
		})

		assert.ErrorIs(t, err, domain.ErrPaymentVerification)

		stored, _ := orders.FindByPublicID("ord-pub-1", 1)
		assert.Equal(t, orderdomain.StatusPending, stored.Status)
		assert.Equal(t, orderdomain.PaymentPending, stored.PaymentStatus)
		assert.Empty(t, events.published)
	})

	t.Run("order scoped to the requesting user", func(t *testing.T) {
		handler, _, orders, _ := confirmOrderSetup(paid)
		pendingOrder(t, orders, 1)

		_, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID: 2, OrderPublicID: "ord-pub-1", SessionID: "sess_123",
		})

		assert.ErrorIs(t, err, orderdomain.ErrOrderNotFound)
	})

	t.Run("rejects missing session id", func(t *testing.T) {
		handler, _, _, _ := confirmOrderSetup(paid)

		_, err := handler.Handle(context.Background(), ConfirmOrderCommand{
			UserID: 1, OrderPublicID: "ord-pub-1",
		})

		assert.Error(t, err)
	})
}
