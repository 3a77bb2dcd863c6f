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
	userdomain "github.com/tair/orderflow/internal/user/domain"
	"github.com/tair/orderflow/kafka"
)

func placeOrderSetup() (*PlaceOrderHandler, *memStockRepository, *memOrderRepository, *stubEvents) {
	users := newMemUserRepository(&userdomain.User{ID: 1, Username: "alice", Role: userdomain.RoleUser, IsActive: true})
	stock := newMemStockRepository()
	orders := newMemOrderRepository()
	catalog := &stubCatalog{units: map[string]*domain.UnitSnapshot{
		"TSHIRT-RED-M": {SKU: "TSHIRT-RED-M", Price: 25.0, ProductName: "T-Shirt", VariationName: "Red", Color: "red", Size: "M"},
		"MUG-01":       {SKU: "MUG-01", Price: 10.0, ProductName: "Mug"},
	}}
	events := &stubEvents{}
	handler := NewPlaceOrderHandler(users, stock, orders, catalog, events)
	return handler, stock, orders, events
}

func TestPlaceOrder(t *testing.T) {
	t.Run("reserves stock and creates a pending order", func(t *testing.T) {
		handler, stock, orders, events := placeOrderSetup()
		stock.add("TSHIRT-RED-M", 10)
		stock.add("MUG-01", 5)

		order, err := handler.Handle(context.Background(), PlaceOrderCommand{
			UserID:       1,
			ShippingCost: 5.0,
			Lines: []domain.Line{
				{SKU: "TSHIRT-RED-M", Quantity: 2},
				{SKU: "MUG-01", Quantity: 3},
			},
		})

		require.NoError(t, err)
		require.NotNil(t, order)
		assert.NotEmpty(t, order.PublicID)
		assert.Equal(t, orderdomain.StatusPending, order.Status)
		assert.Equal(t, orderdomain.PaymentPending, order.PaymentStatus)

		// total = 2*25 + 3*10 + shipping
		assert.Equal(t, 85.0, order.TotalAmount)
		require.Len(t, order.Items, 2)
		assert.Equal(t, 50.0, order.Items[0].TotalPrice)
		assert.Equal(t, "T-Shirt", order.Items[0].ProductName)

		assert.Equal(t, 8, stock.quantity("TSHIRT-RED-M"))
		assert.Equal(t, 2, stock.quantity("MUG-01"))

		movements, _ := stock.ListMovements(stock.bySKU["TSHIRT-RED-M"])
		require.Len(t, movements, 1)
		assert.Equal(t, stockdomain.MovementOut, movements[0].Type)
		assert.Equal(t, stockdomain.ReasonReservation, movements[0].Reason)

		stored, err := orders.FindByPublicID(order.PublicID, 1)
		require.NoError(t, err)
		assert.Len(t, stored.Items, 2)

		require.Len(t, events.published, 1)
		assert.Equal(t, kafka.EventTypeOrderCreated, events.published[0].EventType)
	})

	t.Run("rejects insufficient stock without touching the ledger", func(t *testing.T) {
		handler, stock, orders, _ := placeOrderSetup()
		stock.add("TSHIRT-RED-M", 1)

		_, err := handler.Handle(context.Background(), PlaceOrderCommand{
			UserID: 1,
			Lines:  []domain.Line{{SKU: "TSHIRT-RED-M", Quantity: 3}},
		})

		var insufficientErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, "TSHIRT-RED-M", insufficientErr.SKU)
		assert.Equal(t, 3, insufficientErr.Requested)
		assert.Equal(t, 1, insufficientErr.Available)

		assert.Equal(t, 1, stock.quantity("TSHIRT-RED-M"))
		assert.Empty(t, orders.orders)
	})

	t.Run("keeps earlier reservations when a later line loses the race", func(t *testing.T) {
		handler, stock, orders, _ := placeOrderSetup()
		stock.add("TSHIRT-RED-M", 10)
		mugID := stock.add("MUG-01", 5)

		// The validation pass sees enough stock but the conditional
		// decrement finds it gone, as under a concurrent checkout.
		stock.reserveErr[mugID] = stockdomain.ErrInsufficientStock

		_, err := handler.Handle(context.Background(), PlaceOrderCommand{
			UserID: 1,
			Lines: []domain.Line{
				{SKU: "TSHIRT-RED-M", Quantity: 2},
				{SKU: "MUG-01", Quantity: 3},
			},
		})

		var insufficientErr *domain.InsufficientStockError
		require.ErrorAs(t, err, &insufficientErr)
		assert.Equal(t, "MUG-01", insufficientErr.SKU)

		// The first line stays reserved; there is no rollback.
		assert.Equal(t, 8, stock.quantity("TSHIRT-RED-M"))
		assert.Empty(t, orders.orders)
	})

	t.Run("rejects unknown user", func(t *testing.T) {
		handler, stock, _, _ := placeOrderSetup()
		stock.add("MUG-01", 5)

		_, err := handler.Handle(context.Background(), PlaceOrderCommand{
			UserID: 42,
			Lines:  []domain.Line{{SKU: "MUG-01", Quantity: 1}},
		})

		assert.ErrorIs(t, err, userdomain.ErrUserNotFound)
	})

	t.Run("rejects unknown sku", func(t *testing.T) {
		handler, _, _, _ := placeOrderSetup()

		_, err := handler.Handle(context.Background(), PlaceOrderCommand{
			UserID: 1,
			Lines:  []domain.Line{{SKU: "GHOST-SKU", Quantity: 1}},
		})

		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		handler, _, _, _ := placeOrderSetup()

		_, err := handler.Handle(context.Background(), PlaceOrderCommand{UserID: 1})
		assert.Error(t, err)

		_, err = handler.Handle(context.Background(), PlaceOrderCommand{
			UserID: 1,
			Lines:  []domain.Line{{SKU: "MUG-01", Quantity: 0}},
		})
		assert.Error(t, err)
	})

	t.Run("publish failure does not fail the order", func(t *testing.T) {
		handler, stock, _, events := placeOrderSetup()
		stock.add("MUG-01", 5)
		events.err = errors.New("broker down")

		order, err := handler.Handle(context.Background(), PlaceOrderCommand{
			UserID: 1,
			Lines:  []domain.Line{{SKU: "MUG-01", Quantity: 1}},
		})

		require.NoError(t, err)
		assert.Equal(t, orderdomain.StatusPending, order.Status)
	})
}
