package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/orderflow/internal/checkout/domain"
	orderdomain "github.com/tair/orderflow/internal/order/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
	userdomain "github.com/tair/orderflow/internal/user/domain"
	"github.com/tair/orderflow/kafka"
	"github.com/tair/orderflow/pkg/logger"
)

var tracer = otel.Tracer("checkout")

// PlaceOrderCommand represents the command to turn a cart into a PENDING
// order with stock already reserved
type PlaceOrderCommand struct {
	UserID          uint
	ShippingAddress string
	ShippingCost    float64
	PaymentMethod   string
	Notes           string
	Lines           []domain.Line
}

// PlaceOrderHandler orchestrates stock validation, reservation and order
// materialization as one logical unit
type PlaceOrderHandler struct {
	users   userdomain.UserRepository
	stock   stockdomain.StockRepository
	orders  orderdomain.OrderRepository
	catalog domain.CatalogGateway
	events  domain.EventPublisher
}

// NewPlaceOrderHandler creates a new place order handler
func NewPlaceOrderHandler(
	users userdomain.UserRepository,
	stock stockdomain.StockRepository,
	orders orderdomain.OrderRepository,
	catalog domain.CatalogGateway,
	events domain.EventPublisher,
) *PlaceOrderHandler {
	return &PlaceOrderHandler{
		users:   users,
		stock:   stock,
		orders:  orders,
		catalog: catalog,
		events:  events,
	}
}

// validatedLine pairs a requested line with its resolved stock item and
// catalog snapshot from the validation pass
type validatedLine struct {
	line     domain.Line
	stockID  uint
	snapshot *domain.UnitSnapshot
}

// Handle executes the reservation workflow. The validation pass touches no
// mutable state; stock is decremented only after every line has passed.
// A failure partway through the reservation pass propagates without
// rolling back earlier lines.
func (h *PlaceOrderHandler) Handle(ctx context.Context, cmd PlaceOrderCommand) (*orderdomain.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout.place_order")
	defer span.End()
	span.SetAttributes(
		attribute.Int("user.id", int(cmd.UserID)),
		attribute.Int("order.lines", len(cmd.Lines)),
	)

	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if len(cmd.Lines) == 0 {
		return nil, fmt.Errorf("at least one line is required")
	}
	for _, line := range cmd.Lines {
		if line.SKU == "" {
			return nil, fmt.Errorf("sku is required on every line")
		}
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive on every line")
		}
	}

	user, err := h.users.FindByID(cmd.UserID)
	if err != nil {
		if errors.Is(err, userdomain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}

	// Validation pass: resolve every line before touching any stock
	validated := make([]validatedLine, 0, len(cmd.Lines))
	for _, line := range cmd.Lines {
		item, err := h.stock.FindBySKU(line.SKU)
		if err != nil {
			if errors.Is(err, stockdomain.ErrStockItemNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.SKU)
			}
			return nil, fmt.Errorf("failed to resolve stock for %s: %w", line.SKU, err)
		}

		snapshot, err := h.catalog.ResolveUnit(ctx, line.SKU)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.SKU)
			}
			return nil, fmt.Errorf("failed to resolve catalog unit %s: %w", line.SKU, err)
		}

		if item.Quantity < line.Quantity {
			return nil, &domain.InsufficientStockError{
				SKU:       line.SKU,
				Requested: line.Quantity,
				Available: item.Quantity,
			}
		}

		validated = append(validated, validatedLine{
			line:     line,
			stockID:  item.ID,
			snapshot: snapshot,
		})
	}

	// Reservation pass: conditional decrements in submitted order. Earlier
	// lines stay reserved if a later line fails; that state needs manual
	// reconciliation.
	for _, v := range validated {
		if _, err := h.stock.Reserve(v.stockID, v.line.Quantity, stockdomain.ReasonReservation); err != nil {
			if errors.Is(err, stockdomain.ErrInsufficientStock) {
				available := 0
				if item, findErr := h.stock.FindByID(v.stockID); findErr == nil {
					available = item.Quantity
				}
				logger.Error(ctx).
					Str("sku", v.line.SKU).
					Int("requested", v.line.Quantity).
					Int("available", available).
					Msg("Reservation pass failed mid-way, earlier lines remain reserved")
				return nil, &domain.InsufficientStockError{
					SKU:       v.line.SKU,
					Requested: v.line.Quantity,
					Available: available,
				}
			}
			return nil, fmt.Errorf("failed to reserve stock for %s: %w", v.line.SKU, err)
		}
	}

	// Materialize the order with denormalized line snapshots
	order := &orderdomain.Order{
		PublicID:        uuid.New().String(),
		UserID:          user.ID,
		Status:          orderdomain.StatusPending,
		ShippingCost:    cmd.ShippingCost,
		ShippingAddress: cmd.ShippingAddress,
		PaymentMethod:   cmd.PaymentMethod,
		PaymentStatus:   orderdomain.PaymentPending,
		Notes:           cmd.Notes,
	}

	var total float64
	for _, v := range validated {
		lineTotal := v.snapshot.Price * float64(v.line.Quantity)
		total += lineTotal
		order.Items = append(order.Items, orderdomain.OrderItem{
			SKU:           v.line.SKU,
			ProductName:   v.snapshot.ProductName,
			VariationName: v.snapshot.VariationName,
			Color:         v.snapshot.Color,
			Size:          v.snapshot.Size,
			Image:         v.snapshot.Image,
			Quantity:      v.line.Quantity,
			UnitPrice:     v.snapshot.Price,
			TotalPrice:    lineTotal,
		})
	}
	order.TotalAmount = total + order.ShippingCost

	if err := h.orders.CreateWithItems(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	logger.Info(ctx).
		Str("order_public_id", order.PublicID).
		Uint("user_id", user.ID).
		Float64("total_amount", order.TotalAmount).
		Int("lines", len(order.Items)).
		Msg("Order created with stock reserved")

	h.publishEvent(ctx, order, kafka.EventTypeOrderCreated)

	return order, nil
}

func (h *PlaceOrderHandler) publishEvent(ctx context.Context, order *orderdomain.Order, eventType string) {
	if h.events == nil {
		return
	}

	event := kafka.OrderEvent{
		EventType:     eventType,
		OrderPublicID: order.PublicID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
	}
	for _, item := range order.Items {
		event.Lines = append(event.Lines, kafka.OrderLine{
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	if err := h.events.PublishOrderEvent(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("order_public_id", order.PublicID).
			Str("event_type", eventType).
			Msg("Failed to publish order event")
	}
}
