package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/tair/orderflow/internal/checkout/domain"
	orderdomain "github.com/tair/orderflow/internal/order/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
	"github.com/tair/orderflow/kafka"
	"github.com/tair/orderflow/pkg/logger"
)

// CancelOrderHandler records an order cancellation and restores its
// reserved stock. It is the shared failure path of payment confirmation,
// the abandoned-order sweeper and manual cancellation.
type CancelOrderHandler struct {
	orders orderdomain.OrderRepository
	stock  stockdomain.StockRepository
	events domain.EventPublisher
}

// NewCancelOrderHandler creates a new cancel order handler
func NewCancelOrderHandler(
	orders orderdomain.OrderRepository,
	stock stockdomain.StockRepository,
	events domain.EventPublisher,
) *CancelOrderHandler {
	return &CancelOrderHandler{
		orders: orders,
		stock:  stock,
		events: events,
	}
}

// Handle cancels the order and then restores stock line by line. The
// status write comes first and each restoration is attempted
// independently: a failed restoration is logged and skipped, never
// blocking the cancellation record or the remaining lines. Discrepancies
// left behind require manual reconciliation.
func (h *CancelOrderHandler) Handle(ctx context.Context, order *orderdomain.Order, note, restoreReason string) error {
	if err := order.Transition(orderdomain.StatusCancelled); err != nil {
		return err
	}
	order.PaymentStatus = orderdomain.PaymentFailed
	if note != "" {
		order.Notes = appendNote(order.Notes, note)
	}

	fields := map[string]interface{}{
		"status":         order.Status,
		"payment_status": order.PaymentStatus,
		"notes":          order.Notes,
	}
	if order.PaymentSessionID != "" {
		fields["payment_session_id"] = order.PaymentSessionID
	}
	if err := h.orders.UpdateStatusFields(order.ID, fields); err != nil {
		return fmt.Errorf("failed to record cancellation: %w", err)
	}

	for _, item := range order.Items {
		if err := h.restoreLine(item, restoreReason); err != nil {
			logger.Error(ctx).
				Err(err).
				Str("order_public_id", order.PublicID).
				Str("sku", item.SKU).
				Int("quantity", item.Quantity).
				Msg("Failed to restore stock for cancelled order line")
		}
	}

	logger.Info(ctx).
		Str("order_public_id", order.PublicID).
		Str("reason", restoreReason).
		Msg("Order cancelled")

	h.publishCancelled(ctx, order)

	return nil
}

func (h *CancelOrderHandler) restoreLine(item orderdomain.OrderItem, reason string) error {
	stockItem, err := h.stock.FindBySKU(item.SKU)
	if err != nil {
		return fmt.Errorf("failed to resolve stock for %s: %w", item.SKU, err)
	}

	if _, err := h.stock.Adjust(stockItem.ID, item.Quantity, reason); err != nil {
		return fmt.Errorf("failed to restore %d units of %s: %w", item.Quantity, item.SKU, err)
	}
	return nil
}

func (h *CancelOrderHandler) publishCancelled(ctx context.Context, order *orderdomain.Order) {
	if h.events == nil {
		return
	}

	event := kafka.OrderEvent{
		EventType:     kafka.EventTypeOrderCancelled,
		OrderPublicID: order.PublicID,
		UserID:        order.UserID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
	}
	if err := h.events.PublishOrderEvent(ctx, event); err != nil {
		logger.Warn(ctx).
			Err(err).
			Str("order_public_id", order.PublicID).
			Msg("Failed to publish order cancelled event")
	}
}

func appendNote(existing, note string) string {
	if strings.TrimSpace(existing) == "" {
		return note
	}
	return existing + "; " + note
}
