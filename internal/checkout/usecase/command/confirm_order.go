package command

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tair/orderflow/internal/checkout/domain"
	orderdomain "github.com/tair/orderflow/internal/order/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
	"github.com/tair/orderflow/kafka"
	"github.com/tair/orderflow/pkg/logger"
)

// ConfirmOrderCommand represents the command to finalize an order from an
// external payment session result
type ConfirmOrderCommand struct {
	UserID        uint
	OrderPublicID string
	SessionID     string
}

// ConfirmOrderHandler queries the payment provider once and deterministically
// finalizes the order
type ConfirmOrderHandler struct {
	orders  orderdomain.OrderRepository
	payment domain.PaymentGateway
	cancel  *CancelOrderHandler
	events  domain.EventPublisher
}

// NewConfirmOrderHandler creates a new confirm order handler
func NewConfirmOrderHandler(
	orders orderdomain.OrderRepository,
	payment domain.PaymentGateway,
	cancel *CancelOrderHandler,
	events domain.EventPublisher,
) *ConfirmOrderHandler {
	return &ConfirmOrderHandler{
		orders:  orders,
		payment: payment,
		cancel:  cancel,
		events:  events,
	}
}

// Handle verifies the payment session and finalizes the order. Success is
// a pure status flip; stock was already decremented at reservation time.
// Failure cancels the order and restores stock per line. The provider is
// consulted before any order mutation, so a verification error leaves the
// order untouched.
func (h *ConfirmOrderHandler) Handle(ctx context.Context, cmd ConfirmOrderCommand) (*orderdomain.Order, error) {
	ctx, span := tracer.Start(ctx, "checkout.confirm_order")
	defer span.End()
	span.SetAttributes(
		attribute.String("order.public_id", cmd.OrderPublicID),
		attribute.String("payment.session_id", cmd.SessionID),
	)

	if cmd.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}
	if cmd.OrderPublicID == "" {
		return nil, fmt.Errorf("order_public_id is required")
	}
	if cmd.SessionID == "" {
		return nil, fmt.Errorf("session_id is required")
	}

	verification, err := h.payment.VerifyPaymentStatus(ctx, cmd.SessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPaymentVerification, err)
	}

	order, err := h.orders.FindByPublicID(cmd.OrderPublicID, cmd.UserID)
	if err != nil {
		return nil, err
	}

	if verification.Succeeded() {
		// Repeated confirmations of a paid order are a no-op; stock is
		// never touched at confirmation time.
		if order.Status == orderdomain.StatusConfirmed {
			return order, nil
		}

		if err := order.Transition(orderdomain.StatusConfirmed); err != nil {
			return nil, err
		}
		order.PaymentStatus = orderdomain.PaymentPaid
		order.PaymentMethod = verification.PaymentMethod
		order.PaymentSessionID = cmd.SessionID

		fields := map[string]interface{}{
			"status":             order.Status,
			"payment_status":     order.PaymentStatus,
			"payment_method":     order.PaymentMethod,
			"payment_session_id": order.PaymentSessionID,
		}
		if err := h.orders.UpdateStatusFields(order.ID, fields); err != nil {
			return nil, fmt.Errorf("failed to confirm order: %w", err)
		}

		logger.Info(ctx).
			Str("order_public_id", order.PublicID).
			Str("payment_method", order.PaymentMethod).
			Msg("Order confirmed, payment verified")

		h.publishConfirmed(ctx, order)

		return order, nil
	}

	// Failed, expired or pending sessions all land here; the decision is
	// binary and made once per call.
	if order.Status == orderdomain.StatusCancelled {
		return order, nil
	}

	order.PaymentSessionID = cmd.SessionID
	note := fmt.Sprintf("payment rejected for session %s", cmd.SessionID)
	if err := h.cancel.Handle(ctx, order, note, stockdomain.ReasonPaymentRejected); err != nil {
		return nil, err
	}

	return order, nil
}

func (h *ConfirmOrderHandler) publishConfirmed(ctx context.Context, order *orderdomain.Order) {
	if h.events == nil {
		return
	}

	event := kafka.OrderEvent{
		EventType:     kafka.EventTypeOrderConfirmed,
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
			Msg("Failed to publish order confirmed event")
	}
}
