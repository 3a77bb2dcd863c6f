package command

import (
	"fmt"

	"github.com/tair/orderflow/internal/order/domain"
)

// TransitionStatusCommand represents a fulfillment status change request
type TransitionStatusCommand struct {
	OrderID   uint
	NewStatus string
	Notes     string
}

// TransitionStatusHandler handles order status transitions
type TransitionStatusHandler struct {
	repo domain.OrderRepository
}

// NewTransitionStatusHandler creates a new transition status handler
func NewTransitionStatusHandler(repo domain.OrderRepository) *TransitionStatusHandler {
	return &TransitionStatusHandler{repo: repo}
}

// Handle validates the transition against the order lifecycle and persists
// it. An invalid transition fails without mutating the order.
func (h *TransitionStatusHandler) Handle(cmd TransitionStatusCommand) (*domain.Order, error) {
	if cmd.OrderID == 0 {
		return nil, fmt.Errorf("order_id is required")
	}

	order, err := h.repo.FindByID(cmd.OrderID)
	if err != nil {
		return nil, err
	}

	if err := order.Transition(cmd.NewStatus); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"status": order.Status}
	if cmd.Notes != "" {
		order.Notes = cmd.Notes
		fields["notes"] = cmd.Notes
	}

	if err := h.repo.UpdateStatusFields(order.ID, fields); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	return order, nil
}
