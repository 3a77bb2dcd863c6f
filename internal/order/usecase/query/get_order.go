package query

import (
	"fmt"

	"github.com/tair/orderflow/internal/order/domain"
)

// GetOrderQuery represents the query to get one order scoped to its owner
type GetOrderQuery struct {
	PublicID string
	UserID   uint
}

// GetOrderHandler handles get order queries
type GetOrderHandler struct {
	repo domain.OrderRepository
}

// NewGetOrderHandler creates a new get order handler
func NewGetOrderHandler(repo domain.OrderRepository) *GetOrderHandler {
	return &GetOrderHandler{repo: repo}
}

// Handle executes the get order query with items loaded
func (h *GetOrderHandler) Handle(query GetOrderQuery) (*domain.Order, error) {
	if query.PublicID == "" {
		return nil, fmt.Errorf("public_id is required")
	}
	if query.UserID == 0 {
		return nil, fmt.Errorf("user_id is required")
	}

	return h.repo.FindByPublicID(query.PublicID, query.UserID)
}
