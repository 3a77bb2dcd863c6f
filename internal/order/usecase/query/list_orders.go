package query

import (
	"github.com/tair/orderflow/internal/order/domain"
)

// ListOrdersQuery represents the query to list orders. When UserID is zero
// the listing spans all users (admin view).
type ListOrdersQuery struct {
	UserID uint
	Limit  int
	Offset int
}

// ListOrdersHandler handles list order queries
type ListOrdersHandler struct {
	repo domain.OrderRepository
}

// NewListOrdersHandler creates a new list orders handler
func NewListOrdersHandler(repo domain.OrderRepository) *ListOrdersHandler {
	return &ListOrdersHandler{repo: repo}
}

// Handle executes the list orders query
func (h *ListOrdersHandler) Handle(query ListOrdersQuery) ([]domain.Order, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	if query.UserID != 0 {
		return h.repo.FindByUser(query.UserID, limit, query.Offset)
	}

	return h.repo.FindAll(limit, query.Offset)
}
