package query

import (
	"fmt"

	"github.com/tair/orderflow/internal/stock/domain"
)

// ListMovementsQuery represents the query to list movements for a stock item
type ListMovementsQuery struct {
	StockItemID uint
}

// ListMovementsHandler handles movement history queries
type ListMovementsHandler struct {
	repo domain.StockRepository
}

// NewListMovementsHandler creates a new list movements handler
func NewListMovementsHandler(repo domain.StockRepository) *ListMovementsHandler {
	return &ListMovementsHandler{repo: repo}
}

// Handle executes the list movements query, most recent first
func (h *ListMovementsHandler) Handle(query ListMovementsQuery) ([]domain.StockMovement, error) {
	if query.StockItemID == 0 {
		return nil, fmt.Errorf("stock_item_id is required")
	}

	if _, err := h.repo.FindByID(query.StockItemID); err != nil {
		return nil, err
	}

	return h.repo.ListMovements(query.StockItemID)
}
