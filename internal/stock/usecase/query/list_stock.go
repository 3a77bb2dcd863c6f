package query

import (
	"github.com/tair/orderflow/internal/stock/domain"
)

// ListStockQuery represents the query to list stock items
type ListStockQuery struct {
	Limit  int
	Offset int
}

// ListStockHandler handles list stock queries
type ListStockHandler struct {
	repo domain.StockRepository
}

// NewListStockHandler creates a new list stock handler
func NewListStockHandler(repo domain.StockRepository) *ListStockHandler {
	return &ListStockHandler{repo: repo}
}

// Handle executes the list stock query
func (h *ListStockHandler) Handle(query ListStockQuery) ([]domain.StockItem, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 10
	}

	return h.repo.FindAll(limit, query.Offset)
}
