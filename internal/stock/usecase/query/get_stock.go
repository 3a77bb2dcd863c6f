package query

import (
	"fmt"

	"github.com/tair/orderflow/internal/stock/domain"
)

// GetStockQuery represents the query to get one stock item
type GetStockQuery struct {
	ID  uint
	SKU string
}

// GetStockHandler handles get stock queries by id or SKU
type GetStockHandler struct {
	repo domain.StockRepository
}

// NewGetStockHandler creates a new get stock handler
func NewGetStockHandler(repo domain.StockRepository) *GetStockHandler {
	return &GetStockHandler{repo: repo}
}

// Handle executes the get stock query
func (h *GetStockHandler) Handle(query GetStockQuery) (*domain.StockItem, error) {
	if query.ID != 0 {
		return h.repo.FindByID(query.ID)
	}

	if query.SKU != "" {
		return h.repo.FindBySKU(query.SKU)
	}

	return nil, fmt.Errorf("id or sku is required")
}
