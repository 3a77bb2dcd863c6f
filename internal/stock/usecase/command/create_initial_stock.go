package command

import (
	"fmt"

	"github.com/tair/orderflow/internal/stock/domain"
)

// CreateInitialStockCommand represents the command to initialize stock for a SKU
type CreateInitialStockCommand struct {
	SKU      string
	Quantity int
}

// CreateInitialStockHandler handles initial stock creation
type CreateInitialStockHandler struct {
	repo domain.StockRepository
}

// NewCreateInitialStockHandler creates a new create initial stock handler
func NewCreateInitialStockHandler(repo domain.StockRepository) *CreateInitialStockHandler {
	return &CreateInitialStockHandler{repo: repo}
}

// Handle executes the create initial stock command
func (h *CreateInitialStockHandler) Handle(cmd CreateInitialStockCommand) (*domain.StockItem, error) {
	if cmd.SKU == "" {
		return nil, fmt.Errorf("sku is required")
	}

	if cmd.Quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative")
	}

	item := &domain.StockItem{
		SKU:      cmd.SKU,
		Quantity: cmd.Quantity,
	}

	if err := h.repo.CreateWithInitialMovement(item, domain.ReasonInitialStock); err != nil {
		return nil, fmt.Errorf("failed to create initial stock: %w", err)
	}

	return item, nil
}
