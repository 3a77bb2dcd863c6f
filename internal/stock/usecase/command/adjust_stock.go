package command

import (
	"fmt"

	"github.com/tair/orderflow/internal/stock/domain"
)

// AdjustStockCommand represents the command to apply a signed quantity delta
type AdjustStockCommand struct {
	StockItemID uint
	Delta       int
	Reason      string
}

// AdjustStockHandler handles stock adjustments
type AdjustStockHandler struct {
	repo domain.StockRepository
}

// NewAdjustStockHandler creates a new adjust stock handler
func NewAdjustStockHandler(repo domain.StockRepository) *AdjustStockHandler {
	return &AdjustStockHandler{repo: repo}
}

// Handle executes the adjust stock command. Non-negativity of the resulting
// quantity is not enforced here; sufficiency checks belong to the caller.
func (h *AdjustStockHandler) Handle(cmd AdjustStockCommand) (*domain.StockItem, error) {
	if cmd.StockItemID == 0 {
		return nil, fmt.Errorf("stock_item_id is required")
	}

	if cmd.Delta == 0 {
		return nil, fmt.Errorf("delta must be non-zero")
	}

	reason := cmd.Reason
	if reason == "" {
		reason = domain.ReasonManualAdjustment
	}

	item, err := h.repo.Adjust(cmd.StockItemID, cmd.Delta, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	return item, nil
}
