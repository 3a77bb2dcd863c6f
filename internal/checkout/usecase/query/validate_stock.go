package query

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/orderflow/internal/checkout/domain"
	stockdomain "github.com/tair/orderflow/internal/stock/domain"
)

// ValidateStockQuery represents the read-only pre-check of a cart. It never
// reserves anything.
type ValidateStockQuery struct {
	Lines []domain.Line
}

// LineValidation reports sufficiency and pricing for one requested line
type LineValidation struct {
	SKU        string  `json:"sku"`
	Requested  int     `json:"requested"`
	Available  int     `json:"available"`
	Sufficient bool    `json:"sufficient"`
	UnitPrice  float64 `json:"unit_price"`
	LineTotal  float64 `json:"line_total"`
}

// ValidateStockResult is the aggregate answer for the whole cart
type ValidateStockResult struct {
	IsValid     bool             `json:"is_valid"`
	Lines       []LineValidation `json:"lines"`
	TotalAmount float64          `json:"total_amount"`
}

// ValidateStockHandler handles cart validation queries
type ValidateStockHandler struct {
	stock   stockdomain.StockRepository
	catalog domain.CatalogGateway
}

// NewValidateStockHandler creates a new validate stock handler
func NewValidateStockHandler(stock stockdomain.StockRepository, catalog domain.CatalogGateway) *ValidateStockHandler {
	return &ValidateStockHandler{stock: stock, catalog: catalog}
}

// Handle executes the validation query against current stock and catalog
// state. Sufficiency is an observation of a single instant, not a hold.
func (h *ValidateStockHandler) Handle(ctx context.Context, q ValidateStockQuery) (*ValidateStockResult, error) {
	if len(q.Lines) == 0 {
		return nil, fmt.Errorf("at least one line is required")
	}

	result := &ValidateStockResult{IsValid: true}
	for _, line := range q.Lines {
		if line.SKU == "" || line.Quantity <= 0 {
			return nil, fmt.Errorf("every line needs a sku and a positive quantity")
		}

		item, err := h.stock.FindBySKU(line.SKU)
		if err != nil {
			if errors.Is(err, stockdomain.ErrStockItemNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.SKU)
			}
			return nil, fmt.Errorf("failed to resolve stock for %s: %w", line.SKU, err)
		}

		snapshot, err := h.catalog.ResolveUnit(ctx, line.SKU)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return nil, fmt.Errorf("%w: %s", domain.ErrProductNotFound, line.SKU)
			}
			return nil, fmt.Errorf("failed to resolve catalog unit %s: %w", line.SKU, err)
		}

		lineTotal := snapshot.Price * float64(line.Quantity)
		sufficient := item.Quantity >= line.Quantity
		if !sufficient {
			result.IsValid = false
		}

		result.Lines = append(result.Lines, LineValidation{
			SKU:        line.SKU,
			Requested:  line.Quantity,
			Available:  item.Quantity,
			Sufficient: sufficient,
			UnitPrice:  snapshot.Price,
			LineTotal:  lineTotal,
		})
		result.TotalAmount += lineTotal
	}

	return result, nil
}
