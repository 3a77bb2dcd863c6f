package domain

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// StockItem represents the available quantity for one purchasable unit (SKU)
type StockItem struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	SKU       string         `json:"sku" gorm:"not null;uniqueIndex"`
	Quantity  int            `json:"quantity" gorm:"not null;default:0"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (StockItem) TableName() string {
	return "stock_items"
}

// StockMovement is one immutable audit record of a quantity change.
// Movements are append-only; the signed sum of movements for an item
// always equals its committed quantity.
type StockMovement struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	StockItemID uint      `json:"stock_item_id" gorm:"not null;index"`
	Type        string    `json:"type" gorm:"not null"` // IN or OUT
	Quantity    int       `json:"quantity" gorm:"not null"`
	Reason      string    `json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the table name
func (StockMovement) TableName() string {
	return "stock_movements"
}

// Movement types
const (
	MovementIn  = "IN"
	MovementOut = "OUT"
)

// Movement reasons used by the checkout workflows
const (
	ReasonInitialStock     = "initial stock"
	ReasonReservation      = "reservation: order created"
	ReasonPaymentRejected  = "cancellation: payment rejected"
	ReasonOrderAbandoned   = "cancellation: order abandoned"
	ReasonCustomerCancel   = "cancellation: cancelled by customer"
	ReasonManualAdjustment = "manual adjustment"
)

var (
	// ErrDuplicateStock is returned when initializing stock for a SKU that already has an item
	ErrDuplicateStock = errors.New("stock item already exists for sku")
	// ErrStockItemNotFound is returned when a stock item id or SKU does not resolve
	ErrStockItemNotFound = errors.New("stock item not found")
	// ErrInsufficientStock is returned by a conditional reservation when the
	// remaining quantity cannot cover the requested amount
	ErrInsufficientStock = errors.New("insufficient stock")
)

// StockRepository defines the contract for stock ledger data access.
// Adjust and Reserve must write the item update and the movement insert
// atomically; a partial write would break the reconciliation invariant.
type StockRepository interface {
	// CreateWithInitialMovement creates a stock item together with its
	// opening IN movement in one transaction.
	CreateWithInitialMovement(item *StockItem, reason string) error
	FindByID(id uint) (*StockItem, error)
	FindBySKU(sku string) (*StockItem, error)
	FindAll(limit, offset int) ([]StockItem, error)
	// Adjust applies a signed delta and records the matching movement.
	// It does not reject deltas that drive the quantity negative; callers
	// are responsible for checking sufficiency first.
	Adjust(stockItemID uint, delta int, reason string) (*StockItem, error)
	// Reserve decrements quantity only if the remaining quantity covers it,
	// as a single conditional update, and records an OUT movement.
	Reserve(stockItemID uint, quantity int, reason string) (*StockItem, error)
	ListMovements(stockItemID uint) ([]StockMovement, error)
}
