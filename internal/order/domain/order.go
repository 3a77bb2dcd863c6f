package domain

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Order represents one customer purchase attempt
type Order struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	PublicID         string         `json:"public_id" gorm:"not null;uniqueIndex"`
	UserID           uint           `json:"user_id" gorm:"not null;index"`
	Status           string         `json:"status" gorm:"not null;default:'PENDING'"`
	TotalAmount      float64        `json:"total_amount" gorm:"not null"`
	ShippingCost     float64        `json:"shipping_cost"`
	ShippingAddress  string         `json:"shipping_address"`
	PaymentMethod    string         `json:"payment_method"`
	PaymentStatus    string         `json:"payment_status" gorm:"default:'PENDING'"`
	PaymentSessionID string         `json:"payment_session_id"`
	Notes            string         `json:"notes"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
	Items            []OrderItem    `json:"items" gorm:"-"`
}

// TableName specifies the table name
func (Order) TableName() string {
	return "orders"
}

// OrderItem is an immutable snapshot of one purchased line. Snapshot
// fields keep what was sold even if the catalog changes later.
type OrderItem struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	OrderID       uint      `json:"order_id" gorm:"not null;index"`
	SKU           string    `json:"sku" gorm:"not null"`
	ProductName   string    `json:"product_name"`
	VariationName string    `json:"variation_name"`
	Color         string    `json:"color"`
	Size          string    `json:"size"`
	Image         string    `json:"image"`
	Quantity      int       `json:"quantity" gorm:"not null"`
	UnitPrice     float64   `json:"unit_price" gorm:"not null"`
	TotalPrice    float64   `json:"total_price" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name
func (OrderItem) TableName() string {
	return "order_items"
}

// Order statuses
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// Payment statuses
const (
	PaymentPending = "PENDING"
	PaymentPaid    = "PAID"
	PaymentFailed  = "FAILED"
)

var (
	// ErrOrderNotFound is returned when an order does not resolve for the requesting user
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidOrderState is returned on a status transition the lifecycle does not allow
	ErrInvalidOrderState = errors.New("invalid order state transition")
)

// transitions holds the allowed status transitions. CANCELLED and
// DELIVERED are terminal.
var transitions = map[string][]string{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusShipped, StatusCancelled},
	StatusShipped:   {StatusDelivered, StatusCancelled},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to string) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates and applies a status change on the order.
// On an invalid transition the order is left untouched.
func (o *Order) Transition(to string) error {
	if !CanTransition(o.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidOrderState, o.Status, to)
	}
	o.Status = to
	return nil
}

// IsTerminal reports whether a status admits no further transitions
func IsTerminal(status string) bool {
	return status == StatusCancelled || status == StatusDelivered
}

// OrderRepository defines the contract for order data access.
// CreateWithItems persists the header and the item batch as one
// transaction; items reference the generated order id explicitly.
type OrderRepository interface {
	CreateWithItems(order *Order) error
	FindByID(id uint) (*Order, error)
	FindByPublicID(publicID string, userID uint) (*Order, error)
	FindByUser(userID uint, limit, offset int) ([]Order, error)
	FindAll(limit, offset int) ([]Order, error)
	// FindPendingWithItems returns every PENDING order with its items loaded
	FindPendingWithItems() ([]Order, error)
	// UpdateStatusFields persists status plus the given payment and note fields
	UpdateStatusFields(orderID uint, fields map[string]interface{}) error
	// DeleteWithItems removes an order and its items in one transaction
	DeleteWithItems(orderID uint) error
}
