package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/tair/orderflow/kafka"
)

// Line is one requested purchase line: a purchasable unit and a quantity
type Line struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// UnitSnapshot is the catalog data captured for a purchasable unit at
// checkout time. It is denormalized into the order line so history
// survives later catalog edits.
type UnitSnapshot struct {
	SKU           string  `json:"sku"`
	Price         float64 `json:"price"`
	ProductName   string  `json:"product_name"`
	VariationName string  `json:"variation_name"`
	Color         string  `json:"color"`
	Size          string  `json:"size"`
	Image         string  `json:"image"`
}

// PaymentVerification is the payment provider's one-shot answer for a session
type PaymentVerification struct {
	PaymentStatus string `json:"payment_status"`
	SessionStatus string `json:"session_status"`
	PaymentMethod string `json:"payment_method"`
}

// Succeeded reports whether the provider result counts as a successful
// payment. Anything other than paid and complete is a failure; there is
// no ambiguous state.
func (v PaymentVerification) Succeeded() bool {
	return v.PaymentStatus == "paid" && v.SessionStatus == "complete"
}

// CatalogGateway resolves purchasable units against the catalog service
type CatalogGateway interface {
	ResolveUnit(ctx context.Context, sku string) (*UnitSnapshot, error)
}

// PaymentGateway queries the external payment provider
type PaymentGateway interface {
	VerifyPaymentStatus(ctx context.Context, sessionID string) (*PaymentVerification, error)
}

// EventPublisher publishes order lifecycle events. Publishing is best
// effort; workflows log failures and carry on.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event kafka.OrderEvent) error
}

var (
	// ErrProductNotFound is returned when a requested SKU has no catalog
	// entry or no stock item
	ErrProductNotFound = errors.New("product not found")
	// ErrPaymentVerification is returned when the provider call itself fails
	ErrPaymentVerification = errors.New("payment verification failed")
)

// InsufficientStockError names the line that could not be covered
type InsufficientStockError struct {
	SKU       string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.SKU, e.Requested, e.Available)
}
