package kafka

import "time"

// OrderLine is the per-line payload carried by order events
type OrderLine struct {
	SKU       string  `json:"sku"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// OrderEvent represents one order lifecycle transition
type OrderEvent struct {
	EventID       string      `json:"event_id"`
	EventType     string      `json:"event_type"`
	OrderPublicID string      `json:"order_public_id"`
	UserID        uint        `json:"user_id"`
	Status        string      `json:"status"`
	PaymentStatus string      `json:"payment_status"`
	TotalAmount   float64     `json:"total_amount"`
	Lines         []OrderLine `json:"lines,omitempty"`
	Timestamp     time.Time   `json:"timestamp"`
}

// Event types
const (
	EventTypeOrderCreated   = "order.created"
	EventTypeOrderConfirmed = "order.confirmed"
	EventTypeOrderCancelled = "order.cancelled"
)

// Kafka topics
const (
	TopicOrderCreated   = "order-created"
	TopicOrderConfirmed = "order-confirmed"
	TopicOrderCancelled = "order-cancelled"
)

func topicForEventType(eventType string) string {
	switch eventType {
	case EventTypeOrderConfirmed:
		return TopicOrderConfirmed
	case EventTypeOrderCancelled:
		return TopicOrderCancelled
	default:
		return TopicOrderCreated
	}
}
