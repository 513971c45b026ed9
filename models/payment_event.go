package models

import "time"

// PaymentEvent is the message published to Kafka whenever a payment changes
// state. Consumers (notifications, analytics) treat it as append-only.
type PaymentEvent struct {
	Type        string    `json:"type"`
	PaymentID   string    `json:"payment_id"`
	WorkOrderID string    `json:"work_order_id,omitempty"`
	UserID      string    `json:"user_id"`
	Provider    string    `json:"provider"`
	Reference   string    `json:"reference"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	Timestamp   time.Time `json:"timestamp"`
}
