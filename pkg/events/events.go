// Package events defines the bus contract produced by the booking engine and
// consumed by notification/analytics collaborators as well as the engine's
// own payment worker. Delivery is at-least-once; consumers deduplicate on the
// event ID header or apply idempotently.
package events

import "time"

const (
	TopicBookingCreated      = "booking.created"
	TopicBookingConfirmed    = "booking.confirmed"
	TopicBookingCancelled    = "booking.cancelled"
	TopicPaymentSuccess      = "payment.success"
	TopicPaymentExpired      = "payment.expired"
	TopicBalanceUnlocked     = "wallet.balance.unlocked"
	TopicWithdrawalCompleted = "wallet.withdrawal.completed"
)

type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	CustomerID string    `json:"customer_id"`
	OwnerID    string    `json:"owner_id"`
	GroupID    string    `json:"group_id,omitempty"`
	Date       string    `json:"date"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	Amount     int64     `json:"amount"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// PaymentEvent mirrors the gateway webhook after verification. The worker
// consumes it and drives the same processor the webhook handler does.
type PaymentEvent struct {
	OrderCode      int64     `json:"order_code"`
	Status         string    `json:"status"`
	Amount         int64     `json:"amount"`
	BookingID      string    `json:"booking_id,omitempty"`
	CounterAccount string    `json:"counter_account_number,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

type WalletEvent struct {
	OwnerID    string    `json:"owner_id"`
	BookingID  string    `json:"booking_id,omitempty"`
	Amount     int64     `json:"amount"`
	OccurredAt time.Time `json:"occurred_at"`
}
