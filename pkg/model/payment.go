package model

import "time"

type PaymentPurpose string

const (
	PurposeBookingPayment      PaymentPurpose = "BOOKING_PAYMENT"
	PurposeAccountVerification PaymentPurpose = "ACCOUNT_VERIFICATION"
	PurposeWithdrawal          PaymentPurpose = "WITHDRAWAL"
	PurposeRefund              PaymentPurpose = "REFUND"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "PENDING"
	PaymentProcessing PaymentStatus = "PROCESSING"
	PaymentSucceeded  PaymentStatus = "SUCCEEDED"
	PaymentFailed     PaymentStatus = "FAILED"
	PaymentReversed   PaymentStatus = "REFUNDED"
)

// Payment is one monetary attempt. Purpose tags which reference fields are
// meaningful: BOOKING_PAYMENT carries BookingID (and GroupID for combined
// bookings), ACCOUNT_VERIFICATION carries UserID, WITHDRAWAL carries OwnerID,
// REFUND carries BookingID. A booking has at most one active payment at a
// time; replacement is allowed only while the booking is still pending.
type Payment struct {
	ID               string         `json:"id,omitempty" bson:"_id,omitempty"`
	Purpose          PaymentPurpose `json:"purpose" bson:"purpose" validate:"required,oneof=BOOKING_PAYMENT ACCOUNT_VERIFICATION WITHDRAWAL REFUND"`
	Amount           int64          `json:"amount" bson:"amount" validate:"required,min=1"`
	Method           BookingMethod  `json:"method" bson:"method" validate:"required,oneof=cash bank_transfer payos"`
	Status           PaymentStatus  `json:"status" bson:"status" validate:"required,oneof=PENDING PROCESSING SUCCEEDED FAILED REFUNDED"`
	GatewayOrderCode int64          `json:"gateway_order_code,omitempty" bson:"gateway_order_code,omitempty"`
	CheckoutURL      string         `json:"checkout_url,omitempty" bson:"checkout_url,omitempty"`
	BookingID        string         `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	GroupID          string         `json:"group_id,omitempty" bson:"group_id,omitempty"`
	UserID           string         `json:"user_id,omitempty" bson:"user_id,omitempty"`
	OwnerID          string         `json:"owner_id,omitempty" bson:"owner_id,omitempty"`
	CreatedAt        time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at" bson:"updated_at"`
}
