package model

import "time"

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

type PaymentState string

const (
	PaymentUnpaid   PaymentState = "unpaid"
	PaymentPaid     PaymentState = "paid"
	PaymentRefunded PaymentState = "refunded"
)

type ApprovalStatus string

const (
	ApprovalNotRequired ApprovalStatus = "not_required"
	ApprovalPending     ApprovalStatus = "pending"
	ApprovalAccepted    ApprovalStatus = "accepted"
	ApprovalRejected    ApprovalStatus = "rejected"
)

type BookingMethod string

const (
	MethodCash         BookingMethod = "cash"
	MethodBankTransfer BookingMethod = "bank_transfer"
	MethodPayOS        BookingMethod = "payos"
)

// Offline reports whether a method clears synchronously, without waiting for
// an asynchronous gateway confirmation.
func (m BookingMethod) Offline() bool {
	return m == MethodCash || m == MethodBankTransfer
}

// PriceSnapshot is captured at booking creation and never recomputed, so later
// price-table changes cannot retroactively affect an existing booking.
type PriceSnapshot struct {
	Base         int64   `json:"base" bson:"base"`
	Multiplier   float64 `json:"multiplier" bson:"multiplier"`
	AmenitiesFee int64   `json:"amenities_fee" bson:"amenities_fee"`
	Total        int64   `json:"total" bson:"total"`
}

// Booking is the unit of business truth for one reservation attempt that
// passed slot allocation. It outlives the schedule slot it reserved; the slot
// may be released on cancellation while the booking record persists.
type Booking struct {
	ID             string         `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerID     string         `json:"customer_id" bson:"customer_id" validate:"required,mongodb"`
	FieldID        string         `json:"field_id,omitempty" bson:"field_id,omitempty" validate:"omitempty,mongodb"`
	CoachID        string         `json:"coach_id,omitempty" bson:"coach_id,omitempty" validate:"omitempty,mongodb"`
	OwnerID        string         `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	GroupID        string         `json:"group_id,omitempty" bson:"group_id,omitempty"`
	Date           string         `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	StartTime      string         `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	EndTime        string         `json:"end_time" bson:"end_time" validate:"required,clock_time"`
	Status         BookingStatus  `json:"status" bson:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	PaymentStatus  PaymentState   `json:"payment_status" bson:"payment_status" validate:"required,oneof=unpaid paid refunded"`
	ApprovalStatus ApprovalStatus `json:"approval_status" bson:"approval_status"`
	Method         BookingMethod  `json:"method" bson:"method" validate:"required,oneof=cash bank_transfer payos"`
	Note           string         `json:"note,omitempty" bson:"note,omitempty" validate:"omitempty,max=500"`
	Price          PriceSnapshot  `json:"price" bson:"price"`
	PaymentID      string         `json:"payment_id,omitempty" bson:"payment_id,omitempty"`
	CancelReason   string         `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" bson:"updated_at"`
}

// Terminal reports whether no further status transition may leave the booking.
func (b *Booking) Terminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCancelled
}

// Slots lists every (resource, slot) reservation the booking holds.
func (b *Booking) Slots() []ScheduleKey {
	var keys []ScheduleKey
	if b.FieldID != "" {
		keys = append(keys, ScheduleKey{Kind: ResourceField, ResourceID: b.FieldID, Date: b.Date})
	}
	if b.CoachID != "" {
		keys = append(keys, ScheduleKey{Kind: ResourceCoach, ResourceID: b.CoachID, Date: b.Date})
	}
	return keys
}
