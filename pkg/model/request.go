package model

// BookingRequest is the orchestrator input. Dates may list several calendar
// days; each produces its own booking and all of them share one group and one
// payment.
type BookingRequest struct {
	FieldID   string        `json:"field_id,omitempty" validate:"omitempty,mongodb"`
	CoachID   string        `json:"coach_id,omitempty" validate:"omitempty,mongodb"`
	Dates     []string      `json:"dates" validate:"required,min=1,max=31,dive,datetime=2006-01-02"`
	StartTime string        `json:"start_time" validate:"required,clock_time"`
	EndTime   string        `json:"end_time" validate:"required,clock_time"`
	Method    BookingMethod `json:"method" validate:"required,oneof=cash bank_transfer payos"`
	Note      string        `json:"note,omitempty" validate:"omitempty,max=500"`
	Amenities []string      `json:"amenities,omitempty" validate:"omitempty,max=10,dive,min=1,max=50"`
}

// CreateResult is what the orchestrator hands back: the persisted bookings
// and the payment record, including the checkout link for online methods.
type CreateResult struct {
	Bookings []*Booking `json:"bookings"`
	Payment  *Payment   `json:"payment"`
}
