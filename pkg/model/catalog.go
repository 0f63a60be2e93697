package model

import "time"

// Field is a bookable venue resource. Catalog management is handled
// elsewhere; the booking engine only reads these records to validate
// references and price requests.
type Field struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID      string    `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Name         string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Active       bool      `json:"active" bson:"active"`
	OpeningTime  string    `json:"opening_time" bson:"opening_time" validate:"required,clock_time"`
	ClosingTime  string    `json:"closing_time" bson:"closing_time" validate:"required,clock_time"`
	BasePrice    int64     `json:"base_price" bson:"base_price" validate:"required,min=0"`
	PeakRate     float64   `json:"peak_rate" bson:"peak_rate"`
	PeakStart    string    `json:"peak_start,omitempty" bson:"peak_start,omitempty" validate:"omitempty,clock_time"`
	PeakEnd      string    `json:"peak_end,omitempty" bson:"peak_end,omitempty" validate:"omitempty,clock_time"`
	MinSlotCount int       `json:"min_slot_count" bson:"min_slot_count"`
	MaxSlotCount int       `json:"max_slot_count" bson:"max_slot_count"`
	SlotDuration int       `json:"slot_duration_min" bson:"slot_duration_min" validate:"required,min=15,max=240"`
	Amenities    []Amenity `json:"amenities,omitempty" bson:"amenities,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Amenity is an optional add-on with a flat fee folded into the price snapshot.
type Amenity struct {
	Name string `json:"name" bson:"name" validate:"required,min=1,max=50"`
	Fee  int64  `json:"fee" bson:"fee" validate:"min=0"`
}

// Coach is a bookable person resource for combined field+coach bookings.
type Coach struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID     string    `json:"owner_id" bson:"owner_id" validate:"required,mongodb"`
	Name        string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Active      bool      `json:"active" bson:"active"`
	HourlyRate  int64     `json:"hourly_rate" bson:"hourly_rate" validate:"required,min=0"`
	OpeningTime string    `json:"opening_time" bson:"opening_time" validate:"required,clock_time"`
	ClosingTime string    `json:"closing_time" bson:"closing_time" validate:"required,clock_time"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
