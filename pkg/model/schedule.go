package model

import "time"

// ResourceKind identifies which kind of bookable resource a schedule belongs to.
type ResourceKind string

const (
	ResourceField ResourceKind = "field"
	ResourceCoach ResourceKind = "coach"
)

// TimeSlot is a half-open interval on a single calendar day, "HH:MM" clock strings.
type TimeSlot struct {
	StartTime string `json:"start_time" bson:"start_time" validate:"required,clock_time"`
	EndTime   string `json:"end_time" bson:"end_time" validate:"required,clock_time"`
}

// Schedule holds the booked slots of one resource on one calendar day.
// Created lazily on the first booking attempt for the (resource, day) pair and
// never deleted. Version increases on every successful mutation and is the
// optimistic-concurrency gate for slot allocation.
type Schedule struct {
	ID            string       `json:"id,omitempty" bson:"_id,omitempty"`
	ResourceKind  ResourceKind `json:"resource_kind" bson:"resource_kind" validate:"required,oneof=field coach"`
	ResourceID    string       `json:"resource_id" bson:"resource_id" validate:"required,mongodb"`
	Date          string       `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	BookedSlots   []TimeSlot   `json:"booked_slots" bson:"booked_slots"`
	IsHoliday     bool         `json:"is_holiday" bson:"is_holiday"`
	HolidayReason string       `json:"holiday_reason,omitempty" bson:"holiday_reason,omitempty"`
	Version       int64        `json:"version" bson:"version"`
	CreatedAt     time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at" bson:"updated_at"`
}

// ScheduleKey identifies the schedule document of one resource on one day.
type ScheduleKey struct {
	Kind       ResourceKind
	ResourceID string
	Date       string
}
