package validator

import (
	"fmt"

	"github.com/MNhat168/sport-zone-sub002/pkg/logger"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"
	"github.com/MNhat168/sport-zone-sub002/pkg/timeslot"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	log      *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	_ = v.RegisterValidation("clock_time", func(fl validator.FieldLevel) bool {
		return timeslot.Valid(fl.Field().String())
	})

	return &BookingValidator{validate: v, log: log}
}

// ValidateRequest covers the structural rules. Rules that need catalog data
// (operating hours, slot counts) live in CheckAgainstField/CheckAgainstCoach.
func (bv *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := bv.validate.Struct(req); err != nil {
		return err
	}
	if req.FieldID == "" && req.CoachID == "" {
		return fmt.Errorf("at least one of field_id or coach_id is required")
	}
	if _, err := timeslot.Duration(req.StartTime, req.EndTime); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(req.Dates))
	for _, d := range req.Dates {
		if _, dup := seen[d]; dup {
			return fmt.Errorf("duplicate date %s in request", d)
		}
		seen[d] = struct{}{}
	}
	return nil
}

// CheckAgainstField enforces the field's operating hours and its
// minimum/maximum slot-count rules.
func (bv *BookingValidator) CheckAgainstField(req *model.BookingRequest, field *model.Field) error {
	within, err := timeslot.Within(req.StartTime, req.EndTime, field.OpeningTime, field.ClosingTime)
	if err != nil {
		return err
	}
	if !within {
		return fmt.Errorf("requested interval %s-%s is outside operating hours %s-%s",
			req.StartTime, req.EndTime, field.OpeningTime, field.ClosingTime)
	}

	minutes, err := timeslot.Duration(req.StartTime, req.EndTime)
	if err != nil {
		return err
	}
	if field.SlotDuration <= 0 {
		return fmt.Errorf("field has no slot duration configured")
	}
	if minutes%field.SlotDuration != 0 {
		return fmt.Errorf("interval length %dm is not a multiple of the %dm slot duration", minutes, field.SlotDuration)
	}

	slots := minutes / field.SlotDuration
	if field.MinSlotCount > 0 && slots < field.MinSlotCount {
		return fmt.Errorf("booking spans %d slots, minimum is %d", slots, field.MinSlotCount)
	}
	if field.MaxSlotCount > 0 && slots > field.MaxSlotCount {
		return fmt.Errorf("booking spans %d slots, maximum is %d", slots, field.MaxSlotCount)
	}
	return nil
}

func (bv *BookingValidator) CheckAgainstCoach(req *model.BookingRequest, coach *model.Coach) error {
	within, err := timeslot.Within(req.StartTime, req.EndTime, coach.OpeningTime, coach.ClosingTime)
	if err != nil {
		return err
	}
	if !within {
		return fmt.Errorf("requested interval %s-%s is outside the coach's hours %s-%s",
			req.StartTime, req.EndTime, coach.OpeningTime, coach.ClosingTime)
	}
	return nil
}

func (bv *BookingValidator) ValidateBooking(b *model.Booking) error {
	return bv.validate.Struct(b)
}
