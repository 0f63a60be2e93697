// Package pricing is the pure pricing collaborator. It is deterministic and
// does no I/O; the orchestrator snapshots its output into the booking at
// creation time, so later price-table changes never retroactively affect an
// existing booking.
package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/MNhat168/sport-zone-sub002/pkg/model"
	"github.com/MNhat168/sport-zone-sub002/pkg/timeslot"
)

// weekendRate applies on Saturday and Sunday on top of any peak-hour rate.
const weekendRate = 1.2

// Quote prices one field interval: base price per hour, scaled by the
// time-of-day and day-of-week multiplier, plus flat fees for the requested
// amenities.
func Quote(field *model.Field, date, start, end string, amenities []string) (model.PriceSnapshot, error) {
	minutes, err := timeslot.Duration(start, end)
	if err != nil {
		return model.PriceSnapshot{}, err
	}

	multiplier, err := Multiplier(field, date, start, end)
	if err != nil {
		return model.PriceSnapshot{}, err
	}

	base := field.BasePrice * int64(minutes) / 60
	fee := amenitiesFee(field.Amenities, amenities)

	return model.PriceSnapshot{
		Base:         base,
		Multiplier:   multiplier,
		AmenitiesFee: fee,
		Total:        int64(math.Round(float64(base)*multiplier)) + fee,
	}, nil
}

// QuoteCoach prices a coach's hour at a flat hourly rate; coach sessions
// carry no peak or weekend multiplier.
func QuoteCoach(coach *model.Coach, start, end string) (model.PriceSnapshot, error) {
	minutes, err := timeslot.Duration(start, end)
	if err != nil {
		return model.PriceSnapshot{}, err
	}
	base := coach.HourlyRate * int64(minutes) / 60
	return model.PriceSnapshot{
		Base:       base,
		Multiplier: 1,
		Total:      base,
	}, nil
}

// Multiplier combines the field's peak-hour rate with the weekend rate. An
// interval counts as peak when it overlaps the field's peak window at all.
func Multiplier(field *model.Field, date, start, end string) (float64, error) {
	multiplier := 1.0

	if field.PeakRate > 0 && field.PeakStart != "" && field.PeakEnd != "" {
		s, err := timeslot.ToMinutes(start)
		if err != nil {
			return 0, err
		}
		e, err := timeslot.ToMinutes(end)
		if err != nil {
			return 0, err
		}
		ps, err := timeslot.ToMinutes(field.PeakStart)
		if err != nil {
			return 0, err
		}
		pe, err := timeslot.ToMinutes(field.PeakEnd)
		if err != nil {
			return 0, err
		}
		if timeslot.Overlaps(s, e, ps, pe) {
			multiplier = field.PeakRate
		}
	}

	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", date, err)
	}
	if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
		multiplier *= weekendRate
	}

	return multiplier, nil
}

func amenitiesFee(available []model.Amenity, requested []string) int64 {
	if len(requested) == 0 {
		return 0
	}
	byName := make(map[string]int64, len(available))
	for _, a := range available {
		byName[a.Name] = a.Fee
	}
	var total int64
	for _, name := range requested {
		total += byName[name]
	}
	return total
}
