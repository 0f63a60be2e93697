package service

import (
	"context"

	"github.com/MNhat168/sport-zone-sub002/internal/schedules/repository"
	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"
	"github.com/MNhat168/sport-zone-sub002/pkg/timeslot"
)

// Allocator owns per-resource, per-day slot inventory. Reservation is
// optimistic: contention on a single schedule document is expected to be rare
// and short, so a version-gated retry is cheaper than a lock.
type Allocator interface {
	// Reserve books the slot or fails with a Conflict error: "slot
	// unavailable" when the interval overlaps a booked slot, "holiday" when
	// the day is closed, "concurrent modification" when another writer won
	// the version race. All three are retryable by re-attempting the whole
	// booking.
	Reserve(ctx context.Context, key model.ScheduleKey, slot model.TimeSlot) error
	// Release frees the slot. Releasing an absent slot is a no-op.
	Release(ctx context.Context, key model.ScheduleKey, slot model.TimeSlot) error
	// MarkHoliday closes the day and clears its slots, returning the updated
	// schedule. Booking cancellation fan-out belongs to the caller.
	MarkHoliday(ctx context.Context, key model.ScheduleKey, reason string) (*model.Schedule, error)
	GetByKey(ctx context.Context, key model.ScheduleKey) (*model.Schedule, error)
}

type allocator struct {
	repo repository.ScheduleRepository
	cfg  *config.Config
}

func NewAllocator(repo repository.ScheduleRepository, cfg *config.Config) Allocator {
	return &allocator{repo: repo, cfg: cfg}
}

// Reserve runs the two-phase reservation. Phase one is an atomic
// upsert+increment that guarantees single-writer lazy creation but validates
// nothing about conflicts. Phase two re-checks the returned document and
// commits with a version-gated append, closing the window between the read
// and the write without holding a lock.
func (a *allocator) Reserve(ctx context.Context, key model.ScheduleKey, slot model.TimeSlot) error {
	sc, err := a.repo.Upsert(ctx, key)
	if err != nil {
		return apperrors.Internal("Failed to load schedule", err)
	}

	if sc.IsHoliday {
		return apperrors.Conflict("holiday")
	}

	conflict, err := timeslot.Conflicts(slot.StartTime, slot.EndTime, sc.BookedSlots)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}
	if conflict {
		return apperrors.Conflict("slot unavailable")
	}

	if err := a.repo.AppendSlot(ctx, sc.ID, sc.Version, slot); err != nil {
		if err == repository.ErrVersionMiss {
			return apperrors.Conflict("concurrent modification")
		}
		return apperrors.Internal("Failed to reserve slot", err)
	}

	a.cfg.Log.Debug("Slot reserved",
		"resource_kind", key.Kind,
		"resource_id", key.ResourceID,
		"date", key.Date,
		"start_time", slot.StartTime,
		"end_time", slot.EndTime,
	)
	return nil
}

func (a *allocator) Release(ctx context.Context, key model.ScheduleKey, slot model.TimeSlot) error {
	if err := a.repo.PullSlot(ctx, key, slot); err != nil {
		return apperrors.Internal("Failed to release slot", err)
	}

	a.cfg.Log.Debug("Slot released",
		"resource_kind", key.Kind,
		"resource_id", key.ResourceID,
		"date", key.Date,
		"start_time", slot.StartTime,
		"end_time", slot.EndTime,
	)
	return nil
}

func (a *allocator) MarkHoliday(ctx context.Context, key model.ScheduleKey, reason string) (*model.Schedule, error) {
	if reason == "" {
		return nil, apperrors.InvalidInput("Holiday reason cannot be empty")
	}

	sc, err := a.repo.SetHoliday(ctx, key, reason)
	if err != nil {
		return nil, apperrors.Internal("Failed to mark holiday", err)
	}

	a.cfg.Log.Info("Schedule marked as holiday",
		"resource_kind", key.Kind,
		"resource_id", key.ResourceID,
		"date", key.Date,
		"reason", reason,
	)
	return sc, nil
}

func (a *allocator) GetByKey(ctx context.Context, key model.ScheduleKey) (*model.Schedule, error) {
	sc, err := a.repo.FindByKey(ctx, key)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("Schedule")
		}
		return nil, apperrors.Internal("Failed to retrieve schedule", err)
	}
	return sc, nil
}
