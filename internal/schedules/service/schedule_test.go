package service

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/MNhat168/sport-zone-sub002/internal/schedules/repository"
	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"
	mongotx "github.com/MNhat168/sport-zone-sub002/pkg/db/mongo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduleRepository reproduces the store's atomicity contract in memory:
// Upsert and AppendSlot each run under one lock, and AppendSlot only matches
// on the expected version.
type fakeScheduleRepository struct {
	mu     sync.Mutex
	docs   map[model.ScheduleKey]*model.Schedule
	nextID int
}

func newFakeScheduleRepository() *fakeScheduleRepository {
	return &fakeScheduleRepository{
		docs: make(map[model.ScheduleKey]*model.Schedule),
	}
}

func (f *fakeScheduleRepository) Upsert(_ context.Context, key model.ScheduleKey) (*model.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sc, ok := f.docs[key]
	if !ok {
		f.nextID++
		sc = &model.Schedule{
			ID:           strconv.Itoa(f.nextID),
			ResourceKind: key.Kind,
			ResourceID:   key.ResourceID,
			Date:         key.Date,
			BookedSlots:  []model.TimeSlot{},
		}
		f.docs[key] = sc
	}
	sc.Version++

	snapshot := *sc
	snapshot.BookedSlots = append([]model.TimeSlot(nil), sc.BookedSlots...)
	return &snapshot, nil
}

func (f *fakeScheduleRepository) AppendSlot(_ context.Context, id string, expectedVersion int64, slot model.TimeSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, sc := range f.docs {
		if sc.ID == id {
			if sc.Version != expectedVersion {
				return repository.ErrVersionMiss
			}
			sc.BookedSlots = append(sc.BookedSlots, slot)
			sc.Version++
			return nil
		}
	}
	return repository.ErrNotFound
}

func (f *fakeScheduleRepository) PullSlot(_ context.Context, key model.ScheduleKey, slot model.TimeSlot) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	sc, ok := f.docs[key]
	if !ok {
		return nil
	}
	kept := sc.BookedSlots[:0]
	for _, s := range sc.BookedSlots {
		if s != slot {
			kept = append(kept, s)
		}
	}
	sc.BookedSlots = kept
	sc.Version++
	return nil
}

func (f *fakeScheduleRepository) SetHoliday(_ context.Context, key model.ScheduleKey, reason string) (*model.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sc, ok := f.docs[key]
	if !ok {
		f.nextID++
		sc = &model.Schedule{
			ID:           strconv.Itoa(f.nextID),
			ResourceKind: key.Kind,
			ResourceID:   key.ResourceID,
			Date:         key.Date,
		}
		f.docs[key] = sc
	}
	sc.IsHoliday = true
	sc.HolidayReason = reason
	sc.BookedSlots = []model.TimeSlot{}
	sc.Version++

	snapshot := *sc
	return &snapshot, nil
}

func (f *fakeScheduleRepository) FindByKey(_ context.Context, key model.ScheduleKey) (*model.Schedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sc, ok := f.docs[key]
	if !ok {
		return nil, repository.ErrNotFound
	}
	snapshot := *sc
	snapshot.BookedSlots = append([]model.TimeSlot(nil), sc.BookedSlots...)
	return &snapshot, nil
}

func (f *fakeScheduleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return nil
}

func (f *fakeScheduleRepository) version(key model.ScheduleKey) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if sc, ok := f.docs[key]; ok {
		return sc.Version
	}
	return 0
}

func testConfig() *config.Config {
	return &config.Config{Log: logger.Discard()}
}

var testKey = model.ScheduleKey{Kind: model.ResourceField, ResourceID: "64f000000000000000000001", Date: "2025-11-29"}

func TestReserveCreatesScheduleLazily(t *testing.T) {
	repo := newFakeScheduleRepository()
	alloc := NewAllocator(repo, testConfig())

	err := alloc.Reserve(context.Background(), testKey, model.TimeSlot{StartTime: "18:00", EndTime: "20:00"})
	require.NoError(t, err)

	sc, err := repo.FindByKey(context.Background(), testKey)
	require.NoError(t, err)
	assert.Len(t, sc.BookedSlots, 1)
	assert.Equal(t, int64(2), sc.Version, "one upsert increment plus one append increment")
}

func TestReserveRejectsOverlap(t *testing.T) {
	repo := newFakeScheduleRepository()
	alloc := NewAllocator(repo, testConfig())
	ctx := context.Background()

	require.NoError(t, alloc.Reserve(ctx, testKey, model.TimeSlot{StartTime: "18:00", EndTime: "20:00"}))

	err := alloc.Reserve(ctx, testKey, model.TimeSlot{StartTime: "19:00", EndTime: "21:00"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "slot unavailable")

	// Touching slots do not conflict.
	require.NoError(t, alloc.Reserve(ctx, testKey, model.TimeSlot{StartTime: "20:00", EndTime: "22:00"}))
}

func TestReserveExactlyOneWinnerUnderContention(t *testing.T) {
	repo := newFakeScheduleRepository()
	alloc := NewAllocator(repo, testConfig())
	slot := model.TimeSlot{StartTime: "18:00", EndTime: "20:00"}

	const writers = 16
	var wg sync.WaitGroup
	errs := make([]error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = alloc.Reserve(context.Background(), testKey, slot)
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			assert.True(t, apperrors.IsConflict(err), "losers must fail with a conflict, got: %v", err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one concurrent reserve may succeed")

	sc, err := repo.FindByKey(context.Background(), testKey)
	require.NoError(t, err)
	assert.Len(t, sc.BookedSlots, 1)
}

func TestVersionStrictlyIncreases(t *testing.T) {
	repo := newFakeScheduleRepository()
	alloc := NewAllocator(repo, testConfig())
	ctx := context.Background()
	slot := model.TimeSlot{StartTime: "08:00", EndTime: "09:00"}

	var last int64
	require.NoError(t, alloc.Reserve(ctx, testKey, slot))
	v := repo.version(testKey)
	assert.Greater(t, v, last)
	last = v

	require.NoError(t, alloc.Release(ctx, testKey, slot))
	v = repo.version(testKey)
	assert.Greater(t, v, last)
	last = v

	require.NoError(t, alloc.Reserve(ctx, testKey, slot))
	assert.Greater(t, repo.version(testKey), last)
}

func TestReleaseMakesSlotBookableAgain(t *testing.T) {
	repo := newFakeScheduleRepository()
	alloc := NewAllocator(repo, testConfig())
	ctx := context.Background()
	slot := model.TimeSlot{StartTime: "18:00", EndTime: "20:00"}

	require.NoError(t, alloc.Reserve(ctx, testKey, slot))
	require.NoError(t, alloc.Release(ctx, testKey, slot))
	require.NoError(t, alloc.Reserve(ctx, testKey, slot), "released slot must be bookable again")
}

func TestReleaseAbsentSlotIsNoOp(t *testing.T) {
	repo := newFakeScheduleRepository()
	alloc := NewAllocator(repo, testConfig())

	err := alloc.Release(context.Background(), testKey, model.TimeSlot{StartTime: "06:00", EndTime: "07:00"})
	assert.NoError(t, err)
}

func TestReserveOnHolidayFails(t *testing.T) {
	repo := newFakeScheduleRepository()
	alloc := NewAllocator(repo, testConfig())
	ctx := context.Background()

	_, err := alloc.MarkHoliday(ctx, testKey, "national holiday")
	require.NoError(t, err)

	err = alloc.Reserve(ctx, testKey, model.TimeSlot{StartTime: "18:00", EndTime: "20:00"})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
	assert.Contains(t, err.Error(), "holiday")
}

func TestMarkHolidayClearsSlots(t *testing.T) {
	repo := newFakeScheduleRepository()
	alloc := NewAllocator(repo, testConfig())
	ctx := context.Background()

	require.NoError(t, alloc.Reserve(ctx, testKey, model.TimeSlot{StartTime: "10:00", EndTime: "12:00"}))

	sc, err := alloc.MarkHoliday(ctx, testKey, "maintenance")
	require.NoError(t, err)
	assert.True(t, sc.IsHoliday)
	assert.Empty(t, sc.BookedSlots)

	_, err = alloc.MarkHoliday(ctx, testKey, "")
	assert.Error(t, err)
}
