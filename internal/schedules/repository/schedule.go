package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	mongotx "github.com/MNhat168/sport-zone-sub002/pkg/db/mongo"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Schedules"

var (
	ErrNotFound     = errors.New("schedule not found")
	ErrVersionMiss  = errors.New("schedule version did not match")
	ErrSlotNotFound = errors.New("slot not present in schedule")
)

// ScheduleRepository exposes the store primitives the allocator is built
// from. Reserve is deliberately not one repository call: the conflict rule
// depends on array content, so the allocator upserts, inspects, then commits
// a version-gated append.
type ScheduleRepository interface {
	// Upsert atomically creates the schedule for the key if absent
	// (booked_slots=[], version becomes 1) and increments the version either
	// way, returning the post-image. The single atomic upsert+increment is
	// what makes lazy creation race-safe.
	Upsert(ctx context.Context, key model.ScheduleKey) (*model.Schedule, error)
	// AppendSlot appends the slot and increments the version, but only if the
	// document still carries expectedVersion. ErrVersionMiss means another
	// writer got there first.
	AppendSlot(ctx context.Context, id string, expectedVersion int64, slot model.TimeSlot) error
	// PullSlot removes the exact slot and increments the version. A missing
	// schedule or slot is not an error; the slot is already free.
	PullSlot(ctx context.Context, key model.ScheduleKey, slot model.TimeSlot) error
	// SetHoliday flags the schedule (upserting if absent), records the
	// reason, clears all booked slots and increments the version.
	SetHoliday(ctx context.Context, key model.ScheduleKey, reason string) (*model.Schedule, error)
	FindByKey(ctx context.Context, key model.ScheduleKey) (*model.Schedule, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoScheduleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoScheduleRepository(cfg *config.Config) ScheduleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoScheduleRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction; a SessionContext cannot be wrapped without breaking
// transaction semantics.
func (r *mongoScheduleRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func keyFilter(key model.ScheduleKey) bson.M {
	return bson.M{
		"resource_kind": key.Kind,
		"resource_id":   key.ResourceID,
		"date":          key.Date,
	}
}

func (r *mongoScheduleRepository) Upsert(ctx context.Context, key model.ScheduleKey) (*model.Schedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$setOnInsert": bson.M{
			"resource_kind": key.Kind,
			"resource_id":   key.ResourceID,
			"date":          key.Date,
			"booked_slots":  []model.TimeSlot{},
			"is_holiday":    false,
			"created_at":    now,
		},
		"$set": bson.M{"updated_at": now},
		"$inc": bson.M{"version": 1},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var sc model.Schedule
	err := r.collection.FindOneAndUpdate(ctx, keyFilter(key), update, opts).Decode(&sc)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert schedule: %w", err)
	}
	return &sc, nil
}

func (r *mongoScheduleRepository) AppendSlot(ctx context.Context, id string, expectedVersion int64, slot model.TimeSlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := toObjectID(id)
	if err != nil {
		return err
	}

	filter := bson.M{"_id": objectID, "version": expectedVersion}
	update := bson.M{
		"$push": bson.M{"booked_slots": slot},
		"$set":  bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
		"$inc":  bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to append slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrVersionMiss
	}
	return nil
}

func (r *mongoScheduleRepository) PullSlot(ctx context.Context, key model.ScheduleKey, slot model.TimeSlot) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"booked_slots": bson.M{
			"start_time": slot.StartTime,
			"end_time":   slot.EndTime,
		}},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
		"$inc": bson.M{"version": 1},
	}

	_, err := r.collection.UpdateOne(ctx, keyFilter(key), update)
	if err != nil {
		return fmt.Errorf("failed to release slot: %w", err)
	}
	return nil
}

func (r *mongoScheduleRepository) SetHoliday(ctx context.Context, key model.ScheduleKey, reason string) (*model.Schedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$setOnInsert": bson.M{
			"resource_kind": key.Kind,
			"resource_id":   key.ResourceID,
			"date":          key.Date,
			"created_at":    now,
		},
		"$set": bson.M{
			"is_holiday":     true,
			"holiday_reason": reason,
			"booked_slots":   []model.TimeSlot{},
			"updated_at":     now,
		},
		"$inc": bson.M{"version": 1},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var sc model.Schedule
	if err := r.collection.FindOneAndUpdate(ctx, keyFilter(key), update, opts).Decode(&sc); err != nil {
		return nil, fmt.Errorf("failed to mark holiday: %w", err)
	}
	return &sc, nil
}

func (r *mongoScheduleRepository) FindByKey(ctx context.Context, key model.ScheduleKey) (*model.Schedule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var sc model.Schedule
	err := r.collection.FindOne(ctx, keyFilter(key)).Decode(&sc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find schedule: %w", err)
	}
	return &sc, nil
}

func (r *mongoScheduleRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
