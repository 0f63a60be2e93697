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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Bookings"

var (
	ErrNotFound  = errors.New("booking not found")
	ErrInvalidID = errors.New("invalid booking ID format")
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByGroupID(ctx context.Context, groupID string) ([]*model.Booking, error)
	FindByPaymentID(ctx context.Context, paymentID string) ([]*model.Booking, error)
	// FindActiveByResource lists pending and confirmed bookings holding slots
	// on one resource and day.
	FindActiveByResource(ctx context.Context, kind model.ResourceKind, resourceID, date string) ([]*model.Booking, error)
	SetPayment(ctx context.Context, bookingID, paymentID string) error
	// SetApproval records the owner's decision together with the booking
	// status it implies.
	SetApproval(ctx context.Context, id string, approval model.ApprovalStatus, status model.BookingStatus) error
	// MarkPaid sets payment_status=paid and, unless the booking is terminal,
	// status=confirmed.
	MarkPaid(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkCancelled(ctx context.Context, id, reason string) error
	MarkRefunded(ctx context.Context, id string) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	booking.CreatedAt = now
	booking.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		booking.ID = oid.Hex()
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var booking model.Booking
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

func (r *mongoBookingRepository) FindByGroupID(ctx context.Context, groupID string) ([]*model.Booking, error) {
	return r.findMany(ctx, bson.M{"group_id": groupID})
}

func (r *mongoBookingRepository) FindByPaymentID(ctx context.Context, paymentID string) ([]*model.Booking, error) {
	return r.findMany(ctx, bson.M{"payment_id": paymentID})
}

func (r *mongoBookingRepository) FindActiveByResource(ctx context.Context, kind model.ResourceKind, resourceID, date string) ([]*model.Booking, error) {
	filter := bson.M{
		"date":   date,
		"status": bson.M{"$in": []model.BookingStatus{model.BookingPending, model.BookingConfirmed}},
	}
	switch kind {
	case model.ResourceField:
		filter["field_id"] = resourceID
	case model.ResourceCoach:
		filter["coach_id"] = resourceID
	default:
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}
	return r.findMany(ctx, filter)
}

func (r *mongoBookingRepository) findMany(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func (r *mongoBookingRepository) SetPayment(ctx context.Context, bookingID, paymentID string) error {
	return r.updateByID(ctx, bookingID, bson.M{"$set": bson.M{
		"payment_id": paymentID,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}})
}

func (r *mongoBookingRepository) SetApproval(ctx context.Context, id string, approval model.ApprovalStatus, status model.BookingStatus) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"approval_status": approval,
		"status":          status,
		"updated_at":      time.Now().UTC().Truncate(time.Millisecond),
	}})
}

func (r *mongoBookingRepository) MarkPaid(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)

	// Terminal bookings keep their status; only the payment flag moves.
	filter := bson.M{
		"_id":    objectID,
		"status": bson.M{"$in": []model.BookingStatus{model.BookingPending, model.BookingConfirmed}},
	}
	update := bson.M{"$set": bson.M{
		"payment_status": model.PaymentPaid,
		"status":         model.BookingConfirmed,
		"updated_at":     now,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to mark booking paid: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) MarkCompleted(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     model.BookingCompleted,
		"updated_at": time.Now().UTC().Truncate(time.Millisecond),
	}})
}

func (r *mongoBookingRepository) MarkCancelled(ctx context.Context, id, reason string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"status":        model.BookingCancelled,
		"cancel_reason": reason,
		"updated_at":    time.Now().UTC().Truncate(time.Millisecond),
	}})
}

func (r *mongoBookingRepository) MarkRefunded(ctx context.Context, id string) error {
	return r.updateByID(ctx, id, bson.M{"$set": bson.M{
		"status":         model.BookingCancelled,
		"payment_status": model.PaymentRefunded,
		"updated_at":     time.Now().UTC().Truncate(time.Millisecond),
	}})
}

func (r *mongoBookingRepository) updateByID(ctx context.Context, id string, update bson.M) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
