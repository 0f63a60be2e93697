package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	FieldCollection = "Fields"
	CoachCollection = "Coaches"
)

var ErrNotFound = errors.New("catalog record not found")

// CatalogRepository is the read-only view of the resource catalog the booking
// engine validates and prices against. Catalog CRUD lives elsewhere.
type CatalogRepository interface {
	FindField(ctx context.Context, id string) (*model.Field, error)
	FindCoach(ctx context.Context, id string) (*model.Coach, error)
}

type mongoCatalogRepository struct {
	cfg     *config.Config
	fields  *mongo.Collection
	coaches *mongo.Collection
}

func NewMongoCatalogRepository(cfg *config.Config) CatalogRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoCatalogRepository{
		cfg:     cfg,
		fields:  db.Collection(FieldCollection),
		coaches: db.Collection(CoachCollection),
	}
}

func (r *mongoCatalogRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoCatalogRepository) FindField(ctx context.Context, id string) (*model.Field, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid field ID %q: %w", id, err)
	}

	var field model.Field
	if err := r.fields.FindOne(ctx, bson.M{"_id": objectID}).Decode(&field); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find field: %w", err)
	}
	return &field, nil
}

func (r *mongoCatalogRepository) FindCoach(ctx context.Context, id string) (*model.Coach, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("invalid coach ID %q: %w", id, err)
	}

	var coach model.Coach
	if err := r.coaches.FindOne(ctx, bson.M{"_id": objectID}).Decode(&coach); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find coach: %w", err)
	}
	return &coach, nil
}
