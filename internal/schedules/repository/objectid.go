package repository

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func toObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid schedule ID %q: %w", id, err)
	}
	return objectID, nil
}
