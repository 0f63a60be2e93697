package mongo

import (
	"context"
	"fmt"
	"time"

	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// maxCommitTime bounds how long a single unit of work may hold its
// transaction open. Exceeding it aborts the unit; callers treat the timeout
// like any other retryable conflict.
const maxCommitTime = 15 * time.Second

type TransactionFunc func(ctx mongo.SessionContext) error

// TransactionManager runs a function inside one snapshot-isolated,
// majority-durable multi-document transaction. It is the sole serialization
// primitive in the system; there is no lock service.
type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
}

type mongoTransactionManager struct {
	client *mongo.Client
}

func NewTransactionManager(client *mongo.Client) TransactionManager {
	return &mongoTransactionManager{client: client}
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	// A caller already inside a transaction shares it: the nested unit
	// commits or aborts with the enclosing one instead of opening its own.
	if sc, ok := ctx.(mongo.SessionContext); ok {
		return fn(sc)
	}

	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	commitTime := maxCommitTime
	txOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority()).
		SetMaxCommitTime(&commitTime)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	}, txOpts)

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}
	return nil
}
