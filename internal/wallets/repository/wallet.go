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

const CollectionName = "Wallets"

var (
	ErrNotFound = errors.New("wallet not found")
	// ErrInsufficient is returned when a conditional debit matches no
	// document: either the balance is too low or the wallet does not exist,
	// which is the same thing for a lazily created wallet.
	ErrInsufficient = errors.New("insufficient balance")
)

// Balance names one of the four wallet tiers for conditional debits.
type Balance string

const (
	BalanceSystem    Balance = "system_balance"
	BalancePending   Balance = "pending_balance"
	BalanceAvailable Balance = "available_balance"
	BalanceRefund    Balance = "refund_balance"
)

// Delta is a set of signed balance movements applied atomically to one wallet.
type Delta struct {
	System    int64
	Pending   int64
	Available int64
	Refund    int64
}

type WalletRepository interface {
	// Apply upserts the wallet and $incs the given deltas unconditionally.
	// Use Debit when the movement must not drive a balance negative.
	Apply(ctx context.Context, ownerID string, role model.WalletRole, delta Delta) error
	// Debit decrements one balance tier only if it holds at least amount;
	// otherwise ErrInsufficient.
	Debit(ctx context.Context, ownerID string, role model.WalletRole, balance Balance, amount int64) error
	FindByOwner(ctx context.Context, ownerID string, role model.WalletRole) (*model.Wallet, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoWalletRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoWalletRepository(cfg *config.Config) WalletRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoWalletRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoWalletRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func keyFilter(ownerID string, role model.WalletRole) bson.M {
	return bson.M{"owner_id": ownerID, "role": role}
}

func (r *mongoWalletRepository) Apply(ctx context.Context, ownerID string, role model.WalletRole, delta Delta) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	update := bson.M{
		"$setOnInsert": bson.M{"created_at": now},
		"$set":         bson.M{"updated_at": now},
		"$inc": bson.M{
			string(BalanceSystem):    delta.System,
			string(BalancePending):   delta.Pending,
			string(BalanceAvailable): delta.Available,
			string(BalanceRefund):    delta.Refund,
		},
	}

	_, err := r.collection.UpdateOne(ctx, keyFilter(ownerID, role), update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to apply wallet delta: %w", err)
	}
	return nil
}

func (r *mongoWalletRepository) Debit(ctx context.Context, ownerID string, role model.WalletRole, balance Balance, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := keyFilter(ownerID, role)
	filter[string(balance)] = bson.M{"$gte": amount}

	update := bson.M{
		"$inc": bson.M{string(balance): -amount},
		"$set": bson.M{"updated_at": time.Now().UTC().Truncate(time.Millisecond)},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to debit wallet: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrInsufficient
	}
	return nil
}

func (r *mongoWalletRepository) FindByOwner(ctx context.Context, ownerID string, role model.WalletRole) (*model.Wallet, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var wallet model.Wallet
	if err := r.collection.FindOne(ctx, keyFilter(ownerID, role)).Decode(&wallet); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find wallet: %w", err)
	}
	return &wallet, nil
}

func (r *mongoWalletRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
