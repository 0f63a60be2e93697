package service

import (
	"context"
	"strconv"
	"sync"
	"testing"

	"github.com/MNhat168/sport-zone-sub002/internal/wallets/repository"
	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	mongotx "github.com/MNhat168/sport-zone-sub002/pkg/db/mongo"
	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testOwnerID    = "64f000000000000000000010"
	testCustomerID = "64f0000000000000000000aa"
	testBookingID  = "bk1"
)

type fakeSession struct {
	context.Context
	mongo.Session
}

type walletKey struct {
	owner string
	role  model.WalletRole
}

type fakeWalletRepo struct {
	mu   sync.Mutex
	docs map[walletKey]*model.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{docs: make(map[walletKey]*model.Wallet)}
}

func (f *fakeWalletRepo) get(owner string, role model.WalletRole) *model.Wallet {
	key := walletKey{owner: owner, role: role}
	w, ok := f.docs[key]
	if !ok {
		w = &model.Wallet{OwnerID: owner, Role: role}
		f.docs[key] = w
	}
	return w
}

func (f *fakeWalletRepo) Apply(_ context.Context, ownerID string, role model.WalletRole, delta repository.Delta) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.get(ownerID, role)
	w.SystemBalance += delta.System
	w.PendingBalance += delta.Pending
	w.AvailableBalance += delta.Available
	w.RefundBalance += delta.Refund
	return nil
}

func (f *fakeWalletRepo) Debit(_ context.Context, ownerID string, role model.WalletRole, balance repository.Balance, amount int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.get(ownerID, role)

	var field *int64
	switch balance {
	case repository.BalanceSystem:
		field = &w.SystemBalance
	case repository.BalancePending:
		field = &w.PendingBalance
	case repository.BalanceAvailable:
		field = &w.AvailableBalance
	case repository.BalanceRefund:
		field = &w.RefundBalance
	}
	if *field < amount {
		return repository.ErrInsufficient
	}
	*field -= amount
	return nil
}

func (f *fakeWalletRepo) FindByOwner(_ context.Context, ownerID string, role model.WalletRole) (*model.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.docs[walletKey{owner: ownerID, role: role}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *w
	return &clone, nil
}

// ExecuteTransaction snapshots the store and restores it when the callback
// fails, mirroring a transaction abort.
func (f *fakeWalletRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	f.mu.Lock()
	snap := make(map[walletKey]*model.Wallet, len(f.docs))
	for k, v := range f.docs {
		clone := *v
		snap[k] = &clone
	}
	f.mu.Unlock()

	if err := fn(fakeSession{Context: ctx}); err != nil {
		f.mu.Lock()
		f.docs = snap
		f.mu.Unlock()
		return err
	}
	return nil
}

type fakeBookingReader struct {
	bookings map[string]*model.Booking
	refunded []string
}

func (f *fakeBookingReader) FindByID(_ context.Context, id string) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, apperrors.NotFound("Booking")
	}
	clone := *b
	return &clone, nil
}

func (f *fakeBookingReader) MarkRefunded(_ context.Context, id string) error {
	f.refunded = append(f.refunded, id)
	if b, ok := f.bookings[id]; ok {
		b.Status = model.BookingCancelled
		b.PaymentStatus = model.PaymentRefunded
	}
	return nil
}

type fakePaymentRecorder struct {
	payments []*model.Payment
}

func (f *fakePaymentRecorder) Create(_ context.Context, p *model.Payment) error {
	p.ID = "pay" + strconv.Itoa(len(f.payments)+1)
	clone := *p
	f.payments = append(f.payments, &clone)
	return nil
}

type fakePayouts struct {
	mu       sync.Mutex
	requests []string
	failWith error
}

func (f *fakePayouts) Payout(_ context.Context, reference string, _ int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.requests = append(f.requests, reference)
	return nil
}

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
}

func (c *capturePublisher) Publish(_ context.Context, topic, _ string, _ any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.topics = append(c.topics, topic)
}

type ledgerEnv struct {
	wallets   *fakeWalletRepo
	bookings  *fakeBookingReader
	payments  *fakePaymentRecorder
	payouts   *fakePayouts
	publisher *capturePublisher
	ledger    LedgerService
}

func newLedgerEnv(feePercent int) *ledgerEnv {
	env := &ledgerEnv{
		wallets: newFakeWalletRepo(),
		bookings: &fakeBookingReader{bookings: map[string]*model.Booking{
			testBookingID: {
				ID:         testBookingID,
				CustomerID: testCustomerID,
				OwnerID:    testOwnerID,
				Status:     model.BookingConfirmed,
				Price:      model.PriceSnapshot{Total: 400000},
			},
		}},
		payments:  &fakePaymentRecorder{},
		payouts:   &fakePayouts{},
		publisher: &capturePublisher{},
	}
	cfg := &config.Config{Log: logger.Discard(), PlatformFeePercent: feePercent}
	env.ledger = NewLedgerService(env.wallets, env.bookings, env.payments, env.payouts, env.publisher, cfg)
	return env
}

func (e *ledgerEnv) wallet(owner string, role model.WalletRole) *model.Wallet {
	e.wallets.mu.Lock()
	defer e.wallets.mu.Unlock()
	w, ok := e.wallets.docs[walletKey{owner: owner, role: role}]
	if !ok {
		return &model.Wallet{OwnerID: owner, Role: role}
	}
	clone := *w
	return &clone
}

func TestOwnerRevenueRoundsDown(t *testing.T) {
	env := newLedgerEnv(10)
	assert.Equal(t, int64(360000), env.ledger.OwnerRevenue(400000))
	assert.Equal(t, int64(89), env.ledger.OwnerRevenue(99), "integer math rounds down")
}

func TestSettlementCreditsAreZeroSumAgainstPlatform(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	// Settlement as the payment processor runs it: full amount into the
	// clearing account, owner share into pending.
	require.NoError(t, env.ledger.CreditPlatformSystem(ctx, 400000))
	require.NoError(t, env.ledger.CreditOwnerPending(ctx, testOwnerID, 360000))

	platform := env.wallet(model.PlatformOwnerID, model.RolePlatform)
	owner := env.wallet(testOwnerID, model.RoleOwner)
	assert.Equal(t, int64(400000), platform.SystemBalance)
	assert.Equal(t, int64(360000), owner.PendingBalance)
	assert.GreaterOrEqual(t, platform.SystemBalance, owner.PendingBalance,
		"clearing account always covers what is owed")
}

func TestCreditRejectsNonPositiveAmounts(t *testing.T) {
	env := newLedgerEnv(10)
	assert.Error(t, env.ledger.CreditPlatformSystem(context.Background(), 0))
	assert.Error(t, env.ledger.CreditOwnerPending(context.Background(), testOwnerID, -5))
}

func TestUnlockOnCheckInMovesRevenue(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	require.NoError(t, env.ledger.CreditOwnerPending(ctx, testOwnerID, 360000))

	moved, err := env.ledger.UnlockOnCheckIn(ctx, testBookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(360000), moved)

	owner := env.wallet(testOwnerID, model.RoleOwner)
	assert.Equal(t, int64(0), owner.PendingBalance)
	assert.Equal(t, int64(360000), owner.AvailableBalance)
	assert.Contains(t, env.publisher.topics, "wallet.balance.unlocked")
}

func TestUnlockOnCheckInCapsAtPendingBalance(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	// Pending holds less than the booking's revenue; the unlock moves what
	// is there and warns instead of failing.
	require.NoError(t, env.ledger.CreditOwnerPending(ctx, testOwnerID, 100000))

	moved, err := env.ledger.UnlockOnCheckIn(ctx, testBookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), moved)

	owner := env.wallet(testOwnerID, model.RoleOwner)
	assert.Equal(t, int64(0), owner.PendingBalance)
	assert.Equal(t, int64(100000), owner.AvailableBalance)
}

func TestUnlockOnCheckInWithoutWalletIsNoOp(t *testing.T) {
	env := newLedgerEnv(10)

	moved, err := env.ledger.UnlockOnCheckIn(context.Background(), testBookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), moved)
}

func TestWithdrawDebitsOwnerAndPlatformEqually(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	require.NoError(t, env.ledger.CreditPlatformSystem(ctx, 400000))
	require.NoError(t, env.wallets.Apply(ctx, testOwnerID, model.RoleOwner, repository.Delta{Available: 360000}))

	payment, err := env.ledger.Withdraw(ctx, testOwnerID, 300000)
	require.NoError(t, err)
	assert.Equal(t, model.PurposeWithdrawal, payment.Purpose)
	assert.Equal(t, testOwnerID, payment.OwnerID)

	owner := env.wallet(testOwnerID, model.RoleOwner)
	platform := env.wallet(model.PlatformOwnerID, model.RolePlatform)
	assert.Equal(t, int64(60000), owner.AvailableBalance)
	assert.Equal(t, int64(100000), platform.SystemBalance)
	assert.Len(t, env.payments.payments, 1)
	assert.Contains(t, env.publisher.topics, "wallet.withdrawal.completed")
}

func TestWithdrawInsufficientBalance(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	require.NoError(t, env.wallets.Apply(ctx, testOwnerID, model.RoleOwner, repository.Delta{Available: 100000}))

	_, err := env.ledger.Withdraw(ctx, testOwnerID, 200000)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeInsufficientBalance, appErr.Code)

	// Nothing moved.
	owner := env.wallet(testOwnerID, model.RoleOwner)
	assert.Equal(t, int64(100000), owner.AvailableBalance)
	assert.Empty(t, env.payments.payments)
}

func TestWithdrawRollsBackWhenPlatformCannotCover(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	// Owner has available money but the clearing account is empty: the
	// ledger is broken and the whole movement must roll back.
	require.NoError(t, env.wallets.Apply(ctx, testOwnerID, model.RoleOwner, repository.Delta{Available: 360000}))

	_, err := env.ledger.Withdraw(ctx, testOwnerID, 300000)
	require.Error(t, err)

	owner := env.wallet(testOwnerID, model.RoleOwner)
	assert.Equal(t, int64(360000), owner.AvailableBalance, "owner debit must roll back")
}

func TestFullLifecycleNetsToPlatformFee(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	// Payment success settlement.
	require.NoError(t, env.ledger.CreditPlatformSystem(ctx, 400000))
	require.NoError(t, env.ledger.CreditOwnerPending(ctx, testOwnerID, env.ledger.OwnerRevenue(400000)))

	// Check-in unlock.
	moved, err := env.ledger.UnlockOnCheckIn(ctx, testBookingID)
	require.NoError(t, err)
	assert.Equal(t, int64(360000), moved)

	// Full withdrawal.
	_, err = env.ledger.Withdraw(ctx, testOwnerID, moved)
	require.NoError(t, err)

	owner := env.wallet(testOwnerID, model.RoleOwner)
	platform := env.wallet(model.PlatformOwnerID, model.RolePlatform)
	assert.Equal(t, int64(0), owner.PendingBalance)
	assert.Equal(t, int64(0), owner.AvailableBalance)
	assert.Equal(t, int64(40000), platform.SystemBalance,
		"after the full lifecycle only the platform fee remains in the clearing account")
}

func TestRefundToCreditMovesMoneyToCustomer(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	require.NoError(t, env.ledger.CreditPlatformSystem(ctx, 400000))

	payment, err := env.ledger.Refund(ctx, testBookingID, RefundToCredit, 400000)
	require.NoError(t, err)
	assert.Equal(t, model.PurposeRefund, payment.Purpose)
	assert.Equal(t, model.PaymentSucceeded, payment.Status)
	assert.Equal(t, testCustomerID, payment.UserID)

	platform := env.wallet(model.PlatformOwnerID, model.RolePlatform)
	customer := env.wallet(testCustomerID, model.RoleCustomer)
	assert.Equal(t, int64(0), platform.SystemBalance)
	assert.Equal(t, int64(400000), customer.RefundBalance)
	assert.Contains(t, env.bookings.refunded, testBookingID)
}

func TestRefundToBankLeavesProcessingRecord(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	require.NoError(t, env.ledger.CreditPlatformSystem(ctx, 400000))

	payment, err := env.ledger.Refund(ctx, testBookingID, RefundToBank, 400000)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentProcessing, payment.Status, "bank payouts settle out of band")
	assert.Equal(t, []string{payment.ID}, env.payouts.requests, "bank refund hands the transfer to the gateway")

	customer := env.wallet(testCustomerID, model.RoleCustomer)
	assert.Equal(t, int64(0), customer.RefundBalance, "bank refunds bypass the credit balance")
}

func TestRefundToBankSurvivesPayoutFailure(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	require.NoError(t, env.ledger.CreditPlatformSystem(ctx, 400000))
	env.payouts.failWith = apperrors.ExternalService("gateway down", nil)

	// The ledger debit has committed; a gateway miss leaves the record
	// PROCESSING for a retry instead of failing the refund.
	payment, err := env.ledger.Refund(ctx, testBookingID, RefundToBank, 400000)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentProcessing, payment.Status)

	platform := env.wallet(model.PlatformOwnerID, model.RolePlatform)
	assert.Equal(t, int64(0), platform.SystemBalance)
}

func TestRefundRejectsUnknownDestination(t *testing.T) {
	env := newLedgerEnv(10)
	_, err := env.ledger.Refund(context.Background(), testBookingID, "cheque", 1000)
	require.Error(t, err)
}

func TestWithdrawRefundCredit(t *testing.T) {
	env := newLedgerEnv(10)
	ctx := context.Background()

	require.NoError(t, env.ledger.CreditPlatformSystem(ctx, 400000))
	_, err := env.ledger.Refund(ctx, testBookingID, RefundToCredit, 400000)
	require.NoError(t, err)

	payment, err := env.ledger.WithdrawRefundCredit(ctx, testCustomerID, 250000)
	require.NoError(t, err)
	assert.Equal(t, testCustomerID, payment.UserID)
	assert.Contains(t, env.payouts.requests, payment.ID, "paying the credit out goes through the gateway")

	customer := env.wallet(testCustomerID, model.RoleCustomer)
	assert.Equal(t, int64(150000), customer.RefundBalance)

	_, err = env.ledger.WithdrawRefundCredit(ctx, testCustomerID, 200000)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInsufficientBalance, apperrors.AsAppError(err).Code)
}
