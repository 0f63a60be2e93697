package service

import (
	"context"
	"errors"
	"time"

	"github.com/MNhat168/sport-zone-sub002/internal/wallets/repository"
	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"
	"github.com/MNhat168/sport-zone-sub002/pkg/events"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// RefundDestination selects where refunded money lands.
type RefundDestination string

const (
	RefundToCredit RefundDestination = "credit"
	RefundToBank   RefundDestination = "bank"
)

// BookingReader is the narrow slice of the bookings repository the ledger
// needs; it keeps the wallets package from depending on the bookings service.
type BookingReader interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	MarkRefunded(ctx context.Context, id string) error
}

// PaymentRecorder persists the payment records withdrawal and refund
// movements leave behind.
type PaymentRecorder interface {
	Create(ctx context.Context, payment *model.Payment) error
}

// PayoutGateway executes outbound bank transfers. The payment gateway
// implements it.
type PayoutGateway interface {
	Payout(ctx context.Context, reference string, amount int64, description string) error
}

// LedgerService owns every wallet balance movement. The platform wallet is
// the clearing account: customer money enters its system balance on payment
// success and leaves it on withdrawal or refund, so the system balance always
// covers the sum of everything owed to owners and customers.
type LedgerService interface {
	// OwnerRevenue is the owner's share of a gross amount after the platform
	// fee, rounded down.
	OwnerRevenue(gross int64) int64
	// CreditPlatformSystem and CreditOwnerPending compose into the payment
	// processor's settlement transaction; they write with the caller's
	// context and open no transaction of their own.
	CreditPlatformSystem(ctx context.Context, amount int64) error
	CreditOwnerPending(ctx context.Context, ownerID string, amount int64) error
	// UnlockOnCheckIn moves the booking's owner revenue from pending to
	// available, capped at what pending actually holds. A shortfall is
	// logged, never an error. Returns the amount moved.
	UnlockOnCheckIn(ctx context.Context, bookingID string) (int64, error)
	Withdraw(ctx context.Context, ownerID string, amount int64) (*model.Payment, error)
	Refund(ctx context.Context, bookingID string, destination RefundDestination, amount int64) (*model.Payment, error)
	WithdrawRefundCredit(ctx context.Context, userID string, amount int64) (*model.Payment, error)
	GetWallet(ctx context.Context, ownerID string, role model.WalletRole) (*model.Wallet, error)
}

type ledgerService struct {
	wallets   repository.WalletRepository
	bookings  BookingReader
	payments  PaymentRecorder
	payouts   PayoutGateway
	publisher events.Publisher
	cfg       *config.Config
}

func NewLedgerService(
	wallets repository.WalletRepository,
	bookings BookingReader,
	payments PaymentRecorder,
	payouts PayoutGateway,
	publisher events.Publisher,
	cfg *config.Config,
) LedgerService {
	return &ledgerService{
		wallets:   wallets,
		bookings:  bookings,
		payments:  payments,
		payouts:   payouts,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *ledgerService) OwnerRevenue(gross int64) int64 {
	return gross * int64(100-s.cfg.PlatformFeePercent) / 100
}

func (s *ledgerService) CreditPlatformSystem(ctx context.Context, amount int64) error {
	if amount <= 0 {
		return apperrors.InvalidInput("credit amount must be positive")
	}
	if err := s.wallets.Apply(ctx, model.PlatformOwnerID, model.RolePlatform, repository.Delta{System: amount}); err != nil {
		return apperrors.Internal("Failed to credit platform wallet", err)
	}
	return nil
}

func (s *ledgerService) CreditOwnerPending(ctx context.Context, ownerID string, amount int64) error {
	if amount <= 0 {
		return apperrors.InvalidInput("credit amount must be positive")
	}
	if err := s.wallets.Apply(ctx, ownerID, model.RoleOwner, repository.Delta{Pending: amount}); err != nil {
		return apperrors.Internal("Failed to credit owner wallet", err)
	}
	return nil
}

func (s *ledgerService) UnlockOnCheckIn(ctx context.Context, bookingID string) (int64, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return 0, apperrors.NotFound("Booking")
	}
	revenue := s.OwnerRevenue(booking.Price.Total)
	if revenue <= 0 {
		return 0, nil
	}

	var moved int64
	err = s.wallets.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		wallet, err := s.wallets.FindByOwner(sc, booking.OwnerID, model.RoleOwner)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				moved = 0
				return nil
			}
			return apperrors.Internal("Failed to load owner wallet", err)
		}

		moved = min(wallet.PendingBalance, revenue)
		if moved <= 0 {
			moved = 0
			return nil
		}
		return s.wallets.Apply(sc, booking.OwnerID, model.RoleOwner, repository.Delta{
			Pending:   -moved,
			Available: moved,
		})
	})
	if err != nil {
		return 0, err
	}

	if moved < revenue {
		s.cfg.Log.Warn("Pending balance short of booking revenue on check-in",
			"booking_id", bookingID,
			"owner_id", booking.OwnerID,
			"revenue", revenue,
			"unlocked", moved,
		)
	}
	if moved > 0 {
		s.publisher.Publish(ctx, events.TopicBalanceUnlocked, booking.OwnerID, events.WalletEvent{
			OwnerID:    booking.OwnerID,
			BookingID:  bookingID,
			Amount:     moved,
			OccurredAt: time.Now().UTC(),
		})
	}
	return moved, nil
}

func (s *ledgerService) Withdraw(ctx context.Context, ownerID string, amount int64) (*model.Payment, error) {
	if amount <= 0 {
		return nil, apperrors.InvalidInput("withdrawal amount must be positive")
	}

	payment := &model.Payment{
		Purpose: model.PurposeWithdrawal,
		Amount:  amount,
		Method:  model.MethodBankTransfer,
		Status:  model.PaymentSucceeded,
		OwnerID: ownerID,
	}

	err := s.wallets.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.wallets.Debit(sc, ownerID, model.RoleOwner, repository.BalanceAvailable, amount); err != nil {
			if errors.Is(err, repository.ErrInsufficient) {
				return apperrors.InsufficientBalance("available balance is below the requested amount")
			}
			return apperrors.Internal("Failed to debit owner wallet", err)
		}
		// The clearing account must always cover withdrawable money; a miss
		// here is a broken ledger, not a user error.
		if err := s.wallets.Debit(sc, model.PlatformOwnerID, model.RolePlatform, repository.BalanceSystem, amount); err != nil {
			return apperrors.Internal("Platform wallet cannot cover withdrawal", err)
		}
		return s.payments.Create(sc, payment)
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.TopicWithdrawalCompleted, ownerID, events.WalletEvent{
		OwnerID:    ownerID,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	})
	s.cfg.Log.Info("Withdrawal completed", "owner_id", ownerID, "amount", amount)
	return payment, nil
}

func (s *ledgerService) Refund(ctx context.Context, bookingID string, destination RefundDestination, amount int64) (*model.Payment, error) {
	if amount <= 0 {
		return nil, apperrors.InvalidInput("refund amount must be positive")
	}
	if destination != RefundToCredit && destination != RefundToBank {
		return nil, apperrors.InvalidInput("refund destination must be 'credit' or 'bank'")
	}

	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, apperrors.NotFound("Booking")
	}

	payment := &model.Payment{
		Purpose:   model.PurposeRefund,
		Amount:    amount,
		Method:    model.MethodBankTransfer,
		Status:    model.PaymentSucceeded,
		BookingID: bookingID,
		UserID:    booking.CustomerID,
	}
	if destination == RefundToBank {
		// Bank payouts settle outside the ledger; the record tracks the
		// transfer until the operator confirms it.
		payment.Status = model.PaymentProcessing
	}

	err = s.wallets.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.wallets.Debit(sc, model.PlatformOwnerID, model.RolePlatform, repository.BalanceSystem, amount); err != nil {
			if errors.Is(err, repository.ErrInsufficient) {
				return apperrors.InsufficientBalance("platform wallet cannot cover refund")
			}
			return apperrors.Internal("Failed to debit platform wallet", err)
		}
		if destination == RefundToCredit {
			if err := s.wallets.Apply(sc, booking.CustomerID, model.RoleCustomer, repository.Delta{Refund: amount}); err != nil {
				return apperrors.Internal("Failed to credit refund balance", err)
			}
		}
		if err := s.bookings.MarkRefunded(sc, bookingID); err != nil {
			return apperrors.Internal("Failed to mark booking refunded", err)
		}
		return s.payments.Create(sc, payment)
	})
	if err != nil {
		return nil, err
	}

	if destination == RefundToBank {
		s.requestPayout(ctx, payment, "booking refund")
	}

	s.cfg.Log.Info("Refund processed",
		"booking_id", bookingID,
		"destination", destination,
		"amount", amount,
	)
	return payment, nil
}

func (s *ledgerService) WithdrawRefundCredit(ctx context.Context, userID string, amount int64) (*model.Payment, error) {
	if amount <= 0 {
		return nil, apperrors.InvalidInput("withdrawal amount must be positive")
	}

	payment := &model.Payment{
		Purpose: model.PurposeWithdrawal,
		Amount:  amount,
		Method:  model.MethodBankTransfer,
		Status:  model.PaymentProcessing,
		UserID:  userID,
	}

	// The platform system balance was already debited when the refund was
	// issued; paying the credit out only consumes the customer's claim.
	err := s.wallets.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := s.wallets.Debit(sc, userID, model.RoleCustomer, repository.BalanceRefund, amount); err != nil {
			if errors.Is(err, repository.ErrInsufficient) {
				return apperrors.InsufficientBalance("refund balance is below the requested amount")
			}
			return apperrors.Internal("Failed to debit refund balance", err)
		}
		return s.payments.Create(sc, payment)
	})
	if err != nil {
		return nil, err
	}

	s.requestPayout(ctx, payment, "refund credit withdrawal")

	s.cfg.Log.Info("Refund credit withdrawal started", "user_id", userID, "amount", amount)
	return payment, nil
}

// requestPayout hands a PROCESSING record to the gateway for the actual bank
// transfer. A gateway failure leaves the record PROCESSING for the operator
// to retry; the ledger debit has already committed either way.
func (s *ledgerService) requestPayout(ctx context.Context, payment *model.Payment, description string) {
	if err := s.payouts.Payout(ctx, payment.ID, payment.Amount, description); err != nil {
		s.cfg.Log.Warn("Payout request failed, record left processing",
			"payment_id", payment.ID,
			"amount", payment.Amount,
			"error", err,
		)
	}
}

func (s *ledgerService) GetWallet(ctx context.Context, ownerID string, role model.WalletRole) (*model.Wallet, error) {
	wallet, err := s.wallets.FindByOwner(ctx, ownerID, role)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Wallet")
		}
		return nil, apperrors.Internal("Failed to load wallet", err)
	}
	return wallet, nil
}
