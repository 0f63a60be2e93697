package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	bookingrepo "github.com/MNhat168/sport-zone-sub002/internal/bookings/repository"
	"github.com/MNhat168/sport-zone-sub002/internal/payments/repository"
	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"
	"github.com/MNhat168/sport-zone-sub002/pkg/events"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"
	"github.com/MNhat168/sport-zone-sub002/pkg/retry"

	"go.mongodb.org/mongo-driver/mongo"
)

// Ledger is the slice of the wallet ledger the processor settles through.
type Ledger interface {
	OwnerRevenue(gross int64) int64
	CreditPlatformSystem(ctx context.Context, amount int64) error
	CreditOwnerPending(ctx context.Context, ownerID string, amount int64) error
	UnlockOnCheckIn(ctx context.Context, bookingID string) (int64, error)
}

// BookingCanceller releases slots and fails the active payment for one
// booking. The booking orchestrator implements it.
type BookingCanceller interface {
	Cancel(ctx context.Context, id, reason string) error
}

// PaymentEventProcessor applies gateway payment events to the booking state
// machine. Events arrive at least once and possibly before read replicas
// observe the booking/payment link, so application is idempotent and
// resolution rides a bounded retry.
type PaymentEventProcessor interface {
	OnPaymentSuccess(ctx context.Context, event *events.PaymentEvent) error
	OnPaymentFailedOrExpired(ctx context.Context, event *events.PaymentEvent) error
	// CheckIn completes a confirmed booking and unlocks the owner's revenue.
	CheckIn(ctx context.Context, bookingID string) error
}

type paymentEventProcessor struct {
	payments  repository.PaymentRepository
	bookings  bookingrepo.BookingRepository
	ledger    Ledger
	canceller BookingCanceller
	publisher events.Publisher
	cfg       *config.Config
}

func NewPaymentEventProcessor(
	payments repository.PaymentRepository,
	bookings bookingrepo.BookingRepository,
	ledger Ledger,
	canceller BookingCanceller,
	publisher events.Publisher,
	cfg *config.Config,
) PaymentEventProcessor {
	return &paymentEventProcessor{
		payments:  payments,
		bookings:  bookings,
		ledger:    ledger,
		canceller: canceller,
		publisher: publisher,
		cfg:       cfg,
	}
}

// gatewaySucceeded reports whether the event carries a settled transaction.
func gatewaySucceeded(event *events.PaymentEvent) bool {
	switch event.Status {
	case "00", "PAID", "SUCCEEDED", "success":
		return true
	}
	return false
}

func (p *paymentEventProcessor) OnPaymentSuccess(ctx context.Context, event *events.PaymentEvent) error {
	if !gatewaySucceeded(event) {
		p.cfg.Log.Warn("Ignoring success event without settled status",
			"order_code", event.OrderCode,
			"status", event.Status,
		)
		return nil
	}

	payment, err := p.resolvePayment(ctx, event.OrderCode)
	if err != nil {
		return err
	}

	bookings, err := p.resolveBookings(ctx, payment, event)
	if err != nil {
		return err
	}

	var confirmed []*model.Booking
	err = p.payments.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		confirmed = confirmed[:0]

		// The payment status transition gates the platform credit: a replay
		// of the same event finds SUCCEEDED and credits nothing.
		var platformCredit int64
		if payment.Status != model.PaymentSucceeded {
			if err := p.payments.UpdateStatus(sc, payment.ID, model.PaymentSucceeded); err != nil {
				return apperrors.Internal("Failed to mark payment succeeded", err)
			}
			platformCredit = payment.Amount
		}

		ownerRevenue := make(map[string]int64)
		for _, b := range bookings {
			if b.Status == model.BookingConfirmed && b.PaymentStatus == model.PaymentPaid {
				continue
			}
			if b.Terminal() {
				p.cfg.Log.Warn("Payment succeeded for a terminal booking",
					"booking_id", b.ID,
					"status", b.Status,
					"order_code", event.OrderCode,
				)
				continue
			}
			if err := p.bookings.MarkPaid(sc, b.ID); err != nil {
				return apperrors.Internal("Failed to mark booking paid", err)
			}
			ownerRevenue[b.OwnerID] += p.ledger.OwnerRevenue(b.Price.Total)
			confirmed = append(confirmed, b)
		}

		if platformCredit > 0 {
			if err := p.ledger.CreditPlatformSystem(sc, platformCredit); err != nil {
				return err
			}
		}
		for ownerID, revenue := range ownerRevenue {
			if revenue <= 0 {
				continue
			}
			if err := p.ledger.CreditOwnerPending(sc, ownerID, revenue); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, b := range confirmed {
		p.publisher.Publish(ctx, events.TopicBookingConfirmed, b.ID, events.BookingEvent{
			BookingID:  b.ID,
			CustomerID: b.CustomerID,
			OwnerID:    b.OwnerID,
			GroupID:    b.GroupID,
			Date:       b.Date,
			StartTime:  b.StartTime,
			EndTime:    b.EndTime,
			Amount:     b.Price.Total,
			OccurredAt: time.Now().UTC(),
		})
	}

	p.cfg.Log.Info("Payment success applied",
		"order_code", event.OrderCode,
		"payment_id", payment.ID,
		"bookings_confirmed", len(confirmed),
	)
	return nil
}

func (p *paymentEventProcessor) OnPaymentFailedOrExpired(ctx context.Context, event *events.PaymentEvent) error {
	payment, err := p.resolvePayment(ctx, event.OrderCode)
	if err != nil {
		return err
	}
	if payment.Status == model.PaymentSucceeded || payment.Status == model.PaymentReversed {
		p.cfg.Log.Warn("Ignoring failure event for a settled payment",
			"order_code", event.OrderCode,
			"status", payment.Status,
		)
		return nil
	}

	bookings, err := p.resolveBookings(ctx, payment, event)
	if err != nil {
		return err
	}

	reason := event.Reason
	if reason == "" {
		reason = "payment failed or expired"
	}

	for _, b := range bookings {
		if err := p.canceller.Cancel(ctx, b.ID, reason); err != nil {
			return err
		}
	}

	// Cancel already failed the payment through the booking linkage; a
	// payment without bookings still needs its own terminal mark.
	if len(bookings) == 0 && payment.Status != model.PaymentFailed {
		if err := p.payments.UpdateStatus(ctx, payment.ID, model.PaymentFailed); err != nil {
			return apperrors.Internal("Failed to mark payment failed", err)
		}
	}

	p.cfg.Log.Info("Payment failure applied",
		"order_code", event.OrderCode,
		"bookings_cancelled", len(bookings),
		"reason", reason,
	)
	return nil
}

func (p *paymentEventProcessor) CheckIn(ctx context.Context, bookingID string) error {
	booking, err := p.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingrepo.ErrNotFound) || errors.Is(err, bookingrepo.ErrInvalidID) {
			return apperrors.NotFound("Booking")
		}
		return apperrors.Internal("Failed to load booking", err)
	}

	switch booking.Status {
	case model.BookingCompleted:
		return nil
	case model.BookingConfirmed:
	default:
		return apperrors.Conflict("only confirmed bookings can check in")
	}

	// Completion and the revenue unlock commit together: a replay finds the
	// booking COMPLETED only when the unlock also went through, so a failed
	// unlock leaves the booking retryable instead of stranding the revenue.
	err = p.bookings.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := p.bookings.MarkCompleted(sc, bookingID); err != nil {
			return apperrors.Internal("Failed to complete booking", err)
		}
		_, err := p.ledger.UnlockOnCheckIn(sc, bookingID)
		return err
	})
	if err != nil {
		return err
	}

	p.cfg.Log.Info("Booking checked in", "booking_id", bookingID)
	return nil
}

// resolvePayment finds the payment for a gateway order code, retrying to ride
// out read-after-write lag between the booking transaction and the webhook.
func (p *paymentEventProcessor) resolvePayment(ctx context.Context, orderCode int64) (*model.Payment, error) {
	payment, err := retry.Do(ctx, p.cfg.ResolveRetryAttempts, p.cfg.ResolveRetryDelay,
		func(ctx context.Context) (*model.Payment, error) {
			return p.payments.FindByOrderCode(ctx, orderCode)
		})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Payment", "order:"+strconv.FormatInt(orderCode, 10))
		}
		return nil, apperrors.Internal("Failed to resolve payment", err)
	}
	return payment, nil
}

// resolveBookings walks the linkage in priority order: direct back-reference,
// group, the event's own hint, and finally a scan by payment ID.
func (p *paymentEventProcessor) resolveBookings(ctx context.Context, payment *model.Payment, event *events.PaymentEvent) ([]*model.Booking, error) {
	return retry.Do(ctx, p.cfg.ResolveRetryAttempts, p.cfg.ResolveRetryDelay,
		func(ctx context.Context) ([]*model.Booking, error) {
			if payment.BookingID != "" {
				b, err := p.bookings.FindByID(ctx, payment.BookingID)
				if err == nil {
					return []*model.Booking{b}, nil
				}
				if !errors.Is(err, bookingrepo.ErrNotFound) {
					return nil, err
				}
			}
			if payment.GroupID != "" {
				bs, err := p.bookings.FindByGroupID(ctx, payment.GroupID)
				if err != nil {
					return nil, err
				}
				if len(bs) > 0 {
					return bs, nil
				}
			}
			if event.BookingID != "" {
				b, err := p.bookings.FindByID(ctx, event.BookingID)
				if err == nil {
					return []*model.Booking{b}, nil
				}
				if !errors.Is(err, bookingrepo.ErrNotFound) {
					return nil, err
				}
			}
			bs, err := p.bookings.FindByPaymentID(ctx, payment.ID)
			if err != nil {
				return nil, err
			}
			if len(bs) == 0 {
				return nil, bookingrepo.ErrNotFound
			}
			return bs, nil
		})
}
