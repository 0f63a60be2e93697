package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/MNhat168/sport-zone-sub002/internal/bookings/repository"
	"github.com/MNhat168/sport-zone-sub002/internal/bookings/validator"
	"github.com/MNhat168/sport-zone-sub002/internal/catalog/pricing"
	catalogrepo "github.com/MNhat168/sport-zone-sub002/internal/catalog/repository"
	"github.com/MNhat168/sport-zone-sub002/internal/payments/gateway"
	paymentrepo "github.com/MNhat168/sport-zone-sub002/internal/payments/repository"
	schedulesvc "github.com/MNhat168/sport-zone-sub002/internal/schedules/service"
	"github.com/MNhat168/sport-zone-sub002/pkg/config"
	apperrors "github.com/MNhat168/sport-zone-sub002/pkg/errors"
	"github.com/MNhat168/sport-zone-sub002/pkg/events"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// BookingOrchestrator runs the booking saga: validate, price, reserve every
// slot, persist the bookings and their payment in one transaction, and emit
// lifecycle events only after commit. Any failure mid-transaction aborts the
// whole attempt; slot reservations roll back with it.
type BookingOrchestrator interface {
	Create(ctx context.Context, customerID string, req *model.BookingRequest) (*model.CreateResult, error)
	// Cancel releases the booking's slots and fails its active payment.
	// Cancelling an already cancelled booking is a no-op; cancelling a
	// completed one is a conflict.
	Cancel(ctx context.Context, id, reason string) error
	// ResolveApproval records the owner's decision on a booking awaiting
	// review. Accepting an offline booking confirms it; an online one stays
	// pending until its payment settles. Rejection runs the cancel routine.
	ResolveApproval(ctx context.Context, id string, accept bool, reason string) error
	// MarkHoliday closes a resource day and cancels every active booking
	// holding a slot on it.
	MarkHoliday(ctx context.Context, key model.ScheduleKey, reason string) (*model.Schedule, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	ListByGroup(ctx context.Context, groupID string) ([]*model.Booking, error)
}

type bookingOrchestrator struct {
	bookings  repository.BookingRepository
	payments  paymentrepo.PaymentRepository
	catalog   catalogrepo.CatalogRepository
	allocator schedulesvc.Allocator
	validator *validator.BookingValidator
	gateway   gateway.Gateway
	publisher events.Publisher
	cfg       *config.Config
}

func NewBookingOrchestrator(
	bookings repository.BookingRepository,
	payments paymentrepo.PaymentRepository,
	catalog catalogrepo.CatalogRepository,
	allocator schedulesvc.Allocator,
	v *validator.BookingValidator,
	gw gateway.Gateway,
	publisher events.Publisher,
	cfg *config.Config,
) BookingOrchestrator {
	return &bookingOrchestrator{
		bookings:  bookings,
		payments:  payments,
		catalog:   catalog,
		allocator: allocator,
		validator: v,
		gateway:   gw,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (o *bookingOrchestrator) Create(ctx context.Context, customerID string, req *model.BookingRequest) (*model.CreateResult, error) {
	if err := o.validator.ValidateRequest(req); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	field, coach, err := o.loadResources(ctx, req)
	if err != nil {
		return nil, err
	}

	ownerID := ""
	if field != nil {
		ownerID = field.OwnerID
	} else if coach != nil {
		ownerID = coach.OwnerID
	}

	groupID := ""
	if len(req.Dates) > 1 {
		groupID = uuid.NewString()
	}

	bookings, total, err := o.buildBookings(customerID, ownerID, groupID, req, field, coach)
	if err != nil {
		return nil, err
	}

	payment := &model.Payment{
		Purpose: model.PurposeBookingPayment,
		Amount:  total,
		Method:  req.Method,
		Status:  model.PaymentPending,
		GroupID: groupID,
	}

	// The checkout link is created before the transaction. If the
	// transaction aborts, the link is cancelled best-effort; an orphaned
	// link expires at the gateway without any money movement.
	if !req.Method.Offline() {
		payment.GatewayOrderCode = newOrderCode()
		link, err := o.gateway.CreatePaymentLink(ctx, &gateway.LinkRequest{
			OrderCode:   payment.GatewayOrderCode,
			Amount:      total,
			Description: checkoutDescription(bookings[0], groupID),
		})
		if err != nil {
			return nil, err
		}
		payment.CheckoutURL = link.CheckoutURL
	}

	err = o.bookings.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		for _, b := range bookings {
			slot := model.TimeSlot{StartTime: b.StartTime, EndTime: b.EndTime}
			for _, key := range b.Slots() {
				if err := o.allocator.Reserve(sc, key, slot); err != nil {
					return err
				}
			}
			if err := o.bookings.Create(sc, b); err != nil {
				return apperrors.Internal("Failed to persist booking", err)
			}
		}

		if len(bookings) == 1 {
			payment.BookingID = bookings[0].ID
		}
		if err := o.payments.Create(sc, payment); err != nil {
			return apperrors.Internal("Failed to persist payment", err)
		}
		for _, b := range bookings {
			if err := o.bookings.SetPayment(sc, b.ID, payment.ID); err != nil {
				return apperrors.Internal("Failed to link payment", err)
			}
			b.PaymentID = payment.ID
		}
		return nil
	})
	if err != nil {
		o.abandonCheckout(ctx, payment)
		return nil, err
	}

	for _, b := range bookings {
		o.publisher.Publish(ctx, events.TopicBookingCreated, b.ID, events.BookingEvent{
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
		if b.Status == model.BookingConfirmed {
			o.publisher.Publish(ctx, events.TopicBookingConfirmed, b.ID, events.BookingEvent{
				BookingID:  b.ID,
				CustomerID: b.CustomerID,
				OwnerID:    b.OwnerID,
				GroupID:    b.GroupID,
				Date:       b.Date,
				Amount:     b.Price.Total,
				OccurredAt: time.Now().UTC(),
			})
		}
	}

	o.cfg.Log.Info("Booking created",
		"customer_id", customerID,
		"bookings", len(bookings),
		"group_id", groupID,
		"method", req.Method,
		"amount", total,
	)
	return &model.CreateResult{Bookings: bookings, Payment: payment}, nil
}

func (o *bookingOrchestrator) loadResources(ctx context.Context, req *model.BookingRequest) (*model.Field, *model.Coach, error) {
	var field *model.Field
	var coach *model.Coach
	var err error

	if req.FieldID != "" {
		field, err = o.catalog.FindField(ctx, req.FieldID)
		if err != nil {
			if errors.Is(err, catalogrepo.ErrNotFound) {
				return nil, nil, apperrors.NotFound("Field")
			}
			return nil, nil, apperrors.Internal("Failed to load field", err)
		}
		if !field.Active {
			return nil, nil, apperrors.Conflict("field is not accepting bookings")
		}
		if err := o.validator.CheckAgainstField(req, field); err != nil {
			return nil, nil, apperrors.InvalidInput(err.Error())
		}
	}

	if req.CoachID != "" {
		coach, err = o.catalog.FindCoach(ctx, req.CoachID)
		if err != nil {
			if errors.Is(err, catalogrepo.ErrNotFound) {
				return nil, nil, apperrors.NotFound("Coach")
			}
			return nil, nil, apperrors.Internal("Failed to load coach", err)
		}
		if !coach.Active {
			return nil, nil, apperrors.Conflict("coach is not accepting bookings")
		}
		if err := o.validator.CheckAgainstCoach(req, coach); err != nil {
			return nil, nil, apperrors.InvalidInput(err.Error())
		}
	}

	return field, coach, nil
}

// buildBookings prices every date independently, so a weekend date in a
// multi-date request costs more than a weekday one.
func (o *bookingOrchestrator) buildBookings(customerID, ownerID, groupID string, req *model.BookingRequest, field *model.Field, coach *model.Coach) ([]*model.Booking, int64, error) {
	// A note on the request asks the owner to review it, so the booking
	// waits for a decision; only unremarkable offline bookings confirm on
	// the spot.
	status := model.BookingPending
	approval := model.ApprovalNotRequired
	if req.Note != "" {
		approval = model.ApprovalPending
	} else if req.Method.Offline() {
		status = model.BookingConfirmed
	}

	var total int64
	bookings := make([]*model.Booking, 0, len(req.Dates))
	for _, date := range req.Dates {
		var snap model.PriceSnapshot
		if field != nil {
			fieldSnap, err := pricing.Quote(field, date, req.StartTime, req.EndTime, req.Amenities)
			if err != nil {
				return nil, 0, apperrors.InvalidInput(err.Error())
			}
			snap = fieldSnap
		}
		if coach != nil {
			coachSnap, err := pricing.QuoteCoach(coach, req.StartTime, req.EndTime)
			if err != nil {
				return nil, 0, apperrors.InvalidInput(err.Error())
			}
			if field == nil {
				snap = coachSnap
			} else {
				snap.Base += coachSnap.Base
				snap.Total += coachSnap.Total
			}
		}

		bookings = append(bookings, &model.Booking{
			CustomerID:     customerID,
			FieldID:        req.FieldID,
			CoachID:        req.CoachID,
			OwnerID:        ownerID,
			GroupID:        groupID,
			Date:           date,
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Status:         status,
			PaymentStatus:  model.PaymentUnpaid,
			ApprovalStatus: approval,
			Method:         req.Method,
			Note:           req.Note,
			Price:          snap,
		})
		total += snap.Total
	}
	return bookings, total, nil
}

func (o *bookingOrchestrator) Cancel(ctx context.Context, id, reason string) error {
	booking, err := o.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return apperrors.NotFound("Booking")
		}
		return apperrors.Internal("Failed to load booking", err)
	}

	if booking.Status == model.BookingCancelled {
		return nil
	}
	if booking.Status == model.BookingCompleted {
		return apperrors.Conflict("completed bookings cannot be cancelled")
	}

	var payment *model.Payment
	if booking.PaymentID != "" {
		payment, err = o.payments.FindByID(ctx, booking.PaymentID)
		if err != nil && !errors.Is(err, paymentrepo.ErrNotFound) {
			return apperrors.Internal("Failed to load payment", err)
		}
	}

	err = o.bookings.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := o.bookings.MarkCancelled(sc, booking.ID, reason); err != nil {
			return apperrors.Internal("Failed to cancel booking", err)
		}
		slot := model.TimeSlot{StartTime: booking.StartTime, EndTime: booking.EndTime}
		for _, key := range booking.Slots() {
			if err := o.allocator.Release(sc, key, slot); err != nil {
				return err
			}
		}
		if payment != nil && (payment.Status == model.PaymentPending || payment.Status == model.PaymentProcessing) {
			if err := o.payments.UpdateStatus(sc, payment.ID, model.PaymentFailed); err != nil {
				return apperrors.Internal("Failed to fail payment", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if payment != nil && !payment.Method.Offline() && payment.Status == model.PaymentPending {
		if err := o.gateway.CancelPaymentLink(ctx, payment.GatewayOrderCode, reason); err != nil {
			o.cfg.Log.Warn("Failed to cancel checkout link",
				"order_code", payment.GatewayOrderCode,
				"error", err,
			)
		}
	}

	o.publisher.Publish(ctx, events.TopicBookingCancelled, booking.ID, events.BookingEvent{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		OwnerID:    booking.OwnerID,
		GroupID:    booking.GroupID,
		Date:       booking.Date,
		Amount:     booking.Price.Total,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})

	o.cfg.Log.Info("Booking cancelled", "booking_id", booking.ID, "reason", reason)
	return nil
}

func (o *bookingOrchestrator) ResolveApproval(ctx context.Context, id string, accept bool, reason string) error {
	booking, err := o.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return apperrors.NotFound("Booking")
		}
		return apperrors.Internal("Failed to load booking", err)
	}
	if booking.ApprovalStatus != model.ApprovalPending {
		return apperrors.Conflict("booking is not awaiting approval")
	}

	if !accept {
		if reason == "" {
			reason = "rejected by owner"
		}
		if err := o.Cancel(ctx, id, reason); err != nil {
			return err
		}
		if err := o.bookings.SetApproval(ctx, id, model.ApprovalRejected, model.BookingCancelled); err != nil {
			return apperrors.Internal("Failed to record approval decision", err)
		}
		o.cfg.Log.Info("Booking rejected", "booking_id", id, "reason", reason)
		return nil
	}

	status := booking.Status
	if booking.Method.Offline() {
		status = model.BookingConfirmed
	}
	if err := o.bookings.SetApproval(ctx, id, model.ApprovalAccepted, status); err != nil {
		return apperrors.Internal("Failed to record approval decision", err)
	}

	if status == model.BookingConfirmed && booking.Status != model.BookingConfirmed {
		o.publisher.Publish(ctx, events.TopicBookingConfirmed, booking.ID, events.BookingEvent{
			BookingID:  booking.ID,
			CustomerID: booking.CustomerID,
			OwnerID:    booking.OwnerID,
			GroupID:    booking.GroupID,
			Date:       booking.Date,
			Amount:     booking.Price.Total,
			OccurredAt: time.Now().UTC(),
		})
	}
	o.cfg.Log.Info("Booking approved", "booking_id", id, "status", status)
	return nil
}

func (o *bookingOrchestrator) MarkHoliday(ctx context.Context, key model.ScheduleKey, reason string) (*model.Schedule, error) {
	sc, err := o.allocator.MarkHoliday(ctx, key, reason)
	if err != nil {
		return nil, err
	}

	// Listing after the holiday flag is set means no new booking can slip in
	// between the listing and the fan-out.
	active, err := o.bookings.FindActiveByResource(ctx, key.Kind, key.ResourceID, key.Date)
	if err != nil {
		return nil, apperrors.Internal("Failed to list active bookings", err)
	}

	// MarkHoliday already cleared the day's slots on this resource; only
	// slots a booking holds on the other resource still need releasing.
	for _, b := range active {
		if err := o.cancelForHoliday(ctx, b, key, reason); err != nil {
			o.cfg.Log.Error("Failed to cancel booking for holiday",
				"booking_id", b.ID,
				"error", err,
			)
		}
	}
	return sc, nil
}

func (o *bookingOrchestrator) cancelForHoliday(ctx context.Context, booking *model.Booking, holiday model.ScheduleKey, reason string) error {
	err := o.bookings.ExecuteTransaction(ctx, func(sc mongo.SessionContext) error {
		if err := o.bookings.MarkCancelled(sc, booking.ID, reason); err != nil {
			return err
		}
		slot := model.TimeSlot{StartTime: booking.StartTime, EndTime: booking.EndTime}
		for _, key := range booking.Slots() {
			if key == holiday {
				continue
			}
			if err := o.allocator.Release(sc, key, slot); err != nil {
				return err
			}
		}
		if booking.PaymentID != "" {
			payment, err := o.payments.FindByID(sc, booking.PaymentID)
			if err != nil {
				if errors.Is(err, paymentrepo.ErrNotFound) {
					return nil
				}
				return err
			}
			if payment.Status == model.PaymentPending || payment.Status == model.PaymentProcessing {
				if err := o.payments.UpdateStatus(sc, payment.ID, model.PaymentFailed); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	o.publisher.Publish(ctx, events.TopicBookingCancelled, booking.ID, events.BookingEvent{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		OwnerID:    booking.OwnerID,
		GroupID:    booking.GroupID,
		Date:       booking.Date,
		Amount:     booking.Price.Total,
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

func (o *bookingOrchestrator) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := o.bookings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) || errors.Is(err, repository.ErrInvalidID) {
			return nil, apperrors.NotFound("Booking")
		}
		return nil, apperrors.Internal("Failed to load booking", err)
	}
	return booking, nil
}

func (o *bookingOrchestrator) ListByGroup(ctx context.Context, groupID string) ([]*model.Booking, error) {
	bookings, err := o.bookings.FindByGroupID(ctx, groupID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

func (o *bookingOrchestrator) abandonCheckout(ctx context.Context, payment *model.Payment) {
	if payment.CheckoutURL == "" {
		return
	}
	if err := o.gateway.CancelPaymentLink(ctx, payment.GatewayOrderCode, "booking aborted"); err != nil {
		o.cfg.Log.Warn("Failed to cancel orphaned checkout link",
			"order_code", payment.GatewayOrderCode,
			"error", err,
		)
	}
}

// newOrderCode builds a gateway order code from the millisecond clock plus a
// random suffix, unique enough across concurrent creates on one deployment.
func newOrderCode() int64 {
	return time.Now().UnixMilli()*1000 + rand.Int63n(1000)
}

func checkoutDescription(first *model.Booking, groupID string) string {
	if groupID != "" {
		return fmt.Sprintf("SportZone bookings %s", groupID[:8])
	}
	return fmt.Sprintf("SportZone %s %s-%s", first.Date, first.StartTime, first.EndTime)
}
