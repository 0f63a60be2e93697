package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/MNhat168/sport-zone-sub002/internal/payments/gateway"
	"github.com/MNhat168/sport-zone-sub002/internal/payments/service"
	"github.com/MNhat168/sport-zone-sub002/pkg/events"
	httputil "github.com/MNhat168/sport-zone-sub002/pkg/http"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

// PaymentHandler terminates the gateway webhook and the check-in signal.
// Webhook processing is synchronous and authoritative; the mirrored bus event
// lets the payment worker and analytics consumers replay it idempotently.
type PaymentHandler struct {
	processor service.PaymentEventProcessor
	gateway   gateway.Gateway
	publisher events.Publisher
	log       *logger.Logger
}

func NewPaymentHandler(
	processor service.PaymentEventProcessor,
	gw gateway.Gateway,
	publisher events.Publisher,
	log *logger.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		processor: processor,
		gateway:   gw,
		publisher: publisher,
		log:       log,
	}
}

func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Failed to read request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Webhook", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	data, err := h.gateway.VerifyWebhook(body)
	if err != nil {
		h.log.Warn("Rejected webhook with bad signature", "error", err)
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Webhook", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	event := &events.PaymentEvent{
		OrderCode:      data.OrderCode,
		Status:         data.Code,
		Amount:         data.Amount,
		CounterAccount: data.CounterAccount,
		Reason:         data.Description,
		OccurredAt:     time.Now().UTC(),
	}

	key := strconv.FormatInt(event.OrderCode, 10)
	if data.Success() {
		err = h.processor.OnPaymentSuccess(r.Context(), event)
		if err == nil {
			h.publisher.Publish(r.Context(), events.TopicPaymentSuccess, key, event)
		}
	} else {
		err = h.processor.OnPaymentFailedOrExpired(r.Context(), event)
		if err == nil {
			h.publisher.Publish(r.Context(), events.TopicPaymentExpired, key, event)
		}
	}
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Webhook", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]string{"status": "ok"}); err != nil {
		h.log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PaymentHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.processor.CheckIn(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "CheckIn", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PaymentHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/payments/webhook", h.Webhook)
	router.POST("/api/v1/bookings/id/:id/check-in", h.CheckIn)
}
