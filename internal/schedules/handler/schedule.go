package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/MNhat168/sport-zone-sub002/internal/schedules/service"
	httputil "github.com/MNhat168/sport-zone-sub002/pkg/http"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// HolidayMarker closes a resource day and fans out booking cancellations.
// The booking orchestrator implements it; the plain allocator does not cancel.
type HolidayMarker interface {
	MarkHoliday(ctx context.Context, key model.ScheduleKey, reason string) (*model.Schedule, error)
}

type ScheduleHandler struct {
	allocator service.Allocator
	holidays  HolidayMarker
	log       *logger.Logger
}

func NewScheduleHandler(allocator service.Allocator, holidays HolidayMarker, log *logger.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		allocator: allocator,
		holidays:  holidays,
		log:       log,
	}
}

func (h *ScheduleHandler) GetAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	key := model.ScheduleKey{
		Kind:       model.ResourceKind(ps.ByName("kind")),
		ResourceID: ps.ByName("resource_id"),
		Date:       ps.ByName("date"),
	}

	schedule, err := h.allocator.GetByKey(r.Context(), key)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetAvailability", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, schedule); err != nil {
		h.log.Error("failed to write success response", "handler", "GetAvailability", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) MarkHoliday(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		ResourceKind model.ResourceKind `json:"resource_kind"`
		ResourceID   string             `json:"resource_id"`
		Date         string             `json:"date"`
		Reason       string             `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "MarkHoliday", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	key := model.ScheduleKey{Kind: body.ResourceKind, ResourceID: body.ResourceID, Date: body.Date}
	schedule, err := h.holidays.MarkHoliday(r.Context(), key, body.Reason)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "MarkHoliday", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, schedule); err != nil {
		h.log.Error("failed to write success response", "handler", "MarkHoliday", "operation", "WriteSuccess", "error", err)
	}
}

func (h *ScheduleHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/schedules/:kind/:resource_id/:date", h.GetAvailability)
	router.POST("/api/v1/schedules/holiday", h.MarkHoliday)
}
