package handler

import (
	"encoding/json"
	"net/http"

	"github.com/MNhat168/sport-zone-sub002/internal/wallets/service"
	httputil "github.com/MNhat168/sport-zone-sub002/pkg/http"
	"github.com/MNhat168/sport-zone-sub002/pkg/logger"
	"github.com/MNhat168/sport-zone-sub002/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WalletHandler struct {
	ledger service.LedgerService
	log    *logger.Logger
}

func NewWalletHandler(ledger service.LedgerService, log *logger.Logger) *WalletHandler {
	return &WalletHandler{
		ledger: ledger,
		log:    log,
	}
}

func (h *WalletHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerID := ps.ByName("owner_id")
	role := model.WalletRole(ps.ByName("role"))

	wallet, err := h.ledger.GetWallet(r.Context(), ownerID, role)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, wallet); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		OwnerID string `json:"owner_id"`
		Amount  int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Withdraw", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	payment, err := h.ledger.Withdraw(r.Context(), body.OwnerID, body.Amount)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Withdraw", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, payment); err != nil {
		h.log.Error("failed to write created response", "handler", "Withdraw", "operation", "WriteCreated", "error", err)
	}
}

func (h *WalletHandler) Refund(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		BookingID   string `json:"booking_id"`
		Destination string `json:"destination"`
		Amount      int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Refund", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	payment, err := h.ledger.Refund(r.Context(), body.BookingID, service.RefundDestination(body.Destination), body.Amount)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Refund", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, payment); err != nil {
		h.log.Error("failed to write created response", "handler", "Refund", "operation", "WriteCreated", "error", err)
	}
}

func (h *WalletHandler) WithdrawRefundCredit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var body struct {
		UserID string `json:"user_id"`
		Amount int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "WithdrawRefundCredit", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	payment, err := h.ledger.WithdrawRefundCredit(r.Context(), body.UserID, body.Amount)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "WithdrawRefundCredit", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, payment); err != nil {
		h.log.Error("failed to write created response", "handler", "WithdrawRefundCredit", "operation", "WriteCreated", "error", err)
	}
}

func (h *WalletHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/wallets/:role/:owner_id", h.Get)
	router.POST("/api/v1/wallets/withdrawals", h.Withdraw)
	router.POST("/api/v1/wallets/refunds", h.Refund)
	router.POST("/api/v1/wallets/refund-withdrawals", h.WithdrawRefundCredit)
}
