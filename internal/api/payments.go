package api

import (
	"net/http"

	"github.com/spicestory/spicestory/internal/payments"
)

// PaymentsHandler handles payment endpoints.
type PaymentsHandler struct {
	Payments *payments.Bridge
}

type createIntentRequest struct {
	OrderID string `json:"orderId"`
}

type confirmRequest struct {
	OrderID         string `json:"orderId"`
	PaymentIntentID string `json:"paymentIntentId"`
}

// CreateIntent handles POST /api/payments/create-intent.
func (h *PaymentsHandler) CreateIntent(w http.ResponseWriter, r *http.Request) {
	var req createIntentRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Payments.CreateIntent(r.Context(), req.OrderID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Confirm handles POST /api/payments/confirm.
func (h *PaymentsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.Payments.Confirm(r.Context(), req.OrderID, req.PaymentIntentID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, o)
}

// Status handles GET /api/payments/status/{orderId}.
func (h *PaymentsHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := h.Payments.Status(r.Context(), r.PathValue("orderId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": string(status)})
}
