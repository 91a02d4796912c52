package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/model"
	"github.com/spicestory/spicestory/internal/orders"
)

// OrdersHandler handles order endpoints.
type OrdersHandler struct {
	Orders *orders.Manager
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// List handles GET /api/orders.
func (h *OrdersHandler) List(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, uuid.Nil)
}

// Mine handles GET /api/orders/mine.
func (h *OrdersHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, r, apperr.Auth("Not authorized"))
		return
	}
	h.list(w, r, claims.UserID)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	list, err := h.Orders.List(r.Context(), r.URL.Query().Get("status"), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if list == nil {
		list = []model.Order{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Get handles GET /api/orders/{id}.
func (h *OrdersHandler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, o)
}

// Create handles POST /api/orders.
func (h *OrdersHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, r, apperr.Auth("Not authorized"))
		return
	}

	var req orders.CreateRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.Orders.Create(r.Context(), &req, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, o)
}

// UpdateStatus handles PUT /api/orders/{id}/status.
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	o, err := h.Orders.UpdateStatus(r.Context(), r.PathValue("id"), req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, o)
}
