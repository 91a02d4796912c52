package api

import (
	"database/sql"
	"io"
	"net/http"

	"github.com/samber/lo"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/cart"
	"github.com/spicestory/spicestory/internal/logging"
	"github.com/spicestory/spicestory/internal/orders"
	"github.com/spicestory/spicestory/internal/store"
)

// CartHandler handles the caller's server-side cart.
type CartHandler struct {
	DB     *sql.DB
	Orders *orders.Manager
}

type checkoutRequest struct {
	ShippingAddress orders.AddressRequest `json:"shippingAddress"`
}

// Get handles GET /api/cart.
func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, r, apperr.Auth("Not authorized"))
		return
	}

	items, err := store.GetCart(r.Context(), h.DB, claims.UserID)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to get cart", err))
		return
	}
	jsonResponse(w, http.StatusOK, cart.New(items))
}

// Apply handles POST /api/cart with a single {"type", "payload"} action.
func (h *CartHandler) Apply(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, r, apperr.Auth("Not authorized"))
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<16))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req, err := cart.DecodeRequest(body)
	if err != nil {
		writeError(w, r, apperr.Validation("type", err.Error()))
		return
	}

	var action cart.Action
	switch req.Type {
	case cart.TypeAdd:
		item, err := store.FindCatalogItem(r.Context(), h.DB, req.ID)
		if err != nil {
			writeError(w, r, apperr.Dependency("failed to get catalog item", err))
			return
		}
		if item == nil {
			writeError(w, r, apperr.NotFound("Item not found"))
			return
		}
		action = cart.Add{Item: cart.Item{ID: item.ID, Name: item.Name, Price: item.Price, Quantity: req.Quantity}}
	case cart.TypeRemove:
		action = cart.Remove{ID: req.ID}
	case cart.TypeUpdateQuantity:
		action = cart.UpdateQuantity{ID: req.ID, Quantity: req.Quantity}
	}

	items, err := store.GetCart(r.Context(), h.DB, claims.UserID)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to get cart", err))
		return
	}

	items = cart.Reduce(items, action)
	if err := store.SaveCart(r.Context(), h.DB, claims.UserID, items); err != nil {
		writeError(w, r, apperr.Dependency("failed to save cart", err))
		return
	}

	logging.FromContext(r.Context(), nil).Debug("cart action applied", "action", action.Type(), "item_id", req.ID, "items", len(items))
	jsonResponse(w, http.StatusOK, cart.New(items))
}

// Clear handles DELETE /api/cart.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, r, apperr.Auth("Not authorized"))
		return
	}

	if err := store.ClearCart(r.Context(), h.DB, claims.UserID); err != nil {
		writeError(w, r, apperr.Dependency("failed to clear cart", err))
		return
	}
	jsonResponse(w, http.StatusOK, cart.New(nil))
}

// Checkout handles POST /api/cart/checkout. The cart becomes a pending order
// at the prices captured when items were added, and is then emptied.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, r, apperr.Auth("Not authorized"))
		return
	}

	var req checkoutRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	items, err := store.GetCart(r.Context(), h.DB, claims.UserID)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to get cart", err))
		return
	}
	if len(items) == 0 {
		writeError(w, r, apperr.Validation("items", "Cart is empty"))
		return
	}

	o, err := h.Orders.Create(r.Context(), &orders.CreateRequest{
		Items: lo.Map(items, func(it cart.Item, _ int) orders.ItemRequest {
			return orders.ItemRequest{Product: it.ID.String(), Quantity: it.Quantity, Price: &it.Price}
		}),
		ShippingAddress: req.ShippingAddress,
	}, claims.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := store.ClearCart(r.Context(), h.DB, claims.UserID); err != nil {
		logging.FromContext(r.Context(), nil).Error("failed to clear cart after checkout", "order_id", o.ID, "error", err)
	}
	jsonResponse(w, http.StatusCreated, o)
}
