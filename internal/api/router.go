package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/spicestory/spicestory/internal/model"
	"github.com/spicestory/spicestory/internal/orders"
	"github.com/spicestory/spicestory/internal/payments"
)

// Config holds the dependencies of the HTTP API.
type Config struct {
	DB         *sql.DB
	JWTSecret  string
	Orders     *orders.Manager
	Payments   *payments.Bridge
	Logger     *slog.Logger
	CORSOrigin string
}

// NewRouter creates the API handler with all endpoints and middleware
// registered.
func NewRouter(cfg Config) http.Handler {
	mux := http.NewServeMux()

	authHandler := &AuthHandler{DB: cfg.DB, JWTSecret: cfg.JWTSecret}
	products := &CatalogHandler{DB: cfg.DB, Kind: model.KindProduct, Noun: "Product", Path: "/api/products"}
	menu := &CatalogHandler{DB: cfg.DB, Kind: model.KindMenu, Noun: "Menu item", Path: "/api/menu"}
	ordersHandler := &OrdersHandler{Orders: cfg.Orders}
	paymentsHandler := &PaymentsHandler{Payments: cfg.Payments}
	cartHandler := &CartHandler{DB: cfg.DB, Orders: cfg.Orders}

	authMW := AuthMiddleware(cfg.JWTSecret, cfg.DB)

	mux.HandleFunc("GET /{$}", Health)

	// Auth.
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.Handle("POST /api/auth/logout", authMW(http.HandlerFunc(authHandler.Logout)))

	// Catalogs.
	for _, h := range []*CatalogHandler{products, menu} {
		mux.HandleFunc("GET "+h.Path, h.List)
		mux.HandleFunc("POST "+h.Path, h.Create)
		mux.HandleFunc("GET "+h.Path+"/{id}", h.Get)
		mux.HandleFunc("PUT "+h.Path+"/{id}", h.Update)
		mux.HandleFunc("DELETE "+h.Path+"/{id}", h.Delete)
		mux.HandleFunc("PUT "+h.Path+"/{id}/image", h.UploadImage)
		mux.HandleFunc("GET "+h.Path+"/{id}/image", h.GetImage)
	}

	// Orders: only creation and the caller's own list need a token.
	mux.HandleFunc("GET /api/orders", ordersHandler.List)
	mux.Handle("POST /api/orders", authMW(http.HandlerFunc(ordersHandler.Create)))
	mux.Handle("GET /api/orders/mine", authMW(http.HandlerFunc(ordersHandler.Mine)))
	mux.HandleFunc("GET /api/orders/{id}", ordersHandler.Get)
	mux.HandleFunc("PUT /api/orders/{id}/status", ordersHandler.UpdateStatus)

	// Payments.
	mux.HandleFunc("POST /api/payments/create-intent", paymentsHandler.CreateIntent)
	mux.HandleFunc("POST /api/payments/create-payment-intent", paymentsHandler.CreateIntent)
	mux.HandleFunc("POST /api/payments/confirm", paymentsHandler.Confirm)
	mux.HandleFunc("POST /api/payments/confirm-payment", paymentsHandler.Confirm)
	mux.HandleFunc("GET /api/payments/status/{orderId}", paymentsHandler.Status)

	// Cart.
	mux.Handle("GET /api/cart", authMW(http.HandlerFunc(cartHandler.Get)))
	mux.Handle("POST /api/cart", authMW(http.HandlerFunc(cartHandler.Apply)))
	mux.Handle("DELETE /api/cart", authMW(http.HandlerFunc(cartHandler.Clear)))
	mux.Handle("POST /api/cart/checkout", authMW(http.HandlerFunc(cartHandler.Checkout)))

	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return LoggingMiddleware(logger)(CORSMiddleware(origin)(mux))
}

// Health handles GET /.
func Health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]string{"message": "Spice Story API is running"})
}
