package api

import (
	"database/sql"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/spicestory/spicestory/internal/apperr"
	"github.com/spicestory/spicestory/internal/auth"
	"github.com/spicestory/spicestory/internal/logging"
	"github.com/spicestory/spicestory/internal/model"
	"github.com/spicestory/spicestory/internal/store"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	DB        *sql.DB
	JWTSecret string
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, r, apperr.Validation("", "All fields are required"))
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, r, apperr.Validation("email", "Invalid email address"))
		return
	}
	if err := model.ValidatePassword(req.Password); err != nil {
		writeError(w, r, apperr.Validation("password", err.Error()))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to hash password", err))
		return
	}

	user, err := store.CreateUser(r.Context(), h.DB, req.Name, req.Email, string(hash))
	if errors.Is(err, store.ErrEmailTaken) {
		writeError(w, r, apperr.Validation("email", "User already exists"))
		return
	}
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to create user", err))
		return
	}

	h.respondWithToken(w, r, http.StatusCreated, user)
	logging.FromContext(r.Context(), nil).Info("user registered", "user_id", user.ID)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, r, apperr.Validation("", "Email and password are required"))
		return
	}

	user, err := store.GetUserByEmail(r.Context(), h.DB, req.Email)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to get user", err))
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		logging.FromContext(r.Context(), nil).Warn("login failed", "email", req.Email, "remote", r.RemoteAddr)
		writeError(w, r, apperr.Validation("", "Invalid credentials"))
		return
	}

	h.respondWithToken(w, r, http.StatusOK, user)
	logging.FromContext(r.Context(), nil).Info("user logged in", "user_id", user.ID)
}

// Logout handles POST /api/auth/logout.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		writeError(w, r, apperr.Auth("Not authorized"))
		return
	}

	if err := store.RevokeToken(r.Context(), h.DB, claims.ID, claims.ExpiresAt.Time); err != nil {
		writeError(w, r, apperr.Dependency("failed to revoke token", err))
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, r *http.Request, status int, user *model.User) {
	token, err := auth.GenerateToken(h.JWTSecret, user.ID, user.Email, user.Name)
	if err != nil {
		writeError(w, r, apperr.Dependency("failed to generate token", err))
		return
	}
	jsonResponse(w, status, authResponse{Token: token, User: user})
}
