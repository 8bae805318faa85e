package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/stationops/forecourt/internal/auth"
	"github.com/stationops/forecourt/internal/models"
	pkghttp "github.com/stationops/forecourt/pkg/http"
)

// UserAdminServiceInterface defines the interface for user administration
type UserAdminServiceInterface interface {
	List(ctx context.Context) ([]*models.UserAccount, error)
	Create(ctx context.Context, username, password, role, actor string) (*models.UserAccount, error)
	Lock(ctx context.Context, username, actor string) error
	Unlock(ctx context.Context, username, actor string) error
	ResetPassword(ctx context.Context, username, newPassword, actor string) error
}

// UserHandler handles administrative user account requests
type UserHandler struct {
	service UserAdminServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserAdminServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=2,max=64"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role" validate:"required,oneof=operator manager admin"`
}

// ResetPasswordRequest represents the request body for an operator password
// reset
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// List handles listing all user accounts
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list users")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, users)
}

// Create handles user account creation
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	user, err := h.service.Create(r.Context(), req.Username, req.Password, req.Role, actorFrom(r))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "username already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "invalid username")
		case errors.Is(err, models.ErrInternalServer):
			pkghttp.WriteInternalError(w, "failed to create user")
		default:
			pkghttp.WriteBadRequest(w, err.Error())
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, user)
}

// Lock handles an explicit administrative lock
func (h *UserHandler) Lock(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.service.Lock(r.Context(), username, actorFrom(r)); err != nil {
		writeUserActionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Unlock handles an explicit administrative unlock
func (h *UserHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	if err := h.service.Unlock(r.Context(), username, actorFrom(r)); err != nil {
		writeUserActionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ResetPassword handles an operator-performed password reset
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	var req ResetPasswordRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.ResetPassword(r.Context(), username, req.NewPassword, actorFrom(r)); err != nil {
		writeUserActionError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeUserActionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "user not found")
	case errors.Is(err, models.ErrInternalServer):
		pkghttp.WriteInternalError(w, "operation failed")
	default:
		pkghttp.WriteBadRequest(w, err.Error())
	}
}

func actorFrom(r *http.Request) string {
	if claims, ok := auth.SessionFromContext(r.Context()); ok {
		return claims.Username
	}
	return ""
}
