package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/stationops/forecourt/internal/auth"
	"github.com/stationops/forecourt/internal/models"
	"github.com/stationops/forecourt/internal/services"
	pkghttp "github.com/stationops/forecourt/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password, role, ipAddress string) (*services.LoginResult, error)
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) (*services.LoginResult, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=operator manager admin"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.Login(r.Context(), req.Username, req.Password, req.Role, pkghttp.ClientIP(r))
	if err != nil {
		writeLoginError(w, err)
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// ChangePassword handles a password change for the current session
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		pkghttp.WriteUnauthorized(w, "no session")
		return
	}

	var req ChangePasswordRequest
	if err := pkghttp.DecodeJSON(r, &req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.ChangePassword(r.Context(), claims.Username, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrWrongCredential):
			pkghttp.WriteError(w, http.StatusUnauthorized, "wrong_credential", "current password is incorrect")
		case errors.Is(err, models.ErrIdentityNotFound):
			pkghttp.WriteUnauthorized(w, "unknown account")
		case errors.Is(err, models.ErrInternalServer):
			pkghttp.WriteInternalError(w, "failed to change password")
		default:
			pkghttp.WriteBadRequest(w, err.Error())
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// writeLoginError maps each authentication error kind to its own response
// code so the UI can react differently per kind.
func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrAccountLocked):
		pkghttp.WriteLocked(w, "account_locked", "account locked by administrator")
	case errors.Is(err, models.ErrTemporarilyLimited):
		pkghttp.WriteError(w, http.StatusTooManyRequests, "temporarily_limited",
			"too many failed attempts, try again later")
	case errors.Is(err, models.ErrIdentityNotFound):
		pkghttp.WriteError(w, http.StatusUnauthorized, "identity_not_found", "unknown username")
	case errors.Is(err, models.ErrWrongCredential):
		pkghttp.WriteError(w, http.StatusUnauthorized, "wrong_credential", "incorrect password")
	case errors.Is(err, models.ErrRoleMismatch):
		pkghttp.WriteError(w, http.StatusUnauthorized, "role_mismatch", "account does not have the selected role")
	default:
		pkghttp.WriteInternalError(w, "login failed")
	}
}
