package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/stationops/forecourt/internal/auth"
	"github.com/stationops/forecourt/internal/models"
	pkghttp "github.com/stationops/forecourt/pkg/http"
)

// AlertServiceInterface defines the interface for alert business logic
type AlertServiceInterface interface {
	List(ctx context.Context, status string, limit, offset int) ([]*models.Alert, error)
	Resolve(ctx context.Context, id int64, resolvedBy string) (*models.Alert, error)
}

// AlertHandler handles alert HTTP requests
type AlertHandler struct {
	service AlertServiceInterface
}

// NewAlertHandler creates a new AlertHandler
func NewAlertHandler(service AlertServiceInterface) *AlertHandler {
	return &AlertHandler{service: service}
}

// List handles alert listing, optionally filtered by status
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != models.AlertStatusActive && status != models.AlertStatusResolved {
		pkghttp.WriteBadRequest(w, "status must be active or resolved")
		return
	}

	limit, offset := parsePagination(r)

	alerts, err := h.service.List(r.Context(), status, limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list alerts")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, alerts)
}

// Resolve handles the resolve-once transition for one alert
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		pkghttp.WriteBadRequest(w, "invalid alert id")
		return
	}

	resolvedBy := ""
	if claims, ok := auth.SessionFromContext(r.Context()); ok {
		resolvedBy = claims.Username
	}

	alert, err := h.service.Resolve(r.Context(), id, resolvedBy)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "alert not found")
		case errors.Is(err, models.ErrAlreadyResolved):
			pkghttp.WriteConflict(w, "alert already resolved")
		default:
			pkghttp.WriteInternalError(w, "failed to resolve alert")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, alert)
}
