package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/stationops/forecourt/internal/models"
	pkghttp "github.com/stationops/forecourt/pkg/http"
)

// SecurityEventReader defines the interface for reading the audit trail
type SecurityEventReader interface {
	ListRecent(ctx context.Context, eventType string, limit int) ([]*models.SecurityEvent, error)
}

// SecurityEventHandler exposes the persisted security audit trail to admins
type SecurityEventHandler struct {
	events SecurityEventReader
}

// NewSecurityEventHandler creates a new SecurityEventHandler
func NewSecurityEventHandler(events SecurityEventReader) *SecurityEventHandler {
	return &SecurityEventHandler{events: events}
}

// List handles listing recent security events, optionally filtered by type
func (h *SecurityEventHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events, err := h.events.ListRecent(r.Context(), r.URL.Query().Get("type"), limit)
	if err != nil {
		pkghttp.WriteInternalError(w, "failed to list security events")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, events)
}
