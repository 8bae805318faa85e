package handlers

import (
	"context"
	"net/http"

	"github.com/stationops/forecourt/internal/models"
	pkghttp "github.com/stationops/forecourt/pkg/http"
)

// PolicyServiceInterface defines the interface for policy settings logic
type PolicyServiceInterface interface {
	GetSecuritySettings(ctx context.Context) models.SecuritySettings
	GetAlertSettings(ctx context.Context) models.AlertSettings
	UpdateSecuritySettings(ctx context.Context, patch models.SecuritySettingsPatch) models.SecuritySettings
	UpdateAlertSettings(ctx context.Context, patch models.AlertSettingsPatch) models.AlertSettings
}

// SettingsHandler handles the admin policy settings endpoints. Updates
// follow the silent-clamp policy: the handler always answers 200 with the
// effective settings, never a validation error.
type SettingsHandler struct {
	service PolicyServiceInterface
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(service PolicyServiceInterface) *SettingsHandler {
	return &SettingsHandler{service: service}
}

// GetSecurity returns the security settings bundle
func (h *SettingsHandler) GetSecurity(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.service.GetSecuritySettings(r.Context()))
}

// UpdateSecurity applies a partial security settings update
func (h *SettingsHandler) UpdateSecurity(w http.ResponseWriter, r *http.Request) {
	var patch models.SecuritySettingsPatch
	if err := pkghttp.DecodeJSON(r, &patch); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, h.service.UpdateSecuritySettings(r.Context(), patch))
}

// GetAlerts returns the alert settings bundle
func (h *SettingsHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, h.service.GetAlertSettings(r.Context()))
}

// UpdateAlerts applies a partial alert settings update
func (h *SettingsHandler) UpdateAlerts(w http.ResponseWriter, r *http.Request) {
	var patch models.AlertSettingsPatch
	if err := pkghttp.DecodeJSON(r, &patch); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, h.service.UpdateAlertSettings(r.Context(), patch))
}
