package services

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/stationops/forecourt/internal/models"
	"github.com/stationops/forecourt/internal/repositories"
)

// SettingsStore defines the interface for settings persistence
type SettingsStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Save(ctx context.Context, name string, data []byte) error
}

// PolicyService owns the two policy bundles. It enforces the silent-clamp
// policy: invalid values are dropped field by field, never surfaced as
// errors, so the admin surface is never blocked on a bad value. Reads
// persist the normalized form back, so a corrupt stored bundle self-heals
// to defaults on the next read.
type PolicyService struct {
	store  SettingsStore
	logger *slog.Logger
}

// NewPolicyService creates a new PolicyService
func NewPolicyService(store SettingsStore, logger *slog.Logger) *PolicyService {
	return &PolicyService{
		store:  store,
		logger: logger,
	}
}

// GetSecuritySettings returns the security bundle, normalized.
func (s *PolicyService) GetSecuritySettings(ctx context.Context) models.SecuritySettings {
	settings := models.DefaultSecuritySettings()

	data, err := s.store.Get(ctx, repositories.SettingsBundleSecurity)
	if err == nil {
		// Unmarshal over the defaults so a document missing fields keeps
		// them instead of zeroing them out.
		if jsonErr := json.Unmarshal(data, &settings); jsonErr != nil {
			settings = models.DefaultSecuritySettings()
			s.logger.Warn("corrupt security settings, falling back to defaults", slog.Any("error", jsonErr))
		}
	}

	normalized := settings.Normalize()
	s.persist(ctx, repositories.SettingsBundleSecurity, normalized)
	return normalized
}

// GetAlertSettings returns the alert bundle, normalized.
func (s *PolicyService) GetAlertSettings(ctx context.Context) models.AlertSettings {
	settings := models.DefaultAlertSettings()

	data, err := s.store.Get(ctx, repositories.SettingsBundleAlerts)
	if err == nil {
		if jsonErr := json.Unmarshal(data, &settings); jsonErr != nil {
			settings = models.DefaultAlertSettings()
			s.logger.Warn("corrupt alert settings, falling back to defaults", slog.Any("error", jsonErr))
		}
	}

	normalized := settings.Normalize()
	s.persist(ctx, repositories.SettingsBundleAlerts, normalized)
	return normalized
}

// UpdateSecuritySettings applies a partial update. Each field is validated
// independently; an out-of-range field keeps its previous value while valid
// fields in the same call still apply.
func (s *PolicyService) UpdateSecuritySettings(ctx context.Context, patch models.SecuritySettingsPatch) models.SecuritySettings {
	current := s.GetSecuritySettings(ctx)
	updated := patch.Apply(current)
	s.persist(ctx, repositories.SettingsBundleSecurity, updated)

	s.logger.Info("security settings updated",
		slog.Int("max_failed_attempts", updated.MaxFailedAttempts),
		slog.Int("lock_window_minutes", updated.LockWindowMinutes),
		slog.Int("password_expiry_days", updated.PasswordExpiryDays),
	)
	return updated
}

// UpdateAlertSettings applies a partial update with the same per-field
// silent-drop policy.
func (s *PolicyService) UpdateAlertSettings(ctx context.Context, patch models.AlertSettingsPatch) models.AlertSettings {
	current := s.GetAlertSettings(ctx)
	updated := patch.Apply(current)
	s.persist(ctx, repositories.SettingsBundleAlerts, updated)

	s.logger.Info("alert settings updated",
		slog.Bool("critical_alerts", updated.EnableCriticalAlerts),
		slog.Bool("station_burst_alerts", updated.EnableStationBurstAlerts),
		slog.Int("burst_threshold", updated.StationBurstThreshold),
		slog.Int("burst_window_minutes", updated.StationBurstWindowMinutes),
	)
	return updated
}

// persist writes a bundle back to the store. Persistence failures are
// logged and swallowed; the in-memory result stands regardless.
func (s *PolicyService) persist(ctx context.Context, name string, bundle interface{}) {
	data, err := json.Marshal(bundle)
	if err != nil {
		s.logger.Error("failed to marshal settings bundle", slog.String("bundle", name), slog.Any("error", err))
		return
	}
	if err := s.store.Save(ctx, name, data); err != nil {
		s.logger.Error("failed to persist settings bundle", slog.String("bundle", name), slog.Any("error", err))
	}
}
