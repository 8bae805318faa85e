package repositories

import (
	"context"
	"fmt"

	"github.com/stationops/forecourt/internal/database"
)

// Settings bundle names
const (
	SettingsBundleSecurity = "security"
	SettingsBundleAlerts   = "alerts"
)

// SettingsRepository persists the policy bundles as JSONB documents keyed by
// bundle name.
type SettingsRepository struct {
	db *database.DB
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *database.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the raw stored document for a bundle, or models.ErrNotFound
// when the bundle has never been written.
func (r *SettingsRepository) Get(ctx context.Context, name string) ([]byte, error) {
	query := `SELECT data FROM settings WHERE name = $1`

	var data []byte
	err := r.db.Pool.QueryRow(ctx, query, name).Scan(&data)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return data, nil
}

// Save upserts a bundle document.
func (r *SettingsRepository) Save(ctx context.Context, name string, data []byte) error {
	query := `
		INSERT INTO settings (name, data, updated_at)
		VALUES ($1, $2, CURRENT_TIMESTAMP)
		ON CONFLICT (name) DO UPDATE SET data = $2, updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.Pool.Exec(ctx, query, name, data); err != nil {
		return fmt.Errorf("failed to save settings bundle %q: %w", name, err)
	}
	return nil
}
