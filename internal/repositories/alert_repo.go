package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stationops/forecourt/internal/database"
	"github.com/stationops/forecourt/internal/models"
)

// AlertRepository handles database operations for the alert ledger
type AlertRepository struct {
	db *database.DB
}

// NewAlertRepository creates a new AlertRepository
func NewAlertRepository(db *database.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

const alertColumns = `id, created_at, log_id, station_id, station_name,
	severity, rule, level, message, status, resolved_at, resolved_by`

func scanAlertRow(row pgx.Row) (*models.Alert, error) {
	var alert models.Alert
	var resolvedBy *string

	err := row.Scan(
		&alert.ID, &alert.CreatedAt, &alert.LogID, &alert.StationID,
		&alert.StationName, &alert.Severity, &alert.Rule, &alert.Level,
		&alert.Message, &alert.Status, &alert.ResolvedAt, &resolvedBy,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if resolvedBy != nil {
		alert.ResolvedBy = *resolvedBy
	}

	return &alert, nil
}

func scanAlertRows(rows pgx.Rows) ([]*models.Alert, error) {
	defer rows.Close()

	alerts := make([]*models.Alert, 0)

	for rows.Next() {
		alert, err := scanAlertRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert rows: %w", err)
	}

	return alerts, nil
}

// Create appends an alert, allocating id = max existing + 1 inside the
// insert so the allocation and the write happen in one statement.
func (r *AlertRepository) Create(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
	query := `
		INSERT INTO alerts (id, created_at, log_id, station_id, station_name,
			severity, rule, level, message, status)
		SELECT COALESCE(MAX(id), 0) + 1, $1, $2, $3, $4, $5, $6, $7, $8, $9
		FROM alerts
		RETURNING ` + alertColumns

	result, err := scanAlertRow(r.db.Pool.QueryRow(ctx, query,
		alert.CreatedAt, alert.LogID, alert.StationID, alert.StationName,
		alert.Severity, alert.Rule, alert.Level, alert.Message, alert.Status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create alert: %w", err)
	}

	return result, nil
}

// GetByID returns a single alert or models.ErrNotFound.
func (r *AlertRepository) GetByID(ctx context.Context, id int64) (*models.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	return scanAlertRow(r.db.Pool.QueryRow(ctx, query, id))
}

// List returns alerts newest first, optionally filtered by status.
func (r *AlertRepository) List(ctx context.Context, status string, limit, offset int) ([]*models.Alert, error) {
	query := `
		SELECT ` + alertColumns + `
		FROM alerts
		WHERE ($1 = '' OR status = $1)
		ORDER BY id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Pool.Query(ctx, query, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}

	return scanAlertRows(rows)
}

// Resolve marks an active alert resolved. The status guard in the WHERE
// clause makes the resolved state immutable; when no row matches, GetByID
// distinguishes a missing alert from an already-resolved one.
func (r *AlertRepository) Resolve(ctx context.Context, id int64, resolvedBy string, resolvedAt time.Time) (*models.Alert, error) {
	query := `
		UPDATE alerts
		SET status = $2, resolved_at = $3, resolved_by = $4
		WHERE id = $1 AND status = $5
		RETURNING ` + alertColumns

	result, err := scanAlertRow(r.db.Pool.QueryRow(ctx, query,
		id, models.AlertStatusResolved, resolvedAt, resolvedBy, models.AlertStatusActive,
	))
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("failed to resolve alert: %w", err)
	}

	existing, getErr := r.GetByID(ctx, id)
	if getErr != nil {
		return nil, models.ErrNotFound
	}
	if existing.Status == models.AlertStatusResolved {
		return nil, models.ErrAlreadyResolved
	}
	return nil, models.ErrNotFound
}

// DeleteResolvedBefore purges resolved alerts older than the cutoff.
func (r *AlertRepository) DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM alerts WHERE status = $1 AND resolved_at < $2`

	result, err := r.db.Pool.Exec(ctx, query, models.AlertStatusResolved, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge resolved alerts: %w", err)
	}

	return result.RowsAffected(), nil
}
