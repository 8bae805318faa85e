package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/stationops/forecourt/internal/database"
	"github.com/stationops/forecourt/internal/models"
)

// LogRepository handles database operations for log entries
type LogRepository struct {
	db *database.DB
}

// NewLogRepository creates a new LogRepository
func NewLogRepository(db *database.DB) *LogRepository {
	return &LogRepository{db: db}
}

const logEntryColumns = `id, station_id, status, severity, incident_type,
	entry_date, entry_time, created_at, created_by, description`

func scanLogEntryRow(row pgx.Row) (*models.LogEntry, error) {
	var entry models.LogEntry

	err := row.Scan(
		&entry.ID, &entry.StationID, &entry.Status, &entry.Severity,
		&entry.IncidentType, &entry.EntryDate, &entry.EntryTime,
		&entry.CreatedAt, &entry.CreatedBy, &entry.Description,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &entry, nil
}

func scanLogEntryRows(rows pgx.Rows) ([]*models.LogEntry, error) {
	defer rows.Close()

	entries := make([]*models.LogEntry, 0)

	for rows.Next() {
		entry, err := scanLogEntryRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating log entry rows: %w", err)
	}

	return entries, nil
}

// Create inserts a new log entry
func (r *LogRepository) Create(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error) {
	query := `
		INSERT INTO log_entries (station_id, status, severity, incident_type,
			entry_date, entry_time, created_at, created_by, description)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, CURRENT_TIMESTAMP), $8, $9)
		RETURNING ` + logEntryColumns

	result, err := scanLogEntryRow(r.db.Pool.QueryRow(ctx, query,
		entry.StationID, entry.Status, entry.Severity, entry.IncidentType,
		entry.EntryDate, entry.EntryTime, entry.CreatedAt,
		entry.CreatedBy, entry.Description,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create log entry: %w", err)
	}

	return result, nil
}

// GetAll returns the full historical log set, newest first. The rule
// evaluator scans the whole set per evaluation.
func (r *LogRepository) GetAll(ctx context.Context) ([]*models.LogEntry, error) {
	query := `SELECT ` + logEntryColumns + ` FROM log_entries ORDER BY id DESC`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}

	return scanLogEntryRows(rows)
}

// List returns log entries with optional station and status filters.
func (r *LogRepository) List(ctx context.Context, stationID, status string, limit, offset int) ([]*models.LogEntry, error) {
	query := `
		SELECT ` + logEntryColumns + `
		FROM log_entries
		WHERE ($1 = '' OR station_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY id DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Pool.Query(ctx, query, stationID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}

	return scanLogEntryRows(rows)
}
