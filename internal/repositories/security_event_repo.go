package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stationops/forecourt/internal/database"
	"github.com/stationops/forecourt/internal/models"
)

// SecurityEventRepository handles the persisted security audit trail.
// Callers treat writes as best-effort: a failed insert is logged and
// swallowed at the call site, never surfaced.
type SecurityEventRepository struct {
	db *database.DB
}

// NewSecurityEventRepository creates a new SecurityEventRepository
func NewSecurityEventRepository(db *database.DB) *SecurityEventRepository {
	return &SecurityEventRepository{db: db}
}

// Create inserts a security event.
func (r *SecurityEventRepository) Create(ctx context.Context, event *models.SecurityEvent) error {
	query := `
		INSERT INTO security_events (id, event_type, username, detail, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`

	id := event.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	_, err := r.db.Pool.Exec(ctx, query,
		id, event.EventType, event.Username, event.Detail, event.Metadata,
	)
	if err != nil {
		return fmt.Errorf("failed to create security event: %w", err)
	}
	return nil
}

// ListRecent returns the newest events, optionally filtered by type.
func (r *SecurityEventRepository) ListRecent(ctx context.Context, eventType string, limit int) ([]*models.SecurityEvent, error) {
	query := `
		SELECT id, event_type, username, detail, metadata, created_at
		FROM security_events
		WHERE ($1 = '' OR event_type = $1)
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Pool.Query(ctx, query, eventType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query security events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.SecurityEvent, 0)
	for rows.Next() {
		var event models.SecurityEvent
		err := rows.Scan(
			&event.ID, &event.EventType, &event.Username,
			&event.Detail, &event.Metadata, &event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan security event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating security event rows: %w", err)
	}

	return events, nil
}
