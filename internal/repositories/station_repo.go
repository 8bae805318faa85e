package repositories

import (
	"context"
	"fmt"

	"github.com/stationops/forecourt/internal/database"
	"github.com/stationops/forecourt/internal/models"
)

// StationRepository handles database operations for the station directory
type StationRepository struct {
	db *database.DB
}

// NewStationRepository creates a new StationRepository
func NewStationRepository(db *database.DB) *StationRepository {
	return &StationRepository{db: db}
}

// GetByID returns a station or models.ErrNotFound.
func (r *StationRepository) GetByID(ctx context.Context, id string) (*models.Station, error) {
	query := `SELECT id, name FROM stations WHERE id = $1`

	var station models.Station
	err := r.db.Pool.QueryRow(ctx, query, id).Scan(&station.ID, &station.Name)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &station, nil
}

// List returns all stations ordered by name.
func (r *StationRepository) List(ctx context.Context) ([]*models.Station, error) {
	query := `SELECT id, name FROM stations ORDER BY name`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	defer rows.Close()

	stations := make([]*models.Station, 0)
	for rows.Next() {
		var station models.Station
		if err := rows.Scan(&station.ID, &station.Name); err != nil {
			return nil, fmt.Errorf("failed to scan station: %w", err)
		}
		stations = append(stations, &station)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating station rows: %w", err)
	}

	return stations, nil
}

// Create inserts a station into the directory.
func (r *StationRepository) Create(ctx context.Context, station *models.Station) (*models.Station, error) {
	query := `INSERT INTO stations (id, name) VALUES ($1, $2) RETURNING id, name`

	var created models.Station
	err := r.db.Pool.QueryRow(ctx, query, station.ID, station.Name).Scan(&created.ID, &created.Name)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &created, nil
}
