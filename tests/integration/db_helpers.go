package integration

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/stationops/forecourt/internal/database"
	"github.com/stationops/forecourt/internal/models"
	"github.com/stationops/forecourt/internal/repositories"
	"github.com/stationops/forecourt/pkg/auth"
)

// TestDB manages PostgreSQL testcontainer and database operations
type TestDB struct {
	Container  testcontainers.Container
	ConnString string
	Pool       *pgxpool.Pool
	DB         *database.DB
}

// SetupTestDatabase creates a PostgreSQL testcontainer, runs migrations, returns TestDB
func SetupTestDatabase(ctx context.Context) (*TestDB, error) {
	container, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		postgres.WithDatabase("forecourt"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(ctx, pool); err != nil {
		pool.Close()
		container.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &TestDB{
		Container:  container,
		ConnString: connStr,
		Pool:       pool,
		DB:         &database.DB{Pool: pool},
	}, nil
}

// runMigrations executes all goose migrations
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrationsDir, err := filepath.Abs("../../migrations")
	if err != nil {
		return fmt.Errorf("failed to get migrations path: %w", err)
	}

	// Suppress goose logs
	goose.SetLogger(log.New(io.Discard, "", 0))

	// Goose needs a stdlib DB connection
	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := goose.UpContext(ctx, sqlDB, migrationsDir); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// Teardown stops the container and closes the connection pool
func (db *TestDB) Teardown(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}

// CleanupTables truncates all tables for test isolation
func (db *TestDB) CleanupTables(ctx context.Context) error {
	tables := []string{
		"security_events",
		"alerts",
		"log_entries",
		"settings",
		"users",
		"stations",
	}

	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// InitializeRepositories creates all repository instances from database wrapper
func InitializeRepositories(db *database.DB) (
	*repositories.LogRepository,
	*repositories.AlertRepository,
	*repositories.UserRepository,
	*repositories.StationRepository,
	*repositories.SettingsRepository,
	*repositories.SecurityEventRepository,
) {
	return repositories.NewLogRepository(db),
		repositories.NewAlertRepository(db),
		repositories.NewUserRepository(db),
		repositories.NewStationRepository(db),
		repositories.NewSettingsRepository(db),
		repositories.NewSecurityEventRepository(db)
}

// SeedUser inserts a test user with hashed password
func SeedUser(ctx context.Context, pool *pgxpool.Pool, username, password, role string) (*models.UserAccount, error) {
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	query := `
		INSERT INTO users (username, password_hash, role, locked, password_changed_at, created_at)
		VALUES ($1, $2, $3, false, NOW(), NOW())
		RETURNING username, password_hash, role, locked, locked_at, password_changed_at, created_at
	`

	var user models.UserAccount
	err = pool.QueryRow(ctx, query, username, hashedPassword, role).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.Locked,
		&user.LockedAt,
		&user.PasswordChangedAt,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &user, nil
}

// SeedStation inserts a fuel station row
func SeedStation(ctx context.Context, pool *pgxpool.Pool, id, name string) (*models.Station, error) {
	query := `INSERT INTO stations (id, name) VALUES ($1, $2) RETURNING id, name`

	var station models.Station
	if err := pool.QueryRow(ctx, query, id, name).Scan(&station.ID, &station.Name); err != nil {
		return nil, fmt.Errorf("failed to insert station: %w", err)
	}

	return &station, nil
}

// SeedLogEntry inserts a log entry with an explicit created_at timestamp
func SeedLogEntry(ctx context.Context, pool *pgxpool.Pool, stationID, status, severity string, createdAt time.Time) (*models.LogEntry, error) {
	query := `
		INSERT INTO log_entries (station_id, status, severity, incident_type, created_at, created_by, description)
		VALUES ($1, $2, $3, '', $4, 'seed', '')
		RETURNING id, station_id, status, severity, created_at
	`

	var entry models.LogEntry
	err := pool.QueryRow(ctx, query, stationID, status, severity, createdAt).Scan(
		&entry.ID,
		&entry.StationID,
		&entry.Status,
		&entry.Severity,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert log entry: %w", err)
	}

	return &entry, nil
}
