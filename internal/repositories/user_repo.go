package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stationops/forecourt/internal/database"
	"github.com/stationops/forecourt/internal/models"
)

// UserRepository handles database operations for user accounts
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `username, password_hash, role, locked, locked_at,
	password_changed_at, created_at`

func scanUserRow(row pgx.Row) (*models.UserAccount, error) {
	var user models.UserAccount

	err := row.Scan(
		&user.Username, &user.PasswordHash, &user.Role, &user.Locked,
		&user.LockedAt, &user.PasswordChangedAt, &user.CreatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &user, nil
}

// GetByUsername returns a user account, matching the username
// case-insensitively, or models.ErrNotFound.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.UserAccount, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(username) = $1`
	return scanUserRow(r.db.Pool.QueryRow(ctx, query, strings.ToLower(username)))
}

// List returns all user accounts ordered by username.
func (r *UserRepository) List(ctx context.Context) ([]*models.UserAccount, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY username`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.UserAccount, 0)
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user rows: %w", err)
	}

	return users, nil
}

// Create inserts a new user account.
func (r *UserRepository) Create(ctx context.Context, user *models.UserAccount) (*models.UserAccount, error) {
	query := `
		INSERT INTO users (username, password_hash, role, locked, password_changed_at)
		VALUES ($1, $2, $3, false, $4)
		RETURNING ` + userColumns

	result, err := scanUserRow(r.db.Pool.QueryRow(ctx, query,
		user.Username, user.PasswordHash, user.Role, user.PasswordChangedAt,
	))
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return result, nil
}

// SetLocked updates the persistent account lock flag. Locking stamps
// locked_at; unlocking clears it.
func (r *UserRepository) SetLocked(ctx context.Context, username string, locked bool) error {
	query := `
		UPDATE users
		SET locked = $2,
		    locked_at = CASE WHEN $2 THEN CURRENT_TIMESTAMP ELSE NULL END
		WHERE LOWER(username) = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, strings.ToLower(username), locked)
	if err != nil {
		return fmt.Errorf("failed to update lock state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash and stamps the change time.
func (r *UserRepository) UpdatePassword(ctx context.Context, username, passwordHash string, changedAt time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, password_changed_at = $3
		WHERE LOWER(username) = $1
	`

	result, err := r.db.Pool.Exec(ctx, query, strings.ToLower(username), passwordHash, changedAt)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
