package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/stationops/forecourt/internal/models"
	pkgauth "github.com/stationops/forecourt/pkg/auth"
	pkglogger "github.com/stationops/forecourt/pkg/logger"
)

// UserDirectory defines the interface for user administration persistence
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*models.UserAccount, error)
	List(ctx context.Context) ([]*models.UserAccount, error)
	Create(ctx context.Context, user *models.UserAccount) (*models.UserAccount, error)
	SetLocked(ctx context.Context, username string, locked bool) error
	UpdatePassword(ctx context.Context, username, passwordHash string, changedAt time.Time) error
}

// UserAdminService implements the administrative account actions. Unlocking
// and operator password resets clear both the persistent lock flag and the
// failed-attempt record, so the caller sees one atomic reset.
type UserAdminService struct {
	users   UserDirectory
	lockout *LockoutService
	events  SecurityEventWriter
	logger  *slog.Logger
	audit   *pkglogger.AuditLogger
}

// NewUserAdminService creates a new UserAdminService
func NewUserAdminService(users UserDirectory, lockout *LockoutService, events SecurityEventWriter, logger *slog.Logger, audit *pkglogger.AuditLogger) *UserAdminService {
	return &UserAdminService{
		users:   users,
		lockout: lockout,
		events:  events,
		logger:  logger,
		audit:   audit,
	}
}

// List returns all user accounts.
func (s *UserAdminService) List(ctx context.Context) ([]*models.UserAccount, error) {
	return s.users.List(ctx)
}

// Create adds a new user account.
func (s *UserAdminService) Create(ctx context.Context, username, password, role, actor string) (*models.UserAccount, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, models.ErrBadRequest
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now()
	created, err := s.users.Create(ctx, &models.UserAccount{
		Username:          username,
		PasswordHash:      hash,
		Role:              role,
		PasswordChangedAt: &now,
	})
	if err != nil {
		return nil, err
	}

	s.audit.LogAccountAction("user_created", username, actor, map[string]string{"role": role})
	return created, nil
}

// Lock sets the persistent account lock flag.
func (s *UserAdminService) Lock(ctx context.Context, username, actor string) error {
	if err := s.users.SetLocked(ctx, username, true); err != nil {
		return err
	}

	s.audit.LogAccountAction("account_locked", username, actor, nil)
	s.recordEvent(ctx, models.SecurityEventAccountLocked, username, "account locked by "+actor)
	return nil
}

// Unlock clears the persistent lock flag and any attempt record in one
// step.
func (s *UserAdminService) Unlock(ctx context.Context, username, actor string) error {
	if err := s.users.SetLocked(ctx, username, false); err != nil {
		return err
	}
	s.lockout.Reset(username)

	s.audit.LogAccountAction("account_unlocked", username, actor, nil)
	s.recordEvent(ctx, models.SecurityEventAccountUnlock, username, "account unlocked by "+actor)
	return nil
}

// ResetPassword stores an operator-set password and clears both lock
// states.
func (s *UserAdminService) ResetPassword(ctx context.Context, username, newPassword, actor string) error {
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		return err
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return err
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.users.UpdatePassword(ctx, username, hash, time.Now()); err != nil {
		return err
	}
	if err := s.users.SetLocked(ctx, username, false); err != nil {
		return err
	}
	s.lockout.Reset(username)

	s.audit.LogAccountAction("password_reset", username, actor, nil)
	s.recordEvent(ctx, models.SecurityEventPasswordReset, username, "password reset by "+actor)
	return nil
}

func (s *UserAdminService) recordEvent(ctx context.Context, eventType, username, detail string) {
	event := &models.SecurityEvent{
		EventType: eventType,
		Username:  strings.ToLower(username),
		Detail:    detail,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn("failed to persist security event", slog.String("event_type", eventType), slog.Any("error", err))
	}
}
