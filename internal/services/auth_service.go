package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/stationops/forecourt/internal/auth"
	"github.com/stationops/forecourt/internal/models"
	pkgauth "github.com/stationops/forecourt/pkg/auth"
	pkglogger "github.com/stationops/forecourt/pkg/logger"
)

// UserStore defines the interface for user account persistence
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.UserAccount, error)
	UpdatePassword(ctx context.Context, username, passwordHash string, changedAt time.Time) error
}

// AuthService handles the login flow: persistent lock check, attempt
// tracker check, credential comparison, role check, then password expiry on
// success. Which failure kinds feed the tracker is fixed: wrong credential,
// unknown identity and role mismatch increment; the two lock denials are
// terminal and do not.
type AuthService struct {
	users   UserStore
	lockout *LockoutService
	policy  *PolicyService
	tm      *auth.TokenManager
	logger  *slog.Logger
	audit   *pkglogger.AuditLogger
	events  SecurityEventWriter
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, lockout *LockoutService, policy *PolicyService, tm *auth.TokenManager, events SecurityEventWriter, logger *slog.Logger, audit *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		users:   users,
		lockout: lockout,
		policy:  policy,
		tm:      tm,
		logger:  logger,
		audit:   audit,
		events:  events,
	}
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token              string `json:"token"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	PasswordStatus     string `json:"password_status"`
	MustChangePassword bool   `json:"must_change_password"`
}

// Login authenticates a user for the selected role.
func (s *AuthService) Login(ctx context.Context, username, password, role, ipAddress string) (*LoginResult, error) {
	identity := strings.ToLower(strings.TrimSpace(username))
	if identity == "" {
		return nil, models.ErrIdentityNotFound
	}

	now := time.Now()
	settings := s.policy.GetSecuritySettings(ctx)

	user, lookupErr := s.users.GetByUsername(ctx, identity)

	// Persistent administrative lock denies before anything else, for any
	// credential, independent of the attempt counter.
	if lookupErr == nil && user.Locked {
		s.logFailure(identity, ipAddress, "account_locked")
		return nil, models.ErrAccountLocked
	}

	// Temporary rate limit, evaluated lazily against the previous failures.
	if err := s.lockout.Check(ctx, identity, role, settings, now); err != nil {
		s.logFailure(identity, ipAddress, "temporarily_limited")
		return nil, err
	}

	if lookupErr != nil {
		// A store failure is not evidence about the identity; it must not
		// feed the attempt tracker.
		if !errors.Is(lookupErr, models.ErrNotFound) {
			s.logger.Error("user lookup failed",
				slog.String("username", pkglogger.SanitizedIdentity(identity)),
				slog.Any("error", lookupErr))
			return nil, models.ErrInternalServer
		}
		s.lockout.RecordFailure(identity, now)
		s.logFailure(identity, ipAddress, "identity_not_found")
		return nil, models.ErrIdentityNotFound
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		s.lockout.RecordFailure(identity, now)
		s.logFailure(identity, ipAddress, "wrong_credential")
		return nil, models.ErrWrongCredential
	}

	if role != "" && role != user.Role {
		s.lockout.RecordFailure(identity, now)
		s.logFailure(identity, ipAddress, "role_mismatch")
		return nil, models.ErrRoleMismatch
	}

	// Success: the identity returns to a clean state.
	s.lockout.RecordSuccess(identity)

	passwordStatus := CheckPasswordExpiry(user, settings, now)
	mustChange := passwordStatus == models.PasswordStatusForceChange

	token, err := s.tm.GenerateSessionToken(user.Username, user.Role, mustChange)
	if err != nil {
		s.logger.Error("failed to generate session token",
			slog.String("username", pkglogger.SanitizedIdentity(identity)),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		Username:  identity,
		IPAddress: ipAddress,
		Success:   true,
	})
	s.recordEvent(ctx, models.SecurityEventLoginSuccess, identity, "login succeeded")

	return &LoginResult{
		Token:              token,
		Username:           user.Username,
		Role:               user.Role,
		PasswordStatus:     passwordStatus,
		MustChangePassword: mustChange,
	}, nil
}

// ChangePassword verifies the current credential, stores a new one and
// issues a fresh session token without the forced-change flag.
func (s *AuthService) ChangePassword(ctx context.Context, username, currentPassword, newPassword string) (*LoginResult, error) {
	identity := strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.GetByUsername(ctx, identity)
	if err != nil {
		return nil, models.ErrIdentityNotFound
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		s.logFailure(identity, "", "wrong_credential")
		return nil, models.ErrWrongCredential
	}

	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return nil, err
	}

	hash, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash new password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	now := time.Now()
	if err := s.users.UpdatePassword(ctx, identity, hash, now); err != nil {
		s.logger.Error("failed to update password",
			slog.String("username", pkglogger.SanitizedIdentity(identity)),
			slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.GenerateSessionToken(user.Username, user.Role, false)
	if err != nil {
		return nil, models.ErrInternalServer
	}

	s.audit.LogAccountAction("password_changed", identity, identity, nil)
	s.recordEvent(ctx, models.SecurityEventPasswordChange, identity, "password changed by owner")

	return &LoginResult{
		Token:          token,
		Username:       user.Username,
		Role:           user.Role,
		PasswordStatus: models.PasswordStatusOK,
	}, nil
}

func (s *AuthService) logFailure(identity, ipAddress, reason string) {
	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		Username:      identity,
		IPAddress:     ipAddress,
		Success:       false,
		FailureReason: reason,
	})
}

func (s *AuthService) recordEvent(ctx context.Context, eventType, username, detail string) {
	event := &models.SecurityEvent{
		EventType: eventType,
		Username:  username,
		Detail:    detail,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn("failed to persist security event", slog.String("event_type", eventType), slog.Any("error", err))
	}
}
