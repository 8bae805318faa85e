package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/stationops/forecourt/internal/models"
	pkglogger "github.com/stationops/forecourt/pkg/logger"
)

// AccountLocker is the subset of the user repository needed for lockout
// escalation.
type AccountLocker interface {
	SetLocked(ctx context.Context, username string, locked bool) error
}

// SecurityEventWriter persists audit trail records. Writes are best-effort.
type SecurityEventWriter interface {
	Create(ctx context.Context, event *models.SecurityEvent) error
}

// LockoutService is the per-identity failed-attempt tracker. State lives in
// a process-local map owned by the service and guarded by a mutex; records
// are created on the first failure and deleted on success or reset.
//
// The lock decision is evaluated lazily on the next attempt, not on the
// failure that crossed the threshold: an attempt made while the identity is
// over the limit and still inside the lock window is denied and escalated
// into a persistent account lock.
type LockoutService struct {
	mu      sync.Mutex
	records map[string]*models.LoginAttemptRecord

	masterIdentity string
	accounts       AccountLocker
	events         SecurityEventWriter
	logger         *slog.Logger
	audit          *pkglogger.AuditLogger
}

// NewLockoutService creates a new LockoutService. masterIdentity names the
// single identity exempt from the lockout check.
func NewLockoutService(accounts AccountLocker, events SecurityEventWriter, masterIdentity string, logger *slog.Logger, audit *pkglogger.AuditLogger) *LockoutService {
	return &LockoutService{
		records:        make(map[string]*models.LoginAttemptRecord),
		masterIdentity: strings.ToLower(masterIdentity),
		accounts:       accounts,
		events:         events,
		logger:         logger,
		audit:          audit,
	}
}

func normalizeIdentity(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Check decides whether a login attempt for identity may proceed. It returns
// models.ErrTemporarilyLimited when the identity is over the failure limit
// inside the lock window; that denial also escalates into a persistent
// account lock. The master identity and any attempt made with the admin role
// bypass the check entirely.
func (s *LockoutService) Check(ctx context.Context, identity, role string, settings models.SecuritySettings, now time.Time) error {
	key := normalizeIdentity(identity)

	if key == s.masterIdentity || role == models.RoleAdmin {
		return nil
	}

	s.mu.Lock()
	record, ok := s.records[key]
	if !ok || record.Count < settings.MaxFailedAttempts {
		s.mu.Unlock()
		return nil
	}

	window := time.Duration(settings.LockWindowMinutes) * time.Minute
	if now.Sub(record.LastAttemptAt) >= window {
		// The window has passed: the strike count is stale, start fresh.
		delete(s.records, key)
		s.mu.Unlock()
		return nil
	}
	// Copy the count before releasing the mutex; concurrent RecordFailure
	// calls mutate the record in place.
	failedCount := record.Count
	s.mu.Unlock()

	// Temporary rate limit escalates into a durable lock on the first
	// attempt made while limited.
	if err := s.accounts.SetLocked(ctx, key, true); err != nil {
		s.logger.Error("failed to escalate lockout to account lock",
			slog.String("identity", pkglogger.SanitizedIdentity(key)),
			slog.Any("error", err))
	}

	s.audit.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "lockout",
		Username:      key,
		Success:       false,
		FailureReason: "too_many_failed_attempts",
	})
	s.recordEvent(ctx, models.SecurityEventLockout, key, "login temporarily limited and account locked", models.EventMetadata{
		"failed_attempts": failedCount,
		"window_minutes":  settings.LockWindowMinutes,
	})

	return models.ErrTemporarilyLimited
}

// RecordFailure creates or increments the attempt record for identity and
// refreshes its timestamp.
func (s *LockoutService) RecordFailure(identity string, now time.Time) {
	key := normalizeIdentity(identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		s.records[key] = &models.LoginAttemptRecord{
			Identity:      key,
			Count:         1,
			LastAttemptAt: now,
		}
		return
	}

	record.Count++
	record.LastAttemptAt = now
}

// RecordSuccess deletes the attempt record for identity; a successful login
// always returns the identity to a clean state regardless of prior count.
func (s *LockoutService) RecordSuccess(identity string) {
	s.Reset(identity)
}

// Reset removes any attempt record for identity. Administrative unlocks and
// operator password resets call this alongside clearing the account lock.
func (s *LockoutService) Reset(identity string) {
	key := normalizeIdentity(identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}

// Record returns a copy of the current attempt record for identity.
func (s *LockoutService) Record(identity string) (models.LoginAttemptRecord, bool) {
	key := normalizeIdentity(identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[key]
	if !ok {
		return models.LoginAttemptRecord{}, false
	}
	return *record, true
}

// SweepStale drops records whose last attempt is older than the lock
// window; they no longer influence any decision.
func (s *LockoutService) SweepStale(settings models.SecuritySettings, now time.Time) int {
	window := time.Duration(settings.LockWindowMinutes) * time.Minute

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, record := range s.records {
		if now.Sub(record.LastAttemptAt) >= window {
			delete(s.records, key)
			removed++
		}
	}
	return removed
}

func (s *LockoutService) recordEvent(ctx context.Context, eventType, username, detail string, metadata models.EventMetadata) {
	event := &models.SecurityEvent{
		EventType: eventType,
		Username:  username,
		Detail:    detail,
		Metadata:  metadata,
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn("failed to persist security event", slog.String("event_type", eventType), slog.Any("error", err))
	}
}
