package services_test

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stationops/forecourt/internal/models"
	"github.com/stationops/forecourt/internal/services"
	pkglogger "github.com/stationops/forecourt/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLockoutService(accounts *services.MockUserDirectory, events *services.MockSecurityEventWriter) *services.LockoutService {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return services.NewLockoutService(accounts, events, "admin", logger, pkglogger.NewAuditLogger(logger))
}

func lockoutSettings(maxAttempts, windowMinutes int) models.SecuritySettings {
	return models.SecuritySettings{
		MaxFailedAttempts:  maxAttempts,
		LockWindowMinutes:  windowMinutes,
		PasswordExpiryDays: 90,
	}
}

func TestLockoutCheck_AllowsBelowThreshold(t *testing.T) {
	service := newLockoutService(&services.MockUserDirectory{}, &services.MockSecurityEventWriter{})
	settings := lockoutSettings(5, 10)
	now := time.Now()

	for i := 0; i < 4; i++ {
		service.RecordFailure("ana", now)
	}

	assert.NoError(t, service.Check(context.Background(), "ana", "", settings, now))
}

func TestLockoutCheck_DeniesAndEscalatesAtThreshold(t *testing.T) {
	accounts := &services.MockUserDirectory{}
	events := &services.MockSecurityEventWriter{}
	service := newLockoutService(accounts, events)
	settings := lockoutSettings(5, 10)
	now := time.Now()

	for i := 0; i < 5; i++ {
		service.RecordFailure("ana", now)
	}

	// The attempt made 7 minutes later is still inside the 10-minute window.
	err := service.Check(context.Background(), "ana", "", settings, now.Add(7*time.Minute))

	assert.ErrorIs(t, err, models.ErrTemporarilyLimited)

	// The denial escalated into a persistent account lock.
	require.Len(t, accounts.LockCalls, 1)
	assert.Equal(t, "ana", accounts.LockCalls[0].Username)
	assert.True(t, accounts.LockCalls[0].Locked)

	require.Len(t, events.Events, 1)
	assert.Equal(t, models.SecurityEventLockout, events.Events[0].EventType)
}

func TestLockoutCheck_ExpiredWindowStartsFresh(t *testing.T) {
	accounts := &services.MockUserDirectory{}
	service := newLockoutService(accounts, &services.MockSecurityEventWriter{})
	settings := lockoutSettings(5, 10)
	now := time.Now()

	for i := 0; i < 5; i++ {
		service.RecordFailure("ana", now)
	}

	// 11 minutes later the window has passed: the attempt proceeds and the
	// stale record is gone.
	assert.NoError(t, service.Check(context.Background(), "ana", "", settings, now.Add(11*time.Minute)))
	assert.Empty(t, accounts.LockCalls)

	_, exists := service.Record("ana")
	assert.False(t, exists)
}

func TestLockoutCheck_MasterIdentityBypasses(t *testing.T) {
	accounts := &services.MockUserDirectory{}
	service := newLockoutService(accounts, &services.MockSecurityEventWriter{})
	settings := lockoutSettings(5, 10)
	now := time.Now()

	for i := 0; i < 20; i++ {
		service.RecordFailure("admin", now)
	}

	assert.NoError(t, service.Check(context.Background(), "admin", "", settings, now))
	assert.Empty(t, accounts.LockCalls)
}

func TestLockoutCheck_AdminRoleBypasses(t *testing.T) {
	accounts := &services.MockUserDirectory{}
	service := newLockoutService(accounts, &services.MockSecurityEventWriter{})
	settings := lockoutSettings(5, 10)
	now := time.Now()

	for i := 0; i < 10; i++ {
		service.RecordFailure("marta", now)
	}

	assert.NoError(t, service.Check(context.Background(), "marta", models.RoleAdmin, settings, now))
	assert.Empty(t, accounts.LockCalls)
}

func TestLockoutCheck_IdentityNormalized(t *testing.T) {
	service := newLockoutService(&services.MockUserDirectory{}, &services.MockSecurityEventWriter{})
	settings := lockoutSettings(3, 10)
	now := time.Now()

	service.RecordFailure("Ana", now)
	service.RecordFailure(" ANA ", now)
	service.RecordFailure("ana", now)

	err := service.Check(context.Background(), "AnA", "", settings, now.Add(1*time.Minute))
	assert.ErrorIs(t, err, models.ErrTemporarilyLimited)
}

func TestLockoutRecordSuccess_ClearsRecord(t *testing.T) {
	service := newLockoutService(&services.MockUserDirectory{}, &services.MockSecurityEventWriter{})
	now := time.Now()

	for i := 0; i < 4; i++ {
		service.RecordFailure("ana", now)
	}
	service.RecordSuccess("ana")

	_, exists := service.Record("ana")
	assert.False(t, exists)
}

func TestLockoutCheck_EscalationFailureStillDenies(t *testing.T) {
	accounts := &services.MockUserDirectory{
		SetLockedFunc: func(ctx context.Context, username string, locked bool) error {
			return models.ErrInternalServer
		},
	}
	service := newLockoutService(accounts, &services.MockSecurityEventWriter{})
	settings := lockoutSettings(5, 10)
	now := time.Now()

	for i := 0; i < 5; i++ {
		service.RecordFailure("ana", now)
	}

	err := service.Check(context.Background(), "ana", "", settings, now.Add(1*time.Minute))
	assert.ErrorIs(t, err, models.ErrTemporarilyLimited)
}

func TestLockoutSweepStale_RemovesOnlyExpiredRecords(t *testing.T) {
	service := newLockoutService(&services.MockUserDirectory{}, &services.MockSecurityEventWriter{})
	settings := lockoutSettings(5, 10)
	now := time.Now()

	service.RecordFailure("old", now.Add(-30*time.Minute))
	service.RecordFailure("fresh", now.Add(-1*time.Minute))

	removed := service.SweepStale(settings, now)

	assert.Equal(t, 1, removed)
	_, oldExists := service.Record("old")
	_, freshExists := service.Record("fresh")
	assert.False(t, oldExists)
	assert.True(t, freshExists)
}

func TestLockoutConcurrentCheckAndRecordFailure(t *testing.T) {
	service := newLockoutService(&services.MockUserDirectory{}, &services.MockSecurityEventWriter{})
	settings := lockoutSettings(5, 10)
	now := time.Now()

	for i := 0; i < 5; i++ {
		service.RecordFailure("ana", now)
	}

	// Check reads the attempt count for the audit record while RecordFailure
	// keeps incrementing it; run both concurrently under -race.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			service.RecordFailure("ana", now)
		}()
		go func() {
			defer wg.Done()
			_ = service.Check(context.Background(), "ana", "", settings, now.Add(time.Minute))
		}()
	}
	wg.Wait()

	record, exists := service.Record("ana")
	require.True(t, exists)
	assert.GreaterOrEqual(t, record.Count, 5)
}
