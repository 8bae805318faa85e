package services_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stationops/forecourt/internal/models"
	"github.com/stationops/forecourt/internal/services"
	pkglogger "github.com/stationops/forecourt/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserAdminFixture(users *services.MockUserDirectory) (*services.UserAdminService, *services.LockoutService, *services.MockSecurityEventWriter) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	audit := pkglogger.NewAuditLogger(logger)
	events := &services.MockSecurityEventWriter{}
	lockout := services.NewLockoutService(users, events, "admin", logger, audit)
	return services.NewUserAdminService(users, lockout, events, logger, audit), lockout, events
}

func TestUserAdminCreate_HashesPasswordAndNormalizesUsername(t *testing.T) {
	var created *models.UserAccount
	users := &services.MockUserDirectory{
		CreateFunc: func(ctx context.Context, user *models.UserAccount) (*models.UserAccount, error) {
			created = user
			return user, nil
		},
	}
	service, _, _ := newUserAdminFixture(users)

	_, err := service.Create(context.Background(), "  Marta ", "long-enough-password", models.RoleManager, "admin")

	require.NoError(t, err)
	assert.Equal(t, "marta", created.Username)
	assert.Equal(t, models.RoleManager, created.Role)
	assert.NotEqual(t, "long-enough-password", created.PasswordHash)
	assert.NotNil(t, created.PasswordChangedAt)
}

func TestUserAdminCreate_ShortPasswordRejected(t *testing.T) {
	service, _, _ := newUserAdminFixture(&services.MockUserDirectory{})

	_, err := service.Create(context.Background(), "marta", "short", models.RoleManager, "admin")

	assert.Error(t, err)
}

func TestUserAdminCreate_EmptyUsernameRejected(t *testing.T) {
	service, _, _ := newUserAdminFixture(&services.MockUserDirectory{})

	_, err := service.Create(context.Background(), "   ", "long-enough-password", models.RoleManager, "admin")

	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestUserAdminLock_SetsPersistentFlag(t *testing.T) {
	users := &services.MockUserDirectory{}
	service, _, events := newUserAdminFixture(users)

	err := service.Lock(context.Background(), "ana", "admin")

	require.NoError(t, err)
	require.Len(t, users.LockCalls, 1)
	assert.True(t, users.LockCalls[0].Locked)

	require.Len(t, events.Events, 1)
	assert.Equal(t, models.SecurityEventAccountLocked, events.Events[0].EventType)
}

func TestUserAdminUnlock_ClearsBothLockStates(t *testing.T) {
	users := &services.MockUserDirectory{}
	service, lockout, events := newUserAdminFixture(users)

	// Leave failed-attempt state behind before the unlock.
	lockout.RecordFailure("ana", time.Now())
	lockout.RecordFailure("ana", time.Now())

	err := service.Unlock(context.Background(), "ana", "admin")

	require.NoError(t, err)
	require.Len(t, users.LockCalls, 1)
	assert.False(t, users.LockCalls[0].Locked)

	_, exists := lockout.Record("ana")
	assert.False(t, exists)

	require.Len(t, events.Events, 1)
	assert.Equal(t, models.SecurityEventAccountUnlock, events.Events[0].EventType)
}

func TestUserAdminUnlock_UnknownUserPropagatesNotFound(t *testing.T) {
	users := &services.MockUserDirectory{
		SetLockedFunc: func(ctx context.Context, username string, locked bool) error {
			return models.ErrNotFound
		},
	}
	service, _, _ := newUserAdminFixture(users)

	err := service.Unlock(context.Background(), "ghost", "admin")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUserAdminResetPassword_ClearsLocksAndStoresHash(t *testing.T) {
	hash := testPasswordHash(t)
	var storedHash string
	users := &services.MockUserDirectory{
		GetByUsernameFunc: func(ctx context.Context, username string) (*models.UserAccount, error) {
			return services.NewTestUserAccount("ana", hash, models.RoleOperator), nil
		},
		UpdatePasswordFunc: func(ctx context.Context, username, passwordHash string, changedAt time.Time) error {
			storedHash = passwordHash
			return nil
		},
	}
	service, lockout, events := newUserAdminFixture(users)

	lockout.RecordFailure("ana", time.Now())

	err := service.ResetPassword(context.Background(), "ana", "operator-set-password", "marta")

	require.NoError(t, err)
	assert.NotEmpty(t, storedHash)
	assert.NotEqual(t, "operator-set-password", storedHash)

	require.Len(t, users.LockCalls, 1)
	assert.False(t, users.LockCalls[0].Locked)

	_, exists := lockout.Record("ana")
	assert.False(t, exists)

	require.Len(t, events.Events, 1)
	assert.Equal(t, models.SecurityEventPasswordReset, events.Events[0].EventType)
}

func TestUserAdminResetPassword_UnknownUser(t *testing.T) {
	service, _, _ := newUserAdminFixture(&services.MockUserDirectory{})

	err := service.ResetPassword(context.Background(), "ghost", "operator-set-password", "marta")

	assert.ErrorIs(t, err, models.ErrNotFound)
}
