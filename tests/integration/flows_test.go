package integration

import (
	"context"
	"log"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stationops/forecourt/internal/models"
)

var testDB *TestDB

func TestMain(m *testing.M) {
	ctx := context.Background()

	db, err := SetupTestDatabase(ctx)
	if err != nil {
		log.Printf("skipping integration tests, database unavailable: %v", err)
		os.Exit(0)
	}
	testDB = db

	code := m.Run()

	testDB.Teardown(ctx)
	os.Exit(code)
}

// newFlow resets the database and starts a fresh server so the per-IP login
// throttle never carries over between tests.
func newFlow(t *testing.T) *TestServer {
	t.Helper()

	ctx := context.Background()
	require.NoError(t, testDB.CleanupTables(ctx))

	ts := NewTestServer(testDB.DB)
	t.Cleanup(ts.Close)
	return ts
}

func TestCriticalIncidentRaisesAndResolvesAlert(t *testing.T) {
	ctx := context.Background()
	ts := newFlow(t)

	_, err := SeedStation(ctx, ts.DB.Pool, "st-north", "North Forecourt")
	require.NoError(t, err)

	username := TestUsername("operator")
	_, err = SeedUser(ctx, ts.DB.Pool, username, DefaultTestPassword, models.RoleOperator)
	require.NoError(t, err)

	token, err := ts.Login(ctx, username, DefaultTestPassword)
	require.NoError(t, err)

	var created struct {
		Entry  *models.LogEntry `json:"entry"`
		Alerts []*models.Alert  `json:"alerts"`
	}
	status, err := ts.DoJSON(ctx, http.MethodPost, "/logs", token, map[string]string{
		"station_id":  "st-north",
		"status":      "error",
		"severity":    "high",
		"description": "pump 3 offline",
	}, &created)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, status)

	require.Len(t, created.Alerts, 1)
	alert := created.Alerts[0]
	assert.Equal(t, models.AlertRuleCriticalIncident, alert.Rule)
	assert.Equal(t, "North Forecourt", alert.StationName)
	assert.Equal(t, models.AlertStatusActive, alert.Status)

	// Notification was handed to the sink
	payload := ts.Sink.Last()
	require.NotNil(t, payload)
	assert.Equal(t, "st-north", payload.StationID)

	// Visible in the active listing
	var active []*models.Alert
	status, err = ts.DoJSON(ctx, http.MethodGet, "/alerts?status=active", token, nil, &active)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, active, 1)

	// Resolve once
	var resolved models.Alert
	status, err = ts.DoJSON(ctx, http.MethodPost, "/alerts/1/resolve", token, nil, &resolved)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.AlertStatusResolved, resolved.Status)

	// Resolving again conflicts
	status, err = ts.DoJSON(ctx, http.MethodPost, "/alerts/1/resolve", token, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, status)
}

func TestRepeatedFailuresLockTheAccount(t *testing.T) {
	ctx := context.Background()
	ts := newFlow(t)

	username := TestUsername("lockme")
	_, err := SeedUser(ctx, ts.DB.Pool, username, DefaultTestPassword, models.RoleOperator)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		status, err := ts.DoJSON(ctx, http.MethodPost, "/auth/login", "", map[string]string{
			"username": username,
			"password": "wrong-password!",
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, status, "attempt %d", i+1)
	}

	// Correct credentials no longer help: the threshold was reached, so the
	// next check escalates to a persistent lock.
	status, err := ts.DoJSON(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": DefaultTestPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, status)

	var locked bool
	require.NoError(t, ts.DB.Pool.QueryRow(ctx,
		"SELECT locked FROM users WHERE username = $1", username).Scan(&locked))
	assert.True(t, locked)

	// Once locked, any further attempt is denied outright
	status, err = ts.DoJSON(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": DefaultTestPassword,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSecuritySettingsPersistAcrossRequests(t *testing.T) {
	ctx := context.Background()
	ts := newFlow(t)

	username := TestUsername("admin")
	_, err := SeedUser(ctx, ts.DB.Pool, username, DefaultTestPassword, models.RoleAdmin)
	require.NoError(t, err)

	token, err := ts.Login(ctx, username, DefaultTestPassword)
	require.NoError(t, err)

	// Out-of-range threshold is dropped, valid window applies, answer is 200
	var updated models.SecuritySettings
	status, err := ts.DoJSON(ctx, http.MethodPut, "/admin/settings/security", token, map[string]int{
		"max_failed_attempts": 9999,
		"lock_window_minutes": 30,
	}, &updated)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.DefaultMaxFailedAttempts, updated.MaxFailedAttempts)
	assert.Equal(t, 30, updated.LockWindowMinutes)

	var fetched models.SecuritySettings
	status, err = ts.DoJSON(ctx, http.MethodGet, "/admin/settings/security", token, nil, &fetched)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, updated, fetched)

	// The document landed in the settings table
	var count int
	require.NoError(t, ts.DB.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM settings WHERE name = 'security'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestExpiredPasswordForcesChangeBeforeAccess(t *testing.T) {
	ctx := context.Background()
	ts := newFlow(t)

	username := TestUsername("manager")
	_, err := SeedUser(ctx, ts.DB.Pool, username, DefaultTestPassword, models.RoleManager)
	require.NoError(t, err)

	_, err = ts.DB.Pool.Exec(ctx,
		"UPDATE users SET password_changed_at = NOW() - INTERVAL '120 days' WHERE username = $1", username)
	require.NoError(t, err)

	var login struct {
		Token              string `json:"token"`
		PasswordStatus     string `json:"password_status"`
		MustChangePassword bool   `json:"must_change_password"`
	}
	status, err := ts.DoJSON(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": DefaultTestPassword,
	}, &login)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, models.PasswordStatusForceChange, login.PasswordStatus)
	assert.True(t, login.MustChangePassword)

	// The stale session cannot reach operational routes
	status, err = ts.DoJSON(ctx, http.MethodGet, "/logs", login.Token, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, status)

	// Changing the password issues a fresh session
	var changed struct {
		Token string `json:"token"`
	}
	status, err = ts.DoJSON(ctx, http.MethodPost, "/auth/change-password", login.Token, map[string]string{
		"current_password": DefaultTestPassword,
		"new_password":     "EvenStrongerPass456!",
	}, &changed)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, status)

	status, err = ts.DoJSON(ctx, http.MethodGet, "/logs", changed.Token, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
}
