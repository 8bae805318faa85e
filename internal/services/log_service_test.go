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

func newLogService(logs *services.MockLogStore, alerts *services.MockAlertStore, sink services.NotificationSink) *services.LogService {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	audit := pkglogger.NewAuditLogger(logger)
	policy := services.NewPolicyService(&services.MockSettingsStore{}, logger)
	alertService := services.NewAlertService(alerts, &services.MockStationDirectory{}, &services.MockSecurityEventWriter{}, sink, logger, audit)
	return services.NewLogService(logs, policy, alertService, logger)
}

func TestCreateEntry_CriticalIncidentRaisesAlert(t *testing.T) {
	now := time.Now()
	stored := services.NewTestLogEntry(1, "st-1", models.LogStatusError, "high", now)

	logs := &services.MockLogStore{
		CreateFunc: func(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error) {
			return stored, nil
		},
		GetAllFunc: func(ctx context.Context) ([]*models.LogEntry, error) {
			return []*models.LogEntry{stored}, nil
		},
	}
	alerts := &services.MockAlertStore{}
	sink := &services.RecordingSink{}
	service := newLogService(logs, alerts, sink)

	created, raised, err := service.CreateEntry(context.Background(), &models.LogEntry{
		StationID: "st-1",
		Status:    models.LogStatusError,
		Severity:  "high",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	require.Len(t, raised, 1)
	assert.Equal(t, models.AlertRuleCriticalIncident, raised[0].Rule)
	assert.Len(t, sink.Payloads, 1)
}

func TestCreateEntry_NoRulesFireReturnsNoAlerts(t *testing.T) {
	now := time.Now()
	stored := services.NewTestLogEntry(1, "st-1", models.LogStatusOK, "low", now)

	logs := &services.MockLogStore{
		CreateFunc: func(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error) {
			return stored, nil
		},
		GetAllFunc: func(ctx context.Context) ([]*models.LogEntry, error) {
			return []*models.LogEntry{stored}, nil
		},
	}
	service := newLogService(logs, &services.MockAlertStore{}, &services.RecordingSink{})

	created, raised, err := service.CreateEntry(context.Background(), &models.LogEntry{
		StationID: "st-1",
		Status:    models.LogStatusOK,
		Severity:  "low",
	})

	require.NoError(t, err)
	assert.NotNil(t, created)
	assert.Empty(t, raised)
}

func TestCreateEntry_StoreFailurePropagates(t *testing.T) {
	logs := &services.MockLogStore{
		CreateFunc: func(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error) {
			return nil, models.ErrInternalServer
		},
	}
	service := newLogService(logs, &services.MockAlertStore{}, &services.RecordingSink{})

	_, _, err := service.CreateEntry(context.Background(), &models.LogEntry{
		StationID: "st-1",
		Status:    models.LogStatusError,
		Severity:  "high",
	})

	assert.ErrorIs(t, err, models.ErrInternalServer)
}

func TestCreateEntry_HistoryLoadFailureStillReturnsEntry(t *testing.T) {
	now := time.Now()
	stored := services.NewTestLogEntry(1, "st-1", models.LogStatusError, "high", now)

	logs := &services.MockLogStore{
		CreateFunc: func(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error) {
			return stored, nil
		},
		GetAllFunc: func(ctx context.Context) ([]*models.LogEntry, error) {
			return nil, models.ErrInternalServer
		},
	}
	service := newLogService(logs, &services.MockAlertStore{}, &services.RecordingSink{})

	created, raised, err := service.CreateEntry(context.Background(), &models.LogEntry{
		StationID: "st-1",
		Status:    models.LogStatusError,
		Severity:  "high",
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Empty(t, raised)
}

func TestCreateEntry_AlertRecordingFailureStillReturnsEntry(t *testing.T) {
	now := time.Now()
	stored := services.NewTestLogEntry(1, "st-1", models.LogStatusError, "high", now)

	logs := &services.MockLogStore{
		CreateFunc: func(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error) {
			return stored, nil
		},
		GetAllFunc: func(ctx context.Context) ([]*models.LogEntry, error) {
			return []*models.LogEntry{stored}, nil
		},
	}
	alerts := &services.MockAlertStore{
		CreateFunc: func(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
			return nil, models.ErrInternalServer
		},
	}
	service := newLogService(logs, alerts, &services.RecordingSink{})

	created, raised, err := service.CreateEntry(context.Background(), &models.LogEntry{
		StationID: "st-1",
		Status:    models.LogStatusError,
		Severity:  "high",
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Empty(t, raised)
}
