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

func newAlertService(alerts *services.MockAlertStore, stations *services.MockStationDirectory, sink services.NotificationSink) *services.AlertService {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return services.NewAlertService(alerts, stations, &services.MockSecurityEventWriter{}, sink, logger, pkglogger.NewAuditLogger(logger))
}

func TestRecordAlerts_NoTriggeredRulesIsNoop(t *testing.T) {
	alerts := &services.MockAlertStore{}
	sink := &services.RecordingSink{}
	service := newAlertService(alerts, &services.MockStationDirectory{}, sink)

	entry := services.NewTestLogEntry(1, "st-1", models.LogStatusOK, "low", time.Now())
	created, err := service.RecordAlerts(context.Background(), entry, nil)

	assert.NoError(t, err)
	assert.Empty(t, created)
	assert.Empty(t, sink.Payloads)
}

func TestRecordAlerts_SnapshotsStationNameAndNotifies(t *testing.T) {
	alerts := &services.MockAlertStore{}
	stations := &services.MockStationDirectory{
		GetByIDFunc: func(ctx context.Context, id string) (*models.Station, error) {
			return &models.Station{ID: id, Name: "North Forecourt"}, nil
		},
	}
	sink := &services.RecordingSink{}
	service := newAlertService(alerts, stations, sink)

	entry := services.NewTestLogEntry(7, "st-1", models.LogStatusError, "high", time.Now())
	triggered := []models.TriggeredRule{
		{Rule: models.AlertRuleCriticalIncident, Level: models.AlertLevelCritical, Message: "Critical incident (error · high severity)"},
	}

	created, err := service.RecordAlerts(context.Background(), entry, triggered)

	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "North Forecourt", created[0].StationName)
	assert.Equal(t, int64(7), created[0].LogID)
	assert.Equal(t, models.AlertStatusActive, created[0].Status)

	require.Len(t, sink.Payloads, 1)
	assert.Equal(t, models.AlertRuleCriticalIncident, sink.Payloads[0].Type)
	assert.Equal(t, "North Forecourt", sink.Payloads[0].StationName)
	assert.Equal(t, int64(7), sink.Payloads[0].LogID)
}

func TestRecordAlerts_UnknownStationTolerated(t *testing.T) {
	alerts := &services.MockAlertStore{}
	sink := &services.RecordingSink{}
	service := newAlertService(alerts, &services.MockStationDirectory{}, sink)

	entry := services.NewTestLogEntry(1, "st-missing", models.LogStatusError, "high", time.Now())
	triggered := []models.TriggeredRule{
		{Rule: models.AlertRuleCriticalIncident, Level: models.AlertLevelCritical, Message: "Critical incident (error · high severity)"},
	}

	created, err := service.RecordAlerts(context.Background(), entry, triggered)

	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Empty(t, created[0].StationName)
}

func TestRecordAlerts_OneAlertPerRule(t *testing.T) {
	alerts := &services.MockAlertStore{}
	sink := &services.RecordingSink{}
	service := newAlertService(alerts, &services.MockStationDirectory{}, sink)

	entry := services.NewTestLogEntry(1, "st-1", models.LogStatusError, "high", time.Now())
	triggered := []models.TriggeredRule{
		{Rule: models.AlertRuleCriticalIncident, Level: models.AlertLevelCritical, Message: "critical"},
		{Rule: models.AlertRuleStationBurst, Level: models.AlertLevelWarning, Message: "burst"},
	}

	created, err := service.RecordAlerts(context.Background(), entry, triggered)

	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.Len(t, sink.Payloads, 2)
	assert.Equal(t, models.AlertRuleCriticalIncident, created[0].Rule)
	assert.Equal(t, models.AlertRuleStationBurst, created[1].Rule)
}

func TestRecordAlerts_StoreFailureReturnsPartialResult(t *testing.T) {
	calls := 0
	alerts := &services.MockAlertStore{
		CreateFunc: func(ctx context.Context, alert *models.Alert) (*models.Alert, error) {
			calls++
			if calls == 2 {
				return nil, models.ErrInternalServer
			}
			stored := *alert
			stored.ID = int64(calls)
			return &stored, nil
		},
	}
	sink := &services.RecordingSink{}
	service := newAlertService(alerts, &services.MockStationDirectory{}, sink)

	entry := services.NewTestLogEntry(1, "st-1", models.LogStatusError, "high", time.Now())
	triggered := []models.TriggeredRule{
		{Rule: models.AlertRuleCriticalIncident, Level: models.AlertLevelCritical, Message: "critical"},
		{Rule: models.AlertRuleStationBurst, Level: models.AlertLevelWarning, Message: "burst"},
	}

	created, err := service.RecordAlerts(context.Background(), entry, triggered)

	assert.Error(t, err)
	require.Len(t, created, 1)
	assert.Len(t, sink.Payloads, 1)
}

func TestAlertResolve_Success(t *testing.T) {
	resolvedAt := time.Now()
	alerts := &services.MockAlertStore{
		ResolveFunc: func(ctx context.Context, id int64, resolvedBy string, at time.Time) (*models.Alert, error) {
			return &models.Alert{
				ID:         id,
				Rule:       models.AlertRuleCriticalIncident,
				Status:     models.AlertStatusResolved,
				ResolvedAt: &resolvedAt,
				ResolvedBy: resolvedBy,
			}, nil
		},
	}
	service := newAlertService(alerts, &services.MockStationDirectory{}, &services.RecordingSink{})

	alert, err := service.Resolve(context.Background(), 5, "marta")

	require.NoError(t, err)
	assert.Equal(t, int64(5), alert.ID)
	assert.Equal(t, models.AlertStatusResolved, alert.Status)
	assert.Equal(t, "marta", alert.ResolvedBy)
}

func TestAlertResolve_MissingAlert(t *testing.T) {
	service := newAlertService(&services.MockAlertStore{}, &services.MockStationDirectory{}, &services.RecordingSink{})

	_, err := service.Resolve(context.Background(), 999, "marta")

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAlertResolve_AlreadyResolved(t *testing.T) {
	alerts := &services.MockAlertStore{
		ResolveFunc: func(ctx context.Context, id int64, resolvedBy string, at time.Time) (*models.Alert, error) {
			return nil, models.ErrAlreadyResolved
		},
	}
	service := newAlertService(alerts, &services.MockStationDirectory{}, &services.RecordingSink{})

	_, err := service.Resolve(context.Background(), 5, "marta")

	assert.ErrorIs(t, err, models.ErrAlreadyResolved)
}
