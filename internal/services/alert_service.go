package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stationops/forecourt/internal/models"
	pkglogger "github.com/stationops/forecourt/pkg/logger"
)

// AlertStore defines the interface for alert ledger persistence
type AlertStore interface {
	Create(ctx context.Context, alert *models.Alert) (*models.Alert, error)
	GetByID(ctx context.Context, id int64) (*models.Alert, error)
	List(ctx context.Context, status string, limit, offset int) ([]*models.Alert, error)
	Resolve(ctx context.Context, id int64, resolvedBy string, resolvedAt time.Time) (*models.Alert, error)
}

// StationDirectory resolves station ids to names for the creation-time
// snapshot.
type StationDirectory interface {
	GetByID(ctx context.Context, id string) (*models.Station, error)
}

// AlertService owns the append-only alert ledger. Persisting the alert is
// the operation; notification and audit-trail writes that follow are
// best-effort side effects whose failures never reach the caller.
type AlertService struct {
	alerts   AlertStore
	stations StationDirectory
	events   SecurityEventWriter
	sink     NotificationSink
	logger   *slog.Logger
	audit    *pkglogger.AuditLogger
}

// NewAlertService creates a new AlertService
func NewAlertService(alerts AlertStore, stations StationDirectory, events SecurityEventWriter, sink NotificationSink, logger *slog.Logger, audit *pkglogger.AuditLogger) *AlertService {
	return &AlertService{
		alerts:   alerts,
		stations: stations,
		events:   events,
		sink:     sink,
		logger:   logger,
		audit:    audit,
	}
}

// RecordAlerts persists one Alert per triggered rule and dispatches the
// notification payload for each. Returns the created alerts.
func (s *AlertService) RecordAlerts(ctx context.Context, entry *models.LogEntry, triggered []models.TriggeredRule) ([]*models.Alert, error) {
	if len(triggered) == 0 {
		return nil, nil
	}

	stationName := ""
	if entry.StationID != "" {
		station, err := s.stations.GetByID(ctx, entry.StationID)
		if err == nil {
			stationName = station.Name
		} else if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("failed to resolve station name for alert",
				slog.String("station_id", entry.StationID),
				slog.Any("error", err))
		}
	}

	created := make([]*models.Alert, 0, len(triggered))
	for _, rule := range triggered {
		alert := &models.Alert{
			CreatedAt:   time.Now(),
			LogID:       entry.ID,
			StationID:   entry.StationID,
			StationName: stationName,
			Severity:    entry.Severity,
			Rule:        rule.Rule,
			Level:       rule.Level,
			Message:     rule.Message,
			Status:      models.AlertStatusActive,
		}

		stored, err := s.alerts.Create(ctx, alert)
		if err != nil {
			return created, fmt.Errorf("failed to record %s alert: %w", rule.Rule, err)
		}
		created = append(created, stored)

		s.sink.Send(models.NotificationPayload{
			Type:        stored.Rule,
			Level:       stored.Level,
			Message:     stored.Message,
			StationID:   stored.StationID,
			StationName: stored.StationName,
			Severity:    stored.Severity,
			LogID:       stored.LogID,
		})

		s.audit.LogAlertEvent("alert_created", stored.ID, stored.Rule, stored.StationID)
		s.recordEvent(ctx, models.SecurityEventAlertCreated, stored)
	}

	return created, nil
}

// Resolve marks an alert resolved exactly once. A missing alert returns
// models.ErrNotFound, an already-resolved one models.ErrAlreadyResolved.
func (s *AlertService) Resolve(ctx context.Context, id int64, resolvedBy string) (*models.Alert, error) {
	alert, err := s.alerts.Resolve(ctx, id, resolvedBy, time.Now())
	if err != nil {
		return nil, err
	}

	s.logger.Info("alert resolved",
		slog.Int64("alert_id", alert.ID),
		slog.String("resolved_by", resolvedBy))
	s.audit.LogAlertEvent("alert_resolved", alert.ID, alert.Rule, alert.StationID)
	s.recordEvent(ctx, models.SecurityEventAlertResolved, alert)

	return alert, nil
}

// List returns alerts, optionally filtered by status.
func (s *AlertService) List(ctx context.Context, status string, limit, offset int) ([]*models.Alert, error) {
	return s.alerts.List(ctx, status, limit, offset)
}

func (s *AlertService) recordEvent(ctx context.Context, eventType string, alert *models.Alert) {
	event := &models.SecurityEvent{
		EventType: eventType,
		Detail:    alert.Message,
		Metadata: models.EventMetadata{
			"alert_id":   alert.ID,
			"rule":       alert.Rule,
			"station_id": alert.StationID,
			"log_id":     alert.LogID,
		},
	}
	if err := s.events.Create(ctx, event); err != nil {
		s.logger.Warn("failed to persist security event", slog.String("event_type", eventType), slog.Any("error", err))
	}
}
