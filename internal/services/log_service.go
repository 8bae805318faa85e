package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/stationops/forecourt/internal/models"
)

// LogStore defines the interface for log entry persistence
type LogStore interface {
	Create(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, error)
	GetAll(ctx context.Context) ([]*models.LogEntry, error)
	List(ctx context.Context, stationID, status string, limit, offset int) ([]*models.LogEntry, error)
}

// LogService records log entries and runs the alert rules over each new
// one. The evaluation reads the current alert policy and the full
// historical set on every call.
type LogService struct {
	logs   LogStore
	policy *PolicyService
	alerts *AlertService
	logger *slog.Logger
}

// NewLogService creates a new LogService
func NewLogService(logs LogStore, policy *PolicyService, alerts *AlertService, logger *slog.Logger) *LogService {
	return &LogService{
		logs:   logs,
		policy: policy,
		alerts: alerts,
		logger: logger,
	}
}

// CreateEntry persists a new log entry and evaluates the alert rules
// against it. The entry is created even when alert recording fails; alerts
// that could not be recorded are dropped with a diagnostic log.
func (s *LogService) CreateEntry(ctx context.Context, entry *models.LogEntry) (*models.LogEntry, []*models.Alert, error) {
	created, err := s.logs.Create(ctx, entry)
	if err != nil {
		return nil, nil, err
	}

	history, err := s.logs.GetAll(ctx)
	if err != nil {
		s.logger.Error("failed to load log history for rule evaluation",
			slog.Int64("log_id", created.ID),
			slog.Any("error", err))
		return created, nil, nil
	}

	settings := s.policy.GetAlertSettings(ctx)
	triggered := EvaluateRules(created, history, settings, time.Now())
	if len(triggered) == 0 {
		return created, nil, nil
	}

	alerts, err := s.alerts.RecordAlerts(ctx, created, triggered)
	if err != nil {
		s.logger.Error("failed to record alerts for log entry",
			slog.Int64("log_id", created.ID),
			slog.Any("error", err))
	}

	return created, alerts, nil
}

// List returns log entries with optional filters.
func (s *LogService) List(ctx context.Context, stationID, status string, limit, offset int) ([]*models.LogEntry, error) {
	return s.logs.List(ctx, stationID, status, limit, offset)
}
