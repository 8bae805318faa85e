package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/stationops/forecourt/internal/repositories"
	"github.com/stationops/forecourt/internal/services"
)

// CleanupManager periodically sweeps stale login-attempt records and purges
// old resolved alerts from the database
type CleanupManager struct {
	alertRepo      *repositories.AlertRepository
	lockout        *services.LockoutService
	policy         *services.PolicyService
	logger         *slog.Logger
	interval       time.Duration
	alertRetention time.Duration
	stopCh         chan struct{}
}

// NewCleanupManager creates a new cleanup manager
func NewCleanupManager(
	alertRepo *repositories.AlertRepository,
	lockout *services.LockoutService,
	policy *services.PolicyService,
	logger *slog.Logger,
	interval time.Duration,
	alertRetention time.Duration,
) *CleanupManager {
	return &CleanupManager{
		alertRepo:      alertRepo,
		lockout:        lockout,
		policy:         policy,
		logger:         logger,
		interval:       interval,
		alertRetention: alertRetention,
		stopCh:         make(chan struct{}),
	}
}

// Start begins the periodic cleanup task
func (cm *CleanupManager) Start(ctx context.Context) {
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	// Run immediately on startup
	cm.runCleanup(ctx)

	for {
		select {
		case <-ticker.C:
			cm.runCleanup(ctx)
		case <-cm.stopCh:
			cm.logger.Info("cleanup manager stopped")
			return
		case <-ctx.Done():
			cm.logger.Info("cleanup manager context cancelled")
			return
		}
	}
}

// runCleanup sweeps tracking state and purges resolved alerts
func (cm *CleanupManager) runCleanup(ctx context.Context) {
	cleanupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	settings := cm.policy.GetSecuritySettings(cleanupCtx)
	if removed := cm.lockout.SweepStale(settings, time.Now()); removed > 0 {
		cm.logger.Info("stale login attempt records swept", slog.Int("records_removed", removed))
	}

	cutoff := time.Now().Add(-cm.alertRetention)
	rowsDeleted, err := cm.alertRepo.DeleteResolvedBefore(cleanupCtx, cutoff)
	if err != nil {
		cm.logger.Error("failed to purge resolved alerts", slog.Any("error", err))
		return
	}

	if rowsDeleted > 0 {
		cm.logger.Info("resolved alert purge completed", slog.Int64("rows_deleted", rowsDeleted))
	}
}

// Stop signals the cleanup manager to stop
func (cm *CleanupManager) Stop() {
	close(cm.stopCh)
}
