package services

import (
	"fmt"
	"time"

	"github.com/stationops/forecourt/internal/models"
)

// EvaluateRules computes which alert rules fire for a newly recorded log
// entry. history is the full log set including the new entry itself; the
// scan is O(N) over it. Both rules may fire independently, so the result has
// zero, one or two elements.
//
// The burst window is measured backward from the evaluation wall-clock time
// `now`, not from the entry's own timestamp: backdated or out-of-order
// entries count whenever they fall inside the window relative to now.
func EvaluateRules(entry *models.LogEntry, history []*models.LogEntry, settings models.AlertSettings, now time.Time) []models.TriggeredRule {
	triggered := make([]models.TriggeredRule, 0, 2)

	if settings.EnableCriticalAlerts && entry.Status == models.LogStatusError && entry.HasHighSeverity() {
		triggered = append(triggered, models.TriggeredRule{
			Rule:    models.AlertRuleCriticalIncident,
			Level:   models.AlertLevelCritical,
			Message: "Critical incident (error · high severity)",
		})
	}

	if settings.EnableStationBurstAlerts && entry.StationID != "" && entry.IsIncident() {
		window := time.Duration(settings.StationBurstWindowMinutes) * time.Minute

		count := 0
		for _, past := range history {
			if past.StationID != entry.StationID || !past.IsIncident() {
				continue
			}
			ts, ok := past.OccurredAt()
			if !ok {
				continue
			}
			if now.Sub(ts) <= window {
				count++
			}
		}

		if count >= settings.StationBurstThreshold {
			triggered = append(triggered, models.TriggeredRule{
				Rule:  models.AlertRuleStationBurst,
				Level: models.AlertLevelWarning,
				Message: fmt.Sprintf("Burst of incidents at station (>%d in %d min)",
					settings.StationBurstThreshold-1, settings.StationBurstWindowMinutes),
			})
		}
	}

	return triggered
}
