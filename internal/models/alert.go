package models

import "time"

// Alert rules
const (
	AlertRuleCriticalIncident = "critical_incident"
	AlertRuleStationBurst     = "station_burst"
)

// Alert levels
const (
	AlertLevelCritical = "critical"
	AlertLevelWarning  = "warning"
)

// Alert statuses
const (
	AlertStatusActive   = "active"
	AlertStatusResolved = "resolved"
)

// Alert is a record appended by the rule evaluator. Once resolved it is
// never mutated again.
type Alert struct {
	ID          int64      `json:"id"`
	CreatedAt   time.Time  `json:"created_at"`
	LogID       int64      `json:"log_id"`
	StationID   string     `json:"station_id"`
	StationName string     `json:"station_name"` // snapshot at creation time
	Severity    string     `json:"severity"`
	Rule        string     `json:"rule"`
	Level       string     `json:"level"`
	Message     string     `json:"message"`
	Status      string     `json:"status"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
}

// TriggeredRule is the evaluator's verdict for a single rule against a
// single log entry, before it is persisted as an Alert.
type TriggeredRule struct {
	Rule    string
	Level   string
	Message string
}

// NotificationPayload is the shape POSTed best-effort to the external
// notification endpoint.
type NotificationPayload struct {
	Type        string `json:"type"`
	Level       string `json:"level"`
	Message     string `json:"message"`
	StationID   string `json:"stationId"`
	StationName string `json:"stationName"`
	Severity    string `json:"severity"`
	LogID       int64  `json:"logId"`
}
