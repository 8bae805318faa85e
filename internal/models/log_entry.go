package models

import (
	"strings"
	"time"
)

// Log entry statuses
const (
	LogStatusOK      = "ok"
	LogStatusWarning = "warning"
	LogStatusError   = "error"
)

// Severity labels. Severity is free text at the edges and compared
// case-insensitively.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// LogEntry is a single incident/shift entry recorded for a station.
type LogEntry struct {
	ID           int64      `json:"id"`
	StationID    string     `json:"station_id"`
	Status       string     `json:"status"`
	Severity     string     `json:"severity"`
	IncidentType string     `json:"incident_type"`
	EntryDate    string     `json:"date,omitempty"` // YYYY-MM-DD, from manual entry forms
	EntryTime    string     `json:"time,omitempty"` // HH:MM
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	CreatedBy    string     `json:"user"`
	Description  string     `json:"description"`
}

// IsIncident reports whether the entry counts as an incident
// (status warning or error).
func (e *LogEntry) IsIncident() bool {
	return e.Status == LogStatusWarning || e.Status == LogStatusError
}

// HasHighSeverity reports whether the severity label equals "high",
// ignoring case.
func (e *LogEntry) HasHighSeverity() bool {
	return strings.EqualFold(strings.TrimSpace(e.Severity), SeverityHigh)
}

// OccurredAt resolves the entry's timestamp. CreatedAt wins when set;
// otherwise the manual date+time fields are parsed. The second return is
// false when no timestamp can be resolved, in which case the entry is
// excluded from any window-based counting.
func (e *LogEntry) OccurredAt() (time.Time, bool) {
	if e.CreatedAt != nil && !e.CreatedAt.IsZero() {
		return *e.CreatedAt, true
	}
	if e.EntryDate == "" {
		return time.Time{}, false
	}
	raw := e.EntryDate
	layout := "2006-01-02"
	if e.EntryTime != "" {
		raw += " " + e.EntryTime
		layout += " 15:04"
	}
	ts, err := time.ParseInLocation(layout, raw, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
