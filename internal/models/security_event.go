package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Security event types recorded in the audit trail.
const (
	SecurityEventLoginSuccess   = "login_success"
	SecurityEventLoginFailed    = "login_failed"
	SecurityEventLockout        = "lockout"
	SecurityEventAccountLocked  = "account_locked"
	SecurityEventAccountUnlock  = "account_unlocked"
	SecurityEventPasswordReset  = "password_reset"
	SecurityEventPasswordChange = "password_changed"
	SecurityEventAlertCreated   = "alert_created"
	SecurityEventAlertResolved  = "alert_resolved"
)

// SecurityEvent is a persisted audit record. Writes to this table are
// best-effort; a failed write never fails the operation that produced it.
type SecurityEvent struct {
	ID        uuid.UUID     `json:"id"`
	EventType string        `json:"event_type"`
	Username  string        `json:"username,omitempty"`
	Detail    string        `json:"detail"`
	Metadata  EventMetadata `json:"metadata,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// EventMetadata holds additional context for security events, stored as
// JSONB.
type EventMetadata map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (em *EventMetadata) Scan(value interface{}) error {
	if value == nil {
		*em = make(EventMetadata)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(bytes, &m); err != nil {
		return err
	}
	*em = EventMetadata(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (em EventMetadata) Value() (driver.Value, error) {
	if em == nil {
		return nil, nil
	}
	return json.Marshal(em)
}
