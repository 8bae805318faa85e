package models

import "time"

// LoginAttemptRecord is the per-identity failed-attempt counter. It is
// created on the first failed attempt and deleted on a successful login or
// an administrative reset. Identity keys are compared case-insensitively.
type LoginAttemptRecord struct {
	Identity      string
	Count         int
	LastAttemptAt time.Time
}
