package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are the JWT claims carried by a session token. The
// MustChangePassword flag is scoped to the session, not the account record:
// it gates everything except the change-password endpoint until the password
// is updated.
type SessionClaims struct {
	Username           string `json:"username"`
	Role               string `json:"role"`
	MustChangePassword bool   `json:"must_change_password,omitempty"`
	jwt.RegisteredClaims
}

// Password expiry verdicts
const (
	PasswordStatusOK          = "ok"
	PasswordStatusWarn        = "warn"
	PasswordStatusForceChange = "force_change"
)
