package logger

import (
	"strings"
)

// SanitizedIdentity masks a login identity for logging (e.g., "a***").
func SanitizedIdentity(identity string) string {
	if identity == "" {
		return "[empty]"
	}
	if len(identity) == 1 {
		return "*"
	}
	return string(identity[0]) + strings.Repeat("*", len(identity)-1)
}

// SanitizeQueryString reports whether a query string contains sensitive
// parameters and should be redacted wholesale from request logs.
func SanitizeQueryString(rawQuery string) bool {
	sensitiveParams := []string{
		"password",
		"token",
		"secret",
		"auth",
		"credential",
	}

	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
