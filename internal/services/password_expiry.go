package services

import (
	"time"

	"github.com/stationops/forecourt/internal/models"
)

// CheckPasswordExpiry compares an account's last password change against
// policy. An expired password is a soft warning for the base operator role
// and a forced change for everyone else. A missing change timestamp skips
// the check entirely (treated as not expired).
func CheckPasswordExpiry(account *models.UserAccount, settings models.SecuritySettings, now time.Time) string {
	if account.PasswordChangedAt == nil || account.PasswordChangedAt.IsZero() {
		return models.PasswordStatusOK
	}

	ageDays := now.Sub(*account.PasswordChangedAt).Hours() / 24
	if ageDays <= float64(settings.PasswordExpiryDays) {
		return models.PasswordStatusOK
	}

	if account.Role == models.RoleOperator {
		return models.PasswordStatusWarn
	}
	return models.PasswordStatusForceChange
}
