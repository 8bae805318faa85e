package models

// Validation ranges and defaults for the two policy bundles. Out-of-range
// values are silently discarded in favor of the previous valid value; the
// admin UI is never blocked on a bad field.
const (
	DefaultMaxFailedAttempts = 5
	MinMaxFailedAttempts     = 1
	MaxMaxFailedAttempts     = 20

	DefaultLockWindowMinutes = 10
	MinLockWindowMinutes     = 1
	MaxLockWindowMinutes     = 120

	DefaultPasswordExpiryDays = 90
	MinPasswordExpiryDays     = 1
	MaxPasswordExpiryDays     = 365

	DefaultStationBurstThreshold = 3
	MinStationBurstThreshold     = 2

	DefaultStationBurstWindowMinutes = 60
	MinStationBurstWindowMinutes     = 15
)

// SecuritySettings governs login-attempt limiting, lockout and password
// expiry.
type SecuritySettings struct {
	MaxFailedAttempts  int `json:"max_failed_attempts"`
	LockWindowMinutes  int `json:"lock_window_minutes"`
	PasswordExpiryDays int `json:"password_expiry_days"`
}

// DefaultSecuritySettings returns the bundle with every field at its default.
func DefaultSecuritySettings() SecuritySettings {
	return SecuritySettings{
		MaxFailedAttempts:  DefaultMaxFailedAttempts,
		LockWindowMinutes:  DefaultLockWindowMinutes,
		PasswordExpiryDays: DefaultPasswordExpiryDays,
	}
}

// Normalize clamps every field back to its valid range, falling back to the
// default for anything out of range. A corrupt stored bundle self-heals to
// defaults on the next read.
func (s SecuritySettings) Normalize() SecuritySettings {
	if s.MaxFailedAttempts < MinMaxFailedAttempts || s.MaxFailedAttempts > MaxMaxFailedAttempts {
		s.MaxFailedAttempts = DefaultMaxFailedAttempts
	}
	if s.LockWindowMinutes < MinLockWindowMinutes || s.LockWindowMinutes > MaxLockWindowMinutes {
		s.LockWindowMinutes = DefaultLockWindowMinutes
	}
	if s.PasswordExpiryDays < MinPasswordExpiryDays || s.PasswordExpiryDays > MaxPasswordExpiryDays {
		s.PasswordExpiryDays = DefaultPasswordExpiryDays
	}
	return s
}

// SecuritySettingsPatch is a partial update; nil fields are left untouched.
type SecuritySettingsPatch struct {
	MaxFailedAttempts  *int `json:"max_failed_attempts"`
	LockWindowMinutes  *int `json:"lock_window_minutes"`
	PasswordExpiryDays *int `json:"password_expiry_days"`
}

// Apply merges the patch into s, validating each field independently. A
// field failing its range check is dropped without affecting the others and
// without raising an error.
func (p SecuritySettingsPatch) Apply(s SecuritySettings) SecuritySettings {
	if p.MaxFailedAttempts != nil {
		if v := *p.MaxFailedAttempts; v >= MinMaxFailedAttempts && v <= MaxMaxFailedAttempts {
			s.MaxFailedAttempts = v
		}
	}
	if p.LockWindowMinutes != nil {
		if v := *p.LockWindowMinutes; v >= MinLockWindowMinutes && v <= MaxLockWindowMinutes {
			s.LockWindowMinutes = v
		}
	}
	if p.PasswordExpiryDays != nil {
		if v := *p.PasswordExpiryDays; v >= MinPasswordExpiryDays && v <= MaxPasswordExpiryDays {
			s.PasswordExpiryDays = v
		}
	}
	return s
}

// AlertSettings governs which alert rules are enabled and the burst
// threshold/window.
type AlertSettings struct {
	EnableCriticalAlerts      bool `json:"enable_critical_alerts"`
	EnableStationBurstAlerts  bool `json:"enable_station_burst_alerts"`
	StationBurstThreshold     int  `json:"station_burst_threshold"`
	StationBurstWindowMinutes int  `json:"station_burst_window_minutes"`
}

// DefaultAlertSettings returns the bundle with every field at its default.
func DefaultAlertSettings() AlertSettings {
	return AlertSettings{
		EnableCriticalAlerts:      true,
		EnableStationBurstAlerts:  true,
		StationBurstThreshold:     DefaultStationBurstThreshold,
		StationBurstWindowMinutes: DefaultStationBurstWindowMinutes,
	}
}

// Normalize clamps the numeric fields back to their valid ranges.
func (s AlertSettings) Normalize() AlertSettings {
	if s.StationBurstThreshold < MinStationBurstThreshold {
		s.StationBurstThreshold = DefaultStationBurstThreshold
	}
	if s.StationBurstWindowMinutes < MinStationBurstWindowMinutes {
		s.StationBurstWindowMinutes = DefaultStationBurstWindowMinutes
	}
	return s
}

// AlertSettingsPatch is a partial update; nil fields are left untouched.
type AlertSettingsPatch struct {
	EnableCriticalAlerts      *bool `json:"enable_critical_alerts"`
	EnableStationBurstAlerts  *bool `json:"enable_station_burst_alerts"`
	StationBurstThreshold     *int  `json:"station_burst_threshold"`
	StationBurstWindowMinutes *int  `json:"station_burst_window_minutes"`
}

// Apply merges the patch into s with per-field validation, same silent-drop
// policy as SecuritySettingsPatch.Apply.
func (p AlertSettingsPatch) Apply(s AlertSettings) AlertSettings {
	if p.EnableCriticalAlerts != nil {
		s.EnableCriticalAlerts = *p.EnableCriticalAlerts
	}
	if p.EnableStationBurstAlerts != nil {
		s.EnableStationBurstAlerts = *p.EnableStationBurstAlerts
	}
	if p.StationBurstThreshold != nil {
		if v := *p.StationBurstThreshold; v >= MinStationBurstThreshold {
			s.StationBurstThreshold = v
		}
	}
	if p.StationBurstWindowMinutes != nil {
		if v := *p.StationBurstWindowMinutes; v >= MinStationBurstWindowMinutes {
			s.StationBurstWindowMinutes = v
		}
	}
	return s
}
