package models

import "github.com/julianstephens/roadplan/internal/constants"

// Settings represents application-wide settings
type Settings struct {
	Timezone     string `json:"timezone"`       // IANA timezone name, or "Local" for the system timezone
	FullDayStart string `json:"full_day_start"` // start of the full-day window, e.g. "00:00"
	FullDayEnd   string `json:"full_day_end"`   // end of the full-day window, e.g. "23:59"
	SessionEmail string `json:"session_email"`  // e-mail of the signed-in user, empty when signed out
}

// DefaultSettings returns the settings written on first init.
func DefaultSettings() Settings {
	return Settings{
		Timezone:     constants.DefaultTimezone,
		FullDayStart: constants.FullDayStart,
		FullDayEnd:   constants.FullDayEnd,
	}
}
