package constants

const (
	SettingTimezone     = "timezone"
	SettingFullDayStart = "full_day_start"
	SettingFullDayEnd   = "full_day_end"
	SettingSessionEmail = "session_email"

	DefaultTimezone = "Local" // Use system local timezone by default
)
