package constants

import "time"

const (
	AppName            = "roadplan"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/roadplan/roadplan.db"
	Version            = "v0.3.0"

	// DateFormat is the canonical calendar-day key used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// DayLabelFormat is the user-facing day label (DD/MM/YYYY)
	DayLabelFormat = "02/01/2006"

	// ShortDayLabelFormat is used for week spans (DD/MM)
	ShortDayLabelFormat = "02/01"

	// MonthFormat is used to select a calendar month (YYYY-MM)
	MonthFormat = "2006-01"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// WeekBucketFormat builds a week bucket key from year and ISO week number
	WeekBucketFormat = "%d-Semana-%d"

	// Full-day activities occupy the whole calendar day
	FullDayStart = "00:00"
	FullDayEnd   = "23:59"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "roadplan-"
	BackupFileSuffix = ".db"

	// Notification constants
	NotifySubjectPrefix = "roadplan.plans"
	NotifyTimeout       = 2 * time.Second
	NotifySecretHeader  = "X-Roadplan-Secret"

	// LockfileName marks the process holding the interactive session
	LockfileName = "roadplan.lock"

	// Environment variables
	EnvDBConnection  = "ROADPLAN_DB_CONNECTION"
	EnvNATSURL       = "ROADPLAN_NATS_URL"
	EnvWebhookURL    = "ROADPLAN_WEBHOOK_URL"
	EnvWebhookSecret = "ROADPLAN_WEBHOOK_SECRET"
)
