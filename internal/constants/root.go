package constants

import "time"

const (
	AppName           = "lifelog"
	Version           = "v0.1.0"
	DefaultConfigDir  = "~/.config/lifelog"
	DefaultDataFile   = "lifelog.json"
	DefaultConfigName = "config"

	// Keyring users under the AppName service
	KeyringUserAPIKey     = "ai-api-key"
	KeyringUserDBPassword = "database-password"

	// DateFormat is the standard date format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// TimeFormat is the standard time format used throughout the application (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "lifelog-"
	BackupFileSuffix = ".json.zst"

	// Habit progress is capped at 10x the target
	MaxProgress = 1000.0

	// Suggestions are only requested when more than SuggestionMinRecords exist,
	// using at most SuggestionWindow of the newest records.
	SuggestionMinRecords = 5
	SuggestionWindow     = 50

	// Enrichment limits
	MaxTags          = 3
	MaxTagRunes      = 4
	AITimeout        = 30 * time.Second
	AIMaxRetries     = 3
	LinkFetchLimit   = 1 << 20
	LinkFetchTimeout = 10 * time.Second

	// Debounce for external data file changes picked up by the watcher
	WatchDebounce = 250 * time.Millisecond
)
