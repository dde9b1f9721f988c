package config

import (
	"fmt"
	"time"
)

// Application constants
const (
	AppName    = "Ang3l-Dash"
	AppVersion = "1.0.0"

	// File paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultLogsDir    = "logs"
	DefaultReportsDir = "data/reports"
	DefaultUploadsDir = "data/uploads"
	DefaultUsersFile  = "users.json"

	// Workflow policy
	DefaultExpectedExports   = 8
	DefaultHistoryRowCeiling = 1_000_000
	DefaultMaxUploadBytes    = 64 << 20

	// Remote storage
	DefaultRemoteFolder  = "WIP"
	DefaultUploadTimeout = 2 * time.Minute
)

// Artifact file names produced by the workflows.
const (
	UnifiedWorkbookName = "WIP.xlsx"
	MissingReportName   = "report_mancanti.xlsx"
	HistoryWorkbookName = "storico_dati.xlsx"
	HistoryCSVName      = "storico_dati.csv"
	// HistoryBackupStamp formats the timestamp of a rollover backup.
	HistoryBackupStamp = "20060102_150405"
)

// API endpoints
const (
	APIBasePath       = "/api"
	HealthEndpoint    = "/health"
	MetricsEndpoint   = "/metrics"
	WebSocketEndpoint = "/ws"
)

// HistoryBackupName returns the backup file name for a rollover at t.
func HistoryBackupName(t time.Time) string {
	return fmt.Sprintf("storico_backup_%s.xlsx", t.Format(HistoryBackupStamp))
}
