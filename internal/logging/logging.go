package logging

import (
	"path/filepath"
	"time"
)

const sessionStamp = "20060102_150405"

// SessionFile names a per-run artifact as <dir>/<app><sep><stamp><ext>.
func SessionFile(dir, app, sep, ext string, sessionStart time.Time) string {
	return filepath.Join(dir, app+sep+sessionStart.Format(sessionStamp)+ext)
}

// LogFilePath is the log file for a run started at sessionStart.
func LogFilePath(logsDir, appName string, sessionStart time.Time) string {
	return SessionFile(logsDir, appName, ".", ".log", sessionStart)
}

// DumpFilePath is where an in-memory SQLite database is written on shutdown.
func DumpFilePath(logsDir, appName string, sessionStart time.Time) string {
	return SessionFile(logsDir, appName, "_", ".db", sessionStart)
}
