// Package events writes the append-only launch log.
package events

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultLogFile is the launch log filename resolved relative to the
// working directory when no path is given.
const DefaultLogFile = "auto_launcher_log.txt"

// LaunchMarker prefixes the per-run line the usage aggregator keys on.
// The text after the marker, trimmed, is the profile name.
const LaunchMarker = "Launching profile:"

// timestampLayout matches the historical log format: one line per event,
// "YYYY-MM-DD HH:MM:SS - <message>".
const timestampLayout = "2006-01-02 15:04:05"

// Log appends timestamped lines to a plain-text file. Every append uses an
// independent append-mode open, so concurrent sequencer runs can share one
// log without coordination.
type Log struct {
	path string

	// Now is the clock used for line timestamps. Overridable in tests.
	Now func() time.Time
}

// NewLog returns a launch log writing to path.
func NewLog(path string) *Log {
	if strings.TrimSpace(path) == "" {
		path = DefaultLogFile
	}
	return &Log{path: path, Now: time.Now}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Append writes one timestamped line to the log.
func (l *Log) Append(message string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open launch log %s: %w", l.path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s - %s\n", l.Now().Format(timestampLayout), message)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("append launch log %s: %w", l.path, err)
	}
	return nil
}

// AppendOutcome writes the per-item line "<name> - <message>".
func (l *Log) AppendOutcome(name, message string) error {
	return l.Append(fmt.Sprintf("%s - %s", name, message))
}

// AppendLaunch writes the per-run marker line the usage aggregator counts.
func (l *Log) AppendLaunch(profile string) error {
	return l.Append(fmt.Sprintf("%s %s", LaunchMarker, profile))
}
