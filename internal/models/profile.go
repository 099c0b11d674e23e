package models

import "time"

// Profile is a named, ordered list of launch items. Order is launch order.
type Profile struct {
	Name  string       `json:"-"`
	Items []LaunchItem `json:"items"`
}

// DefaultStaggerMS is the pause between consecutive launches when the
// config does not specify one.
const DefaultStaggerMS = 500

// Settings are the process-wide launch settings, loaded once at startup.
type Settings struct {
	// StaggerMS is the fixed pause in milliseconds inserted between
	// consecutive item launches within a run.
	StaggerMS int `json:"stagger_ms"`

	// AvoidDuplicates skips an app launch when a process with the same
	// executable name is already running.
	AvoidDuplicates bool `json:"avoid_duplicates"`
}

// DefaultSettings returns the settings used when the config omits the
// launch object.
func DefaultSettings() Settings {
	return Settings{
		StaggerMS:       DefaultStaggerMS,
		AvoidDuplicates: true,
	}
}

// Stagger returns the inter-item pacing delay. Negative values clamp to zero.
func (s Settings) Stagger() time.Duration {
	if s.StaggerMS <= 0 {
		return 0
	}
	return time.Duration(s.StaggerMS) * time.Millisecond
}
