package models

import "strings"

// ItemType identifies the kind of action a launch item performs.
type ItemType string

const (
	// ItemTypeURL opens the target in the default browser.
	ItemTypeURL ItemType = "url"

	// ItemTypeApp spawns the target as a new process.
	ItemTypeApp ItemType = "app"
)

// LaunchItem is a single URL-open or application-spawn directive.
// Items are read from config and never mutated during a run.
type LaunchItem struct {
	// Type determines dispatch. Unrecognized values are reported, not executed.
	Type ItemType `json:"type"`

	// Label is the human-readable name shown in outcomes and logs.
	Label string `json:"label"`

	// Target is the URL or executable path.
	Target string `json:"target"`
}

// DisplayLabel returns the label, falling back to the target when unset.
func (i LaunchItem) DisplayLabel() string {
	if strings.TrimSpace(i.Label) != "" {
		return i.Label
	}
	return i.Target
}
