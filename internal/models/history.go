package models

import "time"

// LaunchRecord is one persisted per-item launch outcome.
type LaunchRecord struct {
	ID         string        `json:"id"`
	Profile    string        `json:"profile"`
	ItemType   ItemType      `json:"item_type"`
	ItemLabel  string        `json:"item_label"`
	Status     OutcomeStatus `json:"status"`
	Message    string        `json:"message"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// ProfileUsage is an aggregated view over launch records for one profile.
type ProfileUsage struct {
	Profile     string     `json:"profile"`
	LaunchCount int64      `json:"launch_count"`
	ItemCount   int64      `json:"item_count"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
}
