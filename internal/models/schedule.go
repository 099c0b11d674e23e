package models

import "time"

// ScheduledTask describes one armed one-shot launch timer. Tasks live only
// in memory; an armed schedule is lost if the process exits before firing.
type ScheduledTask struct {
	// ID is the generated registry key for the task.
	ID string

	// Profile is the profile to launch when the timer fires.
	Profile string

	// FireAt is the wall-clock time the timer targets.
	FireAt time.Time

	// Delay is the wait that was armed, for display.
	Delay time.Duration
}
