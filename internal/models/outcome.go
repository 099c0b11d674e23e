package models

import "fmt"

// OutcomeStatus classifies the result of launching a single item.
type OutcomeStatus string

const (
	// OutcomeOpened means a URL was handed to the default browser.
	OutcomeOpened OutcomeStatus = "opened"

	// OutcomeLaunched means a new process was spawned.
	OutcomeLaunched OutcomeStatus = "launched"

	// OutcomeAlreadyRunning means the spawn was suppressed because a
	// process with the same executable name is running.
	OutcomeAlreadyRunning OutcomeStatus = "already_running"

	// OutcomeNotFound means the target executable does not exist.
	OutcomeNotFound OutcomeStatus = "not_found"

	// OutcomeFailed means the OS-boundary call failed for a recoverable
	// reason other than not-found.
	OutcomeFailed OutcomeStatus = "failed"

	// OutcomeUnknownType means the item type was not recognized and no
	// action was taken.
	OutcomeUnknownType OutcomeStatus = "unknown_type"
)

// Outcome is the transient per-item launch result. Only its rendered
// message is persisted, as a launch-log line.
type Outcome struct {
	Status OutcomeStatus

	// Label is the item's display label.
	Label string

	// Detail carries status-specific context: the target for not-found,
	// the failure reason for failed, the raw type for unknown_type.
	Detail string
}

// Message renders the human-readable outcome line.
func (o Outcome) Message() string {
	switch o.Status {
	case OutcomeOpened:
		return fmt.Sprintf("Opened URL: %s", o.Label)
	case OutcomeLaunched:
		return fmt.Sprintf("Launched app: %s", o.Label)
	case OutcomeAlreadyRunning:
		return fmt.Sprintf("Already running: %s", o.Label)
	case OutcomeNotFound:
		return fmt.Sprintf("Not found: %s (%s)", o.Label, o.Detail)
	case OutcomeFailed:
		return fmt.Sprintf("Failed to launch %s: %s", o.Label, o.Detail)
	case OutcomeUnknownType:
		return fmt.Sprintf("Unknown item type: %s", o.Detail)
	default:
		return fmt.Sprintf("%s: %s", o.Status, o.Label)
	}
}
