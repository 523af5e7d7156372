package domain

import "time"

// LifecycleAction names a database lifecycle command.
type LifecycleAction string

// Lifecycle actions recorded in the journal.
const (
	ActionStart  LifecycleAction = "start"
	ActionStop   LifecycleAction = "stop"
	ActionStatus LifecycleAction = "status"
)

// LifecycleEvent is one journaled lifecycle command.
type LifecycleEvent struct {
	ID        string
	Action    LifecycleAction
	DataDir   string
	ExitCode  int
	Error     *string
	StartedAt time.Time
	Duration  time.Duration
}

// Succeeded reports whether the command exited 0.
func (e LifecycleEvent) Succeeded() bool { return e.ExitCode == 0 }
