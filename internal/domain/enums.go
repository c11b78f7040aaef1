// Package domain defines the core domain models for the discovery service.
package domain

import "fmt"

// Method is the discovery mode a trial exercises.
type Method string

const (
	MethodSearch Method = "search"
	MethodFilter Method = "filter"
)

// Valid reports whether m is a known method.
func (m Method) Valid() bool {
	return m == MethodSearch || m == MethodFilter
}

// ParseMethod converts a configuration string to a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown method %q", s)
	}
	return m, nil
}

// Phase separates practice trials from counted ones.
type Phase string

const (
	PhaseTraining Phase = "training"
	PhaseMain     Phase = "main"
)

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p == PhaseTraining || p == PhaseMain
}

// SessionState represents the state of a study session.
type SessionState string

const (
	SessionStateAwaitingStart SessionState = "awaiting_start"
	SessionStateActive        SessionState = "active"
	SessionStateOnBreak       SessionState = "on_break"
	SessionStateComplete      SessionState = "complete"
)

// CatalogState represents the load state of the listing catalog.
type CatalogState string

const (
	CatalogStateLoading CatalogState = "loading"
	CatalogStateReady   CatalogState = "ready"
	CatalogStateFailed  CatalogState = "failed"
)

// EventType represents the type of a session event pushed to the UI.
type EventType string

const (
	EventTypeTrialStarted    EventType = "trial_started"
	EventTypeMissFlagged     EventType = "miss_flagged"
	EventTypeMissCleared     EventType = "miss_cleared"
	EventTypeTrialCompleted  EventType = "trial_completed"
	EventTypeBreakStarted    EventType = "break_started"
	EventTypeBreakEnded      EventType = "break_ended"
	EventTypeSessionComplete EventType = "session_complete"
)

// Control names a UI input that the gating policy decides on.
type Control string

const (
	ControlQuery    Control = "query"
	ControlTags     Control = "tags"
	ControlDistance Control = "distance"
	ControlSelect   Control = "select"
)
