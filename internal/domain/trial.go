package domain

import "time"

// TrialSpec is one configured trial.
type TrialSpec struct {
	ID       int    `json:"id" yaml:"id"`
	TargetID int    `json:"targetId" yaml:"targetId"`
	Prompt   string `json:"prompt" yaml:"prompt"`
	Method   Method `json:"method" yaml:"method"`
	Phase    Phase  `json:"phase" yaml:"phase"`
}

// TrialRun is the runtime view of the current trial.
type TrialRun struct {
	TrialSpec
	Active         bool      `json:"active"`
	FailedAttempts int       `json:"failedAttempts"`
	StartedAt      time.Time `json:"startedAt,omitempty"`
}

// TrialResult is recorded once per completed trial. Seq is the 1-based
// completion order; the export document does not carry it.
type TrialResult struct {
	TrialSpec
	Seq            int       `json:"seq"`
	SelectedID     int       `json:"selectedId"`
	TimeTakenMs    float64   `json:"timeTakenMs"`
	Success        bool      `json:"success"`
	FailedAttempts int       `json:"failedAttempts"`
	Timestamp      time.Time `json:"timestamp"`
}

// SessionSnapshot is a read model of the study session.
type SessionSnapshot struct {
	SessionID         string           `json:"session_id"`
	Participant       string           `json:"participant"`
	MethodOrder       []Method         `json:"method_order"`
	State             SessionState     `json:"state"`
	CurrentTrialIndex int              `json:"current_trial_index"`
	TotalTrials       int              `json:"total_trials"`
	BreakIndices      []int            `json:"break_indices"`
	Trial             *TrialRun        `json:"trial,omitempty"`
	Method            Method           `json:"method,omitempty"`
	Params            FilterParameters `json:"params"`
	FlaggedListings   []int            `json:"flagged_listings"`
	ScrollToken       int              `json:"scroll_token"`
	ResultsRecorded   int              `json:"results_recorded"`
}

// Event is a session event pushed to the UI.
type Event struct {
	Type       EventType `json:"type"`
	Ts         int64     `json:"ts"` // Unix milliseconds
	SessionID  string    `json:"session_id"`
	TrialIndex int       `json:"trial_index"`
	TrialID    int       `json:"trial_id,omitempty"`
	ListingID  *int      `json:"listing_id,omitempty"`
}

// ExportArtifact is a minted results document.
type ExportArtifact struct {
	ExportID    string    `json:"export_id"`
	SessionID   string    `json:"session_id"`
	Filename    string    `json:"filename"`
	Participant string    `json:"participant"`
	Document    []byte    `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}
