package model

import "time"

// TrialResult records the outcome assigned to one trial directory during a run.
type TrialResult struct {
	Path    string  `json:"path"`
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message,omitempty"`
}

// Run is the persisted record of one engine invocation.
type Run struct {
	ID          string        `json:"id"`
	Mode        Mode          `json:"mode"`
	Stats       Stats         `json:"stats"`
	Trials      []TrialResult `json:"trials,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
}
