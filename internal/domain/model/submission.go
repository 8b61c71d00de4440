package model

import "time"

type SubmissionStatus string

const (
	StatusPending      SubmissionStatus = "pending"
	StatusRunning      SubmissionStatus = "running"
	StatusSucceeded    SubmissionStatus = "succeeded"
	StatusFailed       SubmissionStatus = "failed"
	StatusFormatError  SubmissionStatus = "format_error"
	StatusRuntimeError SubmissionStatus = "runtime_error"
)

// IsTerminal reports whether the status can never change again.
// Resubmission always creates a new Submission record; a terminal
// status/score pair is immutable.
func (s SubmissionStatus) IsTerminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusFormatError, StatusRuntimeError:
		return true
	}
	return false
}

// IsValid reports whether s belongs to the known closed set. Anything
// outside it is treated as ineligible for ranking, never as succeeded.
func (s SubmissionStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusSucceeded, StatusFailed, StatusFormatError, StatusRuntimeError:
		return true
	}
	return false
}

type Submission struct {
	ID                string           `json:"id"`
	ProblemID         string           `json:"problem_id"`
	UserID            string           `json:"user_id"`
	Username          string           `json:"username"` // Denormalized for listings and ranking output
	Status            SubmissionStatus `json:"status"`
	PublicScore       *float64         `json:"public_score,omitempty"` // Populated only when Status is succeeded
	RuntimeMs         *int             `json:"runtime_ms,omitempty"`
	EvaluationDetails *string          `json:"evaluation_details,omitempty"`
	IsOfficial        bool             `json:"is_official"` // Practice/backfill submissions never rank
	Content           string           `json:"-"`           // Raw submitted CSV; omitted from listings
	SubmittedAt       time.Time        `json:"submitted_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}
