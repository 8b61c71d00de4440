package model

import "time"

// LeaderboardEntry is derived, never stored. Recomputing over the same
// snapshot of submissions/problems/metrics yields identical entries.
type LeaderboardEntry struct {
	Rank         int       `json:"rank"`
	Username     string    `json:"username"`
	Score        float64   `json:"score"`
	SubmissionID string    `json:"submission_id"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
