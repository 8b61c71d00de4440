package leaderboard

import (
	"math"

	"ml_arena/internal/domain/model"
)

// Eligible reports whether a submission may participate in ranking:
// terminal succeeded status, a finite public score, the official flag
// set, and a real timestamp. Everything else (failed runs, practice
// submissions, half-written records) is silently excluded so that one
// bad row never aborts a leaderboard.
func Eligible(s *model.Submission) bool {
	if s == nil {
		return false
	}
	if s.Status != model.StatusSucceeded {
		return false
	}
	if s.PublicScore == nil {
		return false
	}
	if score := *s.PublicScore; math.IsNaN(score) || math.IsInf(score, 0) {
		return false
	}
	if !s.IsOfficial {
		return false
	}
	return !s.SubmittedAt.IsZero()
}
