package leaderboard

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ml_arena/internal/domain/model"
)

func TestEligible(t *testing.T) {
	score := 0.5
	nan := math.NaN()
	inf := math.Inf(1)

	ok := &model.Submission{
		Status:      model.StatusSucceeded,
		PublicScore: &score,
		IsOfficial:  true,
		SubmittedAt: baseTime,
	}

	tests := []struct {
		name string
		mod  func(s *model.Submission)
		want bool
	}{
		{"succeeded official finite", func(s *model.Submission) {}, true},
		{"nil submission filtered elsewhere", nil, false},
		{"pending", func(s *model.Submission) { s.Status = model.StatusPending }, false},
		{"running", func(s *model.Submission) { s.Status = model.StatusRunning }, false},
		{"failed", func(s *model.Submission) { s.Status = model.StatusFailed }, false},
		{"format_error", func(s *model.Submission) { s.Status = model.StatusFormatError }, false},
		{"runtime_error", func(s *model.Submission) { s.Status = model.StatusRuntimeError }, false},
		{"unknown status", func(s *model.Submission) { s.Status = "graded" }, false},
		{"nil score", func(s *model.Submission) { s.PublicScore = nil }, false},
		{"nan score", func(s *model.Submission) { s.PublicScore = &nan }, false},
		{"infinite score", func(s *model.Submission) { s.PublicScore = &inf }, false},
		{"unofficial", func(s *model.Submission) { s.IsOfficial = false }, false},
		{"zero timestamp", func(s *model.Submission) { s.SubmittedAt = time.Time{} }, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.mod == nil {
				assert.False(t, Eligible(nil))
				return
			}
			s := *ok
			tc.mod(&s)
			assert.Equal(t, tc.want, Eligible(&s))
		})
	}
}
