package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ml_arena/internal/domain/model"
)

func sub(id, userID string, score float64, at time.Time) *model.Submission {
	return &model.Submission{
		ID:          id,
		ProblemID:   "prob-1",
		UserID:      userID,
		Username:    "user-" + userID,
		Status:      model.StatusSucceeded,
		PublicScore: &score,
		IsOfficial:  true,
		SubmittedAt: at,
	}
}

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestCompareMaximize(t *testing.T) {
	hi := sub("s1", "a", 0.95, baseTime)
	lo := sub("s2", "b", 0.90, baseTime)

	assert.Negative(t, Compare(hi, lo, model.DirectionMaximize))
	assert.Positive(t, Compare(lo, hi, model.DirectionMaximize))
}

func TestCompareMinimize(t *testing.T) {
	hi := sub("s1", "a", 5.0, baseTime)
	lo := sub("s2", "b", 3.2, baseTime)

	assert.Negative(t, Compare(lo, hi, model.DirectionMinimize))
	assert.Positive(t, Compare(hi, lo, model.DirectionMinimize))
}

func TestCompareTieBreakEarliestWins(t *testing.T) {
	early := sub("s1", "a", 1.0, baseTime)
	late := sub("s2", "b", 1.0, baseTime.Add(time.Hour))

	// Earliest submission wins the tie regardless of direction.
	assert.Negative(t, Compare(early, late, model.DirectionMaximize))
	assert.Negative(t, Compare(early, late, model.DirectionMinimize))
	assert.Positive(t, Compare(late, early, model.DirectionMaximize))
}

func TestCompareEqualScoreAndTime(t *testing.T) {
	a := sub("s1", "a", 1.0, baseTime)
	b := sub("s2", "b", 1.0, baseTime)

	// Duplicate records compare equal; stable sorting preserves input order.
	assert.Zero(t, Compare(a, b, model.DirectionMaximize))
	assert.Zero(t, Compare(b, a, model.DirectionMinimize))
}
