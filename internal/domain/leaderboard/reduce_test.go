package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ml_arena/internal/domain/model"
)

func TestBestPerUserKeepsBestScore(t *testing.T) {
	subs := []*model.Submission{
		sub("s1", "a", 0.90, baseTime),
		sub("s2", "b", 0.95, baseTime.Add(time.Minute)),
		sub("s3", "a", 0.92, baseTime.Add(2*time.Minute)),
	}

	best := BestPerUser(subs, model.DirectionMaximize)
	require.Len(t, best, 2)
	// First-seen user order is preserved.
	assert.Equal(t, "s3", best[0].ID)
	assert.Equal(t, "s2", best[1].ID)
}

func TestBestPerUserMinimize(t *testing.T) {
	subs := []*model.Submission{
		sub("s1", "a", 4.0, baseTime),
		sub("s2", "a", 2.5, baseTime.Add(time.Minute)),
		sub("s3", "a", 3.0, baseTime.Add(2*time.Minute)),
	}

	best := BestPerUser(subs, model.DirectionMinimize)
	require.Len(t, best, 1)
	assert.Equal(t, "s2", best[0].ID)
}

func TestBestPerUserTieKeepsEarliest(t *testing.T) {
	subs := []*model.Submission{
		sub("s1", "a", 1.0, baseTime.Add(time.Hour)),
		sub("s2", "a", 1.0, baseTime),
	}

	best := BestPerUser(subs, model.DirectionMaximize)
	require.Len(t, best, 1)
	assert.Equal(t, "s2", best[0].ID)
}

func TestBestPerUserDuplicateRecordsKeepFirst(t *testing.T) {
	first := sub("s1", "a", 1.0, baseTime)
	dupe := sub("s2", "a", 1.0, baseTime)

	best := BestPerUser([]*model.Submission{first, dupe}, model.DirectionMaximize)
	require.Len(t, best, 1)
	assert.Equal(t, "s1", best[0].ID)
}

func TestBestPerUserEmpty(t *testing.T) {
	assert.Empty(t, BestPerUser(nil, model.DirectionMaximize))
}
