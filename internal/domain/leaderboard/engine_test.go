package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ml_arena/internal/domain/model"
)

func metricID(id string) *string { return &id }

func accuracy() *model.Metric {
	return &model.Metric{ID: "m-acc", Key: "accuracy", Direction: model.DirectionMaximize}
}

func rmse() *model.Metric {
	return &model.Metric{ID: "m-rmse", Key: "rmse", Direction: model.DirectionMinimize}
}

func problem(id string, primaryMetric *string) *model.Problem {
	return &model.Problem{ID: id, Name: "Problem " + id, AuthorID: "author", PrimaryMetricID: primaryMetric}
}

func problemSub(id, problemID, userID string, score float64, at time.Time) *model.Submission {
	s := sub(id, userID, score, at)
	s.ProblemID = problemID
	return s
}

func TestComputeMaximizeBestPerUser(t *testing.T) {
	// UserA 0.90 then 0.92, UserB 0.95: B ranks first, A's later 0.92 counts.
	subs := []*model.Submission{
		problemSub("s1", "p1", "a", 0.90, baseTime),
		problemSub("s2", "p1", "b", 0.95, baseTime.Add(10*time.Minute)),
		problemSub("s3", "p1", "a", 0.92, baseTime.Add(20*time.Minute)),
	}
	problems := []*model.Problem{problem("p1", metricID("m-acc"))}
	metrics := []*model.Metric{accuracy()}

	boards := Compute(subs, problems, metrics)
	entries := boards["p1"]
	require.Len(t, entries, 2)

	assert.Equal(t, model.LeaderboardEntry{
		Rank: 1, Username: "user-b", Score: 0.95, SubmissionID: "s2", SubmittedAt: baseTime.Add(10 * time.Minute),
	}, entries[0])
	assert.Equal(t, model.LeaderboardEntry{
		Rank: 2, Username: "user-a", Score: 0.92, SubmissionID: "s3", SubmittedAt: baseTime.Add(20 * time.Minute),
	}, entries[1])
}

func TestComputeMinimizeTieBreak(t *testing.T) {
	// Equal rmse 5.0: the earlier submission (UserB) takes rank 1.
	subs := []*model.Submission{
		problemSub("s1", "p1", "a", 5.0, baseTime.Add(5*time.Minute)),
		problemSub("s2", "p1", "b", 5.0, baseTime.Add(3*time.Minute)),
	}
	problems := []*model.Problem{problem("p1", metricID("m-rmse"))}
	metrics := []*model.Metric{rmse()}

	entries := Compute(subs, problems, metrics)["p1"]
	require.Len(t, entries, 2)
	assert.Equal(t, "user-b", entries[0].Username)
	assert.Equal(t, "user-a", entries[1].Username)
}

func TestComputeDeterministic(t *testing.T) {
	subs := []*model.Submission{
		problemSub("s1", "p1", "a", 1.0, baseTime),
		problemSub("s2", "p1", "b", 1.0, baseTime),
		problemSub("s3", "p1", "c", 1.0, baseTime),
		problemSub("s4", "p2", "d", 2.0, baseTime),
	}
	problems := []*model.Problem{problem("p1", metricID("m-acc")), problem("p2", metricID("m-acc"))}
	metrics := []*model.Metric{accuracy()}

	first := Compute(subs, problems, metrics)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Compute(subs, problems, metrics))
	}
	// All-equal scores and timestamps keep input order through the stable sort.
	entries := first["p1"]
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"s1", "s2", "s3"},
		[]string{entries[0].SubmissionID, entries[1].SubmissionID, entries[2].SubmissionID})
}

func TestComputeExcludesIneligible(t *testing.T) {
	failed := problemSub("s1", "p1", "a", 0.9, baseTime)
	failed.Status = model.StatusFailed
	noScore := problemSub("s2", "p1", "b", 0, baseTime)
	noScore.PublicScore = nil
	practice := problemSub("s3", "p1", "c", 0.99, baseTime)
	practice.IsOfficial = false
	good := problemSub("s4", "p1", "d", 0.5, baseTime)

	boards := Compute([]*model.Submission{failed, noScore, practice, good},
		[]*model.Problem{problem("p1", metricID("m-acc"))}, []*model.Metric{accuracy()})

	entries := boards["p1"]
	require.Len(t, entries, 1)
	assert.Equal(t, "s4", entries[0].SubmissionID)
}

func TestComputeUniqueUsernames(t *testing.T) {
	var subs []*model.Submission
	for i, id := range []string{"s1", "s2", "s3", "s4", "s5"} {
		user := []string{"a", "b", "a", "b", "a"}[i]
		subs = append(subs, problemSub(id, "p1", user, float64(i), baseTime.Add(time.Duration(i)*time.Minute)))
	}

	entries := Compute(subs, []*model.Problem{problem("p1", metricID("m-acc"))}, []*model.Metric{accuracy()})["p1"]
	require.Len(t, entries, 2)
	assert.NotEqual(t, entries[0].Username, entries[1].Username)
}

func TestComputeProblemWithoutSubmissions(t *testing.T) {
	boards := Compute(nil, []*model.Problem{problem("p1", metricID("m-acc"))}, []*model.Metric{accuracy()})
	require.Contains(t, boards, "p1")
	assert.NotNil(t, boards["p1"])
	assert.Empty(t, boards["p1"])
}

func TestComputeProblemWithoutMetric(t *testing.T) {
	// p1 has no primary metric, p2 points at a metric that does not
	// exist; both yield empty boards while p3 computes normally.
	subs := []*model.Submission{
		problemSub("s1", "p1", "a", 0.9, baseTime),
		problemSub("s2", "p2", "a", 0.9, baseTime),
		problemSub("s3", "p3", "a", 0.9, baseTime),
	}
	problems := []*model.Problem{
		problem("p1", nil),
		problem("p2", metricID("m-gone")),
		problem("p3", metricID("m-acc")),
	}

	boards := Compute(subs, problems, []*model.Metric{accuracy()})
	assert.Empty(t, boards["p1"])
	assert.Empty(t, boards["p2"])
	require.Len(t, boards["p3"], 1)
	assert.Equal(t, 1, boards["p3"][0].Rank)
}

func TestComputeEmptySnapshot(t *testing.T) {
	boards := Compute(nil, nil, nil)
	assert.NotNil(t, boards)
	assert.Empty(t, boards)
}
