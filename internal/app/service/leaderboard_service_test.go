package service

import (
	"context"
	"testing"
	"time"

	"ml_arena/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankingFixture() (*fakeSubmissionRepo, *fakeProblemRepo, *fakeMetricRepo) {
	metricID := "m-acc"
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	metrics := &fakeMetricRepo{metrics: []model.Metric{
		{ID: metricID, Key: "accuracy", Direction: model.DirectionMaximize},
	}}
	problems := &fakeProblemRepo{problems: []*model.Problem{
		{ID: "prob-1", Slug: "digit-classifier", PrimaryMetricID: &metricID},
		{ID: "prob-empty", Slug: "untouched", PrimaryMetricID: &metricID},
	}}

	mk := func(id, userID string, score float64, offset time.Duration) *model.Submission {
		return &model.Submission{
			ID:          id,
			ProblemID:   "prob-1",
			UserID:      userID,
			Username:    "user-" + userID,
			Status:      model.StatusSucceeded,
			PublicScore: &score,
			IsOfficial:  true,
			SubmittedAt: base.Add(offset),
			UpdatedAt:   base.Add(offset),
		}
	}
	subs := &fakeSubmissionRepo{submissions: []*model.Submission{
		mk("s1", "alice", 0.82, 0),
		mk("s2", "bob", 0.90, time.Minute),
		mk("s3", "alice", 0.95, 2*time.Minute),
	}}
	return subs, problems, metrics
}

func TestComputeAllRanksEveryProblem(t *testing.T) {
	subs, problems, metrics := rankingFixture()
	svc := NewLeaderboardService(subs, problems, metrics, nil, 0)

	boards, err := svc.ComputeAll(context.Background())
	require.NoError(t, err)

	entries := boards["prob-1"]
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "user-alice", entries[0].Username)
	assert.Equal(t, 0.95, entries[0].Score)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "user-bob", entries[1].Username)

	assert.Empty(t, boards["prob-empty"])
}

func TestGetProblemLeaderboardUnknownProblem(t *testing.T) {
	subs, problems, metrics := rankingFixture()
	svc := NewLeaderboardService(subs, problems, metrics, nil, 0)

	_, err := svc.GetProblemLeaderboard(context.Background(), "prob-ghost")
	require.Error(t, err)
}

func TestGetProblemLeaderboardEmptyIsNotNil(t *testing.T) {
	subs, problems, metrics := rankingFixture()
	svc := NewLeaderboardService(subs, problems, metrics, nil, 0)

	entries, err := svc.GetProblemLeaderboard(context.Background(), "prob-empty")
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestComputeAllOnlyOfficialSucceededRank(t *testing.T) {
	subs, problems, metrics := rankingFixture()
	score := 0.99
	subs.submissions = append(subs.submissions,
		&model.Submission{
			ID: "practice", ProblemID: "prob-1", UserID: "carol", Username: "user-carol",
			Status: model.StatusSucceeded, PublicScore: &score, IsOfficial: false,
			SubmittedAt: time.Now(), UpdatedAt: time.Now(),
		},
		&model.Submission{
			ID: "broken", ProblemID: "prob-1", UserID: "dave", Username: "user-dave",
			Status: model.StatusFailed, PublicScore: &score, IsOfficial: true,
			SubmittedAt: time.Now(), UpdatedAt: time.Now(),
		},
	)
	svc := NewLeaderboardService(subs, problems, metrics, nil, 0)

	boards, err := svc.ComputeAll(context.Background())
	require.NoError(t, err)
	for _, e := range boards["prob-1"] {
		assert.NotEqual(t, "user-carol", e.Username)
		assert.NotEqual(t, "user-dave", e.Username)
	}
	assert.Len(t, boards["prob-1"], 2)
}
