package leaderboard

import (
	"slices"

	"ml_arena/internal/domain/model"
)

// AssignRanks sorts the best-per-user submissions with Compare and
// assigns dense 1-based ranks. Score ties are already broken by
// timestamp, so every entry gets a unique rank; there is no
// "1, 1, 3" style shared placement. The input slice is not modified.
func AssignRanks(best []*model.Submission, dir model.Direction) []model.LeaderboardEntry {
	ordered := make([]*model.Submission, len(best))
	copy(ordered, best)
	slices.SortStableFunc(ordered, func(a, b *model.Submission) int {
		return Compare(a, b, dir)
	})

	entries := make([]model.LeaderboardEntry, len(ordered))
	for i, sub := range ordered {
		entries[i] = model.LeaderboardEntry{
			Rank:         i + 1,
			Username:     sub.Username,
			Score:        *sub.PublicScore,
			SubmissionID: sub.ID,
			SubmittedAt:  sub.SubmittedAt,
		}
	}
	return entries
}
