package leaderboard

import (
	"ml_arena/internal/domain/model"
)

// BestPerUser collapses eligible submissions into each competitor's
// single best attempt in one linear pass. The result holds exactly one
// submission per distinct user, ordered by each user's first appearance
// in the input. That ordering, not Go map iteration, is what downstream
// sorting sees, which keeps the whole pipeline deterministic.
//
// All submissions must already have passed Eligible.
func BestPerUser(subs []*model.Submission, dir model.Direction) []*model.Submission {
	bestIdx := make(map[string]int, len(subs))
	best := make([]*model.Submission, 0, len(subs))

	for _, sub := range subs {
		i, seen := bestIdx[sub.UserID]
		if !seen {
			bestIdx[sub.UserID] = len(best)
			best = append(best, sub)
			continue
		}
		// Strictly-better only: on equal score and timestamp the
		// earlier record is kept, matching input order.
		if Compare(sub, best[i], dir) < 0 {
			best[i] = sub
		}
	}
	return best
}
