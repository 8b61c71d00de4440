package leaderboard

import (
	"ml_arena/internal/domain/model"
)

// Compute builds the leaderboard for every problem in the snapshot.
// The result maps problem ID to entries ordered ascending by rank.
//
// A problem with no primary metric, an unknown metric ID, or zero
// eligible submissions gets an empty (non-nil) list; it never blocks
// sibling problems from being computed. Compute only reads its inputs
// and returns no error: given well-formed model values it is total.
func Compute(subs []*model.Submission, problems []*model.Problem, metrics []*model.Metric) map[string][]model.LeaderboardEntry {
	metricsByID := make(map[string]*model.Metric, len(metrics))
	for _, m := range metrics {
		if m != nil {
			metricsByID[m.ID] = m
		}
	}

	boards := make(map[string][]model.LeaderboardEntry, len(problems))
	for _, p := range problems {
		if p == nil || p.ID == "" {
			continue
		}
		boards[p.ID] = computeOne(subs, p, metricsByID)
	}
	return boards
}

func computeOne(subs []*model.Submission, p *model.Problem, metricsByID map[string]*model.Metric) []model.LeaderboardEntry {
	if p.PrimaryMetricID == nil {
		return []model.LeaderboardEntry{}
	}
	metric, ok := metricsByID[*p.PrimaryMetricID]
	if !ok {
		return []model.LeaderboardEntry{}
	}

	var eligible []*model.Submission
	for _, sub := range subs {
		if sub != nil && sub.ProblemID == p.ID && Eligible(sub) {
			eligible = append(eligible, sub)
		}
	}
	if len(eligible) == 0 {
		return []model.LeaderboardEntry{}
	}

	best := BestPerUser(eligible, metric.Direction)
	return AssignRanks(best, metric.Direction)
}
