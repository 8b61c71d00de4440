// Package leaderboard computes per-problem rankings from a read-only
// snapshot of submissions, problems and metrics. Everything in here is
// a pure function: no I/O, no clock reads, no mutation of its inputs,
// so identical snapshots always produce identical leaderboards.
package leaderboard

import (
	"ml_arena/internal/domain/model"
)

// Compare orders two ranking-eligible submissions under the given
// metric direction. It returns a negative value when a ranks ahead of
// b, positive when b ranks ahead, and 0 when both score and timestamp
// are equal. A better score wins first (larger for maximize, smaller
// for minimize); on equal scores the earlier submission wins.
//
// Both submissions must have passed Eligible, so PublicScore is
// non-nil and finite. Callers breaking ties on 0 must use a stable
// sort or a first-wins reduce; Compare itself never reorders equals.
func Compare(a, b *model.Submission, dir model.Direction) int {
	as, bs := *a.PublicScore, *b.PublicScore
	if as != bs {
		better := as > bs
		if dir == model.DirectionMinimize {
			better = as < bs
		}
		if better {
			return -1
		}
		return 1
	}
	return a.SubmittedAt.Compare(b.SubmittedAt)
}
