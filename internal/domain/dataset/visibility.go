// Package dataset decides which of a problem's data files a requester
// may see. It is deliberately free of HTTP and auth plumbing: callers
// pass the requester's identity and role explicitly, so the rule is
// testable without standing up middleware.
package dataset

import (
	"ml_arena/internal/domain/model"
)

// Visible returns the problem's dataset listing with the ground_truth
// split removed unless the requester is an admin or the problem's
// author. An empty requesterID means anonymous and is treated exactly
// like any non-owner. Never panics; a nil problem yields nil.
func Visible(p *model.Problem, requesterID, requesterRole string) []model.Dataset {
	if p == nil {
		return nil
	}
	if requesterRole == model.RoleAdmin || (requesterID != "" && requesterID == p.AuthorID) {
		out := make([]model.Dataset, len(p.Datasets))
		copy(out, p.Datasets)
		return out
	}

	out := make([]model.Dataset, 0, len(p.Datasets))
	for _, d := range p.Datasets {
		if d.Split == model.SplitGroundTruth {
			continue
		}
		out = append(out, d)
	}
	return out
}
