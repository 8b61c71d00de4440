package model

type Direction string

const (
	DirectionMaximize Direction = "maximize"
	DirectionMinimize Direction = "minimize"
)

// Metric is the scoring rule a problem ranks by, e.g. accuracy
// (maximize) or rmse (minimize). A problem designates at most one
// metric as primary; without one its leaderboard is empty.
type Metric struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Direction Direction `json:"direction"`
}
