package model

import (
	"time"
)

type ProblemDifficulty string
type ProblemType string
type DatasetSplit string

const (
	DifficultyEasy   ProblemDifficulty = "easy"
	DifficultyMedium ProblemDifficulty = "medium"
	DifficultyHard   ProblemDifficulty = "hard"

	ProblemTypeClassification ProblemType = "classification"
	ProblemTypeRegression     ProblemType = "regression"

	SplitTrain       DatasetSplit = "train"
	SplitPublicTest  DatasetSplit = "public_test"
	SplitGroundTruth DatasetSplit = "ground_truth"
)

// Dataset is one file of a problem's data listing. The ground_truth
// split holds the hidden answers submissions are scored against and is
// visible only to the problem's author or an admin.
type Dataset struct {
	Split    DatasetSplit `json:"split"`
	FileName string       `json:"filename"`
	Path     string       `json:"-"` // Storage location; never exposed
}

type Problem struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	Slug             string            `json:"slug"`
	Difficulty       ProblemDifficulty `json:"difficulty"`
	Content          string            `json:"content"`
	ProblemType      ProblemType       `json:"problem_type"`
	AuthorID         string            `json:"author_id"`
	AuthorUsername   *string           `json:"author_username,omitempty"` // For display
	PrimaryMetricID  *string           `json:"primary_metric_id,omitempty"`
	IsFrozen         bool              `json:"is_frozen"` // Blocks new submissions, not ranking
	EvaluationScript string            `json:"-"`         // Sent to the evaluator, never to clients
	Datasets         []Dataset         `json:"datasets,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}
