package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/dataset"
	"ml_arena/internal/domain/model"
	"ml_arena/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

type ProblemService struct {
	problemRepo repository.ProblemRepository
	metricRepo  repository.MetricRepository
	db          *sql.DB
}

func NewProblemService(problemRepo repository.ProblemRepository, metricRepo repository.MetricRepository, db *sql.DB) *ProblemService {
	return &ProblemService{problemRepo: problemRepo, metricRepo: metricRepo, db: db}
}

type DatasetInput struct {
	Split    model.DatasetSplit `json:"split"`
	FileName string             `json:"filename"`
	Path     string             `json:"path"`
}

type CreateProblemRequest struct {
	Name             string                  `json:"name"`
	Difficulty       model.ProblemDifficulty `json:"difficulty"`
	Content          string                  `json:"content"`
	ProblemType      model.ProblemType       `json:"problem_type"`
	PrimaryMetricID  *string                 `json:"primary_metric_id,omitempty"`
	EvaluationScript string                  `json:"evaluation_script"`
	Datasets         []DatasetInput          `json:"datasets"`
}

func (s *ProblemService) CreateProblem(ctx context.Context, authorID string, req CreateProblemRequest) (*model.Problem, error) {
	if req.Name == "" || req.Content == "" {
		return nil, common.Errorf("name and content are required: %w", common.ErrValidation)
	}

	datasets, err := validateDatasets(req.Datasets)
	if err != nil {
		return nil, err
	}

	// The primary metric drives ranking; creating a problem without one
	// is allowed but its leaderboard stays empty until one is linked.
	if req.PrimaryMetricID != nil {
		if _, err := s.metricRepo.FindMetricByID(ctx, *req.PrimaryMetricID); err != nil {
			return nil, common.Errorf("primary metric not found: %w", common.ErrValidation)
		}
	}

	problem := &model.Problem{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Slug:             slug.Make(req.Name),
		Difficulty:       req.Difficulty,
		Content:          req.Content,
		ProblemType:      req.ProblemType,
		AuthorID:         authorID,
		PrimaryMetricID:  req.PrimaryMetricID,
		EvaluationScript: req.EvaluationScript,
		Datasets:         datasets,
	}

	if err := s.problemRepo.CreateProblem(ctx, nil, problem); err != nil {
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}
	return problem, nil
}

type UpdateProblemRequest struct {
	Name             *string                  `json:"name,omitempty"`
	Difficulty       *model.ProblemDifficulty `json:"difficulty,omitempty"`
	Content          *string                  `json:"content,omitempty"`
	PrimaryMetricID  *string                  `json:"primary_metric_id,omitempty"`
	EvaluationScript *string                  `json:"evaluation_script,omitempty"`
	Datasets         []DatasetInput           `json:"datasets,omitempty"`
}

func (s *ProblemService) UpdateProblem(ctx context.Context, requesterID, requesterRole, problemID string, req UpdateProblemRequest) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}
	if requesterRole != model.RoleAdmin && problem.AuthorID != requesterID {
		return nil, common.Errorf("only the author or an admin may edit a problem: %w", common.ErrForbidden)
	}

	if req.Name != nil {
		problem.Name = *req.Name
		problem.Slug = slug.Make(*req.Name)
	}
	if req.Difficulty != nil {
		problem.Difficulty = *req.Difficulty
	}
	if req.Content != nil {
		problem.Content = *req.Content
	}
	if req.PrimaryMetricID != nil {
		if _, err := s.metricRepo.FindMetricByID(ctx, *req.PrimaryMetricID); err != nil {
			return nil, common.Errorf("primary metric not found: %w", common.ErrValidation)
		}
		problem.PrimaryMetricID = req.PrimaryMetricID
	}
	if req.EvaluationScript != nil {
		problem.EvaluationScript = *req.EvaluationScript
	}
	if req.Datasets != nil {
		datasets, err := validateDatasets(req.Datasets)
		if err != nil {
			return nil, err
		}
		problem.Datasets = datasets
	}

	if err := s.problemRepo.UpdateProblem(ctx, nil, problem); err != nil {
		return nil, fmt.Errorf("failed to update problem: %w", err)
	}
	return problem, nil
}

// GetProblemDetails returns the problem with its dataset listing
// filtered for the requester: the ground_truth split is only present
// for the author or an admin.
func (s *ProblemService) GetProblemDetails(ctx context.Context, slugOrID, requesterID, requesterRole string) (*model.Problem, error) {
	problem, err := s.problemRepo.FindProblemBySlug(ctx, slugOrID)
	if errors.Is(err, common.ErrNotFound) {
		problem, err = s.problemRepo.FindProblemByID(ctx, slugOrID)
	}
	if err != nil {
		return nil, err
	}

	// Filter on a copy; the repository may hand out shared records and
	// the stored dataset listing must survive a stranger's view.
	view := *problem
	view.Datasets = dataset.Visible(problem, requesterID, requesterRole)
	return &view, nil
}

func (s *ProblemService) ListProblems(ctx context.Context, page, pageSize int, difficulty model.ProblemDifficulty, searchTerm string) ([]model.Problem, int, error) {
	offset := (page - 1) * pageSize
	return s.problemRepo.ListProblems(ctx, pageSize, offset, difficulty, searchTerm)
}

// SetFrozen toggles whether a problem accepts new submissions. Already
// accepted submissions keep ranking; freezing only gates intake.
func (s *ProblemService) SetFrozen(ctx context.Context, requesterRole, problemID string, frozen bool) error {
	if requesterRole != model.RoleAdmin {
		return common.Errorf("only admins may freeze problems: %w", common.ErrForbidden)
	}
	return s.problemRepo.SetFrozen(ctx, problemID, frozen)
}

type DatasetFile struct {
	FileName string
	Content  []byte
}

// ReadDataset loads one split's file for download, enforcing the same
// visibility rule as the listing: ground_truth is refused unless the
// requester owns or administers the problem.
func (s *ProblemService) ReadDataset(ctx context.Context, problemID, split, requesterID, requesterRole string) (*DatasetFile, error) {
	problem, err := s.problemRepo.FindProblemByID(ctx, problemID)
	if err != nil {
		return nil, err
	}

	visible := dataset.Visible(problem, requesterID, requesterRole)
	var entry *model.Dataset
	for i := range visible {
		if string(visible[i].Split) == split {
			entry = &visible[i]
			break
		}
	}
	if entry == nil {
		for _, d := range problem.Datasets {
			if string(d.Split) == split {
				return nil, common.Errorf("dataset split is not downloadable: %w", common.ErrForbidden)
			}
		}
		return nil, common.ErrNotFound
	}

	content, err := os.ReadFile(entry.Path)
	if err != nil {
		return nil, common.Errorf("dataset file unavailable: %w", common.ErrNotFound)
	}
	return &DatasetFile{FileName: entry.FileName, Content: content}, nil
}

func validateDatasets(inputs []DatasetInput) ([]model.Dataset, error) {
	datasets := make([]model.Dataset, 0, len(inputs))
	seen := make(map[model.DatasetSplit]bool, len(inputs))
	for _, in := range inputs {
		switch in.Split {
		case model.SplitTrain, model.SplitPublicTest, model.SplitGroundTruth:
		default:
			return nil, common.Errorf("unknown dataset split %q: %w", in.Split, common.ErrValidation)
		}
		if seen[in.Split] {
			return nil, common.Errorf("duplicate dataset split %q: %w", in.Split, common.ErrValidation)
		}
		seen[in.Split] = true

		fileName := in.FileName
		if fileName == "" {
			fileName = string(in.Split) + ".csv"
		}
		datasets = append(datasets, model.Dataset{Split: in.Split, FileName: fileName, Path: in.Path})
	}
	return datasets, nil
}
