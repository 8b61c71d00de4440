package service

import (
	"context"
	"database/sql"
	"log"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"
	"ml_arena/internal/domain/repository"
	"ml_arena/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	rdb            *redis.Client
	db             *sql.DB // For transactions
}

func NewSubmissionService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	rdb *redis.Client,
	db *sql.DB,
) *SubmissionService {
	return &SubmissionService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		rdb:            rdb,
		db:             db,
	}
}

type CreateSubmissionRequest struct {
	ProblemID string `json:"problem_id"`
	Content   string `json:"content"`  // Predictions CSV
	Practice  bool   `json:"practice"` // Practice attempts are scored but never ranked
}

// CreateSubmission accepts one attempt and queues it for asynchronous
// grading. The record starts pending; the evaluation worker and the
// result webhook drive it to a terminal state. Frozen problems refuse
// new attempts here, at intake, which is the only freeze enforcement.
func (s *SubmissionService) CreateSubmission(ctx context.Context, userID string, req CreateSubmissionRequest) (*model.Submission, error) {
	if req.ProblemID == "" {
		return nil, common.Errorf("problem_id is required: %w", common.ErrBadRequest)
	}
	if req.Content == "" {
		return nil, common.Errorf("submission content is required: %w", common.ErrBadRequest)
	}

	problem, err := s.problemRepo.FindProblemByID(ctx, req.ProblemID)
	if err != nil {
		return nil, common.Errorf("problem not found: %w", err)
	}
	if problem.IsFrozen {
		return nil, common.Errorf("problem %s does not accept submissions: %w", problem.ID, common.ErrFrozen)
	}

	submission := &model.Submission{
		ID:         uuid.NewString(),
		ProblemID:  problem.ID,
		UserID:     userID,
		Status:     model.StatusPending,
		IsOfficial: !req.Practice,
		Content:    req.Content,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.submissionRepo.CreateSubmission(ctx, tx, submission); err != nil {
		return nil, common.Errorf("failed to create submission: %w", err)
	}

	// Queue push before commit: a failed push rolls the record back
	// rather than leaving an orphaned pending submission.
	if err := s.rdb.LPush(ctx, config.AppConfig.EvaluationQueueName, submission.ID).Err(); err != nil {
		return nil, common.Errorf("failed to enqueue submission for evaluation: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, common.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Submission %s for problem %s enqueued for evaluation.", submission.ID, problem.ID)
	return submission, nil
}

func (s *SubmissionService) GetSubmission(ctx context.Context, requesterID, requesterRole, submissionID string) (*model.Submission, error) {
	sub, err := s.submissionRepo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if requesterRole != model.RoleAdmin && sub.UserID != requesterID {
		return nil, common.ErrForbidden
	}
	sub.Content = "" // Raw CSV stays internal
	return sub, nil
}

func (s *SubmissionService) ListMySubmissions(ctx context.Context, userID string, page, pageSize int) ([]model.Submission, int, error) {
	offset := (page - 1) * pageSize
	return s.submissionRepo.ListSubmissionsByUser(ctx, userID, pageSize, offset)
}

func (s *SubmissionService) ListProblemHistory(ctx context.Context, userID, problemID string, page, pageSize int) ([]model.Submission, int, error) {
	offset := (page - 1) * pageSize
	return s.submissionRepo.ListSubmissionsForUserProblem(ctx, userID, problemID, pageSize, offset)
}
