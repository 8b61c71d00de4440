package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"
)

type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error
	GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, tx *sql.Tx, submissionID string, status model.SubmissionStatus) error
	// ApplyEvaluationResult records the terminal outcome of grading.
	// The update only matches non-terminal rows; a submission that is
	// already terminal yields common.ErrConflict so duplicate webhook
	// deliveries can never rewrite a recorded status/score pair.
	ApplyEvaluationResult(ctx context.Context, tx *sql.Tx, submissionID string, status model.SubmissionStatus, publicScore *float64, runtimeMs *int, details *string) error

	ListSubmissionsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error)
	ListSubmissionsForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error)

	// ListSubmissionsForRanking returns the full submission history the
	// leaderboard engine consumes, in a stable order.
	ListSubmissionsForRanking(ctx context.Context) ([]*model.Submission, error)
	// RankingFingerprint cheaply summarizes the submission history so
	// callers can cache computed leaderboards per snapshot.
	RankingFingerprint(ctx context.Context) (time.Time, int, error)
}

type pgSubmissionRepository struct {
	db *sql.DB
}

func NewPgSubmissionRepository(db *sql.DB) SubmissionRepository {
	return &pgSubmissionRepository{db: db}
}

func (r *pgSubmissionRepository) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	query := `INSERT INTO submissions (id, problem_id, user_id, status, is_official, content, submitted_at)
	          VALUES ($1, $2, $3, $4, $5, $6, CURRENT_TIMESTAMP)
	          RETURNING submitted_at, updated_at`

	var row *sql.Row
	if tx != nil {
		row = tx.QueryRowContext(ctx, query, sub.ID, sub.ProblemID, sub.UserID, sub.Status, sub.IsOfficial, sub.Content)
	} else {
		row = r.db.QueryRowContext(ctx, query, sub.ID, sub.ProblemID, sub.UserID, sub.Status, sub.IsOfficial, sub.Content)
	}
	if err := row.Scan(&sub.SubmittedAt, &sub.UpdatedAt); err != nil {
		return fmt.Errorf("pgSubmissionRepository.CreateSubmission: %w", err)
	}
	return nil
}

const submissionSelectColumns = `
        SELECT s.id, s.problem_id, s.user_id, u.username,
               s.status, s.public_score, s.runtime_ms, s.evaluation_details,
               s.is_official, s.content, s.submitted_at, s.updated_at
        FROM submissions s
        JOIN users u ON s.user_id = u.id`

func (r *pgSubmissionRepository) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	sub := &model.Submission{}
	err := r.db.QueryRowContext(ctx, submissionSelectColumns+` WHERE s.id = $1`, id).Scan(
		&sub.ID, &sub.ProblemID, &sub.UserID, &sub.Username,
		&sub.Status, &sub.PublicScore, &sub.RuntimeMs, &sub.EvaluationDetails,
		&sub.IsOfficial, &sub.Content, &sub.SubmittedAt, &sub.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgSubmissionRepository.GetSubmissionByID: %w", err)
	}
	return sub, nil
}

func (r *pgSubmissionRepository) UpdateSubmissionStatus(ctx context.Context, tx *sql.Tx, submissionID string, status model.SubmissionStatus) error {
	query := `UPDATE submissions SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, submissionID)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, submissionID)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.UpdateSubmissionStatus: %w", err)
	}
	return nil
}

func (r *pgSubmissionRepository) ApplyEvaluationResult(ctx context.Context, tx *sql.Tx, submissionID string, status model.SubmissionStatus, publicScore *float64, runtimeMs *int, details *string) error {
	// The status guard makes the write race-safe: a duplicate delivery
	// that lost the race matches zero rows instead of overwriting a
	// terminal status/score pair.
	query := `UPDATE submissions
	          SET status = $1, public_score = $2, runtime_ms = $3, evaluation_details = $4, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $5 AND status IN ('pending', 'running')`
	var res sql.Result
	var err error
	if tx != nil {
		res, err = tx.ExecContext(ctx, query, status, publicScore, runtimeMs, details, submissionID)
	} else {
		res, err = r.db.ExecContext(ctx, query, status, publicScore, runtimeMs, details, submissionID)
	}
	if err != nil {
		return fmt.Errorf("pgSubmissionRepository.ApplyEvaluationResult: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("submission %s is already terminal: %w", submissionID, common.ErrConflict)
	}
	return nil
}

func (r *pgSubmissionRepository) ListSubmissionsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error) {
	return r.list(ctx, ` WHERE s.user_id = $1`, []interface{}{userID}, limit, offset)
}

func (r *pgSubmissionRepository) ListSubmissionsForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error) {
	return r.list(ctx, ` WHERE s.user_id = $1 AND s.problem_id = $2`, []interface{}{userID, problemID}, limit, offset)
}

func (r *pgSubmissionRepository) list(ctx context.Context, where string, args []interface{}, limit, offset int) ([]model.Submission, int, error) {
	countQuery := `SELECT COUNT(*) FROM submissions s` + where
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.list count: %w", err)
	}

	query := fmt.Sprintf("%s%s ORDER BY s.submitted_at DESC, s.id LIMIT $%d OFFSET $%d",
		submissionSelectColumns, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.list query: %w", err)
	}
	defer rows.Close()

	subs := []model.Submission{}
	for rows.Next() {
		var s model.Submission
		if err := rows.Scan(
			&s.ID, &s.ProblemID, &s.UserID, &s.Username,
			&s.Status, &s.PublicScore, &s.RuntimeMs, &s.EvaluationDetails,
			&s.IsOfficial, &s.Content, &s.SubmittedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgSubmissionRepository.list scan: %w", err)
		}
		s.Content = "" // Not needed in listings
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgSubmissionRepository.list rows: %w", err)
	}
	return subs, total, nil
}

// ListSubmissionsForRanking skips submission content and orders by
// (submitted_at, id) so the engine always sees the same sequence for
// the same data.
func (r *pgSubmissionRepository) ListSubmissionsForRanking(ctx context.Context) ([]*model.Submission, error) {
	query := `
        SELECT s.id, s.problem_id, s.user_id, u.username,
               s.status, s.public_score, s.is_official, s.submitted_at, s.updated_at
        FROM submissions s
        JOIN users u ON s.user_id = u.id
        ORDER BY s.submitted_at, s.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListSubmissionsForRanking: %w", err)
	}
	defer rows.Close()

	subs := []*model.Submission{}
	for rows.Next() {
		s := &model.Submission{}
		if err := rows.Scan(
			&s.ID, &s.ProblemID, &s.UserID, &s.Username,
			&s.Status, &s.PublicScore, &s.IsOfficial, &s.SubmittedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("pgSubmissionRepository.ListSubmissionsForRanking scan: %w", err)
		}
		subs = append(subs, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgSubmissionRepository.ListSubmissionsForRanking rows: %w", err)
	}
	return subs, nil
}

func (r *pgSubmissionRepository) RankingFingerprint(ctx context.Context) (time.Time, int, error) {
	query := `SELECT COALESCE(MAX(updated_at), 'epoch'::timestamptz), COUNT(*) FROM submissions`
	var maxUpdated time.Time
	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&maxUpdated, &count); err != nil {
		return time.Time{}, 0, fmt.Errorf("pgSubmissionRepository.RankingFingerprint: %w", err)
	}
	return maxUpdated, count, nil
}
