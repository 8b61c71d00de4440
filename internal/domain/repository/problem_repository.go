package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type ProblemRepository interface {
	CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	UpdateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error
	FindProblemByID(ctx context.Context, id string) (*model.Problem, error)
	FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error)
	ListProblems(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty, searchTerm string) ([]model.Problem, int, error)
	ListProblemsForRanking(ctx context.Context) ([]*model.Problem, error)
	SetFrozen(ctx context.Context, id string, frozen bool) error
}

type pgProblemRepository struct {
	db *sql.DB
}

func NewPgProblemRepository(db *sql.DB) ProblemRepository {
	return &pgProblemRepository{db: db}
}

func (r *pgProblemRepository) CreateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	datasetsJSON, err := json.Marshal(p.Datasets)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.CreateProblem marshal datasets: %w", err)
	}

	query := `INSERT INTO problems (id, name, slug, difficulty, content, problem_type, author_id, primary_metric_id, is_frozen, evaluation_script, datasets)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	args := []interface{}{p.ID, p.Name, p.Slug, p.Difficulty, p.Content, p.ProblemType, p.AuthorID, p.PrimaryMetricID, p.IsFrozen, p.EvaluationScript, datasetsJSON}
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for slug
			return fmt.Errorf("problem with this slug already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgProblemRepository.CreateProblem: %w", err)
	}
	return nil
}

func (r *pgProblemRepository) UpdateProblem(ctx context.Context, tx *sql.Tx, p *model.Problem) error {
	datasetsJSON, err := json.Marshal(p.Datasets)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpdateProblem marshal datasets: %w", err)
	}

	query := `UPDATE problems SET
                name = $1, slug = $2, difficulty = $3, content = $4, problem_type = $5,
                primary_metric_id = $6, is_frozen = $7, evaluation_script = $8, datasets = $9,
                updated_at = CURRENT_TIMESTAMP
              WHERE id = $10`

	args := []interface{}{p.Name, p.Slug, p.Difficulty, p.Content, p.ProblemType, p.PrimaryMetricID, p.IsFrozen, p.EvaluationScript, datasetsJSON, p.ID}
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("pgProblemRepository.UpdateProblem: %w", err)
	}
	return nil
}

const problemSelectColumns = `
        SELECT p.id, p.name, p.slug, p.difficulty, p.content, p.problem_type,
               p.author_id, u.username as author_username,
               p.primary_metric_id, p.is_frozen, p.evaluation_script, p.datasets,
               p.created_at, p.updated_at
        FROM problems p
        LEFT JOIN users u ON p.author_id = u.id`

func (r *pgProblemRepository) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	return r.findOne(ctx, problemSelectColumns+` WHERE p.id = $1`, id)
}

func (r *pgProblemRepository) FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	return r.findOne(ctx, problemSelectColumns+` WHERE p.slug = $1`, slug)
}

func (r *pgProblemRepository) findOne(ctx context.Context, query, arg string) (*model.Problem, error) {
	problem := &model.Problem{}
	var datasetsJSON []byte
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&problem.ID, &problem.Name, &problem.Slug, &problem.Difficulty, &problem.Content, &problem.ProblemType,
		&problem.AuthorID, &problem.AuthorUsername,
		&problem.PrimaryMetricID, &problem.IsFrozen, &problem.EvaluationScript, &datasetsJSON,
		&problem.CreatedAt, &problem.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgProblemRepository.findOne: %w", err)
	}
	if len(datasetsJSON) > 0 {
		if err := json.Unmarshal(datasetsJSON, &problem.Datasets); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.findOne unmarshal datasets: %w", err)
		}
	}
	return problem, nil
}

func (r *pgProblemRepository) ListProblems(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty, searchTerm string) ([]model.Problem, int, error) {
	var baseQuery strings.Builder
	baseQuery.WriteString(`
        SELECT p.id, p.name, p.slug, p.difficulty, p.problem_type,
               p.author_id, u.username as author_username, p.primary_metric_id, p.is_frozen,
               p.created_at, p.updated_at
        FROM problems p
        LEFT JOIN users u ON p.author_id = u.id`)

	var countQuery strings.Builder
	countQuery.WriteString(`SELECT COUNT(*) FROM problems p`)

	var conditions []string
	var args []interface{}
	argID := 1

	if difficulty != "" {
		conditions = append(conditions, fmt.Sprintf("p.difficulty = $%d", argID))
		args = append(args, difficulty)
		argID++
	}
	if searchTerm != "" {
		conditions = append(conditions, fmt.Sprintf("(p.name ILIKE $%d OR p.content ILIKE $%d)", argID, argID+1))
		likeTerm := "%" + searchTerm + "%"
		args = append(args, likeTerm, likeTerm)
		argID += 2
	}

	if len(conditions) > 0 {
		whereClause := " WHERE " + strings.Join(conditions, " AND ")
		baseQuery.WriteString(whereClause)
		countQuery.WriteString(whereClause)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery.String(), args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems count: %w", err)
	}

	baseQuery.WriteString(fmt.Sprintf(" ORDER BY p.created_at DESC, p.id LIMIT $%d OFFSET $%d", argID, argID+1))
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems query: %w", err)
	}
	defer rows.Close()

	problems := []model.Problem{}
	for rows.Next() {
		var p model.Problem
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Slug, &p.Difficulty, &p.ProblemType,
			&p.AuthorID, &p.AuthorUsername, &p.PrimaryMetricID, &p.IsFrozen,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgProblemRepository.ListProblems rows: %w", err)
	}
	return problems, total, nil
}

// ListProblemsForRanking returns the slim projection the leaderboard
// engine needs, ordered by id so snapshots are reproducible.
func (r *pgProblemRepository) ListProblemsForRanking(ctx context.Context) ([]*model.Problem, error) {
	query := `SELECT id, author_id, primary_metric_id, is_frozen, updated_at
	          FROM problems ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblemsForRanking: %w", err)
	}
	defer rows.Close()

	problems := []*model.Problem{}
	for rows.Next() {
		p := &model.Problem{}
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.PrimaryMetricID, &p.IsFrozen, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgProblemRepository.ListProblemsForRanking scan: %w", err)
		}
		problems = append(problems, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgProblemRepository.ListProblemsForRanking rows: %w", err)
	}
	return problems, nil
}

func (r *pgProblemRepository) SetFrozen(ctx context.Context, id string, frozen bool) error {
	query := `UPDATE problems SET is_frozen = $1, updated_at = CURRENT_TIMESTAMP WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, frozen, id)
	if err != nil {
		return fmt.Errorf("pgProblemRepository.SetFrozen: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
