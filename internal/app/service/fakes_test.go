package service

import (
	"context"
	"database/sql"
	"time"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"
)

// stubSubmissionRepo satisfies SubmissionRepository with inert defaults
// so test fakes only override the methods under test.
type stubSubmissionRepo struct{}

func (stubSubmissionRepo) CreateSubmission(ctx context.Context, tx *sql.Tx, sub *model.Submission) error {
	return nil
}

func (stubSubmissionRepo) GetSubmissionByID(ctx context.Context, id string) (*model.Submission, error) {
	return nil, common.ErrNotFound
}

func (stubSubmissionRepo) UpdateSubmissionStatus(ctx context.Context, tx *sql.Tx, submissionID string, status model.SubmissionStatus) error {
	return nil
}

func (stubSubmissionRepo) ApplyEvaluationResult(ctx context.Context, tx *sql.Tx, submissionID string, status model.SubmissionStatus, publicScore *float64, runtimeMs *int, details *string) error {
	return nil
}

func (stubSubmissionRepo) ListSubmissionsByUser(ctx context.Context, userID string, limit, offset int) ([]model.Submission, int, error) {
	return nil, 0, nil
}

func (stubSubmissionRepo) ListSubmissionsForUserProblem(ctx context.Context, userID, problemID string, limit, offset int) ([]model.Submission, int, error) {
	return nil, 0, nil
}

func (stubSubmissionRepo) ListSubmissionsForRanking(ctx context.Context) ([]*model.Submission, error) {
	return nil, nil
}

func (stubSubmissionRepo) RankingFingerprint(ctx context.Context) (time.Time, int, error) {
	return time.Time{}, 0, nil
}

// fakeSubmissionRepo serves a fixed ranking snapshot.
type fakeSubmissionRepo struct {
	stubSubmissionRepo
	submissions []*model.Submission
}

func (f *fakeSubmissionRepo) ListSubmissionsForRanking(ctx context.Context) ([]*model.Submission, error) {
	return f.submissions, nil
}

func (f *fakeSubmissionRepo) RankingFingerprint(ctx context.Context) (time.Time, int, error) {
	var max time.Time
	for _, s := range f.submissions {
		if s.UpdatedAt.After(max) {
			max = s.UpdatedAt
		}
	}
	return max, len(f.submissions), nil
}

type fakeProblemRepo struct {
	problems []*model.Problem
}

func (f *fakeProblemRepo) CreateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error {
	f.problems = append(f.problems, problem)
	return nil
}

func (f *fakeProblemRepo) UpdateProblem(ctx context.Context, tx *sql.Tx, problem *model.Problem) error {
	return nil
}

func (f *fakeProblemRepo) FindProblemByID(ctx context.Context, id string) (*model.Problem, error) {
	for _, p := range f.problems {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProblemRepo) FindProblemBySlug(ctx context.Context, slug string) (*model.Problem, error) {
	for _, p := range f.problems {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeProblemRepo) ListProblems(ctx context.Context, limit, offset int, difficulty model.ProblemDifficulty, searchTerm string) ([]model.Problem, int, error) {
	out := make([]model.Problem, 0, len(f.problems))
	for _, p := range f.problems {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (f *fakeProblemRepo) ListProblemsForRanking(ctx context.Context) ([]*model.Problem, error) {
	return f.problems, nil
}

func (f *fakeProblemRepo) SetFrozen(ctx context.Context, id string, frozen bool) error {
	p, err := f.FindProblemByID(ctx, id)
	if err != nil {
		return err
	}
	p.IsFrozen = frozen
	return nil
}

type fakeUserRepo struct {
	users []*model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	for _, u := range f.users {
		if u.Username == user.Username || u.Email == user.Email {
			return common.ErrConflict
		}
	}
	f.users = append(f.users, user)
	return nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Email == email })
}

func (f *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.Username == username })
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	return f.find(func(u *model.User) bool { return u.ID == id })
}

func (f *fakeUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	for _, u := range f.users {
		if match(u) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, common.ErrNotFound
}

type fakeMetricRepo struct {
	metrics []model.Metric
}

func (f *fakeMetricRepo) CreateMetric(ctx context.Context, metric *model.Metric) error {
	f.metrics = append(f.metrics, *metric)
	return nil
}

func (f *fakeMetricRepo) FindMetricByID(ctx context.Context, id string) (*model.Metric, error) {
	for i := range f.metrics {
		if f.metrics[i].ID == id {
			return &f.metrics[i], nil
		}
	}
	return nil, common.ErrNotFound
}

func (f *fakeMetricRepo) ListMetrics(ctx context.Context) ([]model.Metric, error) {
	return f.metrics, nil
}
