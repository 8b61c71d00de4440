package service

import (
	"context"
	"testing"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubmissionValidation(t *testing.T) {
	problems := &fakeProblemRepo{problems: []*model.Problem{
		{ID: "p1", Slug: "p1"},
		{ID: "p-frozen", Slug: "p-frozen", IsFrozen: true},
	}}
	svc := NewSubmissionService(&fakeSubmissionRepo{}, problems, nil, nil)

	_, err := svc.CreateSubmission(context.Background(), "u1", CreateSubmissionRequest{Content: "id,y\n"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.CreateSubmission(context.Background(), "u1", CreateSubmissionRequest{ProblemID: "p1"})
	assert.ErrorIs(t, err, common.ErrBadRequest)

	_, err = svc.CreateSubmission(context.Background(), "u1", CreateSubmissionRequest{ProblemID: "ghost", Content: "id,y\n"})
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = svc.CreateSubmission(context.Background(), "u1", CreateSubmissionRequest{ProblemID: "p-frozen", Content: "id,y\n"})
	assert.ErrorIs(t, err, common.ErrFrozen)
}

func TestGetSubmissionOwnership(t *testing.T) {
	repo := &webhookSubRepo{submission: &model.Submission{
		ID:      "s1",
		UserID:  "owner",
		Status:  model.StatusSucceeded,
		Content: "id,y\n1,2\n",
	}}
	svc := NewSubmissionService(repo, &fakeProblemRepo{}, nil, nil)

	sub, err := svc.GetSubmission(context.Background(), "owner", model.RoleUser, "s1")
	require.NoError(t, err)
	assert.Empty(t, sub.Content, "raw predictions stay internal")

	_, err = svc.GetSubmission(context.Background(), "someone-else", model.RoleUser, "s1")
	assert.ErrorIs(t, err, common.ErrForbidden)

	_, err = svc.GetSubmission(context.Background(), "someone-else", model.RoleAdmin, "s1")
	assert.NoError(t, err)
}
