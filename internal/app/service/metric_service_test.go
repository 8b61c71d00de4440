package service

import (
	"context"
	"testing"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateMetricRequiresAdmin(t *testing.T) {
	svc := NewMetricService(&fakeMetricRepo{})

	_, err := svc.CreateMetric(context.Background(), model.RoleUser, CreateMetricRequest{
		Key: "accuracy", Direction: model.DirectionMaximize,
	})
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestCreateMetricValidation(t *testing.T) {
	svc := NewMetricService(&fakeMetricRepo{})

	_, err := svc.CreateMetric(context.Background(), model.RoleAdmin, CreateMetricRequest{
		Direction: model.DirectionMaximize,
	})
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = svc.CreateMetric(context.Background(), model.RoleAdmin, CreateMetricRequest{
		Key: "rmse", Direction: "sideways",
	})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestCreateMetricAssignsID(t *testing.T) {
	repo := &fakeMetricRepo{}
	svc := NewMetricService(repo)

	metric, err := svc.CreateMetric(context.Background(), model.RoleAdmin, CreateMetricRequest{
		Key: "rmse", Direction: model.DirectionMinimize,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, metric.ID)
	assert.Equal(t, model.DirectionMinimize, metric.Direction)

	listed, err := svc.ListMetrics(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "rmse", listed[0].Key)
}
