package service

import (
	"context"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"
	"ml_arena/internal/domain/repository"

	"github.com/google/uuid"
)

type MetricService struct {
	metricRepo repository.MetricRepository
}

func NewMetricService(metricRepo repository.MetricRepository) *MetricService {
	return &MetricService{metricRepo: metricRepo}
}

type CreateMetricRequest struct {
	Key       string          `json:"key"`
	Direction model.Direction `json:"direction"`
}

func (s *MetricService) CreateMetric(ctx context.Context, requesterRole string, req CreateMetricRequest) (*model.Metric, error) {
	if requesterRole != model.RoleAdmin {
		return nil, common.Errorf("only admins may create metrics: %w", common.ErrForbidden)
	}
	if req.Key == "" {
		return nil, common.Errorf("metric key is required: %w", common.ErrValidation)
	}
	switch req.Direction {
	case model.DirectionMaximize, model.DirectionMinimize:
	default:
		return nil, common.Errorf("unknown metric direction %q: %w", req.Direction, common.ErrValidation)
	}

	metric := &model.Metric{
		ID:        uuid.NewString(),
		Key:       req.Key,
		Direction: req.Direction,
	}
	if err := s.metricRepo.CreateMetric(ctx, metric); err != nil {
		return nil, err
	}
	return metric, nil
}

func (s *MetricService) ListMetrics(ctx context.Context) ([]model.Metric, error) {
	return s.metricRepo.ListMetrics(ctx)
}
