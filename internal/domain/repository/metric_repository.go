package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

type MetricRepository interface {
	CreateMetric(ctx context.Context, metric *model.Metric) error
	FindMetricByID(ctx context.Context, id string) (*model.Metric, error)
	ListMetrics(ctx context.Context) ([]model.Metric, error)
}

type pgMetricRepository struct {
	db *sql.DB
}

func NewPgMetricRepository(db *sql.DB) MetricRepository {
	return &pgMetricRepository{db: db}
}

func (r *pgMetricRepository) CreateMetric(ctx context.Context, m *model.Metric) error {
	query := `INSERT INTO metrics (id, key, direction) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.Key, m.Direction)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // Unique constraint for key
			return fmt.Errorf("metric with this key already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgMetricRepository.CreateMetric: %w", err)
	}
	return nil
}

func (r *pgMetricRepository) FindMetricByID(ctx context.Context, id string) (*model.Metric, error) {
	query := `SELECT id, key, direction FROM metrics WHERE id = $1`
	m := &model.Metric{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&m.ID, &m.Key, &m.Direction)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgMetricRepository.FindMetricByID: %w", err)
	}
	return m, nil
}

func (r *pgMetricRepository) ListMetrics(ctx context.Context) ([]model.Metric, error) {
	// Stable ordering so ranking snapshots are reproducible
	query := `SELECT id, key, direction FROM metrics ORDER BY key, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("pgMetricRepository.ListMetrics: %w", err)
	}
	defer rows.Close()

	metrics := []model.Metric{}
	for rows.Next() {
		var m model.Metric
		if err := rows.Scan(&m.ID, &m.Key, &m.Direction); err != nil {
			return nil, fmt.Errorf("pgMetricRepository.ListMetrics scan: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgMetricRepository.ListMetrics rows: %w", err)
	}
	return metrics, nil
}
