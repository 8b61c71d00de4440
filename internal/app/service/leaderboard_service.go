package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"ml_arena/internal/domain/leaderboard"
	"ml_arena/internal/domain/model"
	"ml_arena/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// LeaderboardService loads a read-only snapshot of submissions,
// problems and metrics and hands it to the pure ranking engine. The
// engine itself owns all ordering rules; this service only does I/O
// and caching around it.
type LeaderboardService struct {
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	metricRepo     repository.MetricRepository
	rdb            *redis.Client // Optional; nil disables caching
	cacheTTL       time.Duration
}

func NewLeaderboardService(
	subRepo repository.SubmissionRepository,
	probRepo repository.ProblemRepository,
	metricRepo repository.MetricRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *LeaderboardService {
	return &LeaderboardService{
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		metricRepo:     metricRepo,
		rdb:            rdb,
		cacheTTL:       cacheTTL,
	}
}

// ComputeAll returns the leaderboards for every problem. Results are
// memoized in Redis keyed by a snapshot fingerprint (max updated_at
// plus row count), so unchanged data never triggers a recomputation;
// cache trouble falls through to computing from the database.
func (s *LeaderboardService) ComputeAll(ctx context.Context) (map[string][]model.LeaderboardEntry, error) {
	cacheKey := s.fingerprintKey(ctx)

	if cacheKey != "" {
		if cached, err := s.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
			var boards map[string][]model.LeaderboardEntry
			if err := json.Unmarshal(cached, &boards); err == nil {
				return boards, nil
			}
			log.Printf("WARN: Discarding malformed leaderboard cache entry %s", cacheKey)
		}
	}

	boards, err := s.computeFresh(ctx)
	if err != nil {
		return nil, err
	}

	if cacheKey != "" {
		if encoded, err := json.Marshal(boards); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, encoded, s.cacheTTL).Err(); err != nil {
				log.Printf("WARN: Failed to cache leaderboards under %s: %v", cacheKey, err)
			}
		}
	}
	return boards, nil
}

// GetProblemLeaderboard returns one problem's ordered entries. Unknown
// problems are a not-found error; a known problem with nothing to rank
// yields an empty list.
func (s *LeaderboardService) GetProblemLeaderboard(ctx context.Context, problemID string) ([]model.LeaderboardEntry, error) {
	if _, err := s.problemRepo.FindProblemByID(ctx, problemID); err != nil {
		return nil, err
	}

	boards, err := s.ComputeAll(ctx)
	if err != nil {
		return nil, err
	}
	entries, ok := boards[problemID]
	if !ok || entries == nil {
		entries = []model.LeaderboardEntry{}
	}
	return entries, nil
}

func (s *LeaderboardService) computeFresh(ctx context.Context) (map[string][]model.LeaderboardEntry, error) {
	subs, err := s.submissionRepo.ListSubmissionsForRanking(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions for ranking: %w", err)
	}
	problems, err := s.problemRepo.ListProblemsForRanking(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load problems for ranking: %w", err)
	}
	metricList, err := s.metricRepo.ListMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load metrics for ranking: %w", err)
	}

	metrics := make([]*model.Metric, len(metricList))
	for i := range metricList {
		metrics[i] = &metricList[i]
	}

	return leaderboard.Compute(subs, problems, metrics), nil
}

func (s *LeaderboardService) fingerprintKey(ctx context.Context) string {
	if s.rdb == nil {
		return ""
	}
	maxUpdated, count, err := s.submissionRepo.RankingFingerprint(ctx)
	if err != nil {
		log.Printf("WARN: Failed to fingerprint submission snapshot: %v", err)
		return ""
	}
	return fmt.Sprintf("leaderboards:%d:%d", maxUpdated.UnixNano(), count)
}
