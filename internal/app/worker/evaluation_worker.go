package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"
	"ml_arena/internal/domain/repository"
	"ml_arena/internal/platform/config"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EvaluationWorker drains the submission queue and dispatches each
// pending submission to the external evaluator. The evaluator grades
// asynchronously and reports back through the result webhook; the
// worker's only state transitions are pending -> running, or a
// straight failure when the submission can't even be dispatched.
type EvaluationWorker struct {
	rdb            *redis.Client
	submissionRepo repository.SubmissionRepository
	problemRepo    repository.ProblemRepository
	httpClient     *http.Client
}

func NewEvaluationWorker(rdb *redis.Client, subRepo repository.SubmissionRepository, probRepo repository.ProblemRepository) *EvaluationWorker {
	return &EvaluationWorker{
		rdb:            rdb,
		submissionRepo: subRepo,
		problemRepo:    probRepo,
		httpClient: &http.Client{
			Timeout: time.Duration(config.AppConfig.EvaluatorTimeoutSeconds) * time.Second,
		},
	}
}

// EvaluatorRequest is the format sent to the external evaluation service.
type EvaluatorRequest struct {
	SubmissionID            string `json:"submission_id"`
	SubmissionFileContent   string `json:"submission_file_content"`
	GroundTruthContent      string `json:"ground_truth_content"`
	PublicTestContent       string `json:"public_test_content"`
	EvaluationScriptContent string `json:"evaluation_script_content"`
	WebhookURL              string `json:"webhook_url"`
}

func (w *EvaluationWorker) Start(ctx context.Context) {
	log.Println("Evaluation worker started, listening to queue:", config.AppConfig.EvaluationQueueName)
	for {
		select {
		case <-ctx.Done():
			log.Println("Evaluation worker stopping...")
			return
		default:
			popped, err := w.rdb.BRPop(ctx, 0*time.Second, config.AppConfig.EvaluationQueueName).Result()
			if err != nil {
				if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					log.Printf("Worker BRPop exiting or timed out: %v", err)
					time.Sleep(1 * time.Second)
					continue
				}
				log.Printf("ERROR: Failed to BRPop from Redis queue '%s': %v", config.AppConfig.EvaluationQueueName, err)
				time.Sleep(5 * time.Second)
				continue
			}

			// popped is [queueName, value]
			if len(popped) < 2 || popped[1] == "" {
				log.Println("WARN: BRPop returned empty submission ID.")
				continue
			}
			submissionID := popped[1]
			log.Printf("Worker picked up submission ID: %s", submissionID)

			// One evaluation at a time across all workers, so the
			// evaluator is never hammered concurrently.
			w.processWithLock(ctx, submissionID)
		}
	}
}

func (w *EvaluationWorker) processWithLock(ctx context.Context, submissionID string) {
	lockValue := uuid.NewString()
	lockTTL := time.Duration(config.AppConfig.EvaluationLockTTLSeconds) * time.Second

	ok, err := w.rdb.SetNX(ctx, config.AppConfig.EvaluationLockKey, lockValue, lockTTL).Result()
	if err != nil {
		log.Printf("ERROR: Failed to attempt lock acquisition for submission %s: %v", submissionID, err)
		w.requeue(ctx, submissionID)
		return
	}
	if !ok {
		log.Printf("INFO: Evaluation lock busy, re-queueing submission %s.", submissionID)
		w.requeue(ctx, submissionID)
		return
	}

	defer func() {
		// CAS delete so an expired lock grabbed by another worker is
		// never released from here.
		script := redis.NewScript(`
            if redis.call("get", KEYS[1]) == ARGV[1] then
                return redis.call("del", KEYS[1])
            else
                return 0
            end
        `)
		deleted, err := script.Run(ctx, w.rdb, []string{config.AppConfig.EvaluationLockKey}, lockValue).Result()
		if err != nil {
			log.Printf("ERROR: Failed to release evaluation lock for submission %s: %v", submissionID, err)
		} else if deleted.(int64) != 1 {
			log.Printf("WARN: Evaluation lock for submission %s expired before release.", submissionID)
		}
	}()

	w.dispatch(ctx, submissionID)
}

func (w *EvaluationWorker) requeue(ctx context.Context, submissionID string) {
	if err := w.rdb.RPush(ctx, config.AppConfig.EvaluationQueueName, submissionID).Err(); err != nil {
		log.Printf("ERROR: Failed to re-queue submission %s: %v", submissionID, err)
	}
}

func (w *EvaluationWorker) dispatch(ctx context.Context, submissionID string) {
	sub, err := w.submissionRepo.GetSubmissionByID(ctx, submissionID)
	if err != nil {
		log.Printf("ERROR: Failed to fetch submission %s: %v", submissionID, err)
		return
	}
	if sub.Status.IsTerminal() {
		log.Printf("INFO: Submission %s already terminal (%s), skipping dispatch.", sub.ID, sub.Status)
		return
	}

	problem, err := w.problemRepo.FindProblemByID(ctx, sub.ProblemID)
	if err != nil {
		w.failSubmission(ctx, sub.ID, fmt.Sprintf("problem %s not found: %v", sub.ProblemID, err))
		return
	}
	if problem.EvaluationScript == "" {
		w.failSubmission(ctx, sub.ID, "problem has no evaluation script")
		return
	}

	groundTruth, err := readSplit(problem, model.SplitGroundTruth)
	if err != nil {
		w.failSubmission(ctx, sub.ID, err.Error())
		return
	}
	publicTest, err := readSplit(problem, model.SplitPublicTest)
	if err != nil {
		w.failSubmission(ctx, sub.ID, err.Error())
		return
	}

	req := EvaluatorRequest{
		SubmissionID:            sub.ID,
		SubmissionFileContent:   sub.Content,
		GroundTruthContent:      groundTruth,
		PublicTestContent:       publicTest,
		EvaluationScriptContent: problem.EvaluationScript,
		WebhookURL:              config.AppConfig.EvaluatorWebhookURL,
	}
	body, err := json.Marshal(req)
	if err != nil {
		w.failSubmission(ctx, sub.ID, fmt.Sprintf("failed to marshal evaluator request: %v", err))
		return
	}

	if err := w.submissionRepo.UpdateSubmissionStatus(ctx, nil, sub.ID, model.StatusRunning); err != nil {
		log.Printf("ERROR: Failed to mark submission %s running: %v", sub.ID, err)
		// Dispatch anyway; the webhook drives the terminal state.
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, config.AppConfig.EvaluatorURL, bytes.NewReader(body))
	if err != nil {
		w.failSubmission(ctx, sub.ID, fmt.Sprintf("failed to build evaluator request: %v", err))
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(httpReq)
	if err != nil {
		w.failSubmission(ctx, sub.ID, fmt.Sprintf("evaluator unreachable: %v", err))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.failSubmission(ctx, sub.ID, fmt.Sprintf("evaluator rejected submission: HTTP %d", resp.StatusCode))
		return
	}
	log.Printf("Submission %s dispatched to evaluator.", sub.ID)
}

func (w *EvaluationWorker) failSubmission(ctx context.Context, submissionID, reason string) {
	log.Printf("ERROR: Submission %s failed before evaluation: %s", submissionID, reason)
	err := w.submissionRepo.ApplyEvaluationResult(ctx, nil, submissionID, model.StatusFailed, nil, nil, &reason)
	if err != nil && !errors.Is(err, common.ErrConflict) {
		log.Printf("ERROR: Failed to record dispatch failure for submission %s: %v", submissionID, err)
	}
}

func readSplit(problem *model.Problem, split model.DatasetSplit) (string, error) {
	for _, d := range problem.Datasets {
		if d.Split != split {
			continue
		}
		content, err := os.ReadFile(d.Path)
		if err != nil {
			return "", fmt.Errorf("%s file for problem %s unavailable: %w", split, problem.ID, err)
		}
		return string(content), nil
	}
	return "", fmt.Errorf("problem %s has no %s dataset", problem.ID, split)
}
