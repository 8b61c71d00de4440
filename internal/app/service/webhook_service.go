package service

import (
	"context"
	"errors"
	"log"
	"math"

	"ml_arena/internal/common"
	"ml_arena/internal/domain/model"
	"ml_arena/internal/domain/repository"
)

type WebhookService struct {
	submissionRepo repository.SubmissionRepository
}

func NewWebhookService(subRepo repository.SubmissionRepository) *WebhookService {
	return &WebhookService{submissionRepo: subRepo}
}

// EvaluationResultPayload is what the external evaluator posts back
// once grading finishes.
type EvaluationResultPayload struct {
	SubmissionID string                 `json:"submission_id"`
	Status       model.SubmissionStatus `json:"status"`
	Score        *float64               `json:"score,omitempty"`
	RuntimeMs    *int                   `json:"runtime_ms,omitempty"`
	Error        *string                `json:"error,omitempty"`
}

// HandleEvaluationResult applies a terminal grading outcome exactly
// once. A submission already in a terminal state is left untouched
// (duplicate webhook deliveries are expected), and the recorded
// status/score pair never changes afterwards.
func (s *WebhookService) HandleEvaluationResult(ctx context.Context, payload EvaluationResultPayload) error {
	log.Printf("Webhook received for submission %s, status: %s", payload.SubmissionID, payload.Status)

	sub, err := s.submissionRepo.GetSubmissionByID(ctx, payload.SubmissionID)
	if err != nil {
		return common.Errorf("submission %s not found: %w", payload.SubmissionID, err)
	}
	if sub.Status.IsTerminal() {
		log.Printf("WARN: Submission %s already terminal (status: %s). Ignoring webhook.", sub.ID, sub.Status)
		return nil // Idempotency
	}

	status, score, details := normalizeResult(payload)

	// The repository's conditional update is the real idempotency
	// barrier; the IsTerminal check above only saves the write. A
	// duplicate delivery that loses the race surfaces as a conflict.
	if err := s.submissionRepo.ApplyEvaluationResult(ctx, nil, sub.ID, status, score, payload.RuntimeMs, details); err != nil {
		if errors.Is(err, common.ErrConflict) {
			log.Printf("WARN: Submission %s went terminal concurrently. Ignoring webhook.", sub.ID)
			return nil
		}
		return common.Errorf("failed to record evaluation result for %s: %w", sub.ID, err)
	}

	log.Printf("Submission %s finished with status %s.", sub.ID, status)
	return nil
}

// normalizeResult enforces the terminal-state contract on whatever the
// evaluator reports: only succeeded results carry a score, and a
// succeeded result without a usable score is downgraded to failed so
// it can never rank.
func normalizeResult(payload EvaluationResultPayload) (model.SubmissionStatus, *float64, *string) {
	status := payload.Status
	details := payload.Error

	if !status.IsValid() || !status.IsTerminal() {
		status = model.StatusFailed
		if details == nil {
			msg := "evaluator reported unusable status " + string(payload.Status)
			details = &msg
		}
		return status, nil, details
	}

	if status != model.StatusSucceeded {
		return status, nil, details
	}

	score := payload.Score
	if score == nil || math.IsNaN(*score) || math.IsInf(*score, 0) || *score < 0 {
		msg := "evaluator reported success without a valid score"
		if details == nil {
			details = &msg
		}
		return model.StatusFailed, nil, details
	}
	return model.StatusSucceeded, score, details
}
