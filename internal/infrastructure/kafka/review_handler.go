package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/domain/model"
	pkgkafka "github.com/bibbank/cardrisk/pkg/kafka"
)

// Reviewer is satisfied by *usecase.ReviewTransaction.
type Reviewer interface {
	Execute(ctx context.Context, req dto.ReviewTransactionRequest) (dto.TransactionResponse, error)
}

// reviewDecisionMessage is the payload published by case-management tools.
type reviewDecisionMessage struct {
	Flagged        *bool  `json:"flagged,omitempty"`
	TransactionID  string `json:"transaction_id"`
	Reviewer       string `json:"reviewer"`
	ConfirmedFraud bool   `json:"confirmed_fraud"`
}

// ReviewDecisionHandler turns review-decision messages into ReviewTransaction calls.
type ReviewDecisionHandler struct {
	reviewer Reviewer
	logger   *slog.Logger
}

// NewReviewDecisionHandler creates a handler for the review-decision topic.
func NewReviewDecisionHandler(reviewer Reviewer, logger *slog.Logger) *ReviewDecisionHandler {
	return &ReviewDecisionHandler{reviewer: reviewer, logger: logger}
}

// Handle processes one message. Malformed payloads, unknown transactions and
// rejected decisions are permanent failures; anything else is retried.
func (h *ReviewDecisionHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var m reviewDecisionMessage
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		return fmt.Errorf("%w: decode review decision: %v", pkgkafka.ErrPermanent, err)
	}

	id, err := uuid.Parse(m.TransactionID)
	if err != nil {
		return fmt.Errorf("%w: invalid transaction_id %q", pkgkafka.ErrPermanent, m.TransactionID)
	}

	resp, err := h.reviewer.Execute(ctx, dto.ReviewTransactionRequest{
		TransactionID:  id,
		ConfirmedFraud: m.ConfirmedFraud,
		Flagged:        m.Flagged,
		Reviewer:       m.Reviewer,
	})
	if err != nil {
		if errors.Is(err, model.ErrTransactionNotFound) || errors.Is(err, model.ErrInvalidTransaction) {
			return fmt.Errorf("%w: %v", pkgkafka.ErrPermanent, err)
		}
		return err
	}

	h.logger.InfoContext(ctx, "review decision applied",
		slog.String("transaction_id", id.String()),
		slog.Bool("confirmed_fraud", resp.ConfirmedFraud),
		slog.Bool("flagged", resp.Flagged),
		slog.String("reviewer", resp.ReviewedBy),
	)
	return nil
}
