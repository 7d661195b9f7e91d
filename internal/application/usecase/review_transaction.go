package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/port"
	"github.com/bibbank/cardrisk/pkg/observability"
)

// ReviewTransaction is the administrative use case recording a human
// reviewer's verdict on a transaction.
type ReviewTransaction struct {
	repo      port.TransactionRepository
	publisher port.EventPublisher
	now       func() time.Time
}

// NewReviewTransaction creates a new ReviewTransaction use case.
func NewReviewTransaction(repo port.TransactionRepository, publisher port.EventPublisher) *ReviewTransaction {
	return &ReviewTransaction{repo: repo, publisher: publisher, now: time.Now}
}

// Execute applies the review, persists it and publishes FraudConfirmed.
func (uc *ReviewTransaction) Execute(ctx context.Context, req dto.ReviewTransactionRequest) (resp dto.TransactionResponse, err error) {
	ctx, span := observability.StartSpan(ctx, "ReviewTransaction.Execute",
		attribute.String("transaction.id", req.TransactionID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	// 1. Load the transaction.
	tx, err := uc.repo.FindByID(ctx, req.TransactionID)
	if err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("failed to find transaction %s: %w", req.TransactionID, err)
	}

	// 2. Apply the reviewer decision.
	decision := model.ReviewDecision{
		ConfirmedFraud: req.ConfirmedFraud,
		Flagged:        req.Flagged,
		Reviewer:       req.Reviewer,
	}
	if err := tx.Review(decision, uc.now().UTC()); err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("failed to review transaction: %w", err)
	}

	// 3. Persist.
	if err := uc.repo.UpdateReview(ctx, tx); err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("failed to update review: %w", err)
	}

	// 4. Publish domain events.
	if evts := tx.DomainEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			return dto.TransactionResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}

	return dto.FromModel(tx), nil
}
