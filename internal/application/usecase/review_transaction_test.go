package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/application/usecase"
	"github.com/bibbank/cardrisk/internal/domain/event"
	"github.com/bibbank/cardrisk/internal/domain/model"
)

func scoredTransaction(id uuid.UUID, flagged bool) *model.Transaction {
	return model.Reconstruct(model.ReconstructParams{
		TransactionParams: model.TransactionParams{
			ID:       id,
			UserID:   userID,
			Amount:   decimal.NewFromInt(900),
			Category: "electronics",
		},
		RiskScore:   75,
		Flagged:     flagged,
		RiskFactors: []string{"Unusual merchant category: electronics"},
		ScoredAt:    fixedNow,
	})
}

func repoWith(tx *model.Transaction) *mockTransactionRepository {
	return &mockTransactionRepository{
		findByIDFunc: func(_ context.Context, id uuid.UUID) (*model.Transaction, error) {
			if id == tx.ID() {
				return tx, nil
			}
			return nil, model.ErrTransactionNotFound
		},
	}
}

func TestGetTransaction_Execute(t *testing.T) {
	t.Run("returns the stored transaction", func(t *testing.T) {
		id := uuid.New()
		uc := usecase.NewGetTransaction(repoWith(scoredTransaction(id, true)))

		resp, err := uc.Execute(context.Background(), dto.GetTransactionRequest{TransactionID: id})

		require.NoError(t, err)
		assert.Equal(t, id, resp.ID)
		assert.Equal(t, 75.0, resp.RiskScore)
		assert.True(t, resp.Flagged)
		assert.Equal(t, "900.00", resp.Amount)
		assert.Nil(t, resp.ReviewedAt)
		assert.Empty(t, resp.Contributions, "contributions are only returned when scoring")
	})

	t.Run("wraps not found", func(t *testing.T) {
		uc := usecase.NewGetTransaction(&mockTransactionRepository{})

		_, err := uc.Execute(context.Background(), dto.GetTransactionRequest{TransactionID: uuid.New()})

		assert.ErrorIs(t, err, model.ErrTransactionNotFound)
	})
}

func TestReviewTransaction_Execute(t *testing.T) {
	t.Run("confirms fraud", func(t *testing.T) {
		id := uuid.New()
		repo := repoWith(scoredTransaction(id, true))
		publisher := &mockEventPublisher{}

		resp, err := usecase.NewReviewTransaction(repo, publisher).Execute(context.Background(), dto.ReviewTransactionRequest{
			TransactionID:  id,
			ConfirmedFraud: true,
			Reviewer:       "analyst-1",
		})

		require.NoError(t, err)
		assert.True(t, resp.ConfirmedFraud)
		assert.True(t, resp.Flagged)
		assert.Equal(t, "analyst-1", resp.ReviewedBy)
		require.NotNil(t, resp.ReviewedAt)
		assert.Equal(t, 75.0, resp.RiskScore)

		require.NotNil(t, repo.reviewed)
		assert.Equal(t, []string{event.EventTypeFraudConfirmed}, publisher.types())
	})

	t.Run("overrides the automated flag", func(t *testing.T) {
		id := uuid.New()
		cleared := false

		resp, err := usecase.NewReviewTransaction(repoWith(scoredTransaction(id, true)), &mockEventPublisher{}).
			Execute(context.Background(), dto.ReviewTransactionRequest{
				TransactionID: id,
				Flagged:       &cleared,
				Reviewer:      "analyst-2",
			})

		require.NoError(t, err)
		assert.False(t, resp.Flagged)
		assert.False(t, resp.ConfirmedFraud)
	})

	t.Run("requires a reviewer", func(t *testing.T) {
		id := uuid.New()
		repo := repoWith(scoredTransaction(id, false))

		_, err := usecase.NewReviewTransaction(repo, &mockEventPublisher{}).
			Execute(context.Background(), dto.ReviewTransactionRequest{TransactionID: id, ConfirmedFraud: true})

		assert.ErrorIs(t, err, model.ErrInvalidTransaction)
		assert.Nil(t, repo.reviewed)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		_, err := usecase.NewReviewTransaction(&mockTransactionRepository{}, &mockEventPublisher{}).
			Execute(context.Background(), dto.ReviewTransactionRequest{TransactionID: uuid.New(), Reviewer: "a"})

		assert.ErrorIs(t, err, model.ErrTransactionNotFound)
	})

	t.Run("fails when update fails", func(t *testing.T) {
		id := uuid.New()
		repo := repoWith(scoredTransaction(id, true))
		repo.updateErr = errors.New("deadlock detected")
		publisher := &mockEventPublisher{}

		_, err := usecase.NewReviewTransaction(repo, publisher).
			Execute(context.Background(), dto.ReviewTransactionRequest{TransactionID: id, Reviewer: "a"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to update review")
		assert.Empty(t, publisher.published)
	})
}
