package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/domain/port"
)

// GetTransaction is the use case for retrieving a scored transaction.
type GetTransaction struct {
	repo port.TransactionRepository
}

// NewGetTransaction creates a new GetTransaction use case.
func NewGetTransaction(repo port.TransactionRepository) *GetTransaction {
	return &GetTransaction{repo: repo}
}

// Execute retrieves a transaction by ID.
func (uc *GetTransaction) Execute(ctx context.Context, req dto.GetTransactionRequest) (dto.TransactionResponse, error) {
	tx, err := uc.repo.FindByID(ctx, req.TransactionID)
	if err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("failed to find transaction %s: %w", req.TransactionID, err)
	}

	return dto.FromModel(tx), nil
}
