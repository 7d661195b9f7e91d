package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/service"
)

// ScoreTransactionRequest is the input DTO for the ScoreTransaction use case.
type ScoreTransactionRequest struct {
	Timestamp     time.Time       `json:"timestamp"`
	Amount        decimal.Decimal `json:"amount"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	MerchantName  string          `json:"merchant_name"`
	Category      string          `json:"merchant_category"`
	Country       string          `json:"country"`
	City          string          `json:"city"`
	PostalCode    string          `json:"postal_code"`
	IPAddress     string          `json:"ip_address"`
	DeviceID      string          `json:"device_id"`
	CardLastFour  string          `json:"card_last_four"`
}

// FactorResponse reports one factor's share of a score.
type FactorResponse struct {
	Factor       string  `json:"factor"`
	Description  string  `json:"description,omitempty"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// TransactionResponse is the output DTO for a scored transaction.
type TransactionResponse struct {
	Timestamp      time.Time        `json:"timestamp"`
	ScoredAt       time.Time        `json:"scored_at"`
	ReviewedAt     *time.Time       `json:"reviewed_at,omitempty"`
	RiskFactors    []string         `json:"risk_factors"`
	Contributions  []FactorResponse `json:"contributions,omitempty"`
	ID             uuid.UUID        `json:"id"`
	UserID         uuid.UUID        `json:"user_id"`
	Amount         string           `json:"amount"`
	MerchantName   string           `json:"merchant_name"`
	Category       string           `json:"merchant_category"`
	Country        string           `json:"country"`
	City           string           `json:"city"`
	PostalCode     string           `json:"postal_code"`
	IPAddress      string           `json:"ip_address"`
	DeviceID       string           `json:"device_id"`
	CardLastFour   string           `json:"card_last_four"`
	ReviewedBy     string           `json:"reviewed_by,omitempty"`
	RiskScore      float64          `json:"risk_score"`
	Flagged        bool             `json:"flagged"`
	ConfirmedFraud bool             `json:"confirmed_fraud"`
}

// GetTransactionRequest is the input DTO for retrieving a transaction.
type GetTransactionRequest struct {
	TransactionID uuid.UUID `json:"transaction_id"`
}

// ReviewTransactionRequest is the input DTO for recording a reviewer decision.
type ReviewTransactionRequest struct {
	// Flagged, when set, overrides the automated flag.
	Flagged        *bool     `json:"flagged,omitempty"`
	TransactionID  uuid.UUID `json:"transaction_id"`
	Reviewer       string    `json:"reviewer"`
	ConfirmedFraud bool      `json:"confirmed_fraud"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(tx *model.Transaction) TransactionResponse {
	loc := tx.Location()
	resp := TransactionResponse{
		ID:             tx.ID(),
		UserID:         tx.UserID(),
		Amount:         tx.Amount().StringFixed(2),
		MerchantName:   tx.MerchantName(),
		Category:       tx.Category(),
		Country:        loc.Country(),
		City:           loc.City(),
		PostalCode:     loc.PostalCode(),
		Timestamp:      tx.OccurredAt(),
		IPAddress:      tx.IPAddress(),
		DeviceID:       tx.DeviceID(),
		CardLastFour:   tx.CardLastFour(),
		RiskScore:      tx.RiskScore(),
		Flagged:        tx.Flagged(),
		RiskFactors:    tx.RiskFactors(),
		ConfirmedFraud: tx.ConfirmedFraud(),
		ScoredAt:       tx.ScoredAt(),
		ReviewedBy:     tx.ReviewedBy(),
	}
	if at := tx.ReviewedAt(); !at.IsZero() {
		resp.ReviewedAt = &at
	}
	return resp
}

// WithContributions attaches the per-factor breakdown of a fresh score.
func (r TransactionResponse) WithContributions(result service.ScoreResult) TransactionResponse {
	for _, c := range result.Contributions() {
		r.Contributions = append(r.Contributions, FactorResponse{
			Factor:       c.Factor,
			Description:  c.Description,
			Weight:       c.Weight,
			Contribution: c.Contribution,
		})
	}
	return r
}
