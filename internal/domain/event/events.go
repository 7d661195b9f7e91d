package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/pkg/events"
)

// AggregateTypeTransaction is the aggregate type carried by every event here.
const AggregateTypeTransaction = "transaction"

const (
	// EventTypeTransactionScored is emitted whenever a transaction receives a risk score.
	EventTypeTransactionScored = "cardrisk.transaction.scored"

	// EventTypeHighRiskDetected is emitted when a score exceeds the high-risk threshold.
	EventTypeHighRiskDetected = "cardrisk.transaction.high_risk"

	// EventTypeFraudConfirmed is emitted when a reviewer records a decision.
	EventTypeFraudConfirmed = "cardrisk.transaction.reviewed"
)

// TransactionScored is published for every scored transaction.
type TransactionScored struct {
	events.BaseEvent
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category"`
	RiskScore     float64         `json:"risk_score"`
	Flagged       bool            `json:"flagged"`
	RiskFactors   []string        `json:"risk_factors"`
	ScoredAt      time.Time       `json:"scored_at"`
}

// NewTransactionScored creates a TransactionScored event.
func NewTransactionScored(
	transactionID, userID uuid.UUID,
	amount decimal.Decimal,
	category string,
	riskScore float64,
	flagged bool,
	riskFactors []string,
	scoredAt time.Time,
) TransactionScored {
	return TransactionScored{
		BaseEvent:     events.NewBaseEvent(EventTypeTransactionScored, transactionID, AggregateTypeTransaction),
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        amount,
		Category:      category,
		RiskScore:     riskScore,
		Flagged:       flagged,
		RiskFactors:   riskFactors,
		ScoredAt:      scoredAt,
	}
}

// HighRiskDetected is published when a transaction is auto-flagged, so that
// analysts can be alerted.
type HighRiskDetected struct {
	events.BaseEvent
	TransactionID uuid.UUID `json:"transaction_id"`
	UserID        uuid.UUID `json:"user_id"`
	CardLastFour  string    `json:"card_last_four,omitempty"`
	RiskScore     float64   `json:"risk_score"`
	RiskFactors   []string  `json:"risk_factors"`
	DetectedAt    time.Time `json:"detected_at"`
}

// NewHighRiskDetected creates a HighRiskDetected event.
func NewHighRiskDetected(
	transactionID, userID uuid.UUID,
	cardLastFour string,
	riskScore float64,
	riskFactors []string,
	detectedAt time.Time,
) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:     events.NewBaseEvent(EventTypeHighRiskDetected, transactionID, AggregateTypeTransaction),
		TransactionID: transactionID,
		UserID:        userID,
		CardLastFour:  cardLastFour,
		RiskScore:     riskScore,
		RiskFactors:   riskFactors,
		DetectedAt:    detectedAt,
	}
}

// FraudConfirmed is published when a human reviewer labels a transaction.
type FraudConfirmed struct {
	events.BaseEvent
	TransactionID  uuid.UUID `json:"transaction_id"`
	UserID         uuid.UUID `json:"user_id"`
	ConfirmedFraud bool      `json:"confirmed_fraud"`
	Flagged        bool      `json:"flagged"`
	Reviewer       string    `json:"reviewer"`
	ReviewedAt     time.Time `json:"reviewed_at"`
}

// NewFraudConfirmed creates a FraudConfirmed event.
func NewFraudConfirmed(
	transactionID, userID uuid.UUID,
	confirmedFraud, flagged bool,
	reviewer string,
	reviewedAt time.Time,
) FraudConfirmed {
	return FraudConfirmed{
		BaseEvent:      events.NewBaseEvent(EventTypeFraudConfirmed, transactionID, AggregateTypeTransaction),
		TransactionID:  transactionID,
		UserID:         userID,
		ConfirmedFraud: confirmedFraud,
		Flagged:        flagged,
		Reviewer:       reviewer,
		ReviewedAt:     reviewedAt,
	}
}
