package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/event"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
	"github.com/bibbank/cardrisk/pkg/events"
)

// TransactionParams carries the incoming fields of a card transaction.
// Only UserID and a non-negative Amount are required. A zero Timestamp
// stays zero so the scorer sees no time signal; ReceivedAt (default now)
// stands in for it wherever an occurrence time must be stored.
type TransactionParams struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Amount       decimal.Decimal
	MerchantName string
	Category     string
	Location     valueobject.Location
	Timestamp    time.Time
	IPAddress    string
	DeviceID     string
	CardLastFour string
	ReceivedAt   time.Time
}

// Transaction is the aggregate root for a card transaction and its risk
// assessment.
type Transaction struct {
	events.EventCollector

	timestamp      time.Time
	scoredAt       time.Time
	reviewedAt     time.Time
	createdAt      time.Time
	location       valueobject.Location
	amount         decimal.Decimal
	merchantName   string
	category       string
	ipAddress      string
	deviceID       string
	cardLastFour   string
	reviewedBy     string
	riskFactors    []string
	riskScore      float64
	flagged        bool
	confirmedFraud bool
	id             uuid.UUID
	userID         uuid.UUID
}

// NewTransaction validates params and creates an unscored Transaction.
// A nil ID is replaced with a fresh one.
func NewTransaction(p TransactionParams) (*Transaction, error) {
	if p.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidTransaction)
	}
	if p.Amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount must not be negative", ErrInvalidTransaction)
	}
	if len(p.CardLastFour) > 4 {
		return nil, fmt.Errorf("%w: card last four must be at most 4 characters", ErrInvalidTransaction)
	}

	id := p.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	received := p.ReceivedAt
	if received.IsZero() {
		received = time.Now()
	}

	return &Transaction{
		id:           id,
		userID:       p.UserID,
		amount:       p.Amount,
		merchantName: p.MerchantName,
		category:     p.Category,
		location:     p.Location,
		timestamp:    p.Timestamp,
		ipAddress:    p.IPAddress,
		deviceID:     p.DeviceID,
		cardLastFour: p.CardLastFour,
		riskFactors:  make([]string, 0),
		createdAt:    received.UTC(),
	}, nil
}

// ApplyScore attaches a scoring outcome. flagged must be the scorer's
// high-risk verdict; it is never derived here. The factors slice is copied.
func (t *Transaction) ApplyScore(score float64, flagged bool, factors []string, at time.Time) {
	t.riskScore = score
	t.flagged = flagged
	t.riskFactors = append(make([]string, 0, len(factors)), factors...)
	t.scoredAt = at

	t.Record(event.NewTransactionScored(
		t.id, t.userID, t.amount, t.category,
		t.riskScore, t.flagged, t.RiskFactors(), t.scoredAt,
	))

	if t.flagged {
		t.Record(event.NewHighRiskDetected(
			t.id, t.userID, t.cardLastFour,
			t.riskScore, t.RiskFactors(), t.scoredAt,
		))
	}
}

// ReviewDecision is a human reviewer's verdict on a transaction.
type ReviewDecision struct {
	ConfirmedFraud bool
	// Flagged overrides the automated flag when non-nil.
	Flagged  *bool
	Reviewer string
}

// Review records a reviewer's decision. This is the only way to change the
// flag after scoring.
func (t *Transaction) Review(d ReviewDecision, at time.Time) error {
	if d.Reviewer == "" {
		return fmt.Errorf("%w: reviewer is required", ErrInvalidTransaction)
	}

	t.confirmedFraud = d.ConfirmedFraud
	if d.Flagged != nil {
		t.flagged = *d.Flagged
	}
	t.reviewedBy = d.Reviewer
	t.reviewedAt = at

	t.Record(event.NewFraudConfirmed(
		t.id, t.userID, t.confirmedFraud, t.flagged, t.reviewedBy, t.reviewedAt,
	))
	return nil
}

// SetLocation replaces the location, used to enrich it before scoring.
func (t *Transaction) SetLocation(loc valueobject.Location) {
	t.location = loc
}

// ReconstructParams carries persisted state for Reconstruct.
type ReconstructParams struct {
	TransactionParams
	RiskScore      float64
	Flagged        bool
	RiskFactors    []string
	ConfirmedFraud bool
	ScoredAt       time.Time
	ReviewedAt     time.Time
	ReviewedBy     string
	CreatedAt      time.Time
}

// Reconstruct rebuilds a Transaction from persisted data (no validation, no events).
func Reconstruct(p ReconstructParams) *Transaction {
	factors := p.RiskFactors
	if factors == nil {
		factors = make([]string, 0)
	}
	return &Transaction{
		id:             p.ID,
		userID:         p.UserID,
		amount:         p.Amount,
		merchantName:   p.MerchantName,
		category:       p.Category,
		location:       p.Location,
		timestamp:      p.Timestamp,
		ipAddress:      p.IPAddress,
		deviceID:       p.DeviceID,
		cardLastFour:   p.CardLastFour,
		riskScore:      p.RiskScore,
		flagged:        p.Flagged,
		riskFactors:    factors,
		confirmedFraud: p.ConfirmedFraud,
		scoredAt:       p.ScoredAt,
		reviewedAt:     p.ReviewedAt,
		reviewedBy:     p.ReviewedBy,
		createdAt:      p.CreatedAt,
	}
}

// --- Accessors ---

func (t *Transaction) ID() uuid.UUID                  { return t.id }
func (t *Transaction) UserID() uuid.UUID              { return t.userID }
func (t *Transaction) Amount() decimal.Decimal        { return t.amount }
func (t *Transaction) MerchantName() string           { return t.merchantName }
func (t *Transaction) Category() string               { return t.category }
func (t *Transaction) Location() valueobject.Location { return t.location }
func (t *Transaction) Timestamp() time.Time           { return t.timestamp }
func (t *Transaction) IPAddress() string              { return t.ipAddress }
func (t *Transaction) DeviceID() string               { return t.deviceID }
func (t *Transaction) CardLastFour() string           { return t.cardLastFour }
func (t *Transaction) RiskScore() float64             { return t.riskScore }
func (t *Transaction) Flagged() bool                  { return t.flagged }
func (t *Transaction) ConfirmedFraud() bool           { return t.confirmedFraud }
func (t *Transaction) ScoredAt() time.Time            { return t.scoredAt }
func (t *Transaction) ReviewedAt() time.Time          { return t.reviewedAt }
func (t *Transaction) ReviewedBy() string             { return t.reviewedBy }
func (t *Transaction) CreatedAt() time.Time           { return t.createdAt }

// OccurredAt returns the reported timestamp, or the receive time when the
// request carried none.
func (t *Transaction) OccurredAt() time.Time {
	if t.timestamp.IsZero() {
		return t.createdAt
	}
	return t.timestamp
}

// Scored reports whether a score has been applied.
func (t *Transaction) Scored() bool { return !t.scoredAt.IsZero() }

// RiskFactors returns a copy of the risk-factor descriptions.
func (t *Transaction) RiskFactors() []string {
	return append(make([]string, 0, len(t.riskFactors)), t.riskFactors...)
}

// DomainEvents returns all accumulated domain events and clears them.
func (t *Transaction) DomainEvents() []events.DomainEvent {
	return t.ClearEvents()
}
