package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/service"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
	pgutil "github.com/bibbank/cardrisk/pkg/postgres"
)

const transactionColumns = `
	id, user_id, amount, merchant_name, merchant_category,
	country, city, postal_code, ip_address, device_id, card_last_four,
	occurred_at, risk_score, flagged, risk_factors, confirmed_fraud,
	scored_at, reviewed_at, reviewed_by, created_at
`

// TransactionRepository implements port.TransactionRepository,
// port.HistoryLookup and port.CorpusReader using PostgreSQL.
type TransactionRepository struct {
	db pgutil.Querier
}

// NewTransactionRepository creates a new PostgreSQL-backed transaction
// repository. db is a pool, or a pgx.Tx to run inside WithTransaction.
func NewTransactionRepository(db pgutil.Querier) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Save persists a scored transaction. Saving the same ID again overwrites
// the score so a retried request does not fail on the primary key. Once a
// transaction has been reviewed its stored score and flag are left as is.
func (r *TransactionRepository) Save(ctx context.Context, t *model.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (id) DO UPDATE SET
			risk_score = EXCLUDED.risk_score,
			flagged = EXCLUDED.flagged,
			risk_factors = EXCLUDED.risk_factors,
			scored_at = EXCLUDED.scored_at
		WHERE transactions.reviewed_at IS NULL
	`

	loc := t.Location()
	_, err := r.db.Exec(ctx, query,
		t.ID(),
		t.UserID(),
		t.Amount(),
		t.MerchantName(),
		t.Category(),
		loc.Country(),
		loc.City(),
		loc.PostalCode(),
		t.IPAddress(),
		t.DeviceID(),
		t.CardLastFour(),
		t.OccurredAt(),
		t.RiskScore(),
		t.Flagged(),
		t.RiskFactors(),
		t.ConfirmedFraud(),
		nullTime(t.ScoredAt()),
		nullTime(t.ReviewedAt()),
		t.ReviewedBy(),
		createdAt(t),
	)
	if err != nil {
		return fmt.Errorf("failed to save transaction: %w", err)
	}

	return nil
}

// FindByID retrieves a transaction by its unique identifier.
func (r *TransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`

	t, err := scanTransaction(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, model.ErrTransactionNotFound)
		}
		return nil, err
	}

	return t, nil
}

// UpdateReview persists the reviewer decision.
func (r *TransactionRepository) UpdateReview(ctx context.Context, t *model.Transaction) error {
	query := `
		UPDATE transactions
		SET confirmed_fraud = $2, flagged = $3, reviewed_at = $4, reviewed_by = $5
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		t.ID(), t.ConfirmedFraud(), t.Flagged(), nullTime(t.ReviewedAt()), t.ReviewedBy(),
	)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("transaction %s: %w", t.ID(), model.ErrTransactionNotFound)
	}

	return nil
}

// RecentTransactions returns the user's latest transactions, newest first.
func (r *TransactionRepository) RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY occurred_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	history := make([]*model.Transaction, 0, limit)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		history = append(history, t)
	}

	return history, rows.Err()
}

// ScoredSince streams the statistics corpus. The zero time selects every
// scored transaction.
func (r *TransactionRepository) ScoredSince(ctx context.Context, since time.Time) ([]service.ScoredRecord, error) {
	query := `
		SELECT id, amount, merchant_category, occurred_at, flagged, confirmed_fraud
		FROM transactions
		WHERE scored_at IS NOT NULL AND occurred_at >= $1
		ORDER BY occurred_at
	`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query scored transactions: %w", err)
	}
	defer rows.Close()

	var records []service.ScoredRecord
	for rows.Next() {
		var rec service.ScoredRecord
		if err := rows.Scan(
			&rec.TransactionID, &rec.Amount, &rec.Category,
			&rec.Timestamp, &rec.Flagged, &rec.ConfirmedFraud,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scored transaction: %w", err)
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	var (
		p          model.ReconstructParams
		country    string
		city       string
		postalCode string
		scoredAt   *time.Time
		reviewedAt *time.Time
	)

	err := row.Scan(
		&p.ID, &p.UserID, &p.Amount, &p.MerchantName, &p.Category,
		&country, &city, &postalCode, &p.IPAddress, &p.DeviceID, &p.CardLastFour,
		&p.Timestamp, &p.RiskScore, &p.Flagged, &p.RiskFactors, &p.ConfirmedFraud,
		&scoredAt, &reviewedAt, &p.ReviewedBy, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	p.Location = valueobject.NewLocation(country, city, postalCode)
	if scoredAt != nil {
		p.ScoredAt = *scoredAt
	}
	if reviewedAt != nil {
		p.ReviewedAt = *reviewedAt
	}

	return model.Reconstruct(p), nil
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func createdAt(t *model.Transaction) time.Time {
	if at := t.CreatedAt(); !at.IsZero() {
		return at
	}
	return time.Now().UTC()
}
