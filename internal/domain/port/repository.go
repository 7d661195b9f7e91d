package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/service"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
	"github.com/bibbank/cardrisk/pkg/events"
)

// ProfileLookup loads a user's behavioral profile.
type ProfileLookup interface {
	// GetUserProfile returns an error wrapping model.ErrProfileNotFound for unknown users.
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
}

// ProfileStore persists behavioral profiles.
type ProfileStore interface {
	// SaveProfile upserts the profile and replaces its cards.
	SaveProfile(ctx context.Context, profile *model.UserProfile) error
}

// ProfileCache drops cached profiles after they change.
type ProfileCache interface {
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// HistoryLookup loads a user's prior transactions.
type HistoryLookup interface {
	// RecentTransactions returns at most limit transactions, newest first.
	RecentTransactions(ctx context.Context, userID uuid.UUID, limit int) ([]*model.Transaction, error)
}

// TransactionRepository defines the persistence port for scored transactions.
type TransactionRepository interface {
	// Save persists a new scored transaction.
	Save(ctx context.Context, tx *model.Transaction) error

	// FindByID returns an error wrapping model.ErrTransactionNotFound when absent.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error)

	// UpdateReview persists the reviewer fields and the flag of tx.
	UpdateReview(ctx context.Context, tx *model.Transaction) error
}

// CorpusReader scans scored transactions for statistics.
type CorpusReader interface {
	// ScoredSince returns records with a timestamp at or after since. The
	// zero time returns the whole corpus.
	ScoredSince(ctx context.Context, since time.Time) ([]service.ScoredRecord, error)
}

// EventPublisher defines the port for publishing domain events.
type EventPublisher interface {
	Publish(ctx context.Context, evts ...events.DomainEvent) error
}

// GeoLocator resolves a network address to a location.
type GeoLocator interface {
	Locate(ctx context.Context, ip string) (valueobject.Location, error)
}

// ScoreRecorder records scoring outcomes as metrics.
type ScoreRecorder interface {
	RecordScore(ctx context.Context, score float64, flagged bool)
}
