package usecase_test

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/service"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
	"github.com/bibbank/cardrisk/pkg/events"
)

// --- Mock implementations ---

type mockProfileLookup struct {
	profiles map[uuid.UUID]*model.UserProfile
	err      error
}

func (m *mockProfileLookup) GetUserProfile(_ context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, model.ErrProfileNotFound)
	}
	return p, nil
}

type mockHistoryLookup struct {
	history   []*model.Transaction
	err       error
	lastLimit int
}

func (m *mockHistoryLookup) RecentTransactions(_ context.Context, _ uuid.UUID, limit int) ([]*model.Transaction, error) {
	m.lastLimit = limit
	return m.history, m.err
}

type mockTransactionRepository struct {
	saved        *model.Transaction
	reviewed     *model.Transaction
	saveFunc     func(ctx context.Context, tx *model.Transaction) error
	findByIDFunc func(ctx context.Context, id uuid.UUID) (*model.Transaction, error)
	updateErr    error
}

func (m *mockTransactionRepository) Save(ctx context.Context, tx *model.Transaction) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, tx)
	}
	m.saved = tx
	return nil
}

func (m *mockTransactionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Transaction, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, fmt.Errorf("transaction %s: %w", id, model.ErrTransactionNotFound)
}

func (m *mockTransactionRepository) UpdateReview(_ context.Context, tx *model.Transaction) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.reviewed = tx
	return nil
}

type mockEventPublisher struct {
	published []events.DomainEvent
	err       error
}

func (m *mockEventPublisher) Publish(_ context.Context, evts ...events.DomainEvent) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, evts...)
	return nil
}

func (m *mockEventPublisher) types() []string {
	out := make([]string, 0, len(m.published))
	for _, e := range m.published {
		out = append(out, e.EventType())
	}
	return out
}

type mockGeoLocator struct {
	loc   valueobject.Location
	err   error
	calls int
}

func (m *mockGeoLocator) Locate(_ context.Context, _ string) (valueobject.Location, error) {
	m.calls++
	return m.loc, m.err
}

type recordedScore struct {
	score   float64
	flagged bool
}

type mockScoreRecorder struct {
	scores []recordedScore
}

func (m *mockScoreRecorder) RecordScore(_ context.Context, score float64, flagged bool) {
	m.scores = append(m.scores, recordedScore{score: score, flagged: flagged})
}

type mockCorpusReader struct {
	records   []service.ScoredRecord
	err       error
	lastSince time.Time
}

func (m *mockCorpusReader) ScoredSince(_ context.Context, since time.Time) ([]service.ScoredRecord, error) {
	m.lastSince = since
	return m.records, m.err
}

type mockProfileStore struct {
	saved *model.UserProfile
	err   error
}

func (m *mockProfileStore) SaveProfile(_ context.Context, profile *model.UserProfile) error {
	if m.err != nil {
		return m.err
	}
	m.saved = profile
	return nil
}

type mockProfileCache struct {
	invalidated []uuid.UUID
	err         error
}

func (m *mockProfileCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	m.invalidated = append(m.invalidated, userID)
	return m.err
}
