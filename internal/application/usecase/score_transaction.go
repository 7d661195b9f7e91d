package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/port"
	"github.com/bibbank/cardrisk/internal/domain/service"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
	"github.com/bibbank/cardrisk/pkg/observability"
)

// ScoreTransaction is the use case for scoring an incoming card transaction.
type ScoreTransaction struct {
	profiles  port.ProfileLookup
	history   port.HistoryLookup
	repo      port.TransactionRepository
	publisher port.EventPublisher
	scorer    service.Scorer
	geo       port.GeoLocator
	recorder  port.ScoreRecorder
	logger    *slog.Logger
	now       func() time.Time
}

// ScoreOption configures optional collaborators of ScoreTransaction.
type ScoreOption func(*ScoreTransaction)

// WithGeoLocator fills missing location parts from the transaction's IP.
func WithGeoLocator(g port.GeoLocator) ScoreOption {
	return func(uc *ScoreTransaction) { uc.geo = g }
}

// WithScoreRecorder records every score as a metric.
func WithScoreRecorder(r port.ScoreRecorder) ScoreOption {
	return func(uc *ScoreTransaction) { uc.recorder = r }
}

// WithScoreLogger sets the logger.
func WithScoreLogger(l *slog.Logger) ScoreOption {
	return func(uc *ScoreTransaction) { uc.logger = l }
}

// WithScoreClock sets the clock stamping scored transactions.
func WithScoreClock(now func() time.Time) ScoreOption {
	return func(uc *ScoreTransaction) { uc.now = now }
}

// NewScoreTransaction creates a new ScoreTransaction use case.
func NewScoreTransaction(
	profiles port.ProfileLookup,
	history port.HistoryLookup,
	repo port.TransactionRepository,
	publisher port.EventPublisher,
	scorer service.Scorer,
	opts ...ScoreOption,
) *ScoreTransaction {
	uc := &ScoreTransaction{
		profiles:  profiles,
		history:   history,
		repo:      repo,
		publisher: publisher,
		scorer:    scorer,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Execute scores the transaction, persists it and publishes its events.
func (uc *ScoreTransaction) Execute(ctx context.Context, req dto.ScoreTransactionRequest) (resp dto.TransactionResponse, err error) {
	ctx, span := observability.StartSpan(ctx, "ScoreTransaction.Execute",
		attribute.String("user.id", req.UserID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	now := uc.now().UTC()

	// 1. Build the transaction aggregate.
	tx, err := model.NewTransaction(model.TransactionParams{
		ID:           req.TransactionID,
		UserID:       req.UserID,
		Amount:       req.Amount,
		MerchantName: req.MerchantName,
		Category:     req.Category,
		Location:     valueobject.NewLocation(req.Country, req.City, req.PostalCode),
		Timestamp:    req.Timestamp,
		IPAddress:    req.IPAddress,
		DeviceID:     req.DeviceID,
		CardLastFour: req.CardLastFour,
		ReceivedAt:   now,
	})
	if err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("failed to create transaction: %w", err)
	}

	// 2. Load the behavioral profile.
	profile, err := uc.profiles.GetUserProfile(ctx, tx.UserID())
	if err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("failed to load user profile: %w", err)
	}

	// 3. Enrich an incomplete location from the network address.
	uc.enrichLocation(ctx, tx, profile)
	if tx.CardLastFour() != "" {
		if _, ok := profile.ActiveCard(tx.CardLastFour()); !ok {
			uc.logger.Info("transaction on unregistered or inactive card",
				"transaction_id", tx.ID(),
				"user_id", tx.UserID(),
			)
		}
	}

	// 4. Load recent history.
	recent, err := uc.history.RecentTransactions(ctx, tx.UserID(), service.MaxHistory)
	if err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("failed to load recent transactions: %w", err)
	}

	// 5. Score and attach the result.
	result := uc.scorer.Score(tx, profile, recent)
	tx.ApplyScore(result.Score(), result.IsHighRisk(), result.RiskFactors(), now)
	span.SetAttributes(
		attribute.Float64("risk.score", result.Score()),
		attribute.Bool("risk.flagged", result.IsHighRisk()),
	)

	// 6. Persist.
	if err := uc.repo.Save(ctx, tx); err != nil {
		return dto.TransactionResponse{}, fmt.Errorf("failed to save transaction: %w", err)
	}
	if uc.recorder != nil {
		uc.recorder.RecordScore(ctx, result.Score(), result.IsHighRisk())
	}

	// 7. Publish domain events.
	if evts := tx.DomainEvents(); len(evts) > 0 {
		if err := uc.publisher.Publish(ctx, evts...); err != nil {
			return dto.TransactionResponse{}, fmt.Errorf("failed to publish events: %w", err)
		}
	}

	if result.IsHighRisk() {
		uc.logger.Warn("high-risk transaction flagged",
			"transaction_id", tx.ID(),
			"user_id", tx.UserID(),
			"score", result.Score(),
		)
	}

	return dto.FromModel(tx).WithContributions(result), nil
}

// enrichLocation fills empty location parts from the IP address. The GeoIP
// country is an ISO alpha-2 code and is only used when the profile's home
// country is one too.
func (uc *ScoreTransaction) enrichLocation(ctx context.Context, tx *model.Transaction, profile *model.UserProfile) {
	if uc.geo == nil || tx.IPAddress() == "" || tx.Location().Complete() {
		return
	}
	loc, err := uc.geo.Locate(ctx, tx.IPAddress())
	if err != nil {
		uc.logger.Warn("ip geolocation failed",
			"transaction_id", tx.ID(),
			"error", err,
		)
		return
	}
	if !isCountryCode(profile.Home.Country()) {
		loc = valueobject.NewLocation("", loc.City(), loc.PostalCode())
	}
	tx.SetLocation(tx.Location().FillMissing(loc))
}

func isCountryCode(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}
	return true
}
