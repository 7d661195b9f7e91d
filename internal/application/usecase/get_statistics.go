package usecase

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/domain/port"
	"github.com/bibbank/cardrisk/internal/domain/service"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
	"github.com/bibbank/cardrisk/pkg/observability"
)

// GetStatistics is the use case producing the fraud dashboard reports.
type GetStatistics struct {
	reader     port.CorpusReader
	aggregator *service.StatisticsAggregator
	now        func() time.Time
}

// NewGetStatistics creates a new GetStatistics use case.
func NewGetStatistics(reader port.CorpusReader, aggregator *service.StatisticsAggregator) *GetStatistics {
	return &GetStatistics{reader: reader, aggregator: aggregator, now: time.Now}
}

// Execute loads the corpus and aggregates it for the requested window.
func (uc *GetStatistics) Execute(ctx context.Context, req dto.GetStatisticsRequest) (resp dto.StatisticsResponse, err error) {
	ctx, span := observability.StartSpan(ctx, "GetStatistics.Execute",
		attribute.String("statistics.window", req.Window),
	)
	defer func() { observability.EndSpan(span, err) }()

	window, err := valueobject.ParseWindow(req.Window)
	if err != nil {
		return dto.StatisticsResponse{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	// Summary and categories cover the whole corpus; the window only
	// bounds the daily series.
	records, err := uc.reader.ScoredSince(ctx, time.Time{})
	if err != nil {
		return dto.StatisticsResponse{}, fmt.Errorf("failed to read scored transactions: %w", err)
	}

	corpus := service.NewCorpus(records, uc.now().UTC())
	span.SetAttributes(attribute.Int("corpus.size", corpus.Len()))

	return dto.FromStatistics(uc.aggregator.Aggregate(corpus, window)), nil
}
