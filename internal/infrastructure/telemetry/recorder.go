package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Recorder implements port.ScoreRecorder with OpenTelemetry instruments.
type Recorder struct {
	scored metric.Int64Counter
	scores metric.Float64Histogram
}

// NewRecorder registers the scoring instruments on meter.
func NewRecorder(meter metric.Meter) (*Recorder, error) {
	scored, err := meter.Int64Counter("cardrisk_transactions_scored",
		metric.WithDescription("Transactions scored, by flag outcome."),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scored counter: %w", err)
	}

	scores, err := meter.Float64Histogram("cardrisk_risk_score",
		metric.WithDescription("Distribution of risk scores."),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create score histogram: %w", err)
	}

	return &Recorder{scored: scored, scores: scores}, nil
}

// RecordScore records one scoring outcome.
func (r *Recorder) RecordScore(ctx context.Context, score float64, flagged bool) {
	attrs := metric.WithAttributes(attribute.Bool("flagged", flagged))
	r.scored.Add(ctx, 1, attrs)
	r.scores.Record(ctx, score, attrs)
}
