package service

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/valueobject"
)

// FillPolicy decides whether days without activity appear in a daily series.
type FillPolicy int

const (
	// FillSparse omits days with no transactions.
	FillSparse FillPolicy = iota
	// FillDense emits every day of the window, with zero rows for idle days.
	FillDense
)

// ParseFillPolicy accepts "sparse" (or "") and "dense".
func ParseFillPolicy(s string) (FillPolicy, error) {
	switch s {
	case "sparse", "":
		return FillSparse, nil
	case "dense":
		return FillDense, nil
	default:
		return FillSparse, fmt.Errorf("invalid fill policy: %q (want sparse or dense)", s)
	}
}

// String returns the string representation.
func (p FillPolicy) String() string {
	if p == FillDense {
		return "dense"
	}
	return "sparse"
}

// Summary holds corpus-wide counts.
type Summary struct {
	Total          int
	Flagged        int
	ConfirmedFraud int
	// FlaggedPercentage is Flagged/Total*100 rounded to 2 places, or 0
	// for an empty corpus.
	FlaggedPercentage decimal.Decimal
}

// CategoryBreakdown is one row of the category report.
type CategoryBreakdown struct {
	Category     string
	Count        int
	TotalAmount  decimal.Decimal
	FlaggedCount int
}

// Statistics bundles every report for one window.
type Statistics struct {
	Window      valueobject.Window
	GeneratedAt time.Time
	Summary     Summary
	Categories  []CategoryBreakdown
	Daily       []DailyStat
	Skipped     int
}

// StatisticsAggregator turns a CorpusQuery into reports. It holds no
// mutable state and is safe for concurrent use.
type StatisticsAggregator struct {
	fill   FillPolicy
	logger *slog.Logger
}

// AggregatorOption configures a StatisticsAggregator.
type AggregatorOption func(*StatisticsAggregator)

// WithFillPolicy sets how DailySeries treats idle days.
func WithFillPolicy(p FillPolicy) AggregatorOption {
	return func(a *StatisticsAggregator) { a.fill = p }
}

// WithLogger sets the logger used to report skipped records.
func WithLogger(l *slog.Logger) AggregatorOption {
	return func(a *StatisticsAggregator) { a.logger = l }
}

// NewStatisticsAggregator creates an aggregator using sparse series by default.
func NewStatisticsAggregator(opts ...AggregatorOption) *StatisticsAggregator {
	a := &StatisticsAggregator{
		fill:   FillSparse,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Summary counts the corpus.
func (a *StatisticsAggregator) Summary(q CorpusQuery) Summary {
	total := q.CountWhere(nil)
	flagged := q.CountWhere(func(r ScoredRecord) bool { return r.Flagged })
	confirmed := q.CountWhere(func(r ScoredRecord) bool { return r.ConfirmedFraud })

	return Summary{
		Total:             total,
		Flagged:           flagged,
		ConfirmedFraud:    confirmed,
		FlaggedPercentage: FlaggedPercentage(flagged, total),
	}
}

// FlaggedPercentage returns flagged/total*100 rounded half away from zero
// to 2 places. A zero total yields 0 instead of dividing by zero.
func FlaggedPercentage(flagged, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(flagged)).
		Mul(decimal.NewFromInt(100)).
		DivRound(decimal.NewFromInt(int64(total)), 2)
}

// Categories reports every category in the corpus, most used first. Ties
// are broken alphabetically so the order is stable.
func (a *StatisticsAggregator) Categories(q CorpusQuery) []CategoryBreakdown {
	groups := q.GroupByCategory(valueobject.Window{})

	out := make([]CategoryBreakdown, 0, len(groups))
	for category, t := range groups {
		out = append(out, CategoryBreakdown{
			Category:     category,
			Count:        t.Count,
			TotalAmount:  t.SumAmount,
			FlaggedCount: t.FlaggedCount,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// DailySeries reports UTC days in window, ascending, filled according to
// the aggregator's policy.
func (a *StatisticsAggregator) DailySeries(q CorpusQuery, window valueobject.Window) []DailyStat {
	series := q.TimeSeriesByDay(window)
	if a.fill != FillDense {
		return series
	}

	first, ok := firstDay(window, q.Now())
	if !ok {
		if len(series) == 0 {
			return series
		}
		first = series[0].Date
	}
	last := truncateDay(q.Now())

	byDay := make(map[time.Time]DailyStat, len(series))
	for _, d := range series {
		byDay[d.Date] = d
	}

	dense := make([]DailyStat, 0, len(series))
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		d, ok := byDay[day]
		if !ok {
			d = DailyStat{Date: day, SumAmount: decimal.Zero}
		}
		dense = append(dense, d)
	}
	return dense
}

// Aggregate produces every report for window.
func (a *StatisticsAggregator) Aggregate(q CorpusQuery, window valueobject.Window) Statistics {
	stats := Statistics{
		Window:      window,
		GeneratedAt: q.Now(),
		Summary:     a.Summary(q),
		Categories:  a.Categories(q),
		Daily:       a.DailySeries(q, window),
	}

	if s, ok := q.(interface{ Skipped() int }); ok && s.Skipped() > 0 {
		stats.Skipped = s.Skipped()
		a.logger.Warn("malformed records skipped during aggregation",
			slog.Int("skipped", stats.Skipped),
			slog.String("window", window.String()),
		)
	}

	return stats
}
