package service

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/valueobject"
)

// ScoredRecord is the slice of a persisted transaction that statistics need.
// Amount is nullable because older rows may lack it.
type ScoredRecord struct {
	TransactionID  uuid.UUID
	Amount         decimal.NullDecimal
	Category       string
	Timestamp      time.Time
	Flagged        bool
	ConfirmedFraud bool
}

// Valid reports whether the record carries everything aggregation needs.
func (r ScoredRecord) Valid() bool {
	return r.Amount.Valid && !r.Amount.Decimal.IsNegative() &&
		r.Category != "" && !r.Timestamp.IsZero()
}

// CategoryTotals is the per-category rollup returned by GroupByCategory.
type CategoryTotals struct {
	Count        int
	SumAmount    decimal.Decimal
	FlaggedCount int
}

// DailyStat is one UTC calendar day of activity.
type DailyStat struct {
	Date         time.Time
	Count        int
	FlaggedCount int
	SumAmount    decimal.Decimal
}

// CorpusQuery is the read interface statistics are computed over.
type CorpusQuery interface {
	// Now is the instant trailing windows end at.
	Now() time.Time
	CountWhere(pred func(ScoredRecord) bool) int
	// GroupByCategory rolls up records inside window; the zero Window covers everything.
	GroupByCategory(window valueobject.Window) map[string]CategoryTotals
	// TimeSeriesByDay returns days with activity inside window, ascending.
	TimeSeriesByDay(window valueobject.Window) []DailyStat
}

// Corpus is an in-memory CorpusQuery over a snapshot of scored records.
// It is read-only after construction and safe for concurrent use.
type Corpus struct {
	records []ScoredRecord
	skipped int
	now     time.Time
}

var _ CorpusQuery = (*Corpus)(nil)

// NewCorpus keeps the valid records and counts the rest as skipped.
func NewCorpus(records []ScoredRecord, now time.Time) *Corpus {
	c := &Corpus{records: make([]ScoredRecord, 0, len(records)), now: now}
	for _, r := range records {
		if !r.Valid() {
			c.skipped++
			continue
		}
		c.records = append(c.records, r)
	}
	return c
}

// Len returns the number of valid records.
func (c *Corpus) Len() int { return len(c.records) }

// Skipped returns the number of malformed records dropped at construction.
func (c *Corpus) Skipped() int { return c.skipped }

// Now returns the snapshot time.
func (c *Corpus) Now() time.Time { return c.now }

// CountWhere counts records matching pred. A nil pred matches everything.
func (c *Corpus) CountWhere(pred func(ScoredRecord) bool) int {
	if pred == nil {
		return len(c.records)
	}
	n := 0
	for _, r := range c.records {
		if pred(r) {
			n++
		}
	}
	return n
}

// GroupByCategory implements CorpusQuery.
func (c *Corpus) GroupByCategory(window valueobject.Window) map[string]CategoryTotals {
	out := make(map[string]CategoryTotals)
	for _, r := range c.records {
		if !window.Contains(r.Timestamp, c.now) {
			continue
		}
		t := out[r.Category]
		t.Count++
		t.SumAmount = t.SumAmount.Add(r.Amount.Decimal)
		if r.Flagged {
			t.FlaggedCount++
		}
		out[r.Category] = t
	}
	return out
}

// TimeSeriesByDay implements CorpusQuery. Days are UTC calendar days; a
// bounded window covers window.Days() whole days ending today, so a 7d
// series spans today and the six days before it.
func (c *Corpus) TimeSeriesByDay(window valueobject.Window) []DailyStat {
	first, ok := firstDay(window, c.now)
	byDay := make(map[time.Time]*DailyStat)
	for _, r := range c.records {
		ts := r.Timestamp.UTC()
		if ts.After(c.now) || (ok && ts.Before(first)) {
			continue
		}
		day := truncateDay(ts)
		d, seen := byDay[day]
		if !seen {
			d = &DailyStat{Date: day}
			byDay[day] = d
		}
		d.Count++
		d.SumAmount = d.SumAmount.Add(r.Amount.Decimal)
		if r.Flagged {
			d.FlaggedCount++
		}
	}

	out := make([]DailyStat, 0, len(byDay))
	for _, d := range byDay {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// firstDay returns midnight UTC of the earliest day window covers. The
// unbounded window has no first day.
func firstDay(window valueobject.Window, now time.Time) (time.Time, bool) {
	if window.IsZero() {
		return time.Time{}, false
	}
	return truncateDay(now.UTC()).AddDate(0, 0, -(window.Days() - 1)), true
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
