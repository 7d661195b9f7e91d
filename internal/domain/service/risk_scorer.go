package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
)

const (
	// HighRiskThreshold is the score a transaction must exceed to be flagged.
	HighRiskThreshold = 70.0

	// MaxHistory bounds how many recent transactions are considered.
	MaxHistory = 10

	// UnknownDevice is the device identifier callers send when the device
	// could not be fingerprinted. It never counts as a new device.
	UnknownDevice = "unknown_device"

	// OnlineCity marks card-not-present purchases; it is never an unusual city.
	OnlineCity = "Online"
)

// Factor names, in evaluation order.
const (
	FactorAmount    = "amount"
	FactorLocation  = "location"
	FactorCategory  = "category"
	FactorTime      = "time"
	FactorFrequency = "frequency"
	FactorDevice    = "device"
)

// tier maps "strictly above threshold" to a percentage of a factor's
// weight. Tables are ordered by descending threshold; the first match wins.
type tier struct {
	above   int64
	percent int64
}

var (
	amountTiers = []tier{
		{above: 5, percent: 100},
		{above: 3, percent: 80},
		{above: 2, percent: 50},
	}
	frequencyTiers = []tier{
		{above: 8, percent: 100},
		{above: 5, percent: 70},
	}
)

// FactorContribution records what one factor added to a score.
type FactorContribution struct {
	Factor       string  `json:"factor"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Description  string  `json:"description,omitempty"`
}

// Triggered reports whether the factor added anything.
func (c FactorContribution) Triggered() bool { return c.Contribution > 0 }

// ScoreResult is the immutable outcome of scoring one transaction.
type ScoreResult struct {
	score         float64
	highRisk      bool
	riskFactors   []string
	contributions []FactorContribution
}

// Score returns the unclamped sum of factor contributions.
func (r ScoreResult) Score() float64 { return r.score }

// IsHighRisk reports whether Score exceeds HighRiskThreshold.
func (r ScoreResult) IsHighRisk() bool { return r.highRisk }

// RiskFactors returns the descriptions of triggered factors in factor order.
func (r ScoreResult) RiskFactors() []string {
	return append(make([]string, 0, len(r.riskFactors)), r.riskFactors...)
}

// Contributions returns every factor's contribution, triggered or not.
func (r ScoreResult) Contributions() []FactorContribution {
	return append(make([]FactorContribution, 0, len(r.contributions)), r.contributions...)
}

// scoringInput is what every factor evaluator sees.
type scoringInput struct {
	tx      *model.Transaction
	profile *model.UserProfile
	history []*model.Transaction
	now     time.Time
}

type factor struct {
	name     string
	weight   int64
	evaluate func(s *RiskScorer, in scoringInput) (percent int64, description string)
}

var factors = []factor{
	{name: FactorAmount, weight: 25, evaluate: (*RiskScorer).amountFactor},
	{name: FactorLocation, weight: 20, evaluate: (*RiskScorer).locationFactor},
	{name: FactorCategory, weight: 15, evaluate: (*RiskScorer).categoryFactor},
	{name: FactorTime, weight: 15, evaluate: (*RiskScorer).timeFactor},
	{name: FactorFrequency, weight: 20, evaluate: (*RiskScorer).frequencyFactor},
	{name: FactorDevice, weight: 5, evaluate: (*RiskScorer).deviceFactor},
}

// RiskScorer is a stateless domain service implementing the six-factor
// additive rule engine. It is safe for concurrent use.
type RiskScorer struct {
	now             func() time.Time
	caseInsensitive bool
}

// Option configures a RiskScorer.
type Option func(*RiskScorer)

// WithClock sets the clock used as "now" by the frequency factor.
func WithClock(now func() time.Time) Option {
	return func(s *RiskScorer) { s.now = now }
}

// WithCaseInsensitiveLocations makes country and city comparisons ignore case.
func WithCaseInsensitiveLocations() Option {
	return func(s *RiskScorer) { s.caseInsensitive = true }
}

// NewRiskScorer creates a new RiskScorer instance.
func NewRiskScorer(opts ...Option) *RiskScorer {
	s := &RiskScorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score evaluates tx against profile and history. Missing fields simply
// produce no signal, so Score never fails. A nil profile scores every
// profile-based factor as zero.
func (s *RiskScorer) Score(tx *model.Transaction, profile *model.UserProfile, history []*model.Transaction) ScoreResult {
	if profile == nil {
		profile = &model.UserProfile{}
	}
	in := scoringInput{
		tx:      tx,
		profile: profile,
		history: recentHistory(tx, history),
		now:     s.now(),
	}

	result := ScoreResult{
		riskFactors:   make([]string, 0, len(factors)),
		contributions: make([]FactorContribution, 0, len(factors)),
	}
	for _, f := range factors {
		percent, description := f.evaluate(s, in)
		contribution := float64(f.weight*percent) / 100

		c := FactorContribution{Factor: f.name, Weight: float64(f.weight), Contribution: contribution}
		if c.Triggered() {
			c.Description = description
			result.riskFactors = append(result.riskFactors, description)
		}
		result.contributions = append(result.contributions, c)
		result.score += contribution
	}
	result.highRisk = result.score > HighRiskThreshold

	return result
}

// recentHistory drops nil entries and the transaction being scored, then
// keeps at most MaxHistory entries. Input order (newest first) is kept.
func recentHistory(tx *model.Transaction, history []*model.Transaction) []*model.Transaction {
	out := make([]*model.Transaction, 0, min(len(history), MaxHistory))
	for _, h := range history {
		if h == nil || h.ID() == tx.ID() {
			continue
		}
		out = append(out, h)
		if len(out) == MaxHistory {
			break
		}
	}
	return out
}

func (s *RiskScorer) amountFactor(in scoringInput) (int64, string) {
	avg := in.profile.Baseline.AverageAmount
	if !avg.IsPositive() {
		return 0, ""
	}
	amount := in.tx.Amount()
	for _, t := range amountTiers {
		if amount.GreaterThan(avg.Mul(decimal.NewFromInt(t.above))) {
			ratio := amount.DivRound(avg, 1)
			return t.percent, fmt.Sprintf("Amount %sx the user's average of %s", ratio.String(), avg.StringFixed(2))
		}
	}
	return 0, ""
}

func (s *RiskScorer) locationFactor(in scoringInput) (int64, string) {
	loc := in.tx.Location()
	home := in.profile.Home.Country()

	if loc.Country() != "" && home != "" && !s.equal(loc.Country(), home) {
		return 100, fmt.Sprintf("Transaction from foreign country: %s", loc.Country())
	}

	city := loc.City()
	if city == "" || s.equal(city, OnlineCity) {
		return 0, ""
	}
	for _, frequent := range in.profile.Baseline.FrequentLocations {
		if s.substringMatch(city, frequent) {
			return 0, ""
		}
	}
	return 60, fmt.Sprintf("Unusual location: %s", city)
}

func (s *RiskScorer) categoryFactor(in scoringInput) (int64, string) {
	category := in.tx.Category()
	if category == "" || in.profile.Baseline.IsFrequentCategory(category) {
		return 0, ""
	}
	return 100, fmt.Sprintf("Unusual merchant category: %s", category)
}

func (s *RiskScorer) timeFactor(in scoringInput) (int64, string) {
	ts := in.tx.Timestamp()
	if ts.IsZero() {
		return 0, ""
	}
	hours := in.profile.Baseline.ActiveHours
	if !hours.OutsideHours(ts.Hour()) {
		return 0, ""
	}
	return 100, fmt.Sprintf("Transaction at %02d:00 outside usual hours %s", ts.Hour(), hours.String())
}

func (s *RiskScorer) frequencyFactor(in scoringInput) (int64, string) {
	var count int64
	for _, h := range in.history {
		ts := h.Timestamp()
		if !ts.IsZero() && valueobject.Window24h.Contains(ts, in.now) {
			count++
		}
	}
	for _, t := range frequencyTiers {
		if count > t.above {
			return t.percent, fmt.Sprintf("High transaction frequency: %d in the last 24 hours", count)
		}
	}
	return 0, ""
}

func (s *RiskScorer) deviceFactor(in scoringInput) (int64, string) {
	device := in.tx.DeviceID()
	if device == "" || device == UnknownDevice {
		return 0, ""
	}
	for _, h := range in.history {
		if h.DeviceID() == device {
			return 0, ""
		}
	}
	return 100, fmt.Sprintf("New device: %s", device)
}

func (s *RiskScorer) equal(a, b string) bool {
	if s.caseInsensitive {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// substringMatch reports whether either string contains the other. Empty
// frequent entries never match. Known to be loose: "York" matches
// "New York".
func (s *RiskScorer) substringMatch(city, frequent string) bool {
	if frequent == "" {
		return false
	}
	if s.caseInsensitive {
		city, frequent = strings.ToLower(city), strings.ToLower(frequent)
	}
	return strings.Contains(city, frequent) || strings.Contains(frequent, city)
}
