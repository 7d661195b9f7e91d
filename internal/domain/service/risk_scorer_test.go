package service_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/service"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
)

var (
	testNow  = time.Date(2024, 3, 13, 14, 0, 0, 0, time.UTC)
	testUser = uuid.MustParse("00000000-0000-0000-0000-000000000001")
)

func newScorer(opts ...service.Option) *service.RiskScorer {
	return service.NewRiskScorer(append([]service.Option{service.WithClock(func() time.Time { return testNow })}, opts...)...)
}

// baselineProfile: average 100, home USA, frequent groceries in New York,
// active 08-23.
func baselineProfile() *model.UserProfile {
	return &model.UserProfile{
		UserID: testUser,
		Home:   valueobject.NewLocation("USA", "New York", "10001"),
		Baseline: model.Baseline{
			AverageAmount:      decimal.NewFromInt(100),
			FrequentCategories: []string{"groceries"},
			FrequentLocations:  []string{"New York"},
			ActiveHours:        valueobject.MustActiveHours(8, 23),
		},
	}
}

type txOpt func(*model.TransactionParams)

func withAmount(v int64) txOpt { return func(p *model.TransactionParams) { p.Amount = decimal.NewFromInt(v) } }
func withCountry(c string) txOpt {
	return func(p *model.TransactionParams) {
		p.Location = valueobject.NewLocation(c, p.Location.City(), "")
	}
}
func withCity(c string) txOpt {
	return func(p *model.TransactionParams) {
		p.Location = valueobject.NewLocation(p.Location.Country(), c, "")
	}
}
func withCategory(c string) txOpt      { return func(p *model.TransactionParams) { p.Category = c } }
func withHour(h int) txOpt             { return func(p *model.TransactionParams) { p.Timestamp = atHour(h) } }
func withDevice(d string) txOpt        { return func(p *model.TransactionParams) { p.DeviceID = d } }
func withTimestamp(ts time.Time) txOpt { return func(p *model.TransactionParams) { p.Timestamp = ts } }
func withID(id uuid.UUID) txOpt        { return func(p *model.TransactionParams) { p.ID = id } }

func atHour(h int) time.Time {
	return time.Date(testNow.Year(), testNow.Month(), testNow.Day(), h, 30, 0, 0, time.UTC)
}

// normalTx triggers no factor against baselineProfile and knownHistory.
func normalTx(t *testing.T, opts ...txOpt) *model.Transaction {
	t.Helper()
	p := model.TransactionParams{
		UserID:    testUser,
		Amount:    decimal.NewFromInt(100),
		Category:  "groceries",
		Location:  valueobject.NewLocation("USA", "New York", "10001"),
		Timestamp: atHour(14),
		DeviceID:  "dev1",
	}
	for _, opt := range opts {
		opt(&p)
	}
	tx, err := model.NewTransaction(p)
	require.NoError(t, err)
	return tx
}

// history returns n transactions on dev1 inside the last 24 hours.
func history(t *testing.T, n int) []*model.Transaction {
	t.Helper()
	out := make([]*model.Transaction, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, normalTx(t, withTimestamp(testNow.Add(-time.Duration(i+1)*time.Hour))))
	}
	return out
}

func contribution(r service.ScoreResult, factor string) float64 {
	for _, c := range r.Contributions() {
		if c.Factor == factor {
			return c.Contribution
		}
	}
	return -1
}

func TestRiskScorer_ZeroBaseline(t *testing.T) {
	result := newScorer().Score(normalTx(t, withAmount(200)), baselineProfile(), history(t, 5))

	assert.Equal(t, 0.0, result.Score())
	assert.Empty(t, result.RiskFactors())
	assert.False(t, result.IsHighRisk())
	assert.Len(t, result.Contributions(), 6, "every factor is reported")
}

func TestRiskScorer_AllFactorsAtFullWeight(t *testing.T) {
	tx := normalTx(t,
		withAmount(600),
		withCountry("Nigeria"),
		withCategory("electronics"),
		withHour(3),
		withDevice("dev9"),
	)

	result := newScorer().Score(tx, baselineProfile(), history(t, 9))

	assert.Equal(t, 100.0, result.Score())
	assert.True(t, result.IsHighRisk())
	factors := result.RiskFactors()
	require.Len(t, factors, 6)
	assert.Contains(t, factors[0], "Amount 6x")
	assert.Contains(t, factors[1], "foreign country: Nigeria")
	assert.Contains(t, factors[2], "merchant category: electronics")
	assert.Contains(t, factors[3], "03:00")
	assert.Contains(t, factors[4], "9 in the last 24 hours")
	assert.Contains(t, factors[5], "New device: dev9")
}

func TestRiskScorer_AmountTiers(t *testing.T) {
	tests := []struct {
		amount int64
		want   float64
	}{
		{100, 0},
		{200, 0},
		{201, 12.5},
		{300, 12.5},
		{301, 20},
		{350, 20},
		{500, 20},
		{501, 25},
		{550, 25},
		{10_000, 25},
	}

	scorer := newScorer()
	for _, tt := range tests {
		t.Run(fmt.Sprintf("amount %d", tt.amount), func(t *testing.T) {
			result := scorer.Score(normalTx(t, withAmount(tt.amount)), baselineProfile(), history(t, 1))
			assert.Equal(t, tt.want, contribution(result, service.FactorAmount))
			assert.Equal(t, tt.want, result.Score(), "only the amount factor may fire")
		})
	}
}

func TestRiskScorer_AmountTiersDoNotStack(t *testing.T) {
	scorer := newScorer()
	low := scorer.Score(normalTx(t, withAmount(350)), baselineProfile(), history(t, 1))
	high := scorer.Score(normalTx(t, withAmount(550)), baselineProfile(), history(t, 1))

	assert.Greater(t, high.Score(), low.Score())
	assert.Equal(t, 5.0, high.Score()-low.Score(), "tier jump from 0.8x25 to 1.0x25")
	assert.Equal(t, 25.0, high.Score())
}

func TestRiskScorer_AmountWithoutAverage(t *testing.T) {
	profile := baselineProfile()
	profile.Baseline.AverageAmount = decimal.Zero

	result := newScorer().Score(normalTx(t, withAmount(1_000_000)), profile, history(t, 1))
	assert.Equal(t, 0.0, result.Score())
}

func TestRiskScorer_Location(t *testing.T) {
	tests := []struct {
		name    string
		country string
		city    string
		want    float64
	}{
		{"home country and frequent city", "USA", "New York", 0},
		{"foreign country", "Nigeria", "Lagos", 20},
		{"foreign country without city", "Nigeria", "", 20},
		{"unusual domestic city", "USA", "Chicago", 12},
		{"online purchase", "USA", "Online", 0},
		{"substring of frequent location", "USA", "York", 0},
		{"frequent location is substring of city", "USA", "New York City", 0},
		{"case differs", "USA", "new york", 12},
		{"no location at all", "", "", 0},
		{"city only, unusual", "", "Chicago", 12},
	}

	scorer := newScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := normalTx(t, withCountry(tt.country), withCity(tt.city))
			result := scorer.Score(tx, baselineProfile(), history(t, 1))
			assert.Equal(t, tt.want, contribution(result, service.FactorLocation))
		})
	}
}

func TestRiskScorer_CaseInsensitiveLocations(t *testing.T) {
	scorer := newScorer(service.WithCaseInsensitiveLocations())

	result := scorer.Score(normalTx(t, withCountry("usa"), withCity("NEW YORK")), baselineProfile(), history(t, 1))
	assert.Equal(t, 0.0, result.Score())

	result = scorer.Score(normalTx(t, withCity("online")), baselineProfile(), history(t, 1))
	assert.Equal(t, 0.0, result.Score())
}

func TestRiskScorer_LocationWithoutFrequentLocations(t *testing.T) {
	profile := baselineProfile()
	profile.Baseline.FrequentLocations = []string{""}

	result := newScorer().Score(normalTx(t), profile, history(t, 1))
	assert.Equal(t, 12.0, contribution(result, service.FactorLocation), "empty entries never match")
}

func TestRiskScorer_Category(t *testing.T) {
	scorer := newScorer()

	result := scorer.Score(normalTx(t, withCategory("electronics")), baselineProfile(), history(t, 1))
	assert.Equal(t, 15.0, result.Score())

	result = scorer.Score(normalTx(t, withCategory("")), baselineProfile(), history(t, 1))
	assert.Equal(t, 0.0, result.Score(), "missing category is no signal")
}

func TestRiskScorer_TimeOfDay(t *testing.T) {
	scorer := newScorer()
	for hour := 0; hour < 24; hour++ {
		want := 0.0
		if hour < 8 {
			want = 15
		}
		result := scorer.Score(normalTx(t, withHour(hour)), baselineProfile(), history(t, 1))
		assert.Equal(t, want, contribution(result, service.FactorTime), "hour %d", hour)
	}

	noTime := normalTx(t, withTimestamp(time.Time{}))
	assert.Equal(t, 0.0, scorer.Score(noTime, baselineProfile(), history(t, 1)).Score())

	profile := baselineProfile()
	profile.Baseline.ActiveHours = valueobject.ActiveHours{}
	assert.Equal(t, 0.0, scorer.Score(normalTx(t, withHour(3)), profile, history(t, 1)).Score())
}

func TestRiskScorer_Frequency(t *testing.T) {
	tests := []struct {
		count int
		want  float64
	}{
		{0, 0}, {5, 0}, {6, 14}, {8, 14}, {9, 20}, {10, 20},
	}

	scorer := newScorer()
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d recent", tt.count), func(t *testing.T) {
			tx := normalTx(t, withDevice(service.UnknownDevice))
			result := scorer.Score(tx, baselineProfile(), history(t, tt.count))
			assert.Equal(t, tt.want, contribution(result, service.FactorFrequency))
		})
	}
}

func TestRiskScorer_FrequencyIgnoresOldAndUndatedEntries(t *testing.T) {
	h := history(t, 5)
	h = append(h,
		normalTx(t, withTimestamp(testNow.Add(-25*time.Hour))),
		normalTx(t, withTimestamp(testNow.Add(-48*time.Hour))),
		normalTx(t, withTimestamp(time.Time{})),
		normalTx(t, withTimestamp(testNow.Add(time.Hour))),
	)

	result := newScorer().Score(normalTx(t), baselineProfile(), h)
	assert.Equal(t, 0.0, contribution(result, service.FactorFrequency))
}

func TestRiskScorer_HistoryIsTruncated(t *testing.T) {
	// 15 recent entries still count as 10.
	result := newScorer().Score(normalTx(t), baselineProfile(), history(t, 15))
	assert.Contains(t, result.RiskFactors()[0], "10 in the last 24 hours")

	// A device seen only beyond the tenth entry is new.
	h := history(t, 10)
	h = append(h, normalTx(t, withDevice("dev9"), withTimestamp(testNow.Add(-30*time.Hour))))
	result = newScorer().Score(normalTx(t, withDevice("dev9")), baselineProfile(), h)
	assert.Equal(t, 5.0, contribution(result, service.FactorDevice))
}

func TestRiskScorer_ExcludesScoredTransactionFromHistory(t *testing.T) {
	id := uuid.New()
	tx := normalTx(t, withID(id), withDevice("dev9"))

	// The same transaction fed back as history must not make its device known.
	self := normalTx(t, withID(id), withDevice("dev9"))
	h := append(history(t, 5), self)

	result := newScorer().Score(tx, baselineProfile(), h)
	assert.Equal(t, 5.0, contribution(result, service.FactorDevice))
	assert.Equal(t, 0.0, contribution(result, service.FactorFrequency), "self does not push the count to 6")
}

func TestRiskScorer_Device(t *testing.T) {
	scorer := newScorer()
	tests := []struct {
		device string
		want   float64
	}{
		{"dev1", 0},
		{"dev9", 5},
		{service.UnknownDevice, 0},
		{"", 0},
	}
	for _, tt := range tests {
		result := scorer.Score(normalTx(t, withDevice(tt.device)), baselineProfile(), history(t, 2))
		assert.Equal(t, tt.want, result.Score(), "device %q", tt.device)
	}

	result := scorer.Score(normalTx(t, withDevice("dev1")), baselineProfile(), nil)
	assert.Equal(t, 5.0, result.Score(), "with no history every device is new")
}

func TestRiskScorer_NilProfile(t *testing.T) {
	result := newScorer().Score(normalTx(t, withAmount(1000)), nil, history(t, 1))
	assert.Equal(t, 0.0, contribution(result, service.FactorAmount))
	assert.Equal(t, 15.0, contribution(result, service.FactorCategory))
	assert.Equal(t, 12.0, contribution(result, service.FactorLocation), "no frequent locations to match")
	assert.Equal(t, 27.0, result.Score())
}

func TestRiskScorer_ScenarioForeignElectronics(t *testing.T) {
	tx := normalTx(t,
		withAmount(550),
		withCountry("Nigeria"),
		withCategory("electronics"),
		withHour(14),
		withDevice("dev1"),
	)

	result := newScorer().Score(tx, baselineProfile(), history(t, 2))

	assert.Equal(t, 60.0, result.Score())
	assert.False(t, result.IsHighRisk())
	factors := result.RiskFactors()
	require.Len(t, factors, 3)
	assert.Contains(t, factors[0], "Amount 5.5x")
	assert.Contains(t, factors[1], "Nigeria")
	assert.Contains(t, factors[2], "electronics")
}

// Every combination of factor outcomes: the score is the sum of the parts
// and IsHighRisk holds exactly when the score exceeds 70.
func TestRiskScorer_HighRiskIffScoreAboveThreshold(t *testing.T) {
	amounts := []struct {
		amount int64
		want   float64
	}{{100, 0}, {250, 12.5}, {350, 20}, {550, 25}}
	locations := []struct {
		country, city string
		want          float64
	}{{"USA", "New York", 0}, {"USA", "Lagos", 12}, {"Nigeria", "Lagos", 20}}
	categories := []struct {
		category string
		want     float64
	}{{"groceries", 0}, {"electronics", 15}}
	hours := []struct {
		hour int
		want float64
	}{{14, 0}, {3, 15}}
	frequencies := []struct {
		count int
		want  float64
	}{{2, 0}, {6, 14}, {9, 20}}
	devices := []struct {
		device string
		want   float64
	}{{"dev1", 0}, {"dev9", 5}}

	scorer := newScorer()
	profile := baselineProfile()
	histories := map[int][]*model.Transaction{}
	for _, f := range frequencies {
		histories[f.count] = history(t, f.count)
	}

	combos, flagged := 0, 0
	for _, a := range amounts {
		for _, l := range locations {
			for _, c := range categories {
				for _, h := range hours {
					for _, f := range frequencies {
						for _, d := range devices {
							tx := normalTx(t,
								withAmount(a.amount),
								withCountry(l.country), withCity(l.city),
								withCategory(c.category),
								withHour(h.hour),
								withDevice(d.device),
							)
							want := a.want + l.want + c.want + h.want + f.want + d.want

							result := scorer.Score(tx, profile, histories[f.count])

							require.Equal(t, want, result.Score())
							require.Equal(t, result.Score() > 70, result.IsHighRisk(), "score %.1f", result.Score())
							combos++
							if result.IsHighRisk() {
								flagged++
							}
						}
					}
				}
			}
		}
	}
	assert.Equal(t, 288, combos)
	assert.Positive(t, flagged)
	assert.Less(t, flagged, combos)
}

func TestRiskScorer_ExactlySeventyIsNotHighRisk(t *testing.T) {
	// 20 (amount) + 20 (location) + 15 (category) + 15 (time)
	tx := normalTx(t, withAmount(350), withCountry("Nigeria"), withCategory("electronics"), withHour(3))

	result := newScorer().Score(tx, baselineProfile(), history(t, 1))

	assert.Equal(t, 70.0, result.Score())
	assert.False(t, result.IsHighRisk())
}

func TestScoreResult_Immutability(t *testing.T) {
	scorer := newScorer()
	first := normalTx(t, withAmount(550), withCountry("Nigeria"), withDevice("dev9"))
	result := scorer.Score(first, baselineProfile(), history(t, 2))
	before := result.RiskFactors()
	scoreBefore := result.Score()

	first.ApplyScore(result.Score(), result.IsHighRisk(), result.RiskFactors(), testNow)

	// Feed the scored transaction back as history for a second scoring call.
	second := normalTx(t, withDevice("dev9"))
	_ = scorer.Score(second, baselineProfile(), append([]*model.Transaction{first}, history(t, 2)...))

	assert.Equal(t, scoreBefore, result.Score())
	assert.Equal(t, before, result.RiskFactors())
	assert.Equal(t, scoreBefore, first.RiskScore())

	factors := result.RiskFactors()
	factors[0] = "tampered"
	assert.Equal(t, before, result.RiskFactors(), "accessors return copies")
}

func TestRiskScorer_ConcurrentUse(t *testing.T) {
	scorer := newScorer()
	profile := baselineProfile()
	h := history(t, 6)
	tx := normalTx(t, withAmount(550), withCountry("Nigeria"))

	var wg sync.WaitGroup
	results := make([]float64, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = scorer.Score(tx, profile, h).Score()
		}(i)
	}
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, 59.0, r)
	}
}
