package valueobject_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardrisk/internal/domain/valueobject"
)

func TestLocation(t *testing.T) {
	loc := valueobject.NewLocation(" USA ", "New York", "10001")
	assert.Equal(t, "USA", loc.Country())
	assert.Equal(t, "New York", loc.City())
	assert.Equal(t, "10001", loc.PostalCode())
	assert.True(t, loc.Complete())
	assert.False(t, loc.IsZero())
	assert.Equal(t, "New York, USA", loc.String())

	assert.True(t, valueobject.Location{}.IsZero())
	assert.Equal(t, "Lagos", valueobject.NewLocation("", "Lagos", "").String())
	assert.Equal(t, "Nigeria", valueobject.NewLocation("Nigeria", "", "").String())
}

func TestLocation_FillMissing(t *testing.T) {
	partial := valueobject.NewLocation("", "Online", "")
	geo := valueobject.NewLocation("Nigeria", "Lagos", "100001")

	filled := partial.FillMissing(geo)

	assert.Equal(t, "Nigeria", filled.Country())
	assert.Equal(t, "Online", filled.City(), "existing parts are kept")
	assert.Equal(t, "100001", filled.PostalCode())
	assert.Equal(t, "", partial.Country(), "receiver is not modified")
	assert.True(t, filled.Equal(valueobject.NewLocation("Nigeria", "Online", "100001")))
}

func TestActiveHours(t *testing.T) {
	t.Run("valid window", func(t *testing.T) {
		h, err := valueobject.NewActiveHours(8, 23)
		require.NoError(t, err)

		assert.Equal(t, 8, h.Start())
		assert.Equal(t, 23, h.End())
		assert.Equal(t, "08-23", h.String())

		tests := []struct {
			hour int
			want bool
		}{
			{0, true}, {7, true}, {8, false}, {14, false}, {23, false},
		}
		for _, tt := range tests {
			assert.Equal(t, tt.want, h.OutsideHours(tt.hour), "hour %d", tt.hour)
		}
	})

	t.Run("single hour window", func(t *testing.T) {
		h := valueobject.MustActiveHours(12, 12)
		assert.False(t, h.OutsideHours(12))
		assert.True(t, h.OutsideHours(11))
		assert.True(t, h.OutsideHours(13))
	})

	t.Run("zero value never reports off-hours", func(t *testing.T) {
		var h valueobject.ActiveHours
		assert.True(t, h.IsZero())
		for hour := 0; hour < 24; hour++ {
			assert.False(t, h.OutsideHours(hour))
		}
	})

	t.Run("invalid bounds", func(t *testing.T) {
		for _, pair := range [][2]int{{-1, 10}, {0, 24}, {24, 24}, {22, 6}} {
			_, err := valueobject.NewActiveHours(pair[0], pair[1])
			assert.Error(t, err, "start=%d end=%d", pair[0], pair[1])
		}
		assert.Panics(t, func() { valueobject.MustActiveHours(5, 1) })
	})
}

func TestParseWindow(t *testing.T) {
	tests := []struct {
		input   string
		want    valueobject.Window
		wantErr bool
	}{
		{"24h", valueobject.Window24h, false},
		{"1d", valueobject.Window24h, false},
		{"7d", valueobject.Window7d, false},
		{"", valueobject.Window7d, false},
		{"30d", valueobject.Window30d, false},
		{"90d", valueobject.Window{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := valueobject.ParseWindow(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindow_Contains(t *testing.T) {
	now := time.Date(2024, 3, 13, 14, 0, 0, 0, time.UTC)

	assert.True(t, valueobject.Window24h.Contains(now, now))
	assert.True(t, valueobject.Window24h.Contains(now.Add(-24*time.Hour), now), "start is inclusive")
	assert.False(t, valueobject.Window24h.Contains(now.Add(-24*time.Hour-time.Second), now))
	assert.False(t, valueobject.Window24h.Contains(now.Add(time.Second), now), "future instants are outside")

	assert.Equal(t, 7, valueobject.Window7d.Days())
	assert.Equal(t, 30*24*time.Hour, valueobject.Window30d.Duration())

	var all valueobject.Window
	assert.True(t, all.IsZero())
	assert.True(t, all.Contains(now.AddDate(-5, 0, 0), now))
	assert.Equal(t, "all", all.String())
	assert.Equal(t, "30d", valueobject.Window30d.String())
}
