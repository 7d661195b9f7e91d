package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/valueobject"
)

// Card is a payment card registered to a user.
type Card struct {
	LastFour string `json:"last_four"`
	Network  string `json:"network"`
	Active   bool   `json:"active"`
}

// Baseline is a user's behavioral profile: what normal activity looks like.
type Baseline struct {
	AverageAmount      decimal.Decimal
	FrequentCategories []string
	FrequentLocations  []string
	ActiveHours        valueobject.ActiveHours
}

// IsFrequentCategory reports whether category is one of the user's
// frequent merchant categories. Matching is exact.
func (b Baseline) IsFrequentCategory(category string) bool {
	for _, c := range b.FrequentCategories {
		if c == category {
			return true
		}
	}
	return false
}

// UserProfile is the read model the scorer compares transactions against.
type UserProfile struct {
	UserID   uuid.UUID
	Home     valueobject.Location
	Cards    []Card
	Baseline Baseline
}

// ActiveCard returns the active registered card ending in lastFour.
func (p *UserProfile) ActiveCard(lastFour string) (Card, bool) {
	for _, c := range p.Cards {
		if c.LastFour == lastFour && c.Active {
			return c, true
		}
	}
	return Card{}, false
}
