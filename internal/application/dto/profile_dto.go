package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/model"
)

// UpdateProfileRequest is the input DTO for the UpdateProfile use case.
// Active hours are optional but must be given as a pair.
type UpdateProfileRequest struct {
	AverageAmount      decimal.Decimal `json:"average_amount"`
	ActiveHoursStart   *int            `json:"active_hours_start,omitempty"`
	ActiveHoursEnd     *int            `json:"active_hours_end,omitempty"`
	UserID             uuid.UUID       `json:"user_id"`
	HomeCountry        string          `json:"home_country"`
	HomeCity           string          `json:"home_city"`
	HomePostalCode     string          `json:"home_postal_code"`
	FrequentCategories []string        `json:"frequent_categories"`
	FrequentLocations  []string        `json:"frequent_locations"`
	Cards              []model.Card    `json:"cards"`
}

// ProfileResponse is the output DTO for a stored profile.
type ProfileResponse struct {
	UpdatedAt   time.Time `json:"updated_at"`
	UserID      uuid.UUID `json:"user_id"`
	Home        string    `json:"home"`
	ActiveCards int       `json:"active_cards"`
}

// ProfileFromModel converts a profile to its response DTO.
func ProfileFromModel(p *model.UserProfile, updatedAt time.Time) ProfileResponse {
	active := 0
	for _, c := range p.Cards {
		if c.Active {
			active++
		}
	}
	return ProfileResponse{
		UpdatedAt:   updatedAt,
		UserID:      p.UserID,
		Home:        p.Home.String(),
		ActiveCards: active,
	}
}
