package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
	pgutil "github.com/bibbank/cardrisk/pkg/postgres"
)

// ProfileRepository implements port.ProfileLookup and port.ProfileStore
// using PostgreSQL.
type ProfileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository creates a new PostgreSQL-backed profile repository.
func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

// GetUserProfile loads a profile together with its registered cards.
func (r *ProfileRepository) GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	query := `
		SELECT user_id, home_country, home_city, home_postal_code,
			average_amount, frequent_categories, frequent_locations,
			active_hours_start, active_hours_end
		FROM user_profiles
		WHERE user_id = $1
	`

	var (
		id                 uuid.UUID
		country            string
		city               string
		postalCode         string
		averageAmount      decimal.Decimal
		frequentCategories []string
		frequentLocations  []string
		hoursStart         *int16
		hoursEnd           *int16
	)

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&id, &country, &city, &postalCode,
		&averageAmount, &frequentCategories, &frequentLocations,
		&hoursStart, &hoursEnd,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("user %s: %w", userID, model.ErrProfileNotFound)
		}
		return nil, fmt.Errorf("failed to scan user profile: %w", err)
	}

	var hours valueobject.ActiveHours
	if hoursStart != nil && hoursEnd != nil {
		hours, err = valueobject.NewActiveHours(int(*hoursStart), int(*hoursEnd))
		if err != nil {
			return nil, fmt.Errorf("failed to parse active hours: %w", err)
		}
	}

	cards, err := loadCards(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}

	return &model.UserProfile{
		UserID: id,
		Home:   valueobject.NewLocation(country, city, postalCode),
		Cards:  cards,
		Baseline: model.Baseline{
			AverageAmount:      averageAmount,
			FrequentCategories: frequentCategories,
			FrequentLocations:  frequentLocations,
			ActiveHours:        hours,
		},
	}, nil
}

// SaveProfile upserts a profile and replaces its card list.
func (r *ProfileRepository) SaveProfile(ctx context.Context, profile *model.UserProfile) error {
	return pgutil.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var hoursStart, hoursEnd *int16
		if h := profile.Baseline.ActiveHours; !h.IsZero() {
			s, e := int16(h.Start()), int16(h.End())
			hoursStart, hoursEnd = &s, &e
		}

		query := `
			INSERT INTO user_profiles (
				user_id, home_country, home_city, home_postal_code,
				average_amount, frequent_categories, frequent_locations,
				active_hours_start, active_hours_end
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (user_id) DO UPDATE SET
				home_country = EXCLUDED.home_country,
				home_city = EXCLUDED.home_city,
				home_postal_code = EXCLUDED.home_postal_code,
				average_amount = EXCLUDED.average_amount,
				frequent_categories = EXCLUDED.frequent_categories,
				frequent_locations = EXCLUDED.frequent_locations,
				active_hours_start = EXCLUDED.active_hours_start,
				active_hours_end = EXCLUDED.active_hours_end,
				updated_at = NOW()
		`
		_, err := tx.Exec(ctx, query,
			profile.UserID,
			profile.Home.Country(),
			profile.Home.City(),
			profile.Home.PostalCode(),
			profile.Baseline.AverageAmount,
			nonNil(profile.Baseline.FrequentCategories),
			nonNil(profile.Baseline.FrequentLocations),
			hoursStart,
			hoursEnd,
		)
		if err != nil {
			return fmt.Errorf("failed to save user profile: %w", err)
		}

		return replaceCards(ctx, tx, profile.UserID, profile.Cards)
	})
}

func replaceCards(ctx context.Context, q pgutil.Querier, userID uuid.UUID, cards []model.Card) error {
	if _, err := q.Exec(ctx, `DELETE FROM user_cards WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete old cards: %w", err)
	}

	for _, c := range cards {
		_, err := q.Exec(ctx,
			`INSERT INTO user_cards (user_id, last_four, network, active) VALUES ($1, $2, $3, $4)`,
			userID, c.LastFour, c.Network, c.Active,
		)
		if err != nil {
			return fmt.Errorf("failed to save card: %w", err)
		}
	}

	return nil
}

func loadCards(ctx context.Context, q pgutil.Querier, userID uuid.UUID) ([]model.Card, error) {
	rows, err := q.Query(ctx,
		`SELECT last_four, network, active FROM user_cards WHERE user_id = $1 ORDER BY created_at, last_four`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	cards := make([]model.Card, 0)
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.LastFour, &c.Network, &c.Active); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, c)
	}

	return cards, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
