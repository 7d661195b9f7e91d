package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/port"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
)

const keyPrefix = "cardrisk:profile:"

// CachedProfileLookup decorates a port.ProfileLookup with a Redis read-through
// cache. Redis failures degrade to the wrapped lookup.
type CachedProfileLookup struct {
	next   port.ProfileLookup
	client goredis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ port.ProfileLookup = (*CachedProfileLookup)(nil)

// NewCachedProfileLookup wraps next with a cache whose entries live for ttl.
func NewCachedProfileLookup(next port.ProfileLookup, client goredis.UniversalClient, ttl time.Duration, logger *slog.Logger) *CachedProfileLookup {
	return &CachedProfileLookup{next: next, client: client, ttl: ttl, logger: logger}
}

// GetUserProfile returns the cached profile or loads and caches it.
func (c *CachedProfileLookup) GetUserProfile(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	key := profileKey(userID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		profile, decodeErr := decodeProfile(raw)
		if decodeErr == nil {
			return profile, nil
		}
		c.logger.WarnContext(ctx, "discarding corrupt cached profile",
			slog.String("key", key),
			slog.String("error", decodeErr.Error()),
		)
	case errors.Is(err, goredis.Nil):
	default:
		c.logger.WarnContext(ctx, "profile cache read failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	profile, err := c.next.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	payload, err := encodeProfile(profile)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "profile cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}

	return profile, nil
}

// Invalidate drops a cached profile after it changes.
func (c *CachedProfileLookup) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate profile %s: %w", userID, err)
	}
	return nil
}

// Ping checks the Redis connection for readiness probes.
func (c *CachedProfileLookup) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func profileKey(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

// cachedProfile is the wire form of a model.UserProfile.
type cachedProfile struct {
	UserID             uuid.UUID       `json:"user_id"`
	HomeCountry        string          `json:"home_country"`
	HomeCity           string          `json:"home_city"`
	HomePostalCode     string          `json:"home_postal_code"`
	Cards              []model.Card    `json:"cards"`
	AverageAmount      decimal.Decimal `json:"average_amount"`
	FrequentCategories []string        `json:"frequent_categories"`
	FrequentLocations  []string        `json:"frequent_locations"`
	ActiveHoursStart   *int            `json:"active_hours_start,omitempty"`
	ActiveHoursEnd     *int            `json:"active_hours_end,omitempty"`
}

func encodeProfile(p *model.UserProfile) ([]byte, error) {
	cp := cachedProfile{
		UserID:             p.UserID,
		HomeCountry:        p.Home.Country(),
		HomeCity:           p.Home.City(),
		HomePostalCode:     p.Home.PostalCode(),
		Cards:              p.Cards,
		AverageAmount:      p.Baseline.AverageAmount,
		FrequentCategories: p.Baseline.FrequentCategories,
		FrequentLocations:  p.Baseline.FrequentLocations,
	}
	if h := p.Baseline.ActiveHours; !h.IsZero() {
		start, end := h.Start(), h.End()
		cp.ActiveHoursStart, cp.ActiveHoursEnd = &start, &end
	}
	return json.Marshal(cp)
}

func decodeProfile(raw []byte) (*model.UserProfile, error) {
	var cp cachedProfile
	if err := json.Unmarshal(raw, &cp); err != nil {
		return nil, err
	}

	var hours valueobject.ActiveHours
	if cp.ActiveHoursStart != nil && cp.ActiveHoursEnd != nil {
		var err error
		if hours, err = valueobject.NewActiveHours(*cp.ActiveHoursStart, *cp.ActiveHoursEnd); err != nil {
			return nil, err
		}
	}

	return &model.UserProfile{
		UserID: cp.UserID,
		Home:   valueobject.NewLocation(cp.HomeCountry, cp.HomeCity, cp.HomePostalCode),
		Cards:  cp.Cards,
		Baseline: model.Baseline{
			AverageAmount:      cp.AverageAmount,
			FrequentCategories: cp.FrequentCategories,
			FrequentLocations:  cp.FrequentLocations,
			ActiveHours:        hours,
		},
	}, nil
}
