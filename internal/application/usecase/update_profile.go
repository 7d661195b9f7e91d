package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/internal/domain/port"
	"github.com/bibbank/cardrisk/internal/domain/valueobject"
	"github.com/bibbank/cardrisk/pkg/observability"
)

// UpdateProfile replaces a user's behavioral profile and drops any cached
// copy so the next score reads the new baseline.
type UpdateProfile struct {
	store port.ProfileStore
	cache port.ProfileCache
	now   func() time.Time
}

// NewUpdateProfile creates a new UpdateProfile use case. cache may be nil.
func NewUpdateProfile(store port.ProfileStore, cache port.ProfileCache) *UpdateProfile {
	return &UpdateProfile{store: store, cache: cache, now: time.Now}
}

// Execute validates and stores the profile, then invalidates the cache.
func (uc *UpdateProfile) Execute(ctx context.Context, req dto.UpdateProfileRequest) (resp dto.ProfileResponse, err error) {
	ctx, span := observability.StartSpan(ctx, "UpdateProfile.Execute",
		attribute.String("user.id", req.UserID.String()),
	)
	defer func() { observability.EndSpan(span, err) }()

	profile, err := profileFromRequest(req)
	if err != nil {
		return dto.ProfileResponse{}, err
	}

	if err := uc.store.SaveProfile(ctx, profile); err != nil {
		return dto.ProfileResponse{}, fmt.Errorf("failed to save profile: %w", err)
	}

	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx, profile.UserID); err != nil {
			return dto.ProfileResponse{}, fmt.Errorf("failed to invalidate cached profile: %w", err)
		}
	}

	return dto.ProfileFromModel(profile, uc.now().UTC()), nil
}

func profileFromRequest(req dto.UpdateProfileRequest) (*model.UserProfile, error) {
	if req.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user ID is required", ErrInvalidArgument)
	}
	if req.AverageAmount.IsNegative() {
		return nil, fmt.Errorf("%w: average amount must not be negative", ErrInvalidArgument)
	}

	var hours valueobject.ActiveHours
	switch {
	case req.ActiveHoursStart != nil && req.ActiveHoursEnd != nil:
		h, err := valueobject.NewActiveHours(*req.ActiveHoursStart, *req.ActiveHoursEnd)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		hours = h
	case req.ActiveHoursStart != nil || req.ActiveHoursEnd != nil:
		return nil, fmt.Errorf("%w: active hours need both start and end", ErrInvalidArgument)
	}

	for _, c := range req.Cards {
		if c.LastFour == "" || len(c.LastFour) > 4 {
			return nil, fmt.Errorf("%w: card last four %q must be 1 to 4 characters", ErrInvalidArgument, c.LastFour)
		}
	}

	return &model.UserProfile{
		UserID: req.UserID,
		Home:   valueobject.NewLocation(req.HomeCountry, req.HomeCity, req.HomePostalCode),
		Cards:  append([]model.Card(nil), req.Cards...),
		Baseline: model.Baseline{
			AverageAmount:      req.AverageAmount,
			FrequentCategories: append([]string(nil), req.FrequentCategories...),
			FrequentLocations:  append([]string(nil), req.FrequentLocations...),
			ActiveHours:        hours,
		},
	}, nil
}
