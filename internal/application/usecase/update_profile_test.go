package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/application/usecase"
	"github.com/bibbank/cardrisk/internal/domain/model"
	"github.com/bibbank/cardrisk/pkg/testutil"
)

func intPtr(v int) *int { return &v }

func validProfileRequest() dto.UpdateProfileRequest {
	return dto.UpdateProfileRequest{
		UserID:             userID,
		HomeCountry:        "USA",
		HomeCity:           "New York",
		HomePostalCode:     "10001",
		AverageAmount:      decimal.NewFromInt(120),
		FrequentCategories: []string{"groceries", "fuel"},
		FrequentLocations:  []string{"New York"},
		ActiveHoursStart:   intPtr(8),
		ActiveHoursEnd:     intPtr(22),
		Cards: []model.Card{
			{LastFour: "4242", Network: "visa", Active: true},
			{LastFour: "0005", Network: "amex", Active: false},
		},
	}
}

func TestUpdateProfile_Execute(t *testing.T) {
	t.Run("stores the profile and invalidates the cache", func(t *testing.T) {
		store := &mockProfileStore{}
		cache := &mockProfileCache{}
		uc := usecase.NewUpdateProfile(store, cache)

		resp, err := uc.Execute(context.Background(), validProfileRequest())

		require.NoError(t, err)
		require.NotNil(t, store.saved)
		assert.Equal(t, userID, store.saved.UserID)
		assert.Equal(t, "USA", store.saved.Home.Country())
		assert.Equal(t, 8, store.saved.Baseline.ActiveHours.Start())
		assert.Equal(t, 22, store.saved.Baseline.ActiveHours.End())
		testutil.AssertDecimalEqual(t, decimal.NewFromInt(120), store.saved.Baseline.AverageAmount)
		assert.Equal(t, []uuid.UUID{userID}, cache.invalidated)
		assert.Equal(t, "New York, USA", resp.Home)
		assert.Equal(t, 1, resp.ActiveCards)
	})

	t.Run("works without a cache", func(t *testing.T) {
		store := &mockProfileStore{}
		req := validProfileRequest()
		req.ActiveHoursStart, req.ActiveHoursEnd = nil, nil

		_, err := usecase.NewUpdateProfile(store, nil).Execute(context.Background(), req)

		require.NoError(t, err)
		require.NotNil(t, store.saved)
		assert.True(t, store.saved.Baseline.ActiveHours.IsZero())
	})

	t.Run("does not invalidate when the save fails", func(t *testing.T) {
		store := &mockProfileStore{err: errors.New("connection refused")}
		cache := &mockProfileCache{}

		_, err := usecase.NewUpdateProfile(store, cache).Execute(context.Background(), validProfileRequest())

		testutil.AssertErrorContains(t, err, "failed to save profile")
		assert.Empty(t, cache.invalidated)
	})

	t.Run("reports a cache failure", func(t *testing.T) {
		store := &mockProfileStore{}
		cache := &mockProfileCache{err: errors.New("redis down")}

		_, err := usecase.NewUpdateProfile(store, cache).Execute(context.Background(), validProfileRequest())

		testutil.AssertErrorContains(t, err, "failed to invalidate cached profile")
		assert.NotNil(t, store.saved)
	})
}

func TestUpdateProfile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(r *dto.UpdateProfileRequest)
	}{
		{"missing user", func(r *dto.UpdateProfileRequest) { r.UserID = uuid.Nil }},
		{"negative average", func(r *dto.UpdateProfileRequest) { r.AverageAmount = decimal.NewFromInt(-1) }},
		{"only start hour", func(r *dto.UpdateProfileRequest) { r.ActiveHoursEnd = nil }},
		{"start after end", func(r *dto.UpdateProfileRequest) { r.ActiveHoursStart = intPtr(23); r.ActiveHoursEnd = intPtr(2) }},
		{"hour out of range", func(r *dto.UpdateProfileRequest) { r.ActiveHoursEnd = intPtr(24) }},
		{"empty card digits", func(r *dto.UpdateProfileRequest) { r.Cards[0].LastFour = "" }},
		{"long card digits", func(r *dto.UpdateProfileRequest) { r.Cards[0].LastFour = "42424" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockProfileStore{}
			req := validProfileRequest()
			tt.modify(&req)

			_, err := usecase.NewUpdateProfile(store, nil).Execute(context.Background(), req)

			require.Error(t, err)
			assert.ErrorIs(t, err, usecase.ErrInvalidArgument)
			assert.Nil(t, store.saved)
		})
	}
}
