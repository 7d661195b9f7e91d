package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bibbank/cardrisk/internal/application/dto"
	"github.com/bibbank/cardrisk/internal/application/usecase"
	pkgkafka "github.com/bibbank/cardrisk/pkg/kafka"
)

// ProfileUpdater is satisfied by *usecase.UpdateProfile.
type ProfileUpdater interface {
	Execute(ctx context.Context, req dto.UpdateProfileRequest) (dto.ProfileResponse, error)
}

// ProfileUpdateHandler applies profile snapshots published by the
// behavioral-baseline job.
type ProfileUpdateHandler struct {
	updater ProfileUpdater
	logger  *slog.Logger
}

// NewProfileUpdateHandler creates a handler for the profile-update topic.
func NewProfileUpdateHandler(updater ProfileUpdater, logger *slog.Logger) *ProfileUpdateHandler {
	return &ProfileUpdateHandler{updater: updater, logger: logger}
}

// Handle processes one message. Malformed or rejected profiles are permanent
// failures.
func (h *ProfileUpdateHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	var req dto.UpdateProfileRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		return fmt.Errorf("%w: decode profile update: %v", pkgkafka.ErrPermanent, err)
	}

	resp, err := h.updater.Execute(ctx, req)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidArgument) {
			return fmt.Errorf("%w: %v", pkgkafka.ErrPermanent, err)
		}
		return err
	}

	h.logger.InfoContext(ctx, "user profile updated",
		slog.String("user_id", resp.UserID.String()),
		slog.Int("active_cards", resp.ActiveCards),
	)
	return nil
}
