package usecase

import (
	"context"
	"strings"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/apperror"

	"github.com/google/uuid"
)

// resolveRoom accepts either a room id or a room number.
func resolveRoom(ctx context.Context, rooms repository.RoomRepository, ref string) (*entity.Room, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, apperror.InvalidField("room", "room number or id is required")
	}
	if id, err := uuid.Parse(ref); err == nil {
		return rooms.FindByID(ctx, id)
	}
	return rooms.FindByNumber(ctx, ref)
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.InvalidField(field, "must be a valid UUID")
	}
	return id, nil
}

func validationFailed(errs map[string]string) error {
	return apperror.NewValidationError("request rejected", errs)
}
