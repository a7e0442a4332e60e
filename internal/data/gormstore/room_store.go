package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type roomStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func (s *roomStore) Create(ctx context.Context, room *entity.Room) error {
	model := fromRoomEntity(room)
	err := s.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("create room %s: %w: room_number", room.RoomNumber, apperror.ErrDuplicateKey)
	}
	if err != nil {
		s.log.Error("Failed to create room", zap.Error(err), zap.String("room_number", room.RoomNumber))
		return fmt.Errorf("create room %s: %w", room.RoomNumber, err)
	}
	return nil
}

func (s *roomStore) take(ctx context.Context, query string, arg any) (*entity.Room, error) {
	var model Room
	err := s.db.WithContext(ctx).Where(query, arg).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("room", arg)
	}
	if err != nil {
		s.log.Error("Failed to find room", zap.Error(err), zap.Any("key", arg))
		return nil, fmt.Errorf("find room %v: %w", arg, err)
	}
	return model.toEntity()
}

func (s *roomStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	return s.take(ctx, "id = ?", id.String())
}

func (s *roomStore) FindByNumber(ctx context.Context, roomNumber string) (*entity.Room, error) {
	return s.take(ctx, "room_number = ?", roomNumber)
}

func (s *roomStore) filtered(ctx context.Context, filter repository.RoomFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&Room{})
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	if filter.RoomType != "" {
		q = q.Where("room_type = ?", filter.RoomType)
	}
	if filter.Search != "" {
		like := repository.SearchPattern(strings.ToLower(filter.Search))
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(COALESCE(description, '')) LIKE ? ESCAPE '\' OR amenities_text LIKE ? ESCAPE '\')`,
			like, like, like)
	}
	if len(filter.ExcludeIDs) > 0 {
		ids := make([]string, len(filter.ExcludeIDs))
		for i, id := range filter.ExcludeIDs {
			ids[i] = id.String()
		}
		q = q.Where("id NOT IN ?", ids)
	}
	return q
}

func (s *roomStore) FindAll(ctx context.Context, filter repository.RoomFilter, limit, offset int) ([]*entity.Room, error) {
	q := s.filtered(ctx, filter)
	switch filter.Sort {
	case repository.RoomSortPriceDesc:
		q = q.Order("price DESC").Order("room_number ASC")
	case repository.RoomSortRoomNumber:
		q = q.Order("room_number ASC")
	default:
		q = q.Order("price ASC").Order("room_number ASC")
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}

	var models []Room
	if err := q.Find(&models).Error; err != nil {
		s.log.Error("Failed to list rooms", zap.Error(err))
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	rooms := make([]*entity.Room, 0, len(models))
	for _, m := range models {
		room, err := m.toEntity()
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (s *roomStore) CountAll(ctx context.Context, filter repository.RoomFilter) (int64, error) {
	var count int64
	if err := s.filtered(ctx, filter).Count(&count).Error; err != nil {
		s.log.Error("Failed to count rooms", zap.Error(err))
		return 0, fmt.Errorf("count rooms: %w", err)
	}
	return count, nil
}

func (s *roomStore) CountByStatus(ctx context.Context) (map[entity.RoomStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := s.db.WithContext(ctx).
		Model(&Room{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		s.log.Error("Failed to count rooms by status", zap.Error(err))
		return nil, fmt.Errorf("count rooms by status: %w", err)
	}

	counts := make(map[entity.RoomStatus]int64, len(entity.RoomStatuses))
	for _, status := range entity.RoomStatuses {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[entity.RoomStatus(row.Status)] = row.Total
	}
	return counts, nil
}

func (s *roomStore) Update(ctx context.Context, room *entity.Room) error {
	model := fromRoomEntity(room)
	result := s.db.WithContext(ctx).
		Model(&Room{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"room_number":    model.RoomNumber,
			"name":           model.Name,
			"room_type":      model.RoomType,
			"price":          model.Price,
			"capacity":       model.Capacity,
			"status":         model.Status,
			"amenities":      model.Amenities,
			"amenities_text": model.AmenitiesText,
			"description":    model.Description,
			"images":         model.Images,
			"owner_notes":    model.OwnerNotes,
			"updated_at":     model.UpdatedAt,
		})
	if isUniqueViolation(result.Error) {
		return fmt.Errorf("update room %s: %w: room_number", room.ID, apperror.ErrDuplicateKey)
	}
	if result.Error != nil {
		s.log.Error("Failed to update room", zap.Error(result.Error), zap.String("room_id", model.ID))
		return fmt.Errorf("update room %s: %w", room.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("room", room.ID)
	}
	return nil
}

func (s *roomStore) Delete(ctx context.Context, id uuid.UUID) error {
	var referenced int64
	if err := s.db.WithContext(ctx).Model(&Booking{}).Where("room_id = ?", id.String()).Count(&referenced).Error; err != nil {
		return fmt.Errorf("delete room %s: %w", id, err)
	}
	if referenced > 0 {
		return apperror.NewValidationError("room still has bookings", map[string]string{"room_id": id.String()})
	}

	result := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&Room{})
	if result.Error != nil {
		s.log.Error("Failed to delete room", zap.Error(result.Error), zap.String("room_id", id.String()))
		return fmt.Errorf("delete room %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("room", id)
	}

	s.log.Info("Room deleted", zap.String("room_id", id.String()))
	return nil
}
