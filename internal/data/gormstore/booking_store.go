package gormstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/apperror"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type bookingStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func (s *bookingStore) Create(ctx context.Context, booking *entity.Booking) error {
	model := fromBookingEntity(booking)
	err := s.db.WithContext(ctx).Create(&model).Error
	if isUniqueViolation(err) {
		return fmt.Errorf("create booking %s: %w", booking.ID, apperror.ErrDuplicateKey)
	}
	if err != nil {
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("booking_id", model.ID),
			zap.String("room_id", model.RoomID),
		)
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}
	return nil
}

func (s *bookingStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var model Booking
	err := s.db.WithContext(ctx).Where("id = ?", id.String()).Take(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("booking", id)
	}
	if err != nil {
		s.log.Error("Failed to find booking by ID", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}
	return model.toEntity()
}

func (s *bookingStore) filtered(ctx context.Context, filter repository.BookingFilter) *gorm.DB {
	q := s.db.WithContext(ctx).Model(&Booking{})
	if filter.GuestAccountID != nil {
		q = q.Where("guest_account_id = ?", string(*filter.GuestAccountID))
	}
	if filter.HotelID != nil {
		q = q.Where("hotel_id = ?", string(*filter.HotelID))
	}
	if filter.RoomID != nil {
		q = q.Where("room_id = ?", filter.RoomID.String())
	}
	if filter.Status != nil {
		q = q.Where("status = ?", string(*filter.Status))
	}
	return q
}

func (s *bookingStore) collect(q *gorm.DB) ([]*entity.Booking, error) {
	var models []Booking
	if err := q.Find(&models).Error; err != nil {
		s.log.Error("Failed to list bookings", zap.Error(err))
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	bookings := make([]*entity.Booking, 0, len(models))
	for _, m := range models {
		b, err := m.toEntity()
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, nil
}

func (s *bookingStore) FindAll(ctx context.Context, filter repository.BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	q := s.filtered(ctx, filter).Order("created_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	}
	return s.collect(q)
}

func (s *bookingStore) CountAll(ctx context.Context, filter repository.BookingFilter) (int64, error) {
	var count int64
	if err := s.filtered(ctx, filter).Count(&count).Error; err != nil {
		s.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}
	return count, nil
}

func (s *bookingStore) Update(ctx context.Context, booking *entity.Booking, expectedVersion int) error {
	model := fromBookingEntity(booking)
	result := s.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]any{
			"guest_name":          model.GuestName,
			"room_id":             model.RoomID,
			"guest_account_id":    model.GuestAccountID,
			"hotel_id":            model.HotelID,
			"check_in":            model.CheckIn,
			"check_out":           model.CheckOut,
			"status":              model.Status,
			"notes":               model.Notes,
			"payment_status":      model.PaymentStatus,
			"payment_provider":    model.PaymentProvider,
			"payment_provider_id": model.PaymentProviderID,
			"payment_receipt_url": model.PaymentReceiptURL,
			"cancelled_by":        model.CancelledBy,
			"cancelled_at":        model.CancelledAt,
			"updated_at":          model.UpdatedAt,
			"version":             gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		s.log.Error("Failed to update booking", zap.Error(result.Error), zap.String("booking_id", model.ID))
		return fmt.Errorf("update booking %s: %w", booking.ID, result.Error)
	}

	if result.RowsAffected == 0 {
		var exists int64
		if err := s.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", model.ID).Count(&exists).Error; err != nil {
			return fmt.Errorf("update booking %s: %w", booking.ID, err)
		}
		if exists == 0 {
			return notFound("booking", booking.ID)
		}
		return fmt.Errorf("booking %s version %d: %w", booking.ID, expectedVersion, apperror.ErrStaleBooking)
	}

	booking.Version = expectedVersion + 1
	return nil
}

func (s *bookingStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id.String()).Delete(&Booking{})
	if result.Error != nil {
		s.log.Error("Failed to delete booking", zap.Error(result.Error), zap.String("booking_id", id.String()))
		return fmt.Errorf("delete booking %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return notFound("booking", id)
	}

	s.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

func (s *bookingStore) FindActiveByRoomInRange(ctx context.Context, roomID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*entity.Booking, error) {
	q := s.db.WithContext(ctx).
		Model(&Booking{}).
		Where("room_id = ? AND status IN ?", roomID.String(), activeStatuses).
		Where("check_in < ? AND check_out > ?", formatDate(to), formatDate(from))
	if excludeID != nil {
		q = q.Where("id <> ?", excludeID.String())
	}
	return s.collect(q.Order("check_in"))
}

func (s *bookingStore) FindBookedRoomIDs(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	var raw []string
	err := s.db.WithContext(ctx).
		Model(&Booking{}).
		Distinct("room_id").
		Where("status IN ?", activeStatuses).
		Where("check_in < ? AND check_out > ?", formatDate(to), formatDate(from)).
		Pluck("room_id", &raw).Error
	if err != nil {
		s.log.Error("Failed to find booked rooms", zap.Error(err))
		return nil, fmt.Errorf("find booked rooms: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := uuid.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("booked room id %q: %w", r, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *bookingStore) CountActiveByRoom(ctx context.Context, roomID uuid.UUID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Booking{}).
		Where("room_id = ? AND status IN ?", roomID.String(), activeStatuses).
		Count(&count).Error
	if err != nil {
		s.log.Error("Failed to count active bookings", zap.Error(err), zap.String("room_id", roomID.String()))
		return 0, fmt.Errorf("count active bookings for room %s: %w", roomID, err)
	}
	return count, nil
}
