package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type BookingFilter struct {
	GuestAccountID *entity.GuestAccountID
	HotelID        *entity.HotelID
	RoomID         *uuid.UUID
	Status         *entity.BookingStatus
}

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	// FindAll lists bookings newest first. limit <= 0 returns every match.
	FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.Booking, error)
	CountAll(ctx context.Context, filter BookingFilter) (int64, error)
	// Update persists booking if its stored version still equals
	// expectedVersion, then bumps booking.Version.
	Update(ctx context.Context, booking *entity.Booking, expectedVersion int) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Occupancy queries. Only confirmed and checked-in bookings count.
	FindActiveByRoomInRange(ctx context.Context, roomID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*entity.Booking, error)
	FindBookedRoomIDs(ctx context.Context, from, to time.Time) ([]uuid.UUID, error)
	CountActiveByRoom(ctx context.Context, roomID uuid.UUID) (int64, error)
}

type bookingRepository struct {
	db  database.DBTX
	log *zap.Logger
}

func NewBookingRepository(db database.DBTX, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, guest_name, room_id, guest_account_id, hotel_id, check_in, check_out,
	status, notes, payment_status, payment_provider, payment_provider_id, payment_receipt_url,
	cancelled_by, cancelled_at, version, created_at, updated_at`

const activeStatusList = `('confirmed', 'checked-in')`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var (
		booking        entity.Booking
		guestAccountID *string
		hotelID        *string
		status         string
		paymentStatus  string
	)
	err := row.Scan(
		&booking.ID,
		&booking.GuestName,
		&booking.RoomID,
		&guestAccountID,
		&hotelID,
		&booking.CheckIn,
		&booking.CheckOut,
		&status,
		&booking.Notes,
		&paymentStatus,
		&booking.Payment.Provider,
		&booking.Payment.ProviderID,
		&booking.Payment.ReceiptURL,
		&booking.CancelledBy,
		&booking.CancelledAt,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	booking.GuestAccountID = typedString[entity.GuestAccountID](guestAccountID)
	booking.HotelID = typedString[entity.HotelID](hotelID)
	booking.Status = entity.BookingStatus(status)
	booking.Payment.Status = entity.PaymentStatus(paymentStatus)
	booking.CheckIn = booking.CheckIn.UTC()
	booking.CheckOut = booking.CheckOut.UTC()
	return &booking, nil
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.Booking, error) {
	defer rows.Close()

	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.GuestName,
		booking.RoomID,
		nullableString(booking.GuestAccountID),
		nullableString(booking.HotelID),
		booking.CheckIn,
		booking.CheckOut,
		string(booking.Status),
		booking.Notes,
		string(booking.Payment.Status),
		booking.Payment.Provider,
		booking.Payment.ProviderID,
		booking.Payment.ReceiptURL,
		booking.CancelledBy,
		booking.CancelledAt,
		booking.Version,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		err = translateError(err, booking.RoomID)
		if !errors.Is(err, apperror.ErrConflict) {
			r.log.Error("Failed to create booking",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.String("room_id", booking.RoomID.String()),
			)
		}
		return fmt.Errorf("create booking %s: %w", booking.ID, err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("booking %s: %w", id, apperror.ErrNotFound)
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID", zap.Error(err), zap.String("booking_id", id.String()))
		return nil, fmt.Errorf("find booking by ID %s: %w", id, err)
	}

	return booking, nil
}

func bookingWhere(filter BookingFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if filter.GuestAccountID != nil {
		args = append(args, string(*filter.GuestAccountID))
		conds = append(conds, fmt.Sprintf("guest_account_id = $%d", len(args)))
	}
	if filter.HotelID != nil {
		args = append(args, string(*filter.HotelID))
		conds = append(conds, fmt.Sprintf("hotel_id = $%d", len(args)))
	}
	if filter.RoomID != nil {
		args = append(args, *filter.RoomID)
		conds = append(conds, fmt.Sprintf("room_id = $%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter, limit, offset int) ([]*entity.Booking, error) {
	where, args := bookingWhere(filter)
	query := `SELECT ` + bookingColumns + ` FROM bookings` + where + ` ORDER BY created_at DESC, id`
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to list bookings", zap.Error(err), zap.Int("limit", limit), zap.Int("offset", offset))
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	return r.collect(rows)
}

func (r *bookingRepository) CountAll(ctx context.Context, filter BookingFilter) (int64, error) {
	where, args := bookingWhere(filter)

	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&count); err != nil {
		r.log.Error("Failed to count bookings", zap.Error(err))
		return 0, fmt.Errorf("count bookings: %w", err)
	}

	return count, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *entity.Booking, expectedVersion int) error {
	query := `
		UPDATE bookings
		SET guest_name = $2, room_id = $3, guest_account_id = $4, hotel_id = $5, check_in = $6,
		    check_out = $7, status = $8, notes = $9, payment_status = $10, payment_provider = $11,
		    payment_provider_id = $12, payment_receipt_url = $13, cancelled_by = $14,
		    cancelled_at = $15, updated_at = $16, version = version + 1
		WHERE id = $1 AND version = $17
	`

	result, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.GuestName,
		booking.RoomID,
		nullableString(booking.GuestAccountID),
		nullableString(booking.HotelID),
		booking.CheckIn,
		booking.CheckOut,
		string(booking.Status),
		booking.Notes,
		string(booking.Payment.Status),
		booking.Payment.Provider,
		booking.Payment.ProviderID,
		booking.Payment.ReceiptURL,
		booking.CancelledBy,
		booking.CancelledAt,
		booking.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		err = translateError(err, booking.RoomID)
		if !errors.Is(err, apperror.ErrConflict) {
			r.log.Error("Failed to update booking", zap.Error(err), zap.String("booking_id", booking.ID.String()))
		}
		return fmt.Errorf("update booking %s: %w", booking.ID, err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, booking.ID).Scan(&exists); err != nil {
			return fmt.Errorf("update booking %s: %w", booking.ID, err)
		}
		if !exists {
			return fmt.Errorf("booking %s: %w", booking.ID, apperror.ErrNotFound)
		}
		return fmt.Errorf("booking %s version %d: %w", booking.ID, expectedVersion, apperror.ErrStaleBooking)
	}

	booking.Version = expectedVersion + 1
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		r.log.Error("Failed to delete booking", zap.Error(err), zap.String("booking_id", id.String()))
		return fmt.Errorf("delete booking %s: %w", id, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s: %w", id, apperror.ErrNotFound)
	}

	r.log.Info("Booking deleted", zap.String("booking_id", id.String()))
	return nil
}

func (r *bookingRepository) FindActiveByRoomInRange(ctx context.Context, roomID uuid.UUID, from, to time.Time, excludeID *uuid.UUID) ([]*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE room_id = $1 AND status IN ` + activeStatusList + `
		  AND check_in < $3 AND check_out > $2`
	args := []any{roomID, from, to}
	if excludeID != nil {
		args = append(args, *excludeID)
		query += ` AND id <> $4`
	}
	query += ` ORDER BY check_in`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to find active bookings for room",
			zap.Error(err),
			zap.String("room_id", roomID.String()),
		)
		return nil, fmt.Errorf("find active bookings for room %s: %w", roomID, err)
	}

	return r.collect(rows)
}

func (r *bookingRepository) FindBookedRoomIDs(ctx context.Context, from, to time.Time) ([]uuid.UUID, error) {
	query := `SELECT DISTINCT room_id FROM bookings
		WHERE status IN ` + activeStatusList + ` AND check_in < $2 AND check_out > $1`

	rows, err := r.db.Query(ctx, query, from, to)
	if err != nil {
		r.log.Error("Failed to find booked rooms", zap.Error(err))
		return nil, fmt.Errorf("find booked rooms: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan booked room: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *bookingRepository) CountActiveByRoom(ctx context.Context, roomID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE room_id = $1 AND status IN ` + activeStatusList

	var count int64
	if err := r.db.QueryRow(ctx, query, roomID).Scan(&count); err != nil {
		r.log.Error("Failed to count active bookings", zap.Error(err), zap.String("room_id", roomID.String()))
		return 0, fmt.Errorf("count active bookings for room %s: %w", roomID, err)
	}

	return count, nil
}
