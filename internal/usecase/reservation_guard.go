package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/keylock"
	"hotel-booking/pkg/metrics"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingDraft is a reservation request after the transport layer has parsed
// it. Dates are calendar days; any time-of-day is dropped.
type BookingDraft struct {
	GuestName      string
	RoomRef        string
	CheckIn        time.Time
	CheckOut       time.Time
	GuestAccountID *entity.GuestAccountID
	HotelID        *entity.HotelID
	Notes          *string
}

// ReservationGuard owns the per-room critical section: the occupancy check
// and the write that depends on it never interleave with another writer on
// the same room.
type ReservationGuard struct {
	repo        *repository.Repository
	locks       *keylock.Locker
	lockTimeout time.Duration
	maxStay     int
	log         *zap.Logger
	metrics     *metrics.Metrics
	clock       Clock
}

func NewReservationGuard(repo *repository.Repository, locks *keylock.Locker, config utils.BookingConfig, log *zap.Logger, m *metrics.Metrics, clock Clock) *ReservationGuard {
	timeout := config.LockTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ReservationGuard{
		repo:        repo,
		locks:       locks,
		lockTimeout: timeout,
		maxStay:     maxWindowDays(config),
		log:         log.With(zap.String("service", "reservation")),
		metrics:     m,
		clock:       clock,
	}
}

func roomKey(id uuid.UUID) string    { return "room:" + id.String() }
func bookingKey(id uuid.UUID) string { return "booking:" + id.String() }

// lock waits at most lockTimeout for key. A caller that gives up first gets
// its own context error back.
func (g *ReservationGuard) lock(ctx context.Context, scope, key string) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, g.lockTimeout)
	defer cancel()

	start := time.Now()
	unlock, err := g.locks.Lock(waitCtx, key)
	g.metrics.ObserveLockWait(scope, time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		g.log.Warn("Lock wait timed out", zap.String("key", key), zap.Duration("timeout", g.lockTimeout))
		return nil, fmt.Errorf("%s: %w", key, apperror.ErrLockTimeout)
	}
	return unlock, nil
}

// TryReserve creates a confirmed booking if the room is free for
// [CheckIn, CheckOut), or fails with a *apperror.ConflictError naming a
// booking that holds one of the nights.
func (g *ReservationGuard) TryReserve(ctx context.Context, draft BookingDraft) (*entity.Booking, error) {
	booking, err := g.tryReserve(ctx, draft)
	g.metrics.ObserveReservation(reservationResult(err))
	return booking, err
}

func (g *ReservationGuard) tryReserve(ctx context.Context, draft BookingDraft) (*entity.Booking, error) {
	guestName := strings.TrimSpace(draft.GuestName)
	checkIn, checkOut := utils.DateOnly(draft.CheckIn), utils.DateOnly(draft.CheckOut)

	errs := map[string]string{}
	if guestName == "" {
		errs["guest_name"] = "This field is required"
	}
	if msg := g.stayProblem(checkIn, checkOut); msg != "" {
		errs["check_out"] = msg
	}
	if len(errs) > 0 {
		return nil, apperror.NewValidationError("invalid reservation", errs)
	}

	room, err := resolveRoom(ctx, g.repo.Room, draft.RoomRef)
	if err != nil {
		return nil, err
	}
	if !room.Bookable() {
		return nil, apperror.InvalidField("room", fmt.Sprintf("room %s is under maintenance", room.RoomNumber))
	}

	unlock, err := g.lock(ctx, "room", roomKey(room.ID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	now := g.clock()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		GuestName:      guestName,
		RoomID:         room.ID,
		GuestAccountID: draft.GuestAccountID,
		HotelID:        draft.HotelID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Status:         entity.BookingStatusConfirmed,
		Notes:          draft.Notes,
		Payment:        entity.Payment{Status: entity.PaymentStatusPending},
		Version:        1,
	}

	err = g.repo.Tx.InRoomTx(ctx, room.ID, func(ctx context.Context, tx *repository.Repository) error {
		// the room may have been deleted or closed while we waited
		current, err := tx.Room.FindByID(ctx, room.ID)
		if err != nil {
			return err
		}
		if !current.Bookable() {
			return apperror.InvalidField("room", fmt.Sprintf("room %s is under maintenance", current.RoomNumber))
		}
		if err := ensureFree(ctx, tx.Booking, room.ID, checkIn, checkOut, nil); err != nil {
			return err
		}
		return tx.Booking.Create(ctx, booking)
	})
	if err != nil {
		g.fillConflict(ctx, err, room.ID, checkIn, checkOut, nil)
		g.logRejected("Reservation rejected", err, room, checkIn, checkOut)
		return nil, err
	}

	g.log.Info("Booking reserved",
		zap.String("booking_id", booking.ID.String()),
		zap.String("room_number", room.RoomNumber),
		zap.String("check_in", utils.FormatDate(checkIn)),
		zap.String("check_out", utils.FormatDate(checkOut)),
	)
	return booking, nil
}

// Rebook persists an edit of b whose room or dates may have changed. The
// target range is checked while ignoring b's own current occupancy. The
// caller must hold b's booking lock.
func (g *ReservationGuard) Rebook(ctx context.Context, b *entity.Booking, expectedVersion int) error {
	if msg := g.stayProblem(b.CheckIn, b.CheckOut); msg != "" {
		return apperror.InvalidField("check_out", msg)
	}

	room, err := g.repo.Room.FindByID(ctx, b.RoomID)
	if err != nil {
		return err
	}
	if !room.Bookable() {
		return apperror.InvalidField("room", fmt.Sprintf("room %s is under maintenance", room.RoomNumber))
	}

	unlock, err := g.lock(ctx, "room", roomKey(room.ID))
	if err != nil {
		return err
	}
	defer unlock()

	err = g.repo.Tx.InRoomTx(ctx, room.ID, func(ctx context.Context, tx *repository.Repository) error {
		if err := ensureFree(ctx, tx.Booking, room.ID, b.CheckIn, b.CheckOut, &b.ID); err != nil {
			return err
		}
		return tx.Booking.Update(ctx, b, expectedVersion)
	})
	if err != nil {
		g.fillConflict(ctx, err, room.ID, b.CheckIn, b.CheckOut, &b.ID)
		g.logRejected("Rebooking rejected", err, room, b.CheckIn, b.CheckOut)
		return err
	}
	return nil
}

// stayProblem describes why [checkIn, checkOut) cannot be booked, or returns
// "". Stays share the availability window limit so that every bookable range
// can also be checked with IsRangeFree.
func (g *ReservationGuard) stayProblem(checkIn, checkOut time.Time) string {
	if !checkOut.After(checkIn) {
		return "must be after check_in"
	}
	if utils.DaysBetween(checkIn, checkOut) > g.maxStay {
		return fmt.Sprintf("stay is limited to %d nights", g.maxStay)
	}
	return ""
}

// ensureFree fails with a ConflictError naming the earliest booking that
// holds a night of [from, to).
func ensureFree(ctx context.Context, bookings repository.BookingRepository, roomID uuid.UUID, from, to time.Time, exclude *uuid.UUID) error {
	active, err := bookings.FindActiveByRoomInRange(ctx, roomID, from, to, exclude)
	if err != nil {
		return fmt.Errorf("check occupancy: %w", err)
	}
	if len(active) > 0 {
		return &apperror.ConflictError{RoomID: roomID, BookingID: active[0].ID}
	}
	return nil
}

// fillConflict looks up the winner when storage rejected the write without
// saying which booking it collided with.
func (g *ReservationGuard) fillConflict(ctx context.Context, err error, roomID uuid.UUID, from, to time.Time, exclude *uuid.UUID) {
	var conflict *apperror.ConflictError
	if !errors.As(err, &conflict) || conflict.BookingID != uuid.Nil {
		return
	}
	active, lookupErr := g.repo.Booking.FindActiveByRoomInRange(ctx, roomID, from, to, exclude)
	if lookupErr == nil && len(active) > 0 {
		conflict.BookingID = active[0].ID
	}
}

func (g *ReservationGuard) logRejected(msg string, err error, room *entity.Room, from, to time.Time) {
	fields := []zap.Field{
		zap.Error(err),
		zap.String("room_number", room.RoomNumber),
		zap.String("check_in", utils.FormatDate(from)),
		zap.String("check_out", utils.FormatDate(to)),
	}
	if isDomainError(err) {
		g.log.Warn(msg, fields...)
		return
	}
	g.log.Error(msg, fields...)
}

func reservationResult(err error) string {
	switch {
	case err == nil:
		return metrics.ReserveCreated
	case errors.Is(err, apperror.ErrConflict):
		return metrics.ReserveConflict
	case errors.Is(err, apperror.ErrValidation), errors.Is(err, apperror.ErrNotFound):
		return metrics.ReserveInvalid
	default:
		return metrics.ReserveError
	}
}

func isDomainError(err error) bool {
	for _, target := range []error{
		apperror.ErrValidation,
		apperror.ErrNotFound,
		apperror.ErrDuplicateKey,
		apperror.ErrConflict,
		apperror.ErrInvalidTransition,
		apperror.ErrForbidden,
		apperror.ErrStaleBooking,
		apperror.ErrLockTimeout,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
