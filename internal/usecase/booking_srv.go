package usecase

import (
	"context"
	"fmt"
	"strings"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/metrics"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	// Guest
	CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, account string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetUserBookingSummary(ctx context.Context, account string) (*response.BookingSummaryResponse, error)
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error)

	// Payment collaborator
	RecordPayment(ctx context.Context, bookingID string, req *request.PaymentOutcomeRequest) (*response.BookingResponse, error)

	// Staff
	GetBookings(ctx context.Context, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	TransitionStatus(ctx context.Context, bookingID string, req *request.StatusRequest) (*response.BookingResponse, error)
	CheckIn(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	CheckOut(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	DeleteBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo    *repository.Repository
	guard   *ReservationGuard
	log     *zap.Logger
	metrics *metrics.Metrics
	clock   Clock
}

func NewBookingService(repo *repository.Repository, guard *ReservationGuard, log *zap.Logger, m *metrics.Metrics, clock Clock) BookingService {
	return &bookingService{
		repo:    repo,
		guard:   guard,
		log:     log.With(zap.String("service", "booking")),
		metrics: m,
		clock:   clock,
	}
}

type access int

const (
	accessOwner access = iota
	accessPayments
	accessStaff
)

func actorFrom(ctx context.Context) utils.Actor {
	actor, _ := utils.GetActorFromContext(ctx)
	return actor
}

func requireStaff(actor utils.Actor) error {
	if !actor.Staff {
		return fmt.Errorf("staff only: %w", apperror.ErrForbidden)
	}
	return nil
}

func requirePayments(actor utils.Actor) error {
	if !actor.Payments && !actor.Staff {
		return fmt.Errorf("payment collaborator only: %w", apperror.ErrForbidden)
	}
	return nil
}

// authorize lets staff act on anything. A booking tied to a guest account is
// reserved to that account; unowned bookings are open.
func authorize(actor utils.Actor, b *entity.Booking, level access) error {
	switch level {
	case accessStaff:
		return requireStaff(actor)
	case accessPayments:
		return requirePayments(actor)
	case accessOwner:
		if actor.Staff || b.GuestAccountID == nil {
			return nil
		}
		if actor.GuestAccountID == "" || !b.OwnedBy(entity.GuestAccountID(actor.GuestAccountID)) {
			return fmt.Errorf("booking %s: %w", b.ID, apperror.ErrForbidden)
		}
	}
	return nil
}

// withBooking loads the booking under its lock and hands it to fn, which is
// responsible for persisting any change.
func (s *bookingService) withBooking(ctx context.Context, rawID string, level access, fn func(b *entity.Booking, actor utils.Actor) error) (*entity.Booking, error) {
	id, err := parseID("booking_id", rawID)
	if err != nil {
		return nil, err
	}
	actor := actorFrom(ctx)
	switch level {
	case accessStaff:
		if err := requireStaff(actor); err != nil {
			return nil, err
		}
	case accessPayments:
		if err := requirePayments(actor); err != nil {
			return nil, err
		}
	}

	unlock, err := s.guard.lock(ctx, "booking", bookingKey(id))
	if err != nil {
		return nil, err
	}
	defer unlock()

	b, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actor, b, level); err != nil {
		return nil, err
	}
	if err := fn(b, actor); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *bookingService) save(ctx context.Context, b *entity.Booking) error {
	expected := b.Version
	b.UpdatedAt = s.clock()
	return s.repo.Booking.Update(ctx, b, expected)
}

func (s *bookingService) CreateBooking(ctx context.Context, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		s.metrics.ObserveReservation(metrics.ReserveInvalid)
		return nil, validationFailed(errs)
	}

	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		s.metrics.ObserveReservation(metrics.ReserveInvalid)
		return nil, err
	}

	draft := BookingDraft{
		GuestName: req.GuestName,
		RoomRef:   req.RoomRef(),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Notes:     utils.OptionalString(req.Notes),
	}

	// a signed-in guest always books for their own account
	actor := actorFrom(ctx)
	account := strings.TrimSpace(req.GuestAccountID)
	if !actor.Staff && actor.GuestAccountID != "" {
		account = actor.GuestAccountID
	}
	if account != "" {
		id := entity.GuestAccountID(account)
		draft.GuestAccountID = &id
	}
	if req.HotelID != "" {
		hotel, err := entity.ParseHotelID(req.HotelID)
		if err != nil {
			s.metrics.ObserveReservation(metrics.ReserveInvalid)
			return nil, err
		}
		draft.HotelID = &hotel
	}

	booking, err := s.guard.TryReserve(ctx, draft)
	if err != nil {
		return nil, err
	}

	resp := s.toResponse(ctx, booking)
	return &resp, nil
}

func (s *bookingService) GetBookings(ctx context.Context, req *request.BookingListRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	filter := repository.BookingFilter{}
	actor := actorFrom(ctx)
	account := strings.TrimSpace(req.GuestAccountID)
	if !actor.Staff {
		// guests only ever see their own bookings
		if actor.GuestAccountID == "" {
			return nil, fmt.Errorf("list bookings: %w", apperror.ErrForbidden)
		}
		account = actor.GuestAccountID
	}
	if account != "" {
		id := entity.GuestAccountID(account)
		filter.GuestAccountID = &id
	}
	if req.HotelID != "" {
		hotel := entity.HotelID(req.HotelID)
		filter.HotelID = &hotel
	}
	if req.Room != "" {
		room, err := resolveRoom(ctx, s.repo.Room, req.Room)
		if err != nil {
			return nil, err
		}
		filter.RoomID = &room.ID
	}
	if req.Status != "" {
		status := entity.BookingStatus(req.Status)
		filter.Status = &status
	}

	return s.list(ctx, filter, &req.PaginatedRequest)
}

func (s *bookingService) GetUserBookings(ctx context.Context, account string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, apperror.InvalidField("guest_account_id", "guest account is required")
	}
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	id := entity.GuestAccountID(account)
	return s.list(ctx, repository.BookingFilter{GuestAccountID: &id}, req)
}

func (s *bookingService) list(ctx context.Context, filter repository.BookingFilter, page *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	bookings, err := s.repo.Booking.FindAll(ctx, filter, page.Limit(), page.Offset())
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	total, err := s.repo.Booking.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	return response.NewPaginatedResponse(s.toResponses(ctx, bookings), page.Page, page.Limit(), total), nil
}

// GetUserBookingSummary backs the guest dashboard: counts of upcoming and
// past stays, nights booked and the next stay. Cancelled bookings only count
// towards Cancelled.
func (s *bookingService) GetUserBookingSummary(ctx context.Context, account string) (*response.BookingSummaryResponse, error) {
	account = strings.TrimSpace(account)
	if account == "" {
		return nil, apperror.InvalidField("guest_account_id", "guest account is required")
	}

	id := entity.GuestAccountID(account)
	bookings, err := s.repo.Booking.FindAll(ctx, repository.BookingFilter{GuestAccountID: &id}, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("booking summary: %w", err)
	}

	today := utils.DateOnly(s.clock())
	summary := &response.BookingSummaryResponse{TotalBookings: len(bookings)}
	var next *entity.Booking
	for _, b := range bookings {
		if b.Status == entity.BookingStatusCancelled {
			summary.Cancelled++
			continue
		}
		summary.TotalNights += b.Nights()
		if b.CheckOut.Before(today) {
			summary.Past++
			continue
		}
		summary.Upcoming++
		if next == nil || b.CheckIn.Before(next.CheckIn) {
			next = b
		}
	}
	if next != nil {
		resp := s.toResponse(ctx, next)
		summary.NextStay = &resp
	}
	return summary, nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := parseID("booking_id", bookingID)
	if err != nil {
		return nil, err
	}
	b, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(actorFrom(ctx), b, accessOwner); err != nil {
		return nil, err
	}

	resp := s.toResponse(ctx, b)
	return &resp, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, bookingID string, req *request.UpdateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update booking validation failed", zap.Any("errors", errs))
		return nil, validationFailed(errs)
	}

	b, err := s.withBooking(ctx, bookingID, accessOwner, func(b *entity.Booking, _ utils.Actor) error {
		if b.Status != entity.BookingStatusConfirmed {
			return fmt.Errorf("%w: booking is %s, only confirmed bookings can be edited", apperror.ErrInvalidTransition, b.Status)
		}

		moved, err := s.applyEdit(ctx, b, req)
		if err != nil {
			return err
		}
		if !moved {
			return s.save(ctx, b)
		}
		b.UpdatedAt = s.clock()
		return s.guard.Rebook(ctx, b, b.Version)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking updated", zap.String("booking_id", b.ID.String()), zap.Int("version", b.Version))
	resp := s.toResponse(ctx, b)
	return &resp, nil
}

// applyEdit copies req onto b and reports whether the room or the dates
// changed.
func (s *bookingService) applyEdit(ctx context.Context, b *entity.Booking, req *request.UpdateBookingRequest) (bool, error) {
	moved := false

	if req.GuestName != nil {
		name := strings.TrimSpace(*req.GuestName)
		if name == "" {
			return false, apperror.InvalidField("guest_name", "This field is required")
		}
		b.GuestName = name
	}
	if ref := req.RoomRef(); ref != nil {
		room, err := resolveRoom(ctx, s.repo.Room, *ref)
		if err != nil {
			return false, err
		}
		if room.ID != b.RoomID {
			b.RoomID = room.ID
			moved = true
		}
	}

	checkIn, checkOut := b.CheckIn, b.CheckOut
	if req.CheckIn != nil {
		d, err := utils.ParseDate("check_in", *req.CheckIn)
		if err != nil {
			return false, err
		}
		checkIn = d
	}
	if req.CheckOut != nil {
		d, err := utils.ParseDate("check_out", *req.CheckOut)
		if err != nil {
			return false, err
		}
		checkOut = d
	}
	if !checkOut.After(checkIn) {
		return false, apperror.InvalidField("check_out", "must be after check_in")
	}
	if !checkIn.Equal(b.CheckIn) || !checkOut.Equal(b.CheckOut) {
		b.CheckIn, b.CheckOut = checkIn, checkOut
		moved = true
	}

	if req.HotelID != nil {
		if *req.HotelID == "" {
			b.HotelID = nil
		} else {
			hotel, err := entity.ParseHotelID(*req.HotelID)
			if err != nil {
				return false, err
			}
			b.HotelID = &hotel
		}
	}
	if req.Notes != nil {
		b.Notes = utils.OptionalString(*req.Notes)
	}
	return moved, nil
}

func (s *bookingService) TransitionStatus(ctx context.Context, bookingID string, req *request.StatusRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	return s.transition(ctx, bookingID, entity.BookingStatus(req.Status))
}

func (s *bookingService) CheckIn(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, bookingID, entity.BookingStatusCheckedIn)
}

func (s *bookingService) CheckOut(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, bookingID, entity.BookingStatusCheckedOut)
}

// CancelBooking is open to the owning guest and to staff. The nights are
// released as soon as the write commits.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	return s.transition(ctx, bookingID, entity.BookingStatusCancelled)
}

func (s *bookingService) transition(ctx context.Context, bookingID string, next entity.BookingStatus) (*response.BookingResponse, error) {
	level := accessStaff
	if next == entity.BookingStatusCancelled {
		level = accessOwner
	}

	var from entity.BookingStatus
	b, err := s.withBooking(ctx, bookingID, level, func(b *entity.Booking, actor utils.Actor) error {
		from = b.Status
		if err := b.Transition(next, actor.Label(), s.clock()); err != nil {
			return err
		}
		return s.save(ctx, b)
	})
	if err != nil {
		s.log.Warn("Booking transition rejected",
			zap.String("booking_id", bookingID),
			zap.String("to", string(next)),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.ObserveTransition(string(next))
	s.log.Info("Booking status changed",
		zap.String("booking_id", b.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(next)),
	)
	resp := s.toResponse(ctx, b)
	return &resp, nil
}

func (s *bookingService) RecordPayment(ctx context.Context, bookingID string, req *request.PaymentOutcomeRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	outcome := req.PaymentStatus()
	b, err := s.withBooking(ctx, bookingID, accessPayments, func(b *entity.Booking, _ utils.Actor) error {
		if err := b.RecordPayment(outcome, req.Provider, req.ProviderID, req.ReceiptURL); err != nil {
			return err
		}
		return s.save(ctx, b)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObservePayment(string(outcome))
	s.log.Info("Payment recorded",
		zap.String("booking_id", b.ID.String()),
		zap.String("outcome", string(outcome)),
	)
	resp := s.toResponse(ctx, b)
	return &resp, nil
}

// DeleteBooking removes the row outright. Cancel keeps history; this does not.
func (s *bookingService) DeleteBooking(ctx context.Context, bookingID string) error {
	_, err := s.withBooking(ctx, bookingID, accessStaff, func(b *entity.Booking, actor utils.Actor) error {
		if err := s.repo.Booking.Delete(ctx, b.ID); err != nil {
			return err
		}
		s.log.Info("Booking deleted by staff",
			zap.String("booking_id", b.ID.String()),
			zap.String("actor", actor.Label()),
		)
		return nil
	})
	return err
}

func (s *bookingService) toResponse(ctx context.Context, b *entity.Booking) response.BookingResponse {
	return s.toResponses(ctx, []*entity.Booking{b})[0]
}

// toResponses attaches room numbers, looking each room up once. A room that
// can't be read just leaves the number blank.
func (s *bookingService) toResponses(ctx context.Context, bookings []*entity.Booking) []response.BookingResponse {
	numbers := make(map[uuid.UUID]string)
	out := make([]response.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		number, ok := numbers[b.RoomID]
		if !ok {
			if room, err := s.repo.Room.FindByID(ctx, b.RoomID); err == nil {
				number = room.RoomNumber
			} else {
				s.log.Debug("Room lookup failed", zap.String("room_id", b.RoomID.String()), zap.Error(err))
			}
			numbers[b.RoomID] = number
		}
		out = append(out, response.BookingToResponse(b, number))
	}
	return out
}
