package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/pkg/apperror"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AvailabilityService answers occupancy questions. It never writes.
type AvailabilityService interface {
	// ComputeOccupiedDates returns the sorted days in [from, to) held by a
	// confirmed or checked-in booking on the room.
	ComputeOccupiedDates(ctx context.Context, roomRef string, from, to time.Time) ([]time.Time, error)
	IsRangeFree(ctx context.Context, roomRef string, checkIn, checkOut time.Time) (bool, error)

	GetRoomAvailability(ctx context.Context, roomRef string, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error)
	CheckRange(ctx context.Context, roomRef string, req *request.RangeCheckRequest) (*response.RangeCheckResponse, error)
	FindAvailableRooms(ctx context.Context, req *request.AvailableRoomsRequest) (*response.PaginatedResponse[response.RoomResponse], error)
}

type availabilityService struct {
	repo    *repository.Repository
	maxDays int
	log     *zap.Logger
}

// maxWindowDays bounds both availability windows and stay lengths.
func maxWindowDays(config utils.BookingConfig) int {
	if config.AvailabilityMaxDays <= 0 {
		return 366
	}
	return config.AvailabilityMaxDays
}

func NewAvailabilityService(repo *repository.Repository, config utils.BookingConfig, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo:    repo,
		maxDays: maxWindowDays(config),
		log:     log.With(zap.String("service", "availability")),
	}
}

// computeOccupancy expands every active booking that intersects [from, to)
// into its nights, clipped to the window. It also returns the bookings so
// callers can name a conflicting one.
func computeOccupancy(ctx context.Context, bookings repository.BookingRepository, roomID uuid.UUID, from, to time.Time, exclude *uuid.UUID) ([]time.Time, []*entity.Booking, error) {
	if !from.Before(to) {
		return []time.Time{}, nil, nil
	}

	active, err := bookings.FindActiveByRoomInRange(ctx, roomID, from, to, exclude)
	if err != nil {
		return nil, nil, err
	}

	seen := make(map[time.Time]struct{})
	for _, b := range active {
		start, end := b.CheckIn, b.CheckOut
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}
		utils.EachDay(start, end, func(day time.Time) {
			seen[day] = struct{}{}
		})
	}

	days := make([]time.Time, 0, len(seen))
	for day := range seen {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days, active, nil
}

func (s *availabilityService) checkWindow(from, to time.Time) error {
	if to.Before(from) {
		return apperror.InvalidField("to", "must not be before from")
	}
	if n := utils.DaysBetween(from, to); n > s.maxDays {
		return apperror.InvalidField("to", fmt.Sprintf("window is limited to %d days", s.maxDays))
	}
	return nil
}

func (s *availabilityService) ComputeOccupiedDates(ctx context.Context, roomRef string, from, to time.Time) ([]time.Time, error) {
	from, to = utils.DateOnly(from), utils.DateOnly(to)
	if err := s.checkWindow(from, to); err != nil {
		return nil, err
	}

	room, err := resolveRoom(ctx, s.repo.Room, roomRef)
	if err != nil {
		return nil, err
	}

	days, _, err := computeOccupancy(ctx, s.repo.Booking, room.ID, from, to, nil)
	if err != nil {
		return nil, fmt.Errorf("compute occupied dates for room %s: %w", room.RoomNumber, err)
	}
	return days, nil
}

func (s *availabilityService) IsRangeFree(ctx context.Context, roomRef string, checkIn, checkOut time.Time) (bool, error) {
	checkIn, checkOut = utils.DateOnly(checkIn), utils.DateOnly(checkOut)
	if !checkOut.After(checkIn) {
		return false, apperror.InvalidField("check_out", "must be after check_in")
	}

	days, err := s.ComputeOccupiedDates(ctx, roomRef, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	return len(days) == 0, nil
}

func (s *availabilityService) GetRoomAvailability(ctx context.Context, roomRef string, req *request.AvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	from, err := utils.ParseDate("from", req.From)
	if err != nil {
		return nil, err
	}
	to, err := utils.ParseDate("to", req.To)
	if err != nil {
		return nil, err
	}
	if err := s.checkWindow(from, to); err != nil {
		return nil, err
	}

	room, err := resolveRoom(ctx, s.repo.Room, roomRef)
	if err != nil {
		return nil, err
	}
	days, _, err := computeOccupancy(ctx, s.repo.Booking, room.ID, from, to, nil)
	if err != nil {
		return nil, fmt.Errorf("room availability: %w", err)
	}

	return &response.AvailabilityResponse{
		RoomID:        room.ID.String(),
		RoomNumber:    room.RoomNumber,
		From:          req.From,
		To:            req.To,
		OccupiedDates: utils.FormatDates(days),
	}, nil
}

func (s *availabilityService) CheckRange(ctx context.Context, roomRef string, req *request.RangeCheckRequest) (*response.RangeCheckResponse, error) {
	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := s.checkWindow(checkIn, checkOut); err != nil {
		return nil, err
	}

	room, err := resolveRoom(ctx, s.repo.Room, roomRef)
	if err != nil {
		return nil, err
	}
	days, _, err := computeOccupancy(ctx, s.repo.Booking, room.ID, checkIn, checkOut, nil)
	if err != nil {
		return nil, fmt.Errorf("check range: %w", err)
	}

	nights := utils.DaysBetween(checkIn, checkOut)
	return &response.RangeCheckResponse{
		RoomID:         room.ID.String(),
		RoomNumber:     room.RoomNumber,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		Available:      len(days) == 0 && room.Bookable(),
		Nights:         nights,
		EstimatedPrice: float64(nights) * room.Price,
		OccupiedDates:  utils.FormatDates(days),
	}, nil
}

func (s *availabilityService) FindAvailableRooms(ctx context.Context, req *request.AvailableRoomsRequest) (*response.PaginatedResponse[response.RoomResponse], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}
	checkIn, checkOut, err := parseStay(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := s.checkWindow(checkIn, checkOut); err != nil {
		return nil, err
	}

	booked, err := s.repo.Booking.FindBookedRoomIDs(ctx, checkIn, checkOut)
	if err != nil {
		return nil, fmt.Errorf("find available rooms: %w", err)
	}

	available := entity.RoomStatusAvailable
	filter := repository.RoomFilter{
		Status:     &available,
		RoomType:   strings.TrimSpace(req.RoomType),
		Search:     strings.TrimSpace(req.Search),
		Sort:       req.Sort,
		ExcludeIDs: booked,
	}
	rooms, err := s.repo.Room.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("find available rooms: %w", err)
	}
	total, err := s.repo.Room.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count available rooms: %w", err)
	}

	return response.NewPaginatedResponse(response.RoomsToResponse(rooms, false), req.Page, req.Limit(), total), nil
}

// parseStay parses a check-in/check-out pair and requires at least one night.
func parseStay(rawIn, rawOut string) (time.Time, time.Time, error) {
	checkIn, err := utils.ParseDate("check_in", rawIn)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	checkOut, err := utils.ParseDate("check_out", rawOut)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !checkOut.After(checkIn) {
		return time.Time{}, time.Time{}, apperror.InvalidField("check_out", "must be after check_in")
	}
	return checkIn, checkOut, nil
}
