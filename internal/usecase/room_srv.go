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
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RoomService interface {
	// Public catalog
	GetRooms(ctx context.Context, req *request.RoomListRequest, staff bool) (*response.PaginatedResponse[response.RoomResponse], error)
	GetRoom(ctx context.Context, ref string, staff bool) (*response.RoomResponse, error)

	// Staff
	CreateRoom(ctx context.Context, req *request.CreateRoomRequest) (*response.RoomResponse, error)
	UpdateRoom(ctx context.Context, roomID string, req *request.UpdateRoomRequest) (*response.RoomResponse, error)
	DeleteRoom(ctx context.Context, roomID string) error
	GetRoomStats(ctx context.Context) (*response.RoomStatsResponse, error)
}

type roomService struct {
	repo  *repository.Repository
	guard *ReservationGuard
	log   *zap.Logger
	clock Clock
}

func NewRoomService(repo *repository.Repository, guard *ReservationGuard, log *zap.Logger, clock Clock) RoomService {
	return &roomService{
		repo:  repo,
		guard: guard,
		log:   log.With(zap.String("service", "room")),
		clock: clock,
	}
}

func (s *roomService) GetRooms(ctx context.Context, req *request.RoomListRequest, staff bool) (*response.PaginatedResponse[response.RoomResponse], error) {
	req.Normalize()
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, validationFailed(errs)
	}

	filter := repository.RoomFilter{
		RoomType: strings.TrimSpace(req.RoomType),
		Search:   strings.TrimSpace(req.Search),
		Sort:     req.Sort,
	}
	if req.Status != "" {
		status := entity.RoomStatus(req.Status)
		filter.Status = &status
	}

	rooms, err := s.repo.Room.FindAll(ctx, filter, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("get rooms: %w", err)
	}
	total, err := s.repo.Room.CountAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}

	return response.NewPaginatedResponse(response.RoomsToResponse(rooms, staff), req.Page, req.Limit(), total), nil
}

func (s *roomService) GetRoom(ctx context.Context, ref string, staff bool) (*response.RoomResponse, error) {
	room, err := resolveRoom(ctx, s.repo.Room, ref)
	if err != nil {
		return nil, err
	}
	resp := response.RoomToResponse(room, staff)
	return &resp, nil
}

func (s *roomService) CreateRoom(ctx context.Context, req *request.CreateRoomRequest) (*response.RoomResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create room validation failed", zap.Any("errors", errs))
		return nil, validationFailed(errs)
	}

	now := s.clock()
	room := &entity.Room{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		RoomNumber:  strings.TrimSpace(req.RoomNumber),
		Name:        strings.TrimSpace(req.Name),
		RoomType:    strings.TrimSpace(req.RoomType),
		Price:       req.Price,
		Capacity:    entity.DefaultRoomCapacity,
		Status:      entity.RoomStatusAvailable,
		Amenities:   req.Amenities,
		Description: req.Description,
		Images:      req.Images,
		OwnerNotes:  req.OwnerNotes,
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Status != "" {
		room.Status = entity.RoomStatus(req.Status)
	}
	if err := validateRoom(room); err != nil {
		return nil, err
	}

	if err := s.repo.Room.Create(ctx, room); err != nil {
		return nil, err
	}

	s.log.Info("Room created",
		zap.String("room_id", room.ID.String()),
		zap.String("room_number", room.RoomNumber),
	)

	resp := response.RoomToResponse(room, true)
	return &resp, nil
}

func (s *roomService) UpdateRoom(ctx context.Context, roomID string, req *request.UpdateRoomRequest) (*response.RoomResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Update room validation failed", zap.Any("errors", errs))
		return nil, validationFailed(errs)
	}

	id, err := parseID("room_id", roomID)
	if err != nil {
		return nil, err
	}
	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.RoomNumber != nil {
		room.RoomNumber = strings.TrimSpace(*req.RoomNumber)
	}
	if req.Name != nil {
		room.Name = strings.TrimSpace(*req.Name)
	}
	if req.RoomType != nil {
		room.RoomType = strings.TrimSpace(*req.RoomType)
	}
	if req.Price != nil {
		room.Price = *req.Price
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.Status != nil {
		room.Status = entity.RoomStatus(*req.Status)
	}
	if req.Amenities != nil {
		room.Amenities = *req.Amenities
	}
	if req.Description != nil {
		room.Description = utils.OptionalString(*req.Description)
	}
	if req.Images != nil {
		room.Images = *req.Images
	}
	if req.OwnerNotes != nil {
		room.OwnerNotes = utils.OptionalString(*req.OwnerNotes)
	}
	if err := validateRoom(room); err != nil {
		return nil, err
	}
	room.UpdatedAt = s.clock()

	if err := s.repo.Room.Update(ctx, room); err != nil {
		return nil, err
	}

	s.log.Info("Room updated", zap.String("room_id", room.ID.String()))

	resp := response.RoomToResponse(room, true)
	return &resp, nil
}

func (s *roomService) DeleteRoom(ctx context.Context, roomID string) error {
	id, err := parseID("room_id", roomID)
	if err != nil {
		return err
	}

	// same critical section as reservations, so no booking lands between
	// the count and the delete
	unlock, err := s.guard.lock(ctx, "room", roomKey(id))
	if err != nil {
		return err
	}
	defer unlock()

	return s.repo.Tx.InRoomTx(ctx, id, func(ctx context.Context, tx *repository.Repository) error {
		active, err := tx.Booking.CountActiveByRoom(ctx, id)
		if err != nil {
			return fmt.Errorf("delete room: %w", err)
		}
		if active > 0 {
			return apperror.NewValidationError("room has active bookings", map[string]string{
				"room_id": fmt.Sprintf("%d confirmed or checked-in bookings", active),
			})
		}
		return tx.Room.Delete(ctx, id)
	})
}

func (s *roomService) GetRoomStats(ctx context.Context) (*response.RoomStatsResponse, error) {
	counts, err := s.repo.Room.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("room stats: %w", err)
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	return &response.RoomStatsResponse{Total: total, ByStatus: counts}, nil
}

func validateRoom(room *entity.Room) error {
	errs := map[string]string{}
	if room.RoomNumber == "" {
		errs["room_number"] = "This field is required"
	}
	if room.Name == "" {
		errs["name"] = "This field is required"
	}
	if room.Price < 0 {
		errs["price"] = "Must be at least 0"
	}
	if room.Capacity <= 0 {
		errs["capacity"] = "Must be greater than 0"
	}
	if !room.Status.Valid() {
		errs["status"] = "Must be one of: available, occupied, maintenance"
	}
	if len(errs) > 0 {
		return apperror.NewValidationError("invalid room", errs)
	}
	return nil
}
