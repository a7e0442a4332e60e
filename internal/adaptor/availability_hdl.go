package adaptor

import (
	"net/http"

	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/usecase"
	"hotel-booking/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type AvailabilityHandler struct {
	service usecase.AvailabilityService
	log     *zap.Logger
}

func NewAvailabilityHandler(service usecase.AvailabilityService, log *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log.With(zap.String("handler", "availability")),
	}
}

// GetRoomAvailability handles GET /api/rooms/{id}/availability?from=&to=
func (h *AvailabilityHandler) GetRoomAvailability(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.AvailabilityRequest{
		From: query.Get("from"),
		To:   query.Get("to"),
	}

	resp, err := h.service.GetRoomAvailability(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(h.log, w, err, "room availability")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// CheckRange handles GET /api/rooms/{id}/availability/check?check_in=&check_out=
func (h *AvailabilityHandler) CheckRange(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.RangeCheckRequest{
		CheckIn:  query.Get("check_in"),
		CheckOut: query.Get("check_out"),
	}

	resp, err := h.service.CheckRange(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(h.log, w, err, "check range")
		return
	}

	utils.ResponseSuccess(w, "success", resp)
}

// FindAvailableRooms handles GET /api/rooms/available
func (h *AvailabilityHandler) FindAvailableRooms(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.AvailableRoomsRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 10),
		},
		RangeCheckRequest: request.RangeCheckRequest{
			CheckIn:  query.Get("check_in"),
			CheckOut: query.Get("check_out"),
		},
		RoomType: query.Get("type"),
		Search:   query.Get("q"),
		Sort:     query.Get("sort"),
	}

	rooms, err := h.service.FindAvailableRooms(r.Context(), req)
	if err != nil {
		handleServiceError(h.log, w, err, "find available rooms")
		return
	}

	utils.ResponseSuccess(w, "success", rooms)
}
