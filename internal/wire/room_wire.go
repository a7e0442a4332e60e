package wire

import (
	"hotel-booking/internal/adaptor"
	"hotel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireRoom(
	r chi.Router,
	roomHandler *adaptor.RoomHandler,
	availabilityHandler *adaptor.AvailabilityHandler,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	r.Route("/api/rooms", func(r chi.Router) {
		r.Get("/", roomHandler.GetRooms)
		// static segment, matched ahead of /{id}
		r.Get("/available", availabilityHandler.FindAvailableRooms)
		r.Get("/{id}", roomHandler.GetRoom)
		r.Get("/{id}/availability", availabilityHandler.GetRoomAvailability)
		r.Get("/{id}/availability/check", availabilityHandler.CheckRange)
	})

	// ==================== STAFF ROUTES ====================
	r.Route("/api/admin/rooms", func(r chi.Router) {
		r.Use(middleware.RequireStaff(log))

		r.Post("/", roomHandler.CreateRoom)
		r.Get("/stats", roomHandler.GetRoomStats)
		r.Put("/{id}", roomHandler.UpdateRoom)
		r.Delete("/{id}", roomHandler.DeleteRoom)
	})
}
