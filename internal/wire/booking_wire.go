package wire

import (
	"hotel-booking/internal/adaptor"
	"hotel-booking/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	log *zap.Logger,
) {
	// ==================== GUEST ROUTES ====================
	// ownership is checked per booking in the service
	r.Route("/api/bookings", func(r chi.Router) {
		r.Post("/", bookingHandler.CreateBooking)
		r.Get("/", bookingHandler.GetBookings)
		r.Get("/{id}", bookingHandler.GetBooking)
		r.Put("/{id}", bookingHandler.UpdateBooking)
		r.Post("/{id}/cancel", bookingHandler.CancelBooking)

		// called by the payment collaborator
		r.With(middleware.RequirePayments(log)).Post("/{id}/payment", bookingHandler.RecordPayment)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireGuest)

		r.Get("/api/user/bookings", bookingHandler.GetUserBookings)
		r.Get("/api/user/bookings/summary", bookingHandler.GetUserBookingSummary)
	})

	// ==================== STAFF ROUTES ====================
	r.Route("/api/admin/bookings", func(r chi.Router) {
		r.Use(middleware.RequireStaff(log))

		r.Put("/{id}", bookingHandler.UpdateBooking)
		r.Delete("/{id}", bookingHandler.DeleteBooking)
		r.Post("/{id}/check-in", bookingHandler.CheckIn)
		r.Post("/{id}/check-out", bookingHandler.CheckOut)
		r.Post("/{id}/cancel", bookingHandler.CancelBooking)
		r.Put("/{id}/status", bookingHandler.UpdateStatus)
	})
}
