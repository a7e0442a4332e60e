package response

import (
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/utils"
)

type PaymentResponse struct {
	Status     entity.PaymentStatus `json:"status"`
	Provider   *string              `json:"provider,omitempty"`
	ProviderID *string              `json:"provider_id,omitempty"`
	ReceiptURL *string              `json:"receipt_url,omitempty"`
}

type BookingResponse struct {
	ID             string                 `json:"id"`
	GuestName      string                 `json:"guest_name"`
	RoomID         string                 `json:"room_id"`
	RoomNumber     string                 `json:"room_number,omitempty"`
	GuestAccountID *entity.GuestAccountID `json:"guest_account_id,omitempty"`
	HotelID        *entity.HotelID        `json:"hotel_id,omitempty"`
	CheckIn        string                 `json:"check_in"`
	CheckOut       string                 `json:"check_out"`
	Nights         int                    `json:"nights"`
	Status         entity.BookingStatus   `json:"status"`
	Notes          *string                `json:"notes,omitempty"`
	Payment        PaymentResponse        `json:"payment"`
	CancelledBy    *string                `json:"cancelled_by,omitempty"`
	CancelledAt    *time.Time             `json:"cancelled_at,omitempty"`
	Version        int                    `json:"version"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type BookingSummaryResponse struct {
	TotalBookings int              `json:"total_bookings"`
	Upcoming      int              `json:"upcoming"`
	Past          int              `json:"past"`
	Cancelled     int              `json:"cancelled"`
	TotalNights   int              `json:"total_nights"`
	NextStay      *BookingResponse `json:"next_stay"`
}

// BookingToResponse renders b; roomNumber may be empty when unknown.
func BookingToResponse(b *entity.Booking, roomNumber string) BookingResponse {
	return BookingResponse{
		ID:             b.ID.String(),
		GuestName:      b.GuestName,
		RoomID:         b.RoomID.String(),
		RoomNumber:     roomNumber,
		GuestAccountID: b.GuestAccountID,
		HotelID:        b.HotelID,
		CheckIn:        utils.FormatDate(b.CheckIn),
		CheckOut:       utils.FormatDate(b.CheckOut),
		Nights:         b.Nights(),
		Status:         b.Status,
		Notes:          b.Notes,
		Payment: PaymentResponse{
			Status:     b.Payment.Status,
			Provider:   b.Payment.Provider,
			ProviderID: b.Payment.ProviderID,
			ReceiptURL: b.Payment.ReceiptURL,
		},
		CancelledBy: b.CancelledBy,
		CancelledAt: b.CancelledAt,
		Version:     b.Version,
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}
