package request

import (
	"hotel-booking/internal/data/entity"
	"hotel-booking/pkg/utils"

	"github.com/go-playground/validator/v10"
)

func init() {
	utils.RegisterValidation("hotelid", func(fl validator.FieldLevel) bool {
		return entity.IsValidHotelID(fl.Field().String())
	})
}

// CreateBookingRequest names the room either by number or by id.
type CreateBookingRequest struct {
	GuestName      string `json:"guest_name" validate:"required,max=120"`
	RoomNumber     string `json:"room_number" validate:"required_without=RoomID,max=32"`
	RoomID         string `json:"room_id" validate:"omitempty,uuid"`
	CheckIn        string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut       string `json:"check_out" validate:"required,datetime=2006-01-02"`
	GuestAccountID string `json:"guest_account_id" validate:"omitempty,max=128"`
	HotelID        string `json:"hotel_id" validate:"omitempty,hotelid"`
	Notes          string `json:"notes" validate:"omitempty,max=2000"`
}

func (r CreateBookingRequest) RoomRef() string {
	if r.RoomID != "" {
		return r.RoomID
	}
	return r.RoomNumber
}

// UpdateBookingRequest edits a confirmed booking. An empty hotel_id clears it.
type UpdateBookingRequest struct {
	GuestName  *string `json:"guest_name,omitempty" validate:"omitempty,min=1,max=120"`
	RoomNumber *string `json:"room_number,omitempty" validate:"omitempty,min=1,max=32"`
	RoomID     *string `json:"room_id,omitempty" validate:"omitempty,uuid"`
	CheckIn    *string `json:"check_in,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CheckOut   *string `json:"check_out,omitempty" validate:"omitempty,datetime=2006-01-02"`
	HotelID    *string `json:"hotel_id,omitempty" validate:"omitempty,hotelid"`
	Notes      *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

func (r UpdateBookingRequest) RoomRef() *string {
	if r.RoomID != nil && *r.RoomID != "" {
		return r.RoomID
	}
	if r.RoomNumber != nil && *r.RoomNumber != "" {
		return r.RoomNumber
	}
	return nil
}

type StatusRequest struct {
	Status string `json:"status" validate:"required,oneof=checked-in checked-out cancelled"`
}

// PaymentOutcomeRequest is posted by the payment collaborator. "succeeded"
// is accepted as an alias of "paid".
type PaymentOutcomeRequest struct {
	Outcome    string  `json:"outcome" validate:"required,oneof=paid succeeded failed"`
	Provider   *string `json:"provider,omitempty" validate:"omitempty,max=64"`
	ProviderID *string `json:"provider_id,omitempty" validate:"omitempty,max=128"`
	ReceiptURL *string `json:"receipt_url,omitempty" validate:"omitempty,url"`
}

func (r PaymentOutcomeRequest) PaymentStatus() entity.PaymentStatus {
	if r.Outcome == "succeeded" {
		return entity.PaymentStatusPaid
	}
	return entity.PaymentStatus(r.Outcome)
}

type BookingListRequest struct {
	PaginatedRequest
	GuestAccountID string `json:"guest_account_id" validate:"omitempty,max=128"`
	HotelID        string `json:"hotel_id" validate:"omitempty,hotelid"`
	Room           string `json:"room" validate:"omitempty,max=64"`
	Status         string `json:"status" validate:"omitempty,oneof=confirmed checked-in checked-out cancelled"`
}
