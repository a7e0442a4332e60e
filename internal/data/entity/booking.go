package entity

import (
	"fmt"
	"regexp"
	"time"

	"hotel-booking/pkg/apperror"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed  BookingStatus = "confirmed"
	BookingStatusCheckedIn  BookingStatus = "checked-in"
	BookingStatusCheckedOut BookingStatus = "checked-out"
	BookingStatusCancelled  BookingStatus = "cancelled"
)

// ActiveBookingStatuses are the statuses that hold a room's nights.
var ActiveBookingStatuses = []BookingStatus{BookingStatusConfirmed, BookingStatusCheckedIn}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusConfirmed: {BookingStatusCheckedIn, BookingStatusCancelled},
	BookingStatusCheckedIn: {BookingStatusCheckedOut, BookingStatusCancelled},
}

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusConfirmed, BookingStatusCheckedIn, BookingStatusCheckedOut, BookingStatusCancelled:
		return true
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCheckedOut || s == BookingStatusCancelled
}

// Occupies reports whether a booking in this status blocks its nights.
func (s BookingStatus) Occupies() bool {
	return s == BookingStatusConfirmed || s == BookingStatusCheckedIn
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// HotelID identifies the property a booking belongs to.
type HotelID string

var hotelIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func IsValidHotelID(raw string) bool {
	return hotelIDPattern.MatchString(raw)
}

func ParseHotelID(raw string) (HotelID, error) {
	if !IsValidHotelID(raw) {
		return "", apperror.InvalidField("hotel_id", "must be 1-64 letters, digits, '-' or '_'")
	}
	return HotelID(raw), nil
}

// GuestAccountID is the identity collaborator's account reference.
type GuestAccountID string

type Booking struct {
	Base
	GuestName      string          `db:"guest_name"`
	RoomID         uuid.UUID       `db:"room_id"`
	GuestAccountID *GuestAccountID `db:"guest_account_id"`
	HotelID        *HotelID        `db:"hotel_id"`
	CheckIn        time.Time       `db:"check_in"`
	CheckOut       time.Time       `db:"check_out"`
	Status         BookingStatus   `db:"status"`
	Notes          *string         `db:"notes"`
	Payment        Payment
	CancelledBy    *string    `db:"cancelled_by"`
	CancelledAt    *time.Time `db:"cancelled_at"`
	Version        int        `db:"version"`
}

// Nights is the number of nights in [CheckIn, CheckOut).
func (b *Booking) Nights() int {
	return int(b.CheckOut.Sub(b.CheckIn).Hours() / 24)
}

// Overlaps reports whether the stay intersects the half-open range [from, to).
func (b *Booking) Overlaps(from, to time.Time) bool {
	return b.CheckIn.Before(to) && b.CheckOut.After(from)
}

func (b *Booking) OwnedBy(account GuestAccountID) bool {
	return b.GuestAccountID != nil && *b.GuestAccountID == account
}

// Transition moves the booking to next. Check-in opens on the check-in date
// (UTC); cancelling records who did it and when.
func (b *Booking) Transition(next BookingStatus, actor string, now time.Time) error {
	if !b.Status.CanTransitionTo(next) {
		return apperror.InvalidTransition("booking", string(b.Status), string(next))
	}
	if next == BookingStatusCheckedIn && dateOf(now).Before(b.CheckIn) {
		return fmt.Errorf("%w: check-in opens on %s", apperror.ErrInvalidTransition, b.CheckIn.Format("2006-01-02"))
	}

	b.Status = next
	if next == BookingStatusCancelled {
		at := now.UTC()
		b.CancelledAt = &at
		if actor != "" {
			b.CancelledBy = &actor
		}
	}
	return nil
}

// RecordPayment applies a payment outcome. A failed payment leaves the
// booking confirmed.
func (b *Booking) RecordPayment(outcome PaymentStatus, provider, providerID, receiptURL *string) error {
	if !outcome.IsTerminal() {
		return apperror.InvalidField("outcome", "must be paid or failed")
	}
	if b.Status == BookingStatusCancelled {
		return apperror.InvalidTransition("payment on cancelled booking", string(b.Payment.Status), string(outcome))
	}
	if b.Payment.Status.IsTerminal() {
		return apperror.InvalidTransition("payment", string(b.Payment.Status), string(outcome))
	}

	b.Payment.Status = outcome
	if provider != nil {
		b.Payment.Provider = provider
	}
	if providerID != nil {
		b.Payment.ProviderID = providerID
	}
	if receiptURL != nil {
		b.Payment.ReceiptURL = receiptURL
	}
	return nil
}
