package gormstore

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hotel-booking/internal/data/entity"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// Room mirrors the rooms table. Amenities and images are JSON arrays.
type Room struct {
	ID         string         `gorm:"type:uuid;primaryKey"`
	RoomNumber string         `gorm:"not null;uniqueIndex:idx_rooms_room_number"`
	Name       string         `gorm:"not null"`
	RoomType   string         `gorm:"not null;index"`
	Price      float64        `gorm:"not null;index"`
	Capacity   int            `gorm:"not null"`
	Status     string         `gorm:"not null;index"`
	Amenities  datatypes.JSON `gorm:"not null"`
	// AmenitiesText is the lowercased amenities, one per line, for search.
	AmenitiesText string `gorm:"not null;default:''"`
	Description   *string
	Images        datatypes.JSON `gorm:"not null"`
	OwnerNotes    *string
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (Room) TableName() string { return "rooms" }

// Booking mirrors the bookings table. Dates are stored as YYYY-MM-DD text
// so range predicates compare the same way on every dialect.
type Booking struct {
	ID                string  `gorm:"type:uuid;primaryKey"`
	GuestName         string  `gorm:"not null"`
	RoomID            string  `gorm:"type:uuid;not null;index:idx_bookings_room_dates,priority:1"`
	GuestAccountID    *string `gorm:"index"`
	HotelID           *string `gorm:"index"`
	CheckIn           string  `gorm:"type:varchar(10);not null;index:idx_bookings_room_dates,priority:2"`
	CheckOut          string  `gorm:"type:varchar(10);not null"`
	Status            string  `gorm:"not null"`
	Notes             *string
	PaymentStatus     string `gorm:"not null"`
	PaymentProvider   *string
	PaymentProviderID *string
	PaymentReceiptURL *string
	CancelledBy       *string
	CancelledAt       *time.Time
	Version           int       `gorm:"not null"`
	CreatedAt         time.Time `gorm:"not null;index"`
	UpdatedAt         time.Time `gorm:"not null;autoUpdateTime:false"`
}

func (Booking) TableName() string { return "bookings" }

func jsonStrings(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	raw, _ := json.Marshal(values)
	return datatypes.JSON(raw)
}

func parseStrings(raw datatypes.JSON) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, err
	}
	return values, nil
}

func fromRoomEntity(room *entity.Room) Room {
	return Room{
		ID:            room.ID.String(),
		RoomNumber:    room.RoomNumber,
		Name:          room.Name,
		RoomType:      room.RoomType,
		Price:         room.Price,
		Capacity:      room.Capacity,
		Status:        string(room.Status),
		Amenities:     jsonStrings(room.Amenities),
		AmenitiesText: strings.ToLower(strings.Join(room.Amenities, "\n")),
		Description:   room.Description,
		Images:        jsonStrings(room.Images),
		OwnerNotes:    room.OwnerNotes,
		CreatedAt:     room.CreatedAt.UTC(),
		UpdatedAt:     room.UpdatedAt.UTC(),
	}
}

func (m Room) toEntity() (*entity.Room, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("room id %q: %w", m.ID, err)
	}
	amenities, err := parseStrings(m.Amenities)
	if err != nil {
		return nil, fmt.Errorf("room %s amenities: %w", m.ID, err)
	}
	images, err := parseStrings(m.Images)
	if err != nil {
		return nil, fmt.Errorf("room %s images: %w", m.ID, err)
	}
	return &entity.Room{
		Base:        entity.Base{ID: id, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		RoomNumber:  m.RoomNumber,
		Name:        m.Name,
		RoomType:    m.RoomType,
		Price:       m.Price,
		Capacity:    m.Capacity,
		Status:      entity.RoomStatus(m.Status),
		Amenities:   amenities,
		Description: m.Description,
		Images:      images,
		OwnerNotes:  m.OwnerNotes,
	}, nil
}

func fromBookingEntity(b *entity.Booking) Booking {
	var cancelledAt *time.Time
	if b.CancelledAt != nil {
		at := b.CancelledAt.UTC()
		cancelledAt = &at
	}
	return Booking{
		ID:                b.ID.String(),
		GuestName:         b.GuestName,
		RoomID:            b.RoomID.String(),
		GuestAccountID:    stringPtr(b.GuestAccountID),
		HotelID:           stringPtr(b.HotelID),
		CheckIn:           formatDate(b.CheckIn),
		CheckOut:          formatDate(b.CheckOut),
		Status:            string(b.Status),
		Notes:             b.Notes,
		PaymentStatus:     string(b.Payment.Status),
		PaymentProvider:   b.Payment.Provider,
		PaymentProviderID: b.Payment.ProviderID,
		PaymentReceiptURL: b.Payment.ReceiptURL,
		CancelledBy:       b.CancelledBy,
		CancelledAt:       cancelledAt,
		Version:           b.Version,
		CreatedAt:         b.CreatedAt.UTC(),
		UpdatedAt:         b.UpdatedAt.UTC(),
	}
}

func (m Booking) toEntity() (*entity.Booking, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("booking id %q: %w", m.ID, err)
	}
	roomID, err := uuid.Parse(m.RoomID)
	if err != nil {
		return nil, fmt.Errorf("booking %s room id: %w", m.ID, err)
	}
	checkIn, err := time.ParseInLocation(dateLayout, m.CheckIn, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("booking %s check_in: %w", m.ID, err)
	}
	checkOut, err := time.ParseInLocation(dateLayout, m.CheckOut, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("booking %s check_out: %w", m.ID, err)
	}
	return &entity.Booking{
		Base:           entity.Base{ID: id, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		GuestName:      m.GuestName,
		RoomID:         roomID,
		GuestAccountID: typedPtr[entity.GuestAccountID](m.GuestAccountID),
		HotelID:        typedPtr[entity.HotelID](m.HotelID),
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Status:         entity.BookingStatus(m.Status),
		Notes:          m.Notes,
		Payment: entity.Payment{
			Status:     entity.PaymentStatus(m.PaymentStatus),
			Provider:   m.PaymentProvider,
			ProviderID: m.PaymentProviderID,
			ReceiptURL: m.PaymentReceiptURL,
		},
		CancelledBy: m.CancelledBy,
		CancelledAt: m.CancelledAt,
		Version:     m.Version,
	}, nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func typedPtr[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}
