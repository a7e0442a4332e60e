package response

import (
	"time"

	"hotel-booking/internal/data/entity"
)

type RoomResponse struct {
	ID          string            `json:"id"`
	RoomNumber  string            `json:"room_number"`
	Name        string            `json:"name"`
	RoomType    string            `json:"room_type"`
	Price       float64           `json:"price"`
	Capacity    int               `json:"capacity"`
	Status      entity.RoomStatus `json:"status"`
	Amenities   []string          `json:"amenities"`
	Description *string           `json:"description,omitempty"`
	Images      []string          `json:"images"`
	OwnerNotes  *string           `json:"owner_notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

type RoomStatsResponse struct {
	Total    int64                       `json:"total"`
	ByStatus map[entity.RoomStatus]int64 `json:"by_status"`
}

// RoomToResponse hides owner notes unless staff is asking.
func RoomToResponse(room *entity.Room, staff bool) RoomResponse {
	resp := RoomResponse{
		ID:          room.ID.String(),
		RoomNumber:  room.RoomNumber,
		Name:        room.Name,
		RoomType:    room.RoomType,
		Price:       room.Price,
		Capacity:    room.Capacity,
		Status:      room.Status,
		Amenities:   nonNil(room.Amenities),
		Description: room.Description,
		Images:      nonNil(room.Images),
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
	if staff {
		resp.OwnerNotes = room.OwnerNotes
	}
	return resp
}

func RoomsToResponse(rooms []*entity.Room, staff bool) []RoomResponse {
	out := make([]RoomResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, RoomToResponse(room, staff))
	}
	return out
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
