package entity

type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

const DefaultRoomCapacity = 2

var RoomStatuses = []RoomStatus{RoomStatusAvailable, RoomStatusOccupied, RoomStatusMaintenance}

func (s RoomStatus) Valid() bool {
	for _, status := range RoomStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Room struct {
	Base
	RoomNumber  string     `db:"room_number"`
	Name        string     `db:"name"`
	RoomType    string     `db:"room_type"`
	Price       float64    `db:"price"`
	Capacity    int        `db:"capacity"`
	Status      RoomStatus `db:"status"`
	Amenities   []string   `db:"amenities"`
	Description *string    `db:"description"`
	Images      []string   `db:"images"`
	OwnerNotes  *string    `db:"owner_notes"`
}

// Bookable reports whether new stays may be reserved on the room.
func (r *Room) Bookable() bool {
	return r.Status != RoomStatusMaintenance
}
