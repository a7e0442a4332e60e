package request

type CreateRoomRequest struct {
	RoomNumber  string   `json:"room_number" validate:"required,max=32"`
	Name        string   `json:"name" validate:"required,max=120"`
	RoomType    string   `json:"room_type" validate:"required,max=64"`
	Price       float64  `json:"price" validate:"gte=0"`
	Capacity    *int     `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Status      string   `json:"status,omitempty" validate:"omitempty,oneof=available occupied maintenance"`
	Amenities   []string `json:"amenities,omitempty" validate:"omitempty,dive,required,max=64"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=4000"`
	Images      []string `json:"images,omitempty" validate:"omitempty,dive,url"`
	OwnerNotes  *string  `json:"owner_notes,omitempty" validate:"omitempty,max=4000"`
}

// UpdateRoomRequest only touches the fields that are present.
type UpdateRoomRequest struct {
	RoomNumber  *string   `json:"room_number,omitempty" validate:"omitempty,min=1,max=32"`
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=1,max=120"`
	RoomType    *string   `json:"room_type,omitempty" validate:"omitempty,min=1,max=64"`
	Price       *float64  `json:"price,omitempty" validate:"omitempty,gte=0"`
	Capacity    *int      `json:"capacity,omitempty" validate:"omitempty,gt=0"`
	Status      *string   `json:"status,omitempty" validate:"omitempty,oneof=available occupied maintenance"`
	Amenities   *[]string `json:"amenities,omitempty" validate:"omitempty,dive,required,max=64"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=4000"`
	Images      *[]string `json:"images,omitempty" validate:"omitempty,dive,url"`
	OwnerNotes  *string   `json:"owner_notes,omitempty" validate:"omitempty,max=4000"`
}

type RoomListRequest struct {
	PaginatedRequest
	Status   string `json:"status" validate:"omitempty,oneof=available occupied maintenance"`
	RoomType string `json:"type" validate:"omitempty,max=64"`
	Search   string `json:"q" validate:"omitempty,max=120"`
	Sort     string `json:"sort" validate:"omitempty,oneof=price_asc price_desc room_number"`
}
