package request

// AvailabilityRequest asks for the occupied days in [From, To).
type AvailabilityRequest struct {
	From string `json:"from" validate:"required,datetime=2006-01-02"`
	To   string `json:"to" validate:"required,datetime=2006-01-02"`
}

type RangeCheckRequest struct {
	CheckIn  string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" validate:"required,datetime=2006-01-02"`
}

type AvailableRoomsRequest struct {
	PaginatedRequest
	RangeCheckRequest
	RoomType string `json:"type" validate:"omitempty,max=64"`
	Search   string `json:"q" validate:"omitempty,max=120"`
	Sort     string `json:"sort" validate:"omitempty,oneof=price_asc price_desc room_number"`
}
