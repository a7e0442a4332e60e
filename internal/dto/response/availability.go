package response

type AvailabilityResponse struct {
	RoomID        string   `json:"room_id"`
	RoomNumber    string   `json:"room_number"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	OccupiedDates []string `json:"occupied_dates"`
}

type RangeCheckResponse struct {
	RoomID         string   `json:"room_id"`
	RoomNumber     string   `json:"room_number"`
	CheckIn        string   `json:"check_in"`
	CheckOut       string   `json:"check_out"`
	Available      bool     `json:"available"`
	Nights         int      `json:"nights"`
	EstimatedPrice float64  `json:"estimated_price"`
	OccupiedDates  []string `json:"occupied_dates"`
}
