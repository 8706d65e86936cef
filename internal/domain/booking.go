package domain

// Booking is created by the booking workflow and never mutated after submission.
type Booking struct {
	ID           *int64 `json:"id,omitempty"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	HotelID      int64  `json:"hotelId"`
	RoomNumber   int    `json:"roomNumber"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
}

// BookingRequest is the wire body for POST bookings.
type BookingRequest struct {
	Email        string `json:"email"`
	Username     string `json:"username"`
	HotelID      int64  `json:"hotelId"`
	RoomNumber   int    `json:"roomNumber"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
}
