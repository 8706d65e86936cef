package domain

// Hotel is an immutable listing value; ID is nil until the server persists it.
type Hotel struct {
	ID            *int64  `json:"id,omitempty"`
	Name          string  `json:"name"`
	PricePerNight float64 `json:"pricePerNight"`
	Description   string  `json:"description"`
	RoomCount     int     `json:"roomCount"`
	ImageURL      *string `json:"imageUrl,omitempty"`
}

// NewHotelUpload carries the multipart fields for creating a hotel listing.
// Image is optional; when present it is streamed as the "image" part.
type NewHotelUpload struct {
	Name          string
	PricePerNight float64
	Description   string
	RoomCount     int
	ImagePath     string
}
