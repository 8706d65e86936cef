package domain

import "context"

// HotelAPI is the remote catalog contract.
type HotelAPI interface {
	ListHotels(ctx context.Context) ([]Hotel, error)
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	AddHotel(ctx context.Context, up NewHotelUpload) (Hotel, error)
}

// BookingAPI is the remote booking contract.
type BookingAPI interface {
	CreateBooking(ctx context.Context, req BookingRequest) (Booking, error)
	ListBookings(ctx context.Context, username string) ([]Booking, error)
	ListAllBookings(ctx context.Context) ([]Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
}

// AuthAPI is the remote auth contract.
type AuthAPI interface {
	Register(ctx context.Context, u User) (AuthResponse, error)
	Login(ctx context.Context, req LoginRequest) (UserResponse, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// SessionStore persists the ambient session. Save and Clear are atomic:
// a partially written session must never be observable.
type SessionStore interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	SetEmail(ctx context.Context, email string) error
	SetDarkTheme(ctx context.Context, dark bool) error
	Clear(ctx context.Context) error
}

// HistoryStore persists the search history, most-recent-first.
type HistoryStore interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, entries []string) error
}

// Prober reports whether the API host accepts TCP connections.
type Prober interface {
	Reachable(ctx context.Context) bool
}
