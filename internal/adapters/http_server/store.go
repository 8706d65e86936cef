package httpserver

import (
	"sync"

	"staybook/internal/domain"
)

// memStore backs the stub server. Everything lives in memory and resets on
// restart; that is the point of a stub.
type userRec struct {
	id   int64
	user domain.User
}

type memStore struct {
	mu          sync.Mutex
	users       map[string]userRec // by username
	hotels      []domain.Hotel
	bookings    []domain.Booking
	nextUserID  int64
	nextHotelID int64
	nextBookID  int64
}

func newMemStore(seed []domain.Hotel) *memStore {
	s := &memStore{users: map[string]userRec{}, nextUserID: 1, nextHotelID: 1, nextBookID: 1}
	for _, h := range seed {
		h := h
		id := s.nextHotelID
		s.nextHotelID++
		h.ID = &id
		s.hotels = append(s.hotels, h)
	}
	return s
}

func (s *memStore) addUser(u domain.User) (userRec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.Username]; exists {
		return userRec{}, false
	}
	rec := userRec{id: s.nextUserID, user: u}
	s.nextUserID++
	s.users[u.Username] = rec
	return rec, true
}

func (s *memStore) findUser(username string) (userRec, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[username]
	return rec, ok
}

func (s *memStore) listHotels() []domain.Hotel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Hotel(nil), s.hotels...)
}

func (s *memStore) getHotel(id int64) (domain.Hotel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.hotels {
		if h.ID != nil && *h.ID == id {
			return h, true
		}
	}
	return domain.Hotel{}, false
}

func (s *memStore) addHotel(h domain.Hotel) domain.Hotel {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextHotelID
	s.nextHotelID++
	h.ID = &id
	s.hotels = append(s.hotels, h)
	return h
}

func (s *memStore) addBooking(b domain.Booking) domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextBookID
	s.nextBookID++
	b.ID = &id
	s.bookings = append(s.bookings, b)
	return b
}

func (s *memStore) listBookings(username string) []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		if username == "" || b.Username == username {
			out = append(out, b)
		}
	}
	return out
}

func (s *memStore) deleteBooking(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range s.bookings {
		if b.ID != nil && *b.ID == id {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			return true
		}
	}
	return false
}
