package httpserver

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"staybook/internal/domain"
)

type Handlers struct {
	store *memStore
}

// NewHandlers builds the stub handler set, seeded with an initial catalog.
func NewHandlers(seed []domain.Hotel) *Handlers {
	return &Handlers{store: newMemStore(seed)}
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/api/auth/register", h.register)
	s.mux.Post("/api/auth/login", h.login)

	s.mux.Get("/api/hotels", h.listHotels)
	s.mux.Get("/api/hotels/{id}", h.getHotel)
	s.mux.Post("/api/hotels", h.addHotel)

	// both base-path variants of the bookings API exist in the wild; the stub
	// serves them identically
	for _, base := range []string{"/bookings", "/api/bookings"} {
		s.mux.Post(base, h.createBooking)
		s.mux.Get(base, h.listBookings)
		s.mux.Delete(base+"/{id}", h.deleteBooking)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, domain.ErrorResponse{Message: msg})
}

// ---- auth ----

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var u domain.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.Email) == "" || u.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email and password are required")
		return
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	if _, ok := h.store.addUser(u); !ok {
		writeError(w, http.StatusConflict, "User already exists")
		return
	}
	u.Password = ""
	writeJSON(w, http.StatusCreated, domain.AuthResponse{Token: newToken(), User: &u})
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	rec, ok := h.store.findUser(req.Username)
	if !ok || rec.user.Password != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}
	writeJSON(w, http.StatusOK, domain.UserResponse{
		ID:       rec.id,
		Username: rec.user.Username,
		Email:    rec.user.Email,
		Role:     rec.user.Role,
	})
}

func newToken() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "stub-token"
	}
	return hex.EncodeToString(b[:])
}

// ---- hotels ----

func (h *Handlers) listHotels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listHotels())
}

func (h *Handlers) getHotel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a number")
		return
	}
	hotel, ok := h.store.getHotel(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Hotel not found")
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (h *Handlers) addHotel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form data")
		return
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	price, err := strconv.ParseFloat(r.FormValue("pricePerNight"), 64)
	if err != nil || price < 0 {
		writeError(w, http.StatusBadRequest, "pricePerNight must be a non-negative number")
		return
	}
	rooms, err := strconv.Atoi(r.FormValue("roomCount"))
	if err != nil || rooms < 0 {
		writeError(w, http.StatusBadRequest, "roomCount must be a non-negative integer")
		return
	}

	hotel := domain.Hotel{
		Name:          name,
		PricePerNight: price,
		Description:   r.FormValue("description"),
		RoomCount:     rooms,
	}
	// the stub does not persist uploads; it records the filename as the
	// image reference
	if f, fh, err := r.FormFile("image"); err == nil {
		f.Close()
		ref := "/uploads/" + fh.Filename
		hotel.ImageURL = &ref
	}
	writeJSON(w, http.StatusCreated, h.store.addHotel(hotel))
}

// ---- bookings ----

func (h *Handlers) createBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Username) == "" ||
		req.CheckInDate == "" || req.CheckOutDate == "" {
		writeError(w, http.StatusBadRequest, "email, username and dates are required")
		return
	}
	if req.RoomNumber <= 0 {
		writeError(w, http.StatusBadRequest, "roomNumber must be positive")
		return
	}
	if _, ok := h.store.getHotel(req.HotelID); !ok {
		writeError(w, http.StatusNotFound, "Hotel not found")
		return
	}
	b := h.store.addBooking(domain.Booking{
		Email:        req.Email,
		Username:     req.Username,
		HotelID:      req.HotelID,
		RoomNumber:   req.RoomNumber,
		CheckInDate:  req.CheckInDate,
		CheckOutDate: req.CheckOutDate,
	})
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.store.listBookings(r.URL.Query().Get("username")))
}

func (h *Handlers) deleteBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "id must be a number")
		return
	}
	if !h.store.deleteBooking(id) {
		writeError(w, http.StatusNotFound, "Booking not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
