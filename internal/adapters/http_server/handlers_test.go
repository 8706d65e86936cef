package httpserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"staybook/internal/domain"
)

func newTestServer(t *testing.T, seed []domain.Hotel) *httptest.Server {
	t.Helper()
	srv := New()
	srv.MountHandlers(NewHandlers(seed))
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	defer res.Body.Close()
	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func seedHotels() []domain.Hotel {
	return []domain.Hotel{
		{Name: "Гранд Отель", PricePerNight: 5000, RoomCount: 100},
		{Name: "Комфорт Инн", PricePerNight: 3500, RoomCount: 75},
	}
}

func TestRegisterLogin(t *testing.T) {
	ts := newTestServer(t, nil)

	res := postJSON(t, ts.URL+"/api/auth/register", domain.User{
		Username: "alice", Email: "alice@example.com", Password: "secret",
	})
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", res.StatusCode)
	}
	auth := decode[domain.AuthResponse](t, res)
	if auth.Token == "" {
		t.Fatal("register returned empty token")
	}
	if auth.User == nil || auth.User.Role != domain.RoleUser {
		t.Fatalf("register user = %+v", auth.User)
	}
	if auth.User.Password != "" {
		t.Fatal("register echoed the password back")
	}

	// duplicate username
	res = postJSON(t, ts.URL+"/api/auth/register", domain.User{
		Username: "alice", Email: "other@example.com", Password: "x",
	})
	if res.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", res.StatusCode)
	}
	if e := decode[domain.ErrorResponse](t, res); e.Message != "User already exists" {
		t.Fatalf("duplicate register message = %q", e.Message)
	}

	res = postJSON(t, ts.URL+"/api/auth/login", domain.LoginRequest{Username: "alice", Password: "secret"})
	if res.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", res.StatusCode)
	}
	user := decode[domain.UserResponse](t, res)
	if user.Username != "alice" || user.Email != "alice@example.com" || user.ID == 0 {
		t.Fatalf("login response = %+v", user)
	}

	res = postJSON(t, ts.URL+"/api/auth/login", domain.LoginRequest{Username: "alice", Password: "wrong"})
	if res.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad password status = %d", res.StatusCode)
	}
	if e := decode[domain.ErrorResponse](t, res); e.Message != "Invalid username or password" {
		t.Fatalf("bad password message = %q", e.Message)
	}
}

func TestHotels_SeededAndByID(t *testing.T) {
	ts := newTestServer(t, seedHotels())

	res, err := http.Get(ts.URL + "/api/hotels")
	if err != nil {
		t.Fatalf("GET hotels: %v", err)
	}
	hotels := decode[[]domain.Hotel](t, res)
	if len(hotels) != 2 {
		t.Fatalf("got %d hotels, want 2", len(hotels))
	}
	if hotels[0].ID == nil || *hotels[0].ID != 1 {
		t.Fatalf("seed hotel id = %v, want 1", hotels[0].ID)
	}

	res, err = http.Get(ts.URL + "/api/hotels/2")
	if err != nil {
		t.Fatalf("GET hotel: %v", err)
	}
	h := decode[domain.Hotel](t, res)
	if h.Name != "Комфорт Инн" {
		t.Fatalf("hotel 2 name = %q", h.Name)
	}

	res, err = http.Get(ts.URL + "/api/hotels/99")
	if err != nil {
		t.Fatalf("GET missing hotel: %v", err)
	}
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("missing hotel status = %d", res.StatusCode)
	}
	if e := decode[domain.ErrorResponse](t, res); e.Message != "Hotel not found" {
		t.Fatalf("missing hotel message = %q", e.Message)
	}
}

func TestAddHotel_Multipart(t *testing.T) {
	ts := newTestServer(t, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", "Морской Бриз")
	_ = mw.WriteField("pricePerNight", "4500")
	_ = mw.WriteField("description", "у моря")
	_ = mw.WriteField("roomCount", "85")
	fw, err := mw.CreateFormFile("image", "breeze.jpg")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = fw.Write([]byte("not really a jpeg"))
	_ = mw.Close()

	res, err := http.Post(ts.URL+"/api/hotels", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatalf("POST hotel: %v", err)
	}
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("add hotel status = %d", res.StatusCode)
	}
	h := decode[domain.Hotel](t, res)
	if h.ID == nil || h.Name != "Морской Бриз" || h.RoomCount != 85 {
		t.Fatalf("added hotel = %+v", h)
	}
	if h.ImageURL == nil || *h.ImageURL != "/uploads/breeze.jpg" {
		t.Fatalf("image url = %v", h.ImageURL)
	}
}

func TestAddHotel_Validation(t *testing.T) {
	ts := newTestServer(t, nil)

	cases := []struct {
		name   string
		fields map[string]string
	}{
		{"missing name", map[string]string{"pricePerNight": "100", "roomCount": "5"}},
		{"bad price", map[string]string{"name": "x", "pricePerNight": "abc", "roomCount": "5"}},
		{"negative rooms", map[string]string{"name": "x", "pricePerNight": "100", "roomCount": "-1"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			for k, v := range tc.fields {
				_ = mw.WriteField(k, v)
			}
			_ = mw.Close()
			res, err := http.Post(ts.URL+"/api/hotels", mw.FormDataContentType(), &buf)
			if err != nil {
				t.Fatalf("POST: %v", err)
			}
			res.Body.Close()
			if res.StatusCode != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", res.StatusCode)
			}
		})
	}
}

func TestBookings_Lifecycle(t *testing.T) {
	ts := newTestServer(t, seedHotels())

	req := domain.BookingRequest{
		Email: "alice@example.com", Username: "alice",
		HotelID: 1, RoomNumber: 101,
		CheckInDate: "2024-03-20", CheckOutDate: "2024-03-25",
	}
	res := postJSON(t, ts.URL+"/bookings", req)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", res.StatusCode)
	}
	b := decode[domain.Booking](t, res)
	if b.ID == nil || b.HotelID != 1 || b.RoomNumber != 101 {
		t.Fatalf("created booking = %+v", b)
	}

	// same resource is visible under the /api prefix too
	res2, err := http.Get(ts.URL + "/api/bookings?username=alice")
	if err != nil {
		t.Fatalf("GET bookings: %v", err)
	}
	list := decode[[]domain.Booking](t, res2)
	if len(list) != 1 || *list[0].ID != *b.ID {
		t.Fatalf("bookings for alice = %+v", list)
	}

	res3, err := http.Get(ts.URL + "/bookings?username=bob")
	if err != nil {
		t.Fatalf("GET bookings: %v", err)
	}
	if got := decode[[]domain.Booking](t, res3); len(got) != 0 {
		t.Fatalf("bookings for bob = %+v", got)
	}

	delReq, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/bookings/%d", ts.URL, *b.ID), nil)
	delRes, err := http.DefaultClient.Do(delReq)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	delRes.Body.Close()
	if delRes.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", delRes.StatusCode)
	}

	delRes2, err := http.DefaultClient.Do(delReq.Clone(delReq.Context()))
	if err != nil {
		t.Fatalf("DELETE again: %v", err)
	}
	if delRes2.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d", delRes2.StatusCode)
	}
	if e := decode[domain.ErrorResponse](t, delRes2); e.Message != "Booking not found" {
		t.Fatalf("second delete message = %q", e.Message)
	}
}

func TestCreateBooking_UnknownHotel(t *testing.T) {
	ts := newTestServer(t, nil)

	res := postJSON(t, ts.URL+"/api/bookings", domain.BookingRequest{
		Email: "a@b.c", Username: "a", HotelID: 42, RoomNumber: 1,
		CheckInDate: "2024-01-01", CheckOutDate: "2024-01-02",
	})
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", res.StatusCode)
	}
	res.Body.Close()
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	res, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET healthz: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("healthz status = %d", res.StatusCode)
	}
	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "ok" {
		t.Fatalf("healthz body = %q", body)
	}
}
