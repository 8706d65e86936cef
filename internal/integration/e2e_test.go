//go:build integration || !unit

package integration

import (
	"context"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"

	server "staybook/internal/adapters/http_server"
	"staybook/internal/adapters/probe"
	redisad "staybook/internal/adapters/redis"
	"staybook/internal/adapters/stayapi"
	"staybook/internal/app"
	"staybook/internal/domain"
	"staybook/internal/storage/prefs"
)

// env is the full client wired against an in-process stub server, the same
// composition the CLI performs at startup.
type env struct {
	ts       *httptest.Server
	store    *prefs.Store
	auth     *app.Auth
	catalog  *app.Catalog
	workflow *app.BookingWorkflow
	bookings *app.Bookings
	search   *app.Search
}

func newEnv(t *testing.T) *env {
	t.Helper()

	srv := server.New()
	srv.MountHandlers(server.NewHandlers(app.SampleHotels()))
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)

	client, err := stayapi.New(ts.URL, stayapi.Options{BookingsUnderAPI: true, RPS: 100})
	if err != nil {
		t.Fatalf("stayapi.New: %v", err)
	}
	prober, err := probe.New(ts.URL, time.Second)
	if err != nil {
		t.Fatalf("probe.New: %v", err)
	}

	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)

	store, err := prefs.Open(filepath.Join(t.TempDir(), "prefs.db"))
	if err != nil {
		t.Fatalf("prefs.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	log := zerolog.Nop()
	return &env{
		ts:       ts,
		store:    store,
		auth:     app.NewAuth(client, store, log),
		catalog:  app.NewCatalog(client, cache, prober, 5*time.Minute, 4, log),
		workflow: app.NewBookingWorkflow(client, prober, log),
		bookings: app.NewBookings(client),
		search:   app.NewSearch(store.History()),
	}
}

func TestEndToEnd_RegisterToBooking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.auth.Register(ctx, "alice", "alice@example.com", "secret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := e.auth.Logout(ctx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	sess, err := e.auth.Login(ctx, "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !sess.LoggedIn || sess.Email != "alice@example.com" {
		t.Fatalf("session after login = %+v", sess)
	}

	hotels, err := e.catalog.ListHotels(ctx)
	if err != nil {
		t.Fatalf("list hotels: %v", err)
	}
	if len(hotels) != 4 {
		t.Fatalf("got %d hotels, want the 4 seeded ones", len(hotels))
	}

	// second call is served from the cache; it must agree with the first
	again, err := e.catalog.ListHotels(ctx)
	if err != nil {
		t.Fatalf("list hotels (cached): %v", err)
	}
	if len(again) != len(hotels) {
		t.Fatalf("cached list has %d hotels, want %d", len(again), len(hotels))
	}

	e.search.SetSource(hotels)
	visible := e.search.Filter("гранд")
	if len(visible) != 1 || visible[0].Name != "Гранд Отель" {
		t.Fatalf("filtered = %+v", visible)
	}
	if err := e.search.RecordQuery(ctx, "гранд"); err != nil {
		t.Fatalf("record query: %v", err)
	}

	booking, err := e.workflow.Submit(ctx, app.BookingInput{
		Email:        sess.Email,
		Username:     sess.Username,
		HotelID:      *visible[0].ID,
		RoomNumber:   "101",
		CheckInDate:  "2026-09-20",
		CheckOutDate: "2026-09-25",
	})
	if err != nil {
		t.Fatalf("submit booking: %v", err)
	}
	if booking.ID == nil {
		t.Fatal("booking has no server-assigned id")
	}

	mine, err := e.bookings.ListForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("list bookings: %v", err)
	}
	if len(mine) != 1 || *mine[0].ID != *booking.ID {
		t.Fatalf("bookings for alice = %+v", mine)
	}

	// history survived the round trip through the local store
	fresh := app.NewSearch(e.store.History())
	if err := fresh.LoadHistory(ctx); err != nil {
		t.Fatalf("load history: %v", err)
	}
	if got := fresh.History(); len(got) != 1 || got[0] != "гранд" {
		t.Fatalf("history = %v", got)
	}
}

func TestEndToEnd_ServerDown(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	if _, err := e.auth.Register(ctx, "bob", "bob@example.com", "pw"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// kill the server; the probe must catch it before any submit happens
	addr := e.ts.URL
	e.ts.Close()

	prober, err := probe.New(addr, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("probe.New: %v", err)
	}
	client, err := stayapi.New(addr, stayapi.Options{BookingsUnderAPI: true})
	if err != nil {
		t.Fatalf("stayapi.New: %v", err)
	}
	wf := app.NewBookingWorkflow(client, prober, zerolog.Nop())

	var states []app.BookingState
	wf.OnStateChange(func(s app.BookingState) { states = append(states, s) })

	_, err = wf.Submit(ctx, app.BookingInput{
		Email: "bob@example.com", Username: "bob", HotelID: 1,
		RoomNumber: "5", CheckInDate: "2026-10-01", CheckOutDate: "2026-10-03",
	})
	if !errors.Is(err, domain.ErrServerUnavailable) {
		t.Fatalf("err = %v, want ErrServerUnavailable", err)
	}
	want := []app.BookingState{app.StateValidating, app.StateCheckingServer, app.StateFailed, app.StateIdle}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}
