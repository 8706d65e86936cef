package app

import (
	"context"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"staybook/internal/domain"
)

// Workflow states. Succeeded and Failed are terminal; both return control to
// Idle so the user can retry with inputs intact.
type BookingState int

const (
	StateIdle BookingState = iota
	StateValidating
	StateCheckingServer
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s BookingState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateCheckingServer:
		return "checking_server"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// BookingInput is the raw user input. RoomNumber arrives as free text and is
// parsed during validation; dates come from a date picker in YYYY-MM-DD form.
type BookingInput struct {
	Email        string
	Username     string
	HotelID      int64
	RoomNumber   string
	CheckInDate  string
	CheckOutDate string
}

const dateLayout = "2006-01-02"

// BookingWorkflow drives a booking submission through
// Idle -> Validating -> CheckingServer -> Submitting -> Succeeded|Failed.
type BookingWorkflow struct {
	api     domain.BookingAPI
	prober  domain.Prober
	log     zerolog.Logger
	onState func(BookingState)
}

func NewBookingWorkflow(api domain.BookingAPI, prober domain.Prober, log zerolog.Logger) *BookingWorkflow {
	return &BookingWorkflow{api: api, prober: prober, log: log}
}

// OnStateChange registers a hook observing every transition, e.g. to disable
// a submit control while the workflow is in flight. Called on the workflow's
// goroutine.
func (w *BookingWorkflow) OnStateChange(fn func(BookingState)) { w.onState = fn }

func (w *BookingWorkflow) setState(s BookingState) {
	if w.onState != nil {
		w.onState(s)
	}
}

// Submit runs the full workflow once. On success it returns the created
// Booking including the server-assigned id. Every failure maps into the
// workflow error taxonomy; raw transport errors never escape.
func (w *BookingWorkflow) Submit(ctx context.Context, in BookingInput) (domain.Booking, error) {
	w.setState(StateValidating)
	req, err := w.validate(in)
	if err != nil {
		return w.fail(err)
	}

	w.setState(StateCheckingServer)
	if !w.prober.Reachable(ctx) {
		w.log.Warn().Int64("hotel_id", in.HotelID).Msg("pre-flight probe failed, booking not sent")
		return w.fail(domain.ErrServerUnavailable)
	}

	w.setState(StateSubmitting)
	booking, err := w.api.CreateBooking(ctx, req)
	if err != nil {
		return w.fail(classify(err))
	}

	w.log.Info().Int64("hotel_id", req.HotelID).Int("room", req.RoomNumber).Msg("booking created")
	w.setState(StateSucceeded)
	w.setState(StateIdle)
	return booking, nil
}

func (w *BookingWorkflow) fail(err error) (domain.Booking, error) {
	w.setState(StateFailed)
	w.setState(StateIdle)
	return domain.Booking{}, err
}

// validate rejects bad input before any network activity. Check-out must be
// strictly after check-in; the mobile app skipped that check and let the
// server reject the pair, which produced a needless round trip.
func (w *BookingWorkflow) validate(in BookingInput) (domain.BookingRequest, error) {
	var zero domain.BookingRequest
	if strings.TrimSpace(in.Email) == "" {
		return zero, &domain.ValidationError{Field: "email", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.Username) == "" {
		return zero, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.CheckInDate) == "" {
		return zero, &domain.ValidationError{Field: "checkInDate", Reason: "must not be empty"}
	}
	if strings.TrimSpace(in.CheckOutDate) == "" {
		return zero, &domain.ValidationError{Field: "checkOutDate", Reason: "must not be empty"}
	}
	room, err := strconv.Atoi(strings.TrimSpace(in.RoomNumber))
	if err != nil {
		return zero, &domain.ValidationError{Field: "roomNumber", Reason: "must be an integer"}
	}
	if room <= 0 {
		return zero, &domain.ValidationError{Field: "roomNumber", Reason: "must be positive"}
	}
	checkIn, err := time.Parse(dateLayout, in.CheckInDate)
	if err != nil {
		return zero, &domain.ValidationError{Field: "checkInDate", Reason: "must be YYYY-MM-DD"}
	}
	checkOut, err := time.Parse(dateLayout, in.CheckOutDate)
	if err != nil {
		return zero, &domain.ValidationError{Field: "checkOutDate", Reason: "must be YYYY-MM-DD"}
	}
	if !checkOut.After(checkIn) {
		return zero, &domain.ValidationError{Field: "checkOutDate", Reason: "must be after check-in"}
	}
	return domain.BookingRequest{
		Email:        in.Email,
		Username:     in.Username,
		HotelID:      in.HotelID,
		RoomNumber:   room,
		CheckInDate:  in.CheckInDate,
		CheckOutDate: in.CheckOutDate,
	}, nil
}

// classify maps transport failures into the workflow taxonomy.
func classify(err error) error {
	var se *domain.ServerError
	if errors.As(err, &se) {
		return se
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.ErrHostUnreachable
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ErrNetworkTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrNetworkTimeout
	}
	return &domain.UnknownError{Message: err.Error()}
}

// Bookings covers the booking read/delete paths outside the submission
// workflow. List and delete of arbitrary bookings are admin operations,
// enforced server-side.
type Bookings struct {
	api domain.BookingAPI
}

func NewBookings(api domain.BookingAPI) *Bookings { return &Bookings{api: api} }

func (b *Bookings) ListForUser(ctx context.Context, username string) ([]domain.Booking, error) {
	if strings.TrimSpace(username) == "" {
		return nil, &domain.ValidationError{Field: "username", Reason: "must not be empty"}
	}
	return b.api.ListBookings(ctx, username)
}

func (b *Bookings) ListAll(ctx context.Context) ([]domain.Booking, error) {
	return b.api.ListAllBookings(ctx)
}

func (b *Bookings) Delete(ctx context.Context, id int64) error {
	return b.api.DeleteBooking(ctx, id)
}
