package stayapi

import (
	"bytes"
	"context"
	crand "crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"staybook/internal/adapters/observability"
	"staybook/internal/domain"
)

// Client talks to the hotel booking API. All non-2xx responses surface as
// *domain.ServerError carrying the status code and any structured message
// the server returned; transport errors are returned as-is for the caller
// to classify.
type Client struct {
	base         string
	bookingsBase string
	hc           *http.Client
	rl           *rate.Limiter
}

type Options struct {
	// BookingsUnderAPI selects the /api/bookings base path over the bare
	// /bookings variant.
	BookingsUnderAPI bool
	Timeout          time.Duration
	RPS              int
}

func New(base string, opts Options) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	base = strings.TrimRight(base, "/")
	if opts.RPS <= 0 {
		opts.RPS = 5
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	bookings := base + "/bookings"
	if opts.BookingsUnderAPI {
		bookings = base + "/api/bookings"
	}
	return &Client{
		base:         base,
		bookingsBase: bookings,
		hc:           &http.Client{Timeout: opts.Timeout},
		rl:           rate.NewLimiter(rate.Limit(opts.RPS), opts.RPS),
	}, nil
}

// BaseURL returns the configured API base, for reachability probing.
func (c *Client) BaseURL() string { return c.base }

// ---- Auth ----

func (c *Client) Register(ctx context.Context, u domain.User) (domain.AuthResponse, error) {
	var out domain.AuthResponse
	err := c.postJSON(ctx, c.base+"/api/auth/register", u, &out)
	return out, err
}

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.UserResponse, error) {
	var out domain.UserResponse
	err := c.postJSON(ctx, c.base+"/api/auth/login", req, &out)
	return out, err
}

// ---- Hotels ----

func (c *Client) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var out []domain.Hotel
	return out, c.get(ctx, c.base+"/api/hotels", &out)
}

func (c *Client) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	var out domain.Hotel
	return out, c.get(ctx, fmt.Sprintf("%s/api/hotels/%d", c.base, id), &out)
}

// AddHotel uploads a new listing as multipart form data. The image part is
// attached only when ImagePath is set.
func (c *Client) AddHotel(ctx context.Context, up domain.NewHotelUpload) (domain.Hotel, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fields := map[string]string{
		"name":          up.Name,
		"pricePerNight": strconv.FormatFloat(up.PricePerNight, 'f', -1, 64),
		"description":   up.Description,
		"roomCount":     strconv.Itoa(up.RoomCount),
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return domain.Hotel{}, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if up.ImagePath != "" {
		f, err := os.Open(up.ImagePath)
		if err != nil {
			return domain.Hotel{}, fmt.Errorf("open image: %w", err)
		}
		defer f.Close()
		part, err := mw.CreateFormFile("image", filepath.Base(up.ImagePath))
		if err != nil {
			return domain.Hotel{}, err
		}
		if _, err := io.Copy(part, f); err != nil {
			return domain.Hotel{}, fmt.Errorf("copy image: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return domain.Hotel{}, err
	}

	var out domain.Hotel
	err := c.do(ctx, http.MethodPost, c.base+"/api/hotels", &body, mw.FormDataContentType(), &out)
	return out, err
}

// ---- Bookings ----

func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	var out domain.Booking
	err := c.postJSON(ctx, c.bookingsBase, req, &out)
	return out, err
}

func (c *Client) ListBookings(ctx context.Context, username string) ([]domain.Booking, error) {
	var out []domain.Booking
	return out, c.get(ctx, c.bookingsBase+"?username="+url.QueryEscape(username), &out)
}

func (c *Client) ListAllBookings(ctx context.Context) ([]domain.Booking, error) {
	var out []domain.Booking
	return out, c.get(ctx, c.bookingsBase, &out)
}

func (c *Client) DeleteBooking(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("%s/%d", c.bookingsBase, id), nil, "", nil)
}

// ---- Internals ----

// get performs a GET with client-side rate limiting, retries on 429 and
// transient 5xx honoring Retry-After, and JSON decode into out.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < 4; i++ {
		// build a fresh request each attempt
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "staybook/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < 3 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(endpointLabel(url), resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			if out == nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
				return nil
			}
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			return err

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = &domain.ServerError{Code: resp.StatusCode}
			if i < 3 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			return serverErr(resp)
		}
	}

	return lastErr
}

func (c *Client) postJSON(ctx context.Context, url string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodPost, url, bytes.NewReader(b), "application/json", out)
}

// do issues a single non-idempotent request. No retries: the booking flow
// must never submit twice.
func (c *Client) do(ctx context.Context, method, url string, body io.Reader, contentType string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "staybook/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	observability.ObserveExternal(endpointLabel(url), resp.StatusCode, time.Since(start))
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return serverErr(resp)
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// serverErr reads a bounded error body and prefers the structured
// {"message": ...} form, falling back to the raw text.
func serverErr(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(b))
	var er domain.ErrorResponse
	if json.Unmarshal(b, &er) == nil && er.Message != "" {
		msg = er.Message
	}
	return &domain.ServerError{Code: resp.StatusCode, Message: msg}
}

// endpointLabel strips the query so metrics stay low-cardinality.
func endpointLabel(url string) string {
	if i := strings.IndexByte(url, '?'); i >= 0 {
		return url[:i]
	}
	return url
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay with concurrency-safe jitter.
// i = retry attempt (0,1,2,...). Base doubles each attempt (200ms, 400ms, 800ms...),
// with up to +50% random jitter to avoid thundering herds.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}

var (
	_ domain.HotelAPI   = (*Client)(nil)
	_ domain.BookingAPI = (*Client)(nil)
	_ domain.AuthAPI    = (*Client)(nil)
)
