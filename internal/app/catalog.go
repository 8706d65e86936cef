package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"staybook/internal/domain"
)

const hotelsCacheKey = "hotels:all"

// Catalog serves hotel listings through a read-through cache, with the
// mobile app's offline behavior: when the API host is unreachable (probe
// failure, timeout, or DNS failure) it serves the built-in sample catalog
// instead of an error.
type Catalog struct {
	api      domain.HotelAPI
	cache    domain.Cache
	prober   domain.Prober
	cacheTTL time.Duration
	workers  int64
	log      zerolog.Logger
}

func NewCatalog(api domain.HotelAPI, cache domain.Cache, prober domain.Prober, ttl time.Duration, workers int, log zerolog.Logger) *Catalog {
	if workers <= 0 {
		workers = 8
	}
	return &Catalog{api: api, cache: cache, prober: prober, cacheTTL: ttl, workers: int64(workers), log: log}
}

// ListHotels fetches the full catalog. An empty remote catalog also falls
// back to the samples, matching the app's behavior against a fresh backend.
func (c *Catalog) ListHotels(ctx context.Context) ([]domain.Hotel, error) {
	var cached []domain.Hotel
	if ok, _ := c.cache.Get(ctx, hotelsCacheKey, &cached); ok {
		return cached, nil
	}

	if !c.prober.Reachable(ctx) {
		c.log.Warn().Msg("API host unreachable, serving sample catalog")
		return SampleHotels(), nil
	}

	hotels, err := c.api.ListHotels(ctx)
	if err != nil {
		if offline(err) {
			c.log.Warn().Err(err).Msg("catalog fetch failed, serving sample catalog")
			return SampleHotels(), nil
		}
		return nil, classify(err)
	}
	if len(hotels) == 0 {
		return SampleHotels(), nil
	}
	_ = c.cache.Set(ctx, hotelsCacheKey, hotels, int(c.cacheTTL.Seconds()))
	return hotels, nil
}

func (c *Catalog) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	key := fmt.Sprintf("hotel:%d", id)
	var h domain.Hotel
	if ok, _ := c.cache.Get(ctx, key, &h); ok {
		return h, nil
	}
	h, err := c.api.GetHotel(ctx, id)
	if err != nil {
		return domain.Hotel{}, classify(err)
	}
	_ = c.cache.Set(ctx, key, h, int(c.cacheTTL.Seconds()))
	return h, nil
}

// AddHotel uploads a new listing. Admin-only by server convention; the
// client validates the fields it can.
func (c *Catalog) AddHotel(ctx context.Context, up domain.NewHotelUpload) (domain.Hotel, error) {
	if strings.TrimSpace(up.Name) == "" {
		return domain.Hotel{}, &domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if up.PricePerNight < 0 {
		return domain.Hotel{}, &domain.ValidationError{Field: "pricePerNight", Reason: "must not be negative"}
	}
	if up.RoomCount < 0 {
		return domain.Hotel{}, &domain.ValidationError{Field: "roomCount", Reason: "must not be negative"}
	}
	h, err := c.api.AddHotel(ctx, up)
	if err != nil {
		return domain.Hotel{}, classify(err)
	}
	// the list is stale now
	_ = c.cache.Del(ctx, hotelsCacheKey)
	return h, nil
}

// Prefetch warms the per-hotel cache with a bounded worker pool. Individual
// failures are logged and skipped.
func (c *Catalog) Prefetch(ctx context.Context, ids []int64) error {
	sem := semaphore.NewWeighted(c.workers)
	for _, id := range ids {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		go func(id int64) {
			defer sem.Release(1)
			if _, err := c.GetHotel(ctx, id); err != nil {
				c.log.Warn().Int64("id", id).Err(err).Msg("prefetch failed")
				return
			}
			c.log.Debug().Int64("id", id).Msg("prefetched")
		}(id)
	}
	// wait for the stragglers
	return sem.Acquire(ctx, c.workers)
}

// offline reports the failures the app treats as "no backend": timeouts and
// host resolution errors.
func offline(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// SampleHotels is the catalog served when no backend is reachable, identical
// to the app's built-in listings.
func SampleHotels() []domain.Hotel {
	return []domain.Hotel{
		{
			ID:            ptr(int64(1)),
			Name:          "Гранд Отель",
			PricePerNight: 5000,
			Description:   "Роскошный отель в центре города с видом на реку",
			RoomCount:     100,
			ImageURL:      ptr("https://images.unsplash.com/photo-1566073771259-6a8506099945?q=80&w=1000"),
		},
		{
			ID:            ptr(int64(2)),
			Name:          "Комфорт Инн",
			PricePerNight: 3500,
			Description:   "Уютный отель для бизнес-путешественников",
			RoomCount:     75,
			ImageURL:      ptr("https://images.unsplash.com/photo-1551882547-ff40c63fe5fa?q=80&w=1000"),
		},
		{
			ID:            ptr(int64(3)),
			Name:          "Морской Бриз",
			PricePerNight: 4500,
			Description:   "Пляжный отель с панорамным видом на море",
			RoomCount:     85,
			ImageURL:      ptr("https://images.unsplash.com/photo-1520250497591-112f2f40a3f4?q=80&w=1000"),
		},
		{
			ID:            ptr(int64(4)),
			Name:          "Горный Курорт",
			PricePerNight: 6000,
			Description:   "Отель в горах с видом на заснеженные вершины",
			RoomCount:     60,
			ImageURL:      ptr("https://images.unsplash.com/photo-1542314831-068cd1dbfeeb?q=80&w=1000"),
		},
	}
}

func ptr[T any](v T) *T { return &v }
