// Package geocode resolves free-form addresses to coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bluele/gcache"

	"transit-journeys/internal/transit"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	DefaultUserAgent = "transit-journeys/1.0"
	DefaultTimeout   = 5 * time.Second
)

// Geocoder resolves an address. On failure it returns the zero
// Coordinate together with a GeocodeFailure error.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (transit.Coordinate, error)
}

// Observer receives one call per lookup.
type Observer interface {
	ObserveGeocode(d time.Duration, cached bool, err error)
}

// Client talks to a Nominatim-compatible search endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	cache     gcache.Cache
	observer  Observer
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithCache keeps up to size successful lookups for ttl.
func WithCache(size int, ttl time.Duration) Option {
	return func(c *Client) {
		if size <= 0 {
			return
		}
		b := gcache.New(size).LRU()
		if ttl > 0 {
			b = b.Expiration(ttl)
		}
		c.cache = b.Build()
	}
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		http:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) Geocode(ctx context.Context, address string) (transit.Coordinate, error) {
	start := time.Now()
	key := normalize(address)
	if c.cache != nil {
		if v, err := c.cache.Get(key); err == nil {
			if c.observer != nil {
				c.observer.ObserveGeocode(time.Since(start), true, nil)
			}
			return v.(transit.Coordinate), nil
		}
	}

	coord, err := c.lookup(ctx, address)
	if c.observer != nil {
		c.observer.ObserveGeocode(time.Since(start), false, err)
	}
	if err != nil {
		log.Printf("geocode %q failed: %v", address, err)
		return transit.Coordinate{}, transit.NewError(transit.KindGeocodeFailure, "geocode", err)
	}
	if c.cache != nil {
		_ = c.cache.Set(key, coord)
	}
	return coord, nil
}

var errNoResults = errors.New("no results found")

func (c *Client) lookup(ctx context.Context, address string) (transit.Coordinate, error) {
	if key := normalize(address); key == "" {
		return transit.Coordinate{}, errors.New("empty address")
	}
	u := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(address))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return transit.Coordinate{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return transit.Coordinate{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return transit.Coordinate{}, fmt.Errorf("HTTP %d from geocoder", resp.StatusCode)
	}

	var result []place
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return transit.Coordinate{}, fmt.Errorf("decode response: %w", err)
	}
	if len(result) == 0 {
		return transit.Coordinate{}, errNoResults
	}
	lat, err := strconv.ParseFloat(result[0].Lat, 64)
	if err != nil {
		return transit.Coordinate{}, fmt.Errorf("parse lat: %w", err)
	}
	lon, err := strconv.ParseFloat(result[0].Lon, 64)
	if err != nil {
		return transit.Coordinate{}, fmt.Errorf("parse lon: %w", err)
	}
	coord := transit.Coordinate{Lat: lat, Lon: lon}
	if !coord.Valid() {
		return transit.Coordinate{}, fmt.Errorf("coordinate out of range: %s", coord)
	}
	return coord, nil
}

func normalize(address string) string {
	return strings.ToLower(strings.Join(strings.Fields(address), " "))
}
