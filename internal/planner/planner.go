// Package planner answers journey queries: it resolves both endpoints,
// picks the nearest stops and runs the direct and transfer matchers.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"transit-journeys/internal/calendar"
	"transit-journeys/internal/geo"
	"transit-journeys/internal/geocode"
	"transit-journeys/internal/matcher"
	"transit-journeys/internal/transit"
)

const DefaultNearest = 10

type Status string

const (
	StatusFound     Status = "found"
	StatusNoRoute   Status = "no_route"
	StatusUnlocated Status = "unlocated"
)

// StopCatalog lists every stop with a known position.
type StopCatalog interface {
	ListStops(ctx context.Context) ([]transit.Stop, error)
}

// Sink receives every completed search.
type Sink interface {
	Publish(ctx context.Context, res *Result) error
}

type Observer interface {
	ObserveSearch(status string, d time.Duration, direct, transfers int)
	ObserveCatalog(stops int)
}

// Request describes one query. A non-nil coordinate takes precedence
// over the matching address.
type Request struct {
	From      string
	To        string
	FromCoord *transit.Coordinate
	ToCoord   *transit.Coordinate
	Date      string
	Time      string
}

type Endpoint struct {
	Address string             `json:"address,omitempty"`
	Coord   transit.Coordinate `json:"coord"`
	Err     string             `json:"error,omitempty"`
}

func (e Endpoint) Located() bool { return e.Err == "" }

type Result struct {
	ID          uuid.UUID                   `json:"id"`
	Status      Status                      `json:"status"`
	Date        string                      `json:"date"`
	Time        transit.Clock               `json:"time"`
	DayType     transit.DayType             `json:"dayType"`
	Origin      Endpoint                    `json:"origin"`
	Destination Endpoint                    `json:"destination"`
	OriginStops []transit.RankedStop        `json:"originStops"`
	GoalStops   []transit.RankedStop        `json:"goalStops"`
	Direct      []transit.DirectItinerary   `json:"direct"`
	Transfers   []transit.TransferItinerary `json:"transfers"`
}

type Planner struct {
	catalog  StopCatalog
	matcher  *matcher.Matcher
	geocoder geocode.Geocoder
	days     *calendar.Classifier
	nearest  int
	timeout  time.Duration
	sink     Sink
	observer Observer
}

type Option func(*Planner)

// WithCalendar classifies dates with c instead of the plain weekday rule.
func WithCalendar(c *calendar.Classifier) Option {
	return func(p *Planner) { p.days = c }
}

// WithNearest sets how many stops are considered around each endpoint.
func WithNearest(k int) Option {
	return func(p *Planner) {
		if k > 0 {
			p.nearest = k
		}
	}
}

// WithTimeout bounds a whole search, geocoding included.
func WithTimeout(d time.Duration) Option {
	return func(p *Planner) { p.timeout = d }
}

func WithSink(s Sink) Option {
	return func(p *Planner) { p.sink = s }
}

func WithObserver(o Observer) Option {
	return func(p *Planner) { p.observer = o }
}

func New(catalog StopCatalog, m *matcher.Matcher, g geocode.Geocoder, opts ...Option) *Planner {
	p := &Planner{catalog: catalog, matcher: m, geocoder: g, nearest: DefaultNearest}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Nearest returns the k stops closest to point from the current catalog.
func (p *Planner) Nearest(ctx context.Context, point transit.Coordinate, k int) ([]transit.RankedStop, error) {
	if k <= 0 {
		k = p.nearest
	}
	stops, err := p.stops(ctx)
	if err != nil {
		return nil, err
	}
	return geo.Nearest(point, stops, k), nil
}

// Search runs one journey query. InvalidDate and StoreUnavailable abort
// with an error; an address that cannot be located yields
// StatusUnlocated.
func (p *Planner) Search(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	res, err := p.search(ctx, req)
	status := "error"
	direct, transfers := 0, 0
	if res != nil {
		status = string(res.Status)
		direct, transfers = len(res.Direct), len(res.Transfers)
	}
	if p.observer != nil {
		p.observer.ObserveSearch(status, time.Since(start), direct, transfers)
	}
	if err != nil {
		log.Printf("search failed: %v", err)
		return nil, err
	}
	log.Printf("search id=%s status=%s day=%s direct=%d transfers=%d took=%s",
		res.ID, res.Status, res.DayType, direct, transfers, time.Since(start).Round(time.Millisecond))

	if p.sink != nil {
		if err := p.sink.Publish(ctx, res); err != nil {
			log.Printf("publish search %s: %v", res.ID, err)
		}
	}
	return res, nil
}

func (p *Planner) search(ctx context.Context, req Request) (*Result, error) {
	day, err := p.days.Classify(req.Date)
	if err != nil {
		return nil, err
	}
	at, err := transit.ParseClock(req.Time)
	if err != nil {
		return nil, transit.NewError(transit.KindInvalidDate, "parse time", err)
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	res := &Result{
		ID:        uuid.New(),
		Date:      req.Date,
		Time:      at,
		DayType:   day,
		Direct:    []transit.DirectItinerary{},
		Transfers: []transit.TransferItinerary{},
	}
	res.Origin = p.locate(ctx, req.From, req.FromCoord)
	res.Destination = p.locate(ctx, req.To, req.ToCoord)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !res.Origin.Located() || !res.Destination.Located() {
		res.Status = StatusUnlocated
		return res, nil
	}

	stops, err := p.stops(ctx)
	if err != nil {
		return nil, err
	}
	res.OriginStops = geo.Nearest(res.Origin.Coord, stops, p.nearest)
	res.GoalStops = geo.Nearest(res.Destination.Coord, stops, p.nearest)
	if len(res.OriginStops) == 0 || len(res.GoalStops) == 0 {
		res.Status = StatusNoRoute
		return res, nil
	}

	res.Direct, err = p.matcher.FindDirect(ctx, res.OriginStops, res.GoalStops, day, at)
	if err != nil {
		return nil, err
	}
	// Excluding every direct line from both transfer legs is what keeps
	// a journey from being reported by both matchers.
	used := transit.NewLineSet()
	for _, d := range res.Direct {
		used.Add(d.Leg.Line)
	}

	transfers, err := p.matcher.FindTransfer(ctx, res.OriginStops, res.GoalStops, day, at, used)
	if err != nil {
		return nil, err
	}
	res.Transfers = append(res.Transfers, transfers...)

	res.Status = StatusNoRoute
	if len(res.Direct) > 0 || len(res.Transfers) > 0 {
		res.Status = StatusFound
	}
	return res, nil
}

func (p *Planner) locate(ctx context.Context, address string, coord *transit.Coordinate) Endpoint {
	e := Endpoint{Address: address}
	switch {
	case coord != nil:
		if !coord.Valid() {
			e.Err = fmt.Sprintf("coordinate out of range: %s", coord)
			return e
		}
		e.Coord = *coord
	case p.geocoder == nil:
		e.Err = "no geocoder configured"
	default:
		c, err := p.geocoder.Geocode(ctx, address)
		if err != nil {
			e.Err = err.Error()
			return e
		}
		e.Coord = c
	}
	return e
}

func (p *Planner) stops(ctx context.Context) ([]transit.Stop, error) {
	stops, err := p.catalog.ListStops(ctx)
	if err != nil {
		if transit.KindOf(err) != 0 || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, transit.NewError(transit.KindStoreUnavailable, "list stops", err)
	}
	if p.observer != nil {
		p.observer.ObserveCatalog(len(stops))
	}
	return stops, nil
}
