package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"transit-journeys/internal/matcher"
	"transit-journeys/internal/transit"
)

// Store reads stops and departures from the route_search_* tables. The
// underlying pool can be replaced while searches are running; sessions
// already open keep their connection.
type Store struct {
	db atomic.Pointer[sql.DB]
}

func NewStore(db *sql.DB) *Store {
	s := &Store{}
	s.db.Store(db)
	return s
}

func (s *Store) DB() *sql.DB { return s.db.Load() }

// Swap installs next and returns the previous pool for the caller to close.
func (s *Store) Swap(next *sql.DB) *sql.DB { return s.db.Swap(next) }

func (s *Store) Ping(ctx context.Context) error { return Ping(ctx, s.DB()) }

const listStopsSQL = `
SELECT id::text, COALESCE(name, ''), latitude, longitude
FROM route_search_busstop
ORDER BY id`

// ListStops returns the stop catalog. Rows without a position are skipped.
func (s *Store) ListStops(ctx context.Context) ([]transit.Stop, error) {
	rows, err := s.DB().QueryContext(ctx, listStopsSQL)
	if err != nil {
		return nil, fmt.Errorf("query stops: %w", err)
	}
	defer rows.Close()

	var stops []transit.Stop
	for rows.Next() {
		var st transit.Stop
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&st.ID, &st.Name, &lat, &lon); err != nil {
			return nil, err
		}
		if !lat.Valid || !lon.Valid {
			continue
		}
		st.Coord = transit.Coordinate{Lat: lat.Float64, Lon: lon.Float64}
		stops = append(stops, st)
	}
	return stops, rows.Err()
}

// Session pins one pooled connection for the caller.
func (s *Store) Session(ctx context.Context) (matcher.Session, error) {
	conn, err := s.DB().Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &session{conn: conn}, nil
}

type session struct {
	conn *sql.Conn
}

func (s *session) Close() error { return s.conn.Close() }

// departuresSQL pairs every departure at $1 with every call of the same
// run: same line, same departure_ordinal_number and same route_day.
const departuresSQL = `
SELECT bl.name,
       COALESCE(bl.direction, ''),
       bd1.time::text,
       bd2.time::text,
       bd1.bus_stop_id::text,
       COALESCE(s1.name, ''),
       bd2.bus_stop_id::text,
       COALESCE(s2.name, ''),
       bs1.ordinal_number,
       bs2.ordinal_number
FROM route_search_busline bl
JOIN route_search_busdeparture bd1 ON bl.id = bd1.bus_line_id
JOIN route_search_busdeparture bd2 ON bl.id = bd2.bus_line_id
     AND bd1.departure_ordinal_number = bd2.departure_ordinal_number
     AND bd1.route_day = bd2.route_day
JOIN route_search_busstopinbusline bs1 ON bl.id = bs1.bus_line_id AND bd1.bus_stop_id = bs1.bus_stop_id
JOIN route_search_busstopinbusline bs2 ON bl.id = bs2.bus_line_id AND bd2.bus_stop_id = bs2.bus_stop_id
LEFT JOIN route_search_busstop s1 ON s1.id = bd1.bus_stop_id
LEFT JOIN route_search_busstop s2 ON s2.id = bd2.bus_stop_id
WHERE bd1.bus_stop_id = $1::bigint
  AND bd1.time >= $2::time
  AND bd1.route_day = $3
  AND ($4::text = '' OR bl.name = $4::text)
  AND ($5::text = '' OR bl.name <> $5::text)
ORDER BY bd1.time, bl.name, bl.direction, bs2.ordinal_number`

// lastServiceSecond is the largest value the time column can hold.
const lastServiceSecond = 24*3600 - 1

func (s *session) Departures(ctx context.Context, q matcher.DepartureQuery) ([]transit.Leg, error) {
	if q.AtOrAfter > lastServiceSecond {
		return nil, nil
	}
	rows, err := s.conn.QueryContext(ctx, departuresSQL,
		q.StopID, q.AtOrAfter.String(), q.Day.Label(), q.Line, q.ExcludeLine)
	if err != nil {
		return nil, fmt.Errorf("query departures stop=%s: %w", q.StopID, err)
	}
	defer rows.Close()

	var legs []transit.Leg
	for rows.Next() {
		var l transit.Leg
		var dep, arr string
		if err := rows.Scan(&l.Line, &l.Direction, &dep, &arr,
			&l.Boarding.ID, &l.Boarding.Name, &l.Alighting.ID, &l.Alighting.Name,
			&l.BoardingOrdinal, &l.AlightingOrdinal); err != nil {
			return nil, err
		}
		if l.Departure, err = transit.ParseClock(dep); err != nil {
			return nil, fmt.Errorf("departure time: %w", err)
		}
		if l.Arrival, err = transit.ParseClock(arr); err != nil {
			return nil, fmt.Errorf("arrival time: %w", err)
		}
		legs = append(legs, l)
	}
	return legs, rows.Err()
}
