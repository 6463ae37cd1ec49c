package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mmcloughlin/geohash"
	"github.com/nats-io/nats.go"

	"transit-journeys/internal/planner"
	"transit-journeys/internal/transit"
)

// GeohashChars is the precision of the origin cell in subjects, about
// 5 km across.
const GeohashChars = 5

type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
	Close()
}

// NATSPublisher hands finished searches to NATS on
// <prefix>.<status>.<origin geohash>.
type NATSPublisher struct {
	nc          conn
	prefix      string
	logSubjects bool
	metrics     PublisherMetrics
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

func NewNATSPublisher(url, prefix string, logSubjects bool, m PublisherMetrics) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("transit-journeys"),
		nats.DisconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Printf("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Printf("nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	return newPublisher(nc, prefix, logSubjects, m), nil
}

func newPublisher(nc conn, prefix string, logSubjects bool, m PublisherMetrics) *NATSPublisher {
	return &NATSPublisher{nc: nc, prefix: subjectPrefix(prefix), logSubjects: logSubjects, metrics: m}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

type SearchMessage struct {
	ID          uuid.UUID                   `json:"id"`
	Status      planner.Status              `json:"status"`
	Timestamp   time.Time                   `json:"timestamp"`
	Date        string                      `json:"date"`
	Time        transit.Clock               `json:"time"`
	DayType     transit.DayType             `json:"dayType"`
	Origin      planner.Endpoint            `json:"origin"`
	Destination planner.Endpoint            `json:"destination"`
	OriginCell  string                      `json:"originCell,omitempty"`
	Direct      []transit.DirectItinerary   `json:"direct"`
	Transfers   []transit.TransferItinerary `json:"transfers"`
}

func NewSearchMessage(res *planner.Result, now time.Time) SearchMessage {
	msg := SearchMessage{
		ID:          res.ID,
		Status:      res.Status,
		Timestamp:   now.UTC(),
		Date:        res.Date,
		Time:        res.Time,
		DayType:     res.DayType,
		Origin:      res.Origin,
		Destination: res.Destination,
		Direct:      res.Direct,
		Transfers:   res.Transfers,
	}
	if res.Origin.Located() {
		msg.OriginCell = geohash.EncodeWithPrecision(res.Origin.Coord.Lat, res.Origin.Coord.Lon, GeohashChars)
	}
	return msg
}

// Subject returns the subject msg is published on.
func (p *NATSPublisher) Subject(msg SearchMessage) string {
	cell := msg.OriginCell
	if cell == "" {
		cell = "unknown"
	}
	return fmt.Sprintf("%s.%s.%s", p.prefix, subjectToken(string(msg.Status)), subjectToken(cell))
}

// Publish implements planner.Sink.
func (p *NATSPublisher) Publish(_ context.Context, res *planner.Result) error {
	msg := NewSearchMessage(res, time.Now())
	subject := p.Subject(msg)
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		log.Printf("nats publish subject=%s", subject)
	}
	start := time.Now()
	err = p.nc.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

func subjectPrefix(s string) string {
	parts := strings.Split(strings.Trim(strings.TrimSpace(s), "."), ".")
	for i, part := range parts {
		parts[i] = subjectToken(part)
	}
	return strings.Join(parts, ".")
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
