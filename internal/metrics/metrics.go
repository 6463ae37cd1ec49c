package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	reg *prometheus.Registry

	Searches       *prometheus.CounterVec // status label: found|no_route|unlocated|error
	SearchDuration prometheus.Histogram
	Itineraries    *prometheus.CounterVec // kind label: direct|transfer

	DeparturesQueries  prometheus.Counter
	DeparturesErrors   prometheus.Counter
	DeparturesDuration prometheus.Histogram

	GeocodeLookups  *prometheus.CounterVec // result label: hit|miss|error
	GeocodeDuration prometheus.Histogram

	NATSPublished   prometheus.Counter
	NATSPublishErrs prometheus.Counter
	NATSConnected   prometheus.Gauge
	PublishDuration prometheus.Histogram

	DBSwitches *prometheus.CounterVec // reason label: update|ping_failure

	Workers      prometheus.Gauge
	NearestStops prometheus.Gauge
	CatalogStops prometheus.Gauge
}

func NewCollector(workers, nearest int) *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		Searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journeys_searches_total",
			Help: "Total journey searches by outcome.",
		}, []string{"status"}),
		SearchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeys_search_duration_seconds",
			Help:    "End-to-end duration of a journey search.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14),
		}),
		Itineraries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journeys_itineraries_total",
			Help: "Itineraries returned by kind.",
		}, []string{"kind"}),
		DeparturesQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeys_departures_queries_total",
			Help: "Total timetable departure reads.",
		}),
		DeparturesErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeys_departures_errors_total",
			Help: "Total failed timetable departure reads.",
		}),
		DeparturesDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeys_departures_duration_seconds",
			Help:    "Duration of a single timetable departure read.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		GeocodeLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journeys_geocode_lookups_total",
			Help: "Geocoding lookups by result.",
		}, []string{"result"}),
		GeocodeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeys_geocode_duration_seconds",
			Help:    "Duration of geocoding lookups that reached the geocoder.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		NATSPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeys_nats_published_total",
			Help: "Total NATS messages published.",
		}),
		NATSPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "journeys_nats_publish_errors_total",
			Help: "Total NATS publish errors.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "journeys_nats_connected",
			Help: "1 if NATS connection is established, 0 otherwise.",
		}),
		PublishDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "journeys_publish_duration_seconds",
			Help:    "Duration to marshal and publish a NATS message.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 15),
		}),
		DBSwitches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "journeys_db_switches_total",
			Help: "Number of timetable database switches.",
		}, []string{"reason"}),
		Workers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "journeys_search_workers",
			Help: "Configured worker count per search.",
		}),
		NearestStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "journeys_nearest_stops",
			Help: "Configured number of nearest stops per endpoint.",
		}),
		CatalogStops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "journeys_catalog_stops",
			Help: "Stops with coordinates in the last catalog read.",
		}),
	}

	reg.MustRegister(
		c.Searches, c.SearchDuration, c.Itineraries,
		c.DeparturesQueries, c.DeparturesErrors, c.DeparturesDuration,
		c.GeocodeLookups, c.GeocodeDuration,
		c.NATSPublished, c.NATSPublishErrs, c.NATSConnected, c.PublishDuration,
		c.DBSwitches, c.Workers, c.NearestStops, c.CatalogStops,
	)

	c.Workers.Set(float64(workers))
	c.NearestStops.Set(float64(nearest))

	return c
}

// ObserveDepartures records one timetable read.
func (c *Collector) ObserveDepartures(d time.Duration, err error) {
	c.DeparturesQueries.Inc()
	c.DeparturesDuration.Observe(d.Seconds())
	if err != nil {
		c.DeparturesErrors.Inc()
	}
}

// ObserveGeocode records one geocoding lookup.
func (c *Collector) ObserveGeocode(d time.Duration, cached bool, err error) {
	switch {
	case err != nil:
		c.GeocodeLookups.WithLabelValues("error").Inc()
	case cached:
		c.GeocodeLookups.WithLabelValues("hit").Inc()
		return
	default:
		c.GeocodeLookups.WithLabelValues("miss").Inc()
	}
	c.GeocodeDuration.Observe(d.Seconds())
}

// ObserveSearch records a finished search.
func (c *Collector) ObserveSearch(status string, d time.Duration, direct, transfers int) {
	c.Searches.WithLabelValues(status).Inc()
	c.SearchDuration.Observe(d.Seconds())
	c.Itineraries.WithLabelValues("direct").Add(float64(direct))
	c.Itineraries.WithLabelValues("transfer").Add(float64(transfers))
}

func (c *Collector) ObserveCatalog(stops int) { c.CatalogStops.Set(float64(stops)) }

func (c *Collector) NATSPublishedInc()              { c.NATSPublished.Inc() }
func (c *Collector) NATSPublishErrInc()             { c.NATSPublishErrs.Inc() }
func (c *Collector) PublishObserve(d time.Duration) { c.PublishDuration.Observe(d.Seconds()) }
func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}

func (c *Collector) DBSwitched(reason string) { c.DBSwitches.WithLabelValues(reason).Inc() }

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

func (c *Collector) Handler() http.Handler { return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}) }

// Serve starts an HTTP server exposing /metrics on the given address.
func (c *Collector) Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server error: %v", err)
		}
	}()
	log.Printf("metrics listening on %s", addr)
	return srv
}
