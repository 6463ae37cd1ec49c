package main

import (
	"context"
	"fmt"
	"log"

	"transit-journeys/internal/calendar"
	"transit-journeys/internal/config"
	"transit-journeys/internal/db"
	"transit-journeys/internal/geocode"
	"transit-journeys/internal/logging"
	"transit-journeys/internal/matcher"
	"transit-journeys/internal/metrics"
	"transit-journeys/internal/planner"
	"transit-journeys/internal/publisher"
)

type app struct {
	cfg     *config.Config
	dbName  string
	store   *db.Store
	metrics *metrics.Collector
	pub     *publisher.NATSPublisher
	planner *planner.Planner
}

// loadConfig reads the environment and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	if workersFlag > 0 {
		cfg.SearchWorkers = workersFlag
	}
	if nearestFlag > 0 {
		cfg.NearestStops = nearestFlag
	}
	if debugFlag {
		cfg.Debug = true
	}
	logging.SetDebug(cfg.Debug)
	return cfg, config.Validate(cfg)
}

// newApp connects every collaborator. With withMetrics the collector is
// created and observes searches; publishing happens when NATS_SUBJECT is set.
func newApp(ctx context.Context, cfg *config.Config, withMetrics bool) (*app, error) {
	a := &app{cfg: cfg}

	sqlDB, name, err := db.OpenRegion(ctx, cfg.DatabaseURL, cfg.Region, cfg.Schema, cfg.SearchWorkers)
	if err != nil {
		return nil, err
	}
	a.dbName = name
	a.store = db.NewStore(sqlDB)

	if withMetrics {
		a.metrics = metrics.NewCollector(cfg.SearchWorkers, cfg.NearestStops)
	}

	days, err := loadCalendar(cfg.HolidaysFile)
	if err != nil {
		a.Close()
		return nil, err
	}

	geoOpts := []geocode.Option{
		geocode.WithBaseURL(cfg.GeocoderURL),
		geocode.WithUserAgent(cfg.GeocoderUserAgent),
		geocode.WithTimeout(cfg.GeocoderTimeout),
		geocode.WithCache(cfg.GeocodeCacheSize, cfg.GeocodeCacheTTL),
	}
	var matchOpts []matcher.Option
	planOpts := []planner.Option{
		planner.WithCalendar(days),
		planner.WithNearest(cfg.NearestStops),
		planner.WithTimeout(cfg.SearchTimeout),
	}
	if a.metrics != nil {
		geoOpts = append(geoOpts, geocode.WithObserver(a.metrics))
		matchOpts = append(matchOpts, matcher.WithObserver(a.metrics))
		planOpts = append(planOpts, planner.WithObserver(a.metrics))
	}

	if cfg.NATSSubject != "" {
		var pm publisher.PublisherMetrics
		if a.metrics != nil {
			pm = a.metrics
		}
		pub, err := publisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubject, cfg.LogNATSSubjects, pm)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("nats error: %w", err)
		}
		a.pub = pub
		planOpts = append(planOpts, planner.WithSink(pub))
	}

	m := matcher.New(a.store, matcher.NewRunner(cfg.SearchWorkers), matchOpts...)
	a.planner = planner.New(a.store, m, geocode.NewClient(geoOpts...), planOpts...)
	return a, nil
}

func loadCalendar(path string) (*calendar.Classifier, error) {
	if path == "" {
		return calendar.New()
	}
	holidays, err := calendar.LoadHolidays(path)
	if err != nil {
		return nil, fmt.Errorf("load holidays: %w", err)
	}
	log.Printf("loaded %d holidays from %s", len(holidays), path)
	return calendar.New(holidays...)
}

func (a *app) Close() {
	if a.pub != nil {
		a.pub.Close()
	}
	if a.store != nil {
		// The watcher may have swapped the pool since startup.
		_ = a.store.DB().Close()
	}
}
