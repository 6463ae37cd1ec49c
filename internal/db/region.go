package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"
)

// DefaultRetireGrace is how long a replaced pool stays open for searches
// that loaded it before the switch.
const DefaultRetireGrace = 2 * time.Minute

// OpenRegion connects to the timetable database. With a region the newest
// import listed on the cluster's postgres database is used; otherwise
// baseDSN is opened as is. A non-empty schema becomes the search_path.
func OpenRegion(ctx context.Context, baseDSN, region, schema string, workers int) (*sql.DB, string, error) {
	name := ""
	if region != "" {
		var err error
		name, err = resolveRegion(ctx, baseDSN, region)
		if err != nil {
			return nil, "", err
		}
		log.Printf("using database %q for region %q", name, region)
	}
	finalDSN, err := targetDSN(baseDSN, name, schema)
	if err != nil {
		return nil, "", fmt.Errorf("compose DSN: %w", err)
	}
	db, err := Open(finalDSN, workers)
	if err != nil {
		return nil, "", fmt.Errorf("db open: %w", err)
	}
	if err := Ping(ctx, db); err != nil {
		db.Close()
		return nil, "", fmt.Errorf("db ping: %w", err)
	}
	return db, name, nil
}

// targetDSN points baseDSN at database name (when set) with schema on the
// search_path (when set).
func targetDSN(baseDSN, name, schema string) (string, error) {
	dsn := baseDSN
	var err error
	if name != "" {
		if dsn, err = WithDBName(dsn, name); err != nil {
			return "", err
		}
	}
	if schema != "" {
		if dsn, err = WithParam(dsn, "search_path", schema); err != nil {
			return "", err
		}
	}
	return dsn, nil
}

func resolveRegion(ctx context.Context, baseDSN, region string) (string, error) {
	rootDSN, err := WithDBName(baseDSN, "postgres")
	if err != nil {
		return "", fmt.Errorf("invalid base DSN: %w", err)
	}
	meta, err := Open(rootDSN, 1)
	if err != nil {
		return "", fmt.Errorf("db open (meta): %w", err)
	}
	defer meta.Close()
	if err := Ping(ctx, meta); err != nil {
		return "", fmt.Errorf("db ping (meta): %w", err)
	}
	name, err := ResolveLatestImportDBName(ctx, meta, region)
	if err != nil {
		return "", fmt.Errorf("resolve latest import for region %q: %w", region, err)
	}
	return name, nil
}

// Watcher moves a Store to a newer import of its region, or reconnects
// it when the current database stops answering.
type Watcher struct {
	BaseDSN  string
	Region   string
	Schema   string
	Workers  int
	Interval time.Duration
	Store    *Store
	Current  string
	// Grace delays closing a replaced pool; zero means DefaultRetireGrace.
	Grace time.Duration
	// OnSwitch is called with "update" or "ping_failure".
	OnSwitch func(reason string)
}

// Run checks every Interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		w.check(ctx)
	}
}

func (w *Watcher) check(ctx context.Context) {
	reason := ""
	if err := w.Store.Ping(ctx); err != nil {
		log.Printf("db ping failed: %v, re-resolving region DB", err)
		reason = "ping_failure"
	}

	newName, err := resolveRegion(ctx, w.BaseDSN, w.Region)
	if err != nil {
		log.Printf("%v", err)
		return
	}
	if newName != w.Current {
		log.Printf("detected updated DB for region %q: %q -> %q", w.Region, w.Current, newName)
		reason = "update"
	}
	if reason == "" {
		return
	}

	dsn, err := targetDSN(w.BaseDSN, newName, w.Schema)
	if err != nil {
		log.Printf("compose DSN error: %v", err)
		return
	}
	next, err := Open(dsn, w.Workers)
	if err != nil {
		log.Printf("open new DB error: %v", err)
		return
	}
	if err := Ping(ctx, next); err != nil {
		log.Printf("ping new DB error: %v", err)
		next.Close()
		return
	}
	w.retire(w.Store.Swap(next))
	w.Current = newName
	log.Printf("switched to DB %q for region %q", newName, w.Region)
	if w.OnSwitch != nil {
		w.OnSwitch(reason)
	}
}

// retire closes old once searches that picked it up before the swap have
// had time to finish. A search may still read its catalog from one import
// and departures from the next while the switch is in flight.
func (w *Watcher) retire(old *sql.DB) {
	if old == nil {
		return
	}
	grace := w.Grace
	if grace <= 0 {
		grace = DefaultRetireGrace
	}
	time.AfterFunc(grace, func() {
		if err := old.Close(); err != nil {
			log.Printf("close retired DB: %v", err)
		}
	})
}
