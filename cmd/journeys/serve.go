package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"transit-journeys/internal/api"
	"transit-journeys/internal/db"
)

const regionCheckInterval = 30 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the journey search API until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// Root context with cancellation on SIGINT/SIGTERM
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		a, err := newApp(ctx, cfg, true)
		if err != nil {
			return err
		}
		defer a.Close()

		if cfg.MetricsAddr != "" {
			msrv := a.metrics.Serve(cfg.MetricsAddr)
			defer shutdown(msrv)
		}

		// Follow new timetable imports for the region
		done := make(chan struct{})
		if cfg.Region != "" {
			w := &db.Watcher{
				BaseDSN:  cfg.DatabaseURL,
				Region:   cfg.Region,
				Schema:   cfg.Schema,
				Workers:  cfg.SearchWorkers,
				Interval: regionCheckInterval,
				Store:    a.store,
				Current:  a.dbName,
				OnSwitch: a.metrics.DBSwitched,
			}
			go func() {
				defer close(done)
				w.Run(ctx)
			}()
		} else {
			close(done)
		}

		if !cfg.Debug {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           api.Router(api.New(a.planner, a.store.Ping)),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errc := make(chan error, 1)
		go func() {
			log.Printf("api listening on %s (workers=%d nearest=%d)", cfg.HTTPAddr, cfg.SearchWorkers, cfg.NearestStops)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- err
			}
			close(errc)
		}()

		select {
		case <-ctx.Done():
		case err := <-errc:
			if err != nil {
				cancel()
				<-done
				return err
			}
		}
		shutdown(srv)
		<-done
		log.Println("shutdown complete")
		return nil
	},
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
