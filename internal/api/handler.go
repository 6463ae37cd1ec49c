// Package api exposes journey search over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"transit-journeys/internal/planner"
	"transit-journeys/internal/transit"
)

// Searcher is the planner surface the handlers need.
type Searcher interface {
	Search(ctx context.Context, req planner.Request) (*planner.Result, error)
	Nearest(ctx context.Context, point transit.Coordinate, k int) ([]transit.RankedStop, error)
}

// Handler holds the dependencies shared by all routes.
type Handler struct {
	planner Searcher
	ping    func(ctx context.Context) error
}

// New creates a Handler. ping may be nil.
func New(p Searcher, ping func(ctx context.Context) error) *Handler {
	return &Handler{planner: p, ping: ping}
}

// Router wires the routes onto a fresh engine.
func Router(h *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", h.Health)

	api := router.Group("/api/v1")
	{
		api.GET("/journeys", h.SearchJourneys)
		api.GET("/stops/nearest", h.NearestStops)
	}
	return router
}

// Health handles GET /healthz. It reports 503 when the timetable store
// does not answer a ping.
func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps a planner failure to a status code.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, transit.ErrInvalidDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, transit.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "timetable store unavailable"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request timed out"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
	}
}

func parseRequiredFloat(c *gin.Context, name string) (float64, bool) {
	raw := c.Query(name)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " query parameter is required"})
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a valid number"})
		return 0, false
	}
	return v, true
}

func parseCoordinate(c *gin.Context, latName, lonName string) (*transit.Coordinate, bool) {
	lat, ok := parseRequiredFloat(c, latName)
	if !ok {
		return nil, false
	}
	lon, ok := parseRequiredFloat(c, lonName)
	if !ok {
		return nil, false
	}
	return &transit.Coordinate{Lat: lat, Lon: lon}, true
}
