package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"transit-journeys/internal/transit"
)

const maxNearest = 100

// NearestStops handles GET /api/v1/stops/nearest
//
// Query params:
//   - lat, lon (required) WGS-84 degrees
//   - k (optional) number of stops; defaults to the planner setting
//
// Response 200: stops ordered by distance, each with distanceMeters.
func (h *Handler) NearestStops(c *gin.Context) {
	point, ok := parseCoordinate(c, "lat", "lon")
	if !ok {
		return
	}
	if !point.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat/lon out of range"})
		return
	}

	k := 0
	if raw := c.Query("k"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must be a positive integer"})
			return
		}
		if v > maxNearest {
			c.JSON(http.StatusBadRequest, gin.H{"error": "k must not exceed 100"})
			return
		}
		k = v
	}

	stops, err := h.planner.Nearest(c.Request.Context(), *point, k)
	if err != nil {
		writeError(c, err)
		return
	}
	if stops == nil {
		stops = []transit.RankedStop{}
	}
	c.JSON(http.StatusOK, stops)
}
