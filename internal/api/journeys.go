package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"transit-journeys/internal/planner"
)

// SearchJourneys handles GET /api/v1/journeys
//
// Query params:
//   - date (required) YYYY-MM-DD
//   - time (required) HH:MM or HH:MM:SS
//   - from, to: addresses to geocode, or
//   - from_lat, from_lon, to_lat, to_lon: coordinates used as given
//
// Response 200: the search result; "status" is found, no_route or unlocated.
// Response 400: missing parameters or an unparseable date or time.
// Response 503: the timetable store failed or the search timed out.
func (h *Handler) SearchJourneys(c *gin.Context) {
	req := planner.Request{Date: c.Query("date"), Time: c.Query("time")}
	if req.Date == "" || req.Time == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date and time query parameters are required"})
		return
	}

	if c.Query("from_lat") != "" || c.Query("to_lat") != "" {
		var ok bool
		if req.FromCoord, ok = parseCoordinate(c, "from_lat", "from_lon"); !ok {
			return
		}
		if req.ToCoord, ok = parseCoordinate(c, "to_lat", "to_lon"); !ok {
			return
		}
	} else {
		req.From, req.To = c.Query("from"), c.Query("to")
		if req.From == "" || req.To == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from and to (or from_lat/from_lon/to_lat/to_lon) are required"})
			return
		}
	}

	res, err := h.planner.Search(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
