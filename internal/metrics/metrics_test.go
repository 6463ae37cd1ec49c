package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDepartures(t *testing.T) {
	c := NewCollector(8, 10)
	c.ObserveDepartures(time.Millisecond, nil)
	c.ObserveDepartures(time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.DeparturesQueries))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DeparturesErrors))
	assert.Equal(t, 8.0, testutil.ToFloat64(c.Workers))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.NearestStops))
}

func TestObserveGeocode(t *testing.T) {
	c := NewCollector(1, 1)
	c.ObserveGeocode(time.Millisecond, false, nil)
	c.ObserveGeocode(0, true, nil)
	c.ObserveGeocode(0, true, nil)
	c.ObserveGeocode(time.Second, false, errors.New("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.GeocodeLookups.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.GeocodeLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.GeocodeLookups.WithLabelValues("error")))
}

func TestObserveSearchAndHandler(t *testing.T) {
	c := NewCollector(2, 10)
	c.ObserveSearch("found", 10*time.Millisecond, 2, 3)
	c.ObserveSearch("no_route", time.Millisecond, 0, 0)
	c.NATSSetConnected(true)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Searches.WithLabelValues("found")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Itineraries.WithLabelValues("transfer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.NATSConnected))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `journeys_searches_total{status="found"} 1`))
}
