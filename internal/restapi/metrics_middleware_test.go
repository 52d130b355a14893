package restapi

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"ridership.subwaydash.org/internal/metrics"
)

func requestCount(m *metrics.Metrics, method, route, status string) float64 {
	return testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(method, route, status))
}

func TestMetricsHandler_NilMetricsPassesThrough(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	h := MetricsHandler(nil)(inner)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/hourly", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsHandler_LabelsByPattern(t *testing.T) {
	m := metrics.New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stations/{name}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("name") == "Nowhere" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("{}"))
	})
	h := MetricsHandler(m)(mux)

	for _, path := range []string{"/api/stations/Court%20Sq", "/api/stations/Times%20Sq-42%20St", "/api/stations/Nowhere", "/not/routed"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	route := "GET /api/stations/{name}"
	assert.Equal(t, 2.0, requestCount(m, http.MethodGet, route, "200"), "station names collapse into one series")
	assert.Equal(t, 1.0, requestCount(m, http.MethodGet, route, "404"))
	assert.Equal(t, 1.0, requestCount(m, http.MethodGet, unmatchedRoute, "404"))
	assert.Equal(t, 2, testutil.CollectAndCount(m.HTTPRequestDuration), "one histogram per method and route")
}

func TestMetricsHandler_StatusCodes(t *testing.T) {
	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity, http.StatusTooManyRequests, http.StatusInternalServerError} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			m := metrics.New()
			h := MetricsHandler(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/metrics", nil))

			assert.Equal(t, status, rec.Code)
			assert.Equal(t, 1.0, requestCount(m, http.MethodGet, unmatchedRoute, strconv.Itoa(status)))
		})
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	s := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}
	assert.Equal(t, http.StatusOK, s.status, "implicit status is 200")

	s.WriteHeader(http.StatusServiceUnavailable)
	assert.Equal(t, http.StatusServiceUnavailable, s.status)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Same(t, rec, s.Unwrap())
}
