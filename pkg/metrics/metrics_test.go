package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metricsopts "github.com/kart-io/express-plugin/pkg/options/metrics"
)

func newApp(t *testing.T, p *Plugin) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app := gin.New()
	require.NoError(t, p.InitExpress(context.Background(), app, func() {}))
	app.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	return app
}

func do(app *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestRecordsByRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := New(nil, reg)
	assert.Equal(t, Name, p.Name())
	app := newApp(t, p)

	do(app, "/items/1")
	do(app, "/items/2")
	do(app, "/missing")

	assert.Equal(t, 2.0, testutil.ToFloat64(p.requests.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.requests.WithLabelValues("GET", unmatchedRoute, "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(p.inFlight))
	assert.Equal(t, 2, testutil.CollectAndCount(p.duration))
}

func TestScrapeEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	app := newApp(t, New(nil, reg))
	do(app, "/items/1")

	w := do(app, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `express_http_requests_total{method="GET",route="/items/:id",status="200"} 1`)
	assert.Contains(t, w.Body.String(), "express_http_requests_in_flight")
}

func TestReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := New(nil, reg)
	newApp(t, first)

	second := New(nil, reg)
	app := newApp(t, second)
	do(app, "/items/1")

	assert.Same(t, first.requests, second.requests)
	assert.Equal(t, 1.0, testutil.ToFloat64(first.requests.WithLabelValues("GET", "/items/:id", "200")))
}

func TestConflictingRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "express",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "conflict",
	})))

	p := New(nil, reg)
	err := p.InitExpress(context.Background(), gin.New(), func() {})
	assert.ErrorContains(t, err, "register metrics collector")
}

func TestDisabled(t *testing.T) {
	opts := metricsopts.NewOptions()
	opts.Enabled = false
	app := newApp(t, New(opts, prometheus.NewRegistry()))
	assert.Equal(t, http.StatusNotFound, do(app, "/metrics").Code)
}
