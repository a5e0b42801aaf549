package middleware

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMeteredApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(m.Handler())
	app.Get("/api/records/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Delete("/api/records/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Get("/api/objects", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusBadRequest, "bad") })
	app.Get("/api/files", func(c *fiber.Ctx) error { return errors.New("storage down") })
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app, m, reg
}

func TestPrometheusMiddleware_CountsByRoute(t *testing.T) {
	tests := []struct {
		method, target    string
		wantPath, wantCode string
	}{
		{"GET", "/api/records/123", "/api/records/:id", "200"},
		{"DELETE", "/api/records/123", "/api/records/:id", "204"},
		{"GET", "/api/objects", "/api/objects", "400"},
		{"GET", "/api/files", "/api/files", "500"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			app, m, _ := newMeteredApp(t)

			_, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)

			assert.Equal(t, 1.0, testutil.ToFloat64(m.requestCount.WithLabelValues(tt.method, tt.wantPath, tt.wantCode)))
			assert.Equal(t, 1, testutil.CollectAndCount(m.requestDuration))
			assert.Equal(t, 0.0, testutil.ToFloat64(m.inFlight))
		})
	}
}

func TestPrometheusMiddleware_SkipsProbes(t *testing.T) {
	app, m, _ := newMeteredApp(t)

	for _, target := range []string{"/metrics", "/healthz"} {
		_, err := app.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
	}

	assert.Equal(t, 0, testutil.CollectAndCount(m.requestCount))
	assert.Equal(t, 0, testutil.CollectAndCount(m.requestDuration))
}

func TestNewPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}

func TestNewPrometheusMiddleware_MetricNames(t *testing.T) {
	app, _, reg := newMeteredApp(t)
	_, err := app.Test(httptest.NewRequest("GET", "/api/records/1", nil))
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, mf := range mfs {
		names = append(names, mf.GetName())
	}
	assert.ElementsMatch(t, []string{
		"crmapi_http_requests_total",
		"crmapi_http_request_duration_seconds",
		"crmapi_http_requests_in_flight",
	}, names)
}
