package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/http/router"
	"service-dispatch/internal/logx"
)

func newRouter() http.Handler {
	base := handlers.New(logx.Nop())
	return router.New(
		base,
		&handlers.DispatchHandler{},
		&handlers.AvailabilityHandler{},
		&handlers.VendorHandler{},
		nil,
	)
}

func TestRouter_Ping(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_Healthcheck(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodHead, "/healthcheck", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRouter_Metrics(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}
