package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"service-dispatch/internal/http/handlers"
	"service-dispatch/internal/logx"
)

func testLogger() logx.Logger {
	return logx.Nop()
}

func TestPing(t *testing.T) {
	t.Parallel()

	h := handlers.New(testLogger())
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rr := httptest.NewRecorder()

	h.Ping(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "pong", resp["message"])
}

func TestHealthcheckHead(t *testing.T) {
	t.Parallel()

	h := handlers.New(testLogger())
	req := httptest.NewRequest(http.MethodHead, "/healthcheck", nil)
	rr := httptest.NewRecorder()

	h.HealthcheckHead(rr, req)

	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestNotFound(t *testing.T) {
	t.Parallel()

	h := handlers.New(testLogger())
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rr := httptest.NewRecorder()

	h.NotFound(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)

	var resp map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, "route not found", resp["error"])
}
