package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/gokatarajesh/live-match-dashboard/internal/config"
)

type panicRoutes struct{}

func (panicRoutes) Register(r *mux.Router) {
	r.HandleFunc("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
}

func testConfig() *config.App {
	return &config.App{
		HTTPAddr: "127.0.0.1:0",
		CORS: config.CORS{
			AllowedOrigins: []string{"http://localhost:5173"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type"},
			MaxAge:         60,
		},
	}
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_BaseRoutes(t *testing.T) {
	h := NewRouter(testConfig(), zerolog.Nop(), Deps{Routes: []Routes{panicRoutes{}}})

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"pong":true}`, rec.Body.String())

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/ws/matches", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	h := NewRouter(testConfig(), zerolog.Nop(), Deps{})

	req := httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := serve(h, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/healthz", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec = serve(h, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewWSUpgrader_CheckOrigin(t *testing.T) {
	up := NewWSUpgrader([]string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodGet, "/ws/matches", nil)
	assert.True(t, up.CheckOrigin(req), "missing origin is allowed")

	req.Header.Set("Origin", "http://localhost:5173")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, up.CheckOrigin(req))

	assert.True(t, NewWSUpgrader([]string{"*"}).CheckOrigin(req))
	assert.True(t, NewWSUpgrader(nil).CheckOrigin(req))
}
