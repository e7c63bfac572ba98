//go:build integration
// +build integration

package integration

import (
	"fmt"
	"net/http"
	"testing"
)

func TestHealthz(t *testing.T) {
	resp, err := http.Get(fmt.Sprintf("%s/healthz", baseURL()))
	if err != nil {
		t.Fatalf("health check request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}
}

func TestPing(t *testing.T) {
	resp, body := doJSON(t, http.MethodGet, baseURL()+"/v1/ping", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ping failed: %d %v", resp.StatusCode, body)
	}
}

func TestUnknownRouteReturnsJSONError(t *testing.T) {
	resp, body := doJSON(t, http.MethodGet, baseURL()+"/api/v1/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if body["status"] != "error" || body["error"] == nil {
		t.Fatalf("unexpected error body: %v", body)
	}
}
