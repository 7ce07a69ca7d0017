package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestHealthRoutes(t *testing.T) {
	env := newTestEnv(t, testConfig(), &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	upstreamReq := httptest.NewRequest(http.MethodGet, "/health/upstream", nil)
	upstreamResp := httptest.NewRecorder()
	env.router.ServeHTTP(upstreamResp, upstreamReq)
	if upstreamResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", upstreamResp.Code)
	}

	var payload UpstreamConfigResponse
	if err := json.Unmarshal(upstreamResp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.StreamModel != "stream-model" || payload.ChatModel != "chat-model" {
		t.Fatalf("unexpected models: %+v", payload)
	}
	if payload.TransportMode != "h2c" {
		t.Fatalf("expected h2c, got %s", payload.TransportMode)
	}
}

func TestHealthReadyDegradedWithoutKey(t *testing.T) {
	cfg := testConfig()
	cfg.Upstream.APIKey = ""
	env := newTestEnv(t, cfg, &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, testConfig(), &scriptedClient{deltas: []string{"hi"}})
	postStream(env, jsonBody("hello"), "192.0.2.20")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `chat_admission_total{outcome="admitted"} 1`) {
		t.Fatalf("expected admission counter in metrics output")
	}
}

func TestNoRoute(t *testing.T) {
	env := newTestEnv(t, testConfig(), &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound || resp.Body.String() != `{"error":"Not Found"}` {
		t.Fatalf("unexpected response: %d %s", resp.Code, resp.Body.String())
	}
}
