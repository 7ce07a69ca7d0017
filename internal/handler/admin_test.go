package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
)

func TestAdminUsageRequiresSecret(t *testing.T) {
	env := newTestEnv(t, testConfig(), &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/usage", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
	if resp.Body.String() != `{"error":"Unauthorized"}` {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestAdminUsageReport(t *testing.T) {
	env := newTestEnv(t, testConfig(), &scriptedClient{deltas: []string{"hi"}})

	postStream(env, jsonBody("hello"), "192.0.2.10")
	postStream(env, jsonBody("hello again"), "192.0.2.10")
	postStream(env, jsonBody("hey"), "192.0.2.11")

	req := httptest.NewRequest(http.MethodGet, "/api/admin/usage", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var report UsageReport
	if err := json.Unmarshal(resp.Body.Bytes(), &report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Day != "2025-03-14" {
		t.Fatalf("unexpected day: %s", report.Day)
	}
	if report.TotalActiveUsers != 2 || report.TotalRequestsToday != 3 || report.TotalTokensToday != 19 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.ActiveSessions != 2 || report.TrackedRateWindows != 2 {
		t.Fatalf("unexpected table sizes: %+v", report)
	}
	if report.RateLimitStatus != "Active" || len(report.Recommendations) != 3 {
		t.Fatalf("unexpected static fields: %+v", report)
	}
	if report.EstimatedCosts.Daily != "$0.02" || report.EstimatedCosts.Monthly != "$0.57" {
		t.Fatalf("unexpected costs: %+v", report.EstimatedCosts)
	}
	if report.Limits.MaxDailyRequests != 50 || report.Limits.Timezone != "UTC" {
		t.Fatalf("unexpected limits: %+v", report.Limits)
	}
	if report.Counters["admitted_total"] != 3 {
		t.Fatalf("unexpected counters: %v", report.Counters)
	}
	if report.History != nil {
		t.Fatalf("history must be omitted when usage db is disabled")
	}
}

func TestAdminUsageRejectsBadDays(t *testing.T) {
	env := newTestEnv(t, testConfig(), &scriptedClient{})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/usage?days=-1", nil)
	req.Header.Set("Authorization", "Bearer admin-secret")
	resp := httptest.NewRecorder()
	env.router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
