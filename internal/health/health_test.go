package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/randx"
)

type stubDB struct {
	enabled bool
	err     error
	pings   int
}

func (s *stubDB) Enabled() bool { return s.enabled }

func (s *stubDB) Ping(context.Context) error {
	s.pings++
	return s.err
}

func TestCollectStatus(t *testing.T) {
	cfg := &config.Config{
		Upstream: config.UpstreamConfig{
			Provider:       config.ProviderOpenRouter,
			StreamModel:    "stream-test",
			TimeoutSeconds: 10,
		},
	}

	resp := NewChecker(cfg, nil, nil).Collect(context.Background(), false)
	if resp.Status != "degraded" {
		t.Fatalf("expected degraded status without api key, got %s", resp.Status)
	}
	if resp.Components["usage_db"].Status != "ok" {
		t.Fatalf("expected usage_db ok, got %s", resp.Components["usage_db"].Status)
	}
	if resp.Components["upstream"].Detail["stream_model"] != "stream-test" {
		t.Fatalf("unexpected upstream detail: %v", resp.Components["upstream"].Detail)
	}

	cfg.Upstream.APIKey = "key"
	if resp := NewChecker(cfg, nil, nil).Collect(context.Background(), true); resp.Status != "ok" {
		t.Fatalf("expected ok, got %s", resp.Status)
	}
}

func TestCollectAdmissionCounts(t *testing.T) {
	limits := admission.DefaultLimits()
	state := admission.NewState(limits, randx.SeedFrom(1))
	now := time.Now()
	state.Sessions.GetOrCreate("a", now)
	state.Rate.Admit("a", now)
	state.Rate.Admit("b", now)

	resp := NewChecker(&config.Config{}, state, nil).Collect(context.Background(), false)
	detail := resp.Components["admission"].Detail
	if detail["active_sessions"] != 1 || detail["tracked_rate_windows"] != 2 {
		t.Fatalf("unexpected admission detail: %v", detail)
	}
}

func TestCollectDeepChecksUsageDB(t *testing.T) {
	cfg := &config.Config{Upstream: config.UpstreamConfig{APIKey: "key"}}
	db := &stubDB{enabled: true, err: errors.New("connection refused")}

	shallow := NewChecker(cfg, nil, db).Collect(context.Background(), false)
	if shallow.Status != "ok" || db.pings != 0 {
		t.Fatalf("shallow check must not ping: status=%s pings=%d", shallow.Status, db.pings)
	}

	deep := NewChecker(cfg, nil, db).Collect(context.Background(), true)
	if deep.Status != "degraded" || db.pings != 1 {
		t.Fatalf("expected degraded after failed ping: status=%s pings=%d", deep.Status, db.pings)
	}
	if deep.Components["usage_db"].Detail["error"] != "connection refused" {
		t.Fatalf("expected ping error in detail")
	}
}
