package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/chat"
	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/health"
	"github.com/Adi4512/nextjsaichattool/internal/language"
	"github.com/Adi4512/nextjsaichattool/internal/metrics"
	"github.com/Adi4512/nextjsaichattool/internal/randx"
	"github.com/Adi4512/nextjsaichattool/internal/upstream"
	"github.com/Adi4512/nextjsaichattool/internal/usage"
)

type scriptedStream struct {
	deltas []string
	err    error
	index  int
}

func (s *scriptedStream) Next() (string, error) {
	if s.index >= len(s.deltas) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	d := s.deltas[s.index]
	s.index++
	return d, nil
}

func (s *scriptedStream) Close() error { return nil }

type scriptedClient struct {
	mu        sync.Mutex
	deltas    []string
	streamErr error
	openErr   error
	text      string
	textErr   error
}

func (c *scriptedClient) Stream(context.Context, upstream.Request) (upstream.Stream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.openErr != nil {
		return nil, c.openErr
	}
	return &scriptedStream{deltas: c.deltas, err: c.streamErr}, nil
}

func (c *scriptedClient) Complete(context.Context, upstream.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.textErr
}

func (c *scriptedClient) Provider() string { return "scripted" }

type testEnv struct {
	cfg      *config.Config
	router   *gin.Engine
	pipeline *admission.Pipeline
	metrics  *metrics.Store
	now      time.Time
}

func testConfig() *config.Config {
	return &config.Config{
		Admission: config.AdmissionConfig{GateChat: true, Timezone: "UTC"},
		Upstream: config.UpstreamConfig{
			Provider:       config.ProviderOpenRouter,
			APIKey:         "key",
			StreamModel:    "stream-model",
			ChatModel:      "chat-model",
			MaxTokens:      150,
			Temperature:    0.7,
			TimeoutSeconds: 5,
		},
		Admin:   config.AdminConfig{Secret: "admin-secret", CostPer1KCharsUSD: 1},
		CORS:    config.CORSConfig{AllowOrigins: []string{"*"}},
		Logging: config.LoggingConfig{Level: "info"},
		HTTP:    config.HTTPConfig{HTTP2Enabled: true},
	}
}

func newTestEnv(t *testing.T, cfg *config.Config, client upstream.Client) *testEnv {
	t.Helper()

	env := &testEnv{cfg: cfg, now: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)}
	limits := admission.DefaultLimits()
	limits.Location = time.UTC
	state := admission.NewState(limits, randx.SeedFrom(11))
	env.pipeline = admission.NewPipeline(limits, state, func() time.Time { return env.now })

	prompts, err := chat.NewPrompts()
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.metrics = metrics.NewStore()
	recorder := usage.NewRecorder(cfg, nil, logger)
	detector := language.NewDetector()
	service := chat.NewService(cfg, env.pipeline, detector, prompts, client, env.metrics, recorder, logger)

	env.router = NewRouter(
		cfg,
		logger,
		health.NewChecker(cfg, state, nil),
		env.metrics,
		NewChatHandler(service, logger),
		NewAdminHandler(cfg, env.pipeline, env.metrics, recorder, logger),
	)
	return env
}

func jsonBody(message string) io.Reader {
	return strings.NewReader(`{"message":` + quote(message) + `}`)
}

func quote(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + replacer.Replace(value) + `"`
}

var errScripted = errors.New("scripted failure")
