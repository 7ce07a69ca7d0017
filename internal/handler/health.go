package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/health"
	"github.com/Adi4512/nextjsaichattool/internal/metrics"
)

// UpstreamConfigResponse: 업스트림 설정 응답입니다.
type UpstreamConfigResponse struct {
	Provider           string  `json:"provider"`
	StreamModel        string  `json:"stream_model"`
	ChatModel          string  `json:"chat_model"`
	MaxTokens          int     `json:"max_tokens"`
	Temperature        float64 `json:"temperature"`
	TimeoutSeconds     int     `json:"timeout_seconds"`
	StreamPacingMillis int     `json:"stream_pacing_millis"`
	HTTP2Enabled       bool    `json:"http2_enabled"`
	TransportMode      string  `json:"transport_mode"`
}

// RegisterHealthRoutes: 상태 확인 라우트를 등록합니다.
func RegisterHealthRoutes(router *gin.Engine, cfg *config.Config, checker *health.Checker, metricsStore *metrics.Store) {
	router.GET("/health", func(c *gin.Context) {
		// Liveness 는 외부 의존성 상태와 무관하게 shallow 로 유지합니다.
		payload := checker.Collect(c.Request.Context(), false)
		c.JSON(http.StatusOK, payload)
	})

	router.GET("/health/ready", func(c *gin.Context) {
		payload := checker.Collect(c.Request.Context(), true)
		status := http.StatusOK
		if payload.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	})

	router.GET("/metrics", gin.WrapH(metricsStore.Handler()))

	router.GET("/health/upstream", func(c *gin.Context) {
		transportMode := "h1"
		if cfg.HTTP.HTTP2Enabled {
			transportMode = "h2c"
		}

		c.JSON(http.StatusOK, UpstreamConfigResponse{
			Provider:           cfg.Upstream.Provider,
			StreamModel:        cfg.Upstream.ActiveStreamModel(),
			ChatModel:          cfg.Upstream.ActiveChatModel(),
			MaxTokens:          cfg.Upstream.MaxTokens,
			Temperature:        cfg.Upstream.Temperature,
			TimeoutSeconds:     cfg.Upstream.TimeoutSeconds,
			StreamPacingMillis: cfg.Upstream.StreamPacingMillis,
			HTTP2Enabled:       cfg.HTTP.HTTP2Enabled,
			TransportMode:      transportMode,
		})
	})
}
