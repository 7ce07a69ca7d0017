package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/httperror"
	"github.com/Adi4512/nextjsaichattool/internal/metrics"
	"github.com/Adi4512/nextjsaichattool/internal/middleware"
	"github.com/Adi4512/nextjsaichattool/internal/usage"
)

const defaultHistoryDays = 7

var adminRecommendations = []string{
	"Monitor daily usage patterns",
	"Set up cost alerts",
	"Consider user authentication",
}

// EstimatedCosts: 추정 비용입니다.
type EstimatedCosts struct {
	Daily   string `json:"daily"`
	Monthly string `json:"monthly"`
}

// LimitsResponse: 적용 중인 허용 정책입니다.
type LimitsResponse struct {
	WindowSeconds        int    `json:"windowSeconds"`
	MaxRequestsPerWindow int    `json:"maxRequestsPerWindow"`
	MaxMessageChars      int    `json:"maxMessageChars"`
	MaxDailyRequests     int    `json:"maxDailyRequests"`
	MaxDailyTokens       int    `json:"maxDailyTokens"`
	SessionHours         int    `json:"sessionHours"`
	Timezone             string `json:"timezone"`
}

// UsageReport: 관리자 사용량 보고서입니다.
type UsageReport struct {
	Timestamp          string             `json:"timestamp"`
	Day                string             `json:"day"`
	TotalActiveUsers   int                `json:"totalActiveUsers"`
	TotalRequestsToday int                `json:"totalRequestsToday"`
	TotalTokensToday   int                `json:"totalTokensToday"`
	ActiveSessions     int                `json:"activeSessions"`
	TrackedRateWindows int                `json:"trackedRateWindows"`
	EstimatedCosts     EstimatedCosts     `json:"estimatedCosts"`
	RateLimitStatus    string             `json:"rateLimitStatus"`
	Limits             LimitsResponse     `json:"limits"`
	Counters           map[string]float64 `json:"counters"`
	History            []usage.DailyUsage `json:"history,omitempty"`
	Recommendations    []string           `json:"recommendations"`
}

// AdminHandler: 관리자 API 핸들러입니다.
type AdminHandler struct {
	cfg      *config.Config
	pipeline *admission.Pipeline
	metrics  *metrics.Store
	usage    *usage.Recorder
	logger   *slog.Logger
}

// NewAdminHandler: 관리자 핸들러를 생성합니다.
func NewAdminHandler(
	cfg *config.Config,
	pipeline *admission.Pipeline,
	metricsStore *metrics.Store,
	usageRecorder *usage.Recorder,
	logger *slog.Logger,
) *AdminHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AdminHandler{
		cfg:      cfg,
		pipeline: pipeline,
		metrics:  metricsStore,
		usage:    usageRecorder,
		logger:   logger,
	}
}

// RegisterRoutes: 관리자 라우트를 등록합니다.
func (h *AdminHandler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/api/admin", middleware.AdminAuth(h.cfg))
	group.GET("/usage", h.handleUsage)
}

func (h *AdminHandler) handleUsage(c *gin.Context) {
	days, ok := parseDays(c, defaultHistoryDays)
	if !ok {
		return
	}

	now := h.pipeline.Now()
	limits := h.pipeline.Limits()
	state := h.pipeline.State()
	day := limits.Day(now)
	totals := state.Quota.Totals(day)

	report := UsageReport{
		Timestamp:          now.UTC().Format(time.RFC3339Nano),
		Day:                day,
		TotalActiveUsers:   totals.Identities,
		TotalRequestsToday: totals.Requests,
		TotalTokensToday:   totals.Tokens,
		ActiveSessions:     state.Sessions.Len(),
		TrackedRateWindows: state.Rate.Len(),
		EstimatedCosts:     estimateCosts(totals.Tokens, h.cfg.Admin.CostPer1KCharsUSD),
		RateLimitStatus:    "Active",
		Limits:             buildLimitsResponse(limits),
		Counters:           h.metrics.Snapshot(),
		Recommendations:    adminRecommendations,
	}

	if h.usage.Enabled() {
		history, err := h.usage.Recent(c.Request.Context(), days)
		if err != nil {
			h.logger.WarnContext(c.Request.Context(), "admin_usage_history_failed", "err", err)
		} else {
			report.History = history
		}
	}

	c.JSON(http.StatusOK, report)
}

func estimateCosts(chars int, costPer1K float64) EstimatedCosts {
	daily := float64(chars) / 1000 * costPer1K
	return EstimatedCosts{
		Daily:   fmt.Sprintf("$%.2f", daily),
		Monthly: fmt.Sprintf("$%.2f", daily*30),
	}
}

func buildLimitsResponse(limits admission.Limits) LimitsResponse {
	timezone := ""
	if limits.Location != nil {
		timezone = limits.Location.String()
	}
	return LimitsResponse{
		WindowSeconds:        int(limits.Window / time.Second),
		MaxRequestsPerWindow: limits.MaxRequestsPerWindow,
		MaxMessageChars:      limits.MaxMessageChars,
		MaxDailyRequests:     limits.MaxDailyRequests,
		MaxDailyTokens:       limits.MaxDailyTokens,
		SessionHours:         int(limits.SessionDuration / time.Hour),
		Timezone:             timezone,
	}
}

func parseDays(c *gin.Context, defaultDays int) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return defaultDays, true
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		writeError(c, httperror.NewInvalidInput("days must be a positive integer"))
		return 0, false
	}
	return parsed, true
}
