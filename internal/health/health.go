package health

import (
	"context"
	"time"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/config"
)

var startTime = time.Now()

// Component 는 상태 구성 요소다.
type Component struct {
	Status string         `json:"status"`
	Detail map[string]any `json:"detail"`
}

// Response 는 상태 응답 본문이다.
type Response struct {
	Status     string               `json:"status"`
	Components map[string]Component `json:"components"`
}

// UsageDB 는 사용량 DB 상태 확인에 필요한 최소 기능이다.
type UsageDB interface {
	Enabled() bool
	Ping(ctx context.Context) error
}

// Checker 는 구성 요소 상태를 모은다.
type Checker struct {
	cfg     *config.Config
	state   *admission.State
	usageDB UsageDB
}

// NewChecker 는 상태 수집기를 생성한다. state 와 usageDB 는 nil 일 수 있다.
func NewChecker(cfg *config.Config, state *admission.State, usageDB UsageDB) *Checker {
	return &Checker{cfg: cfg, state: state, usageDB: usageDB}
}

// Collect 는 헬스 상태를 수집한다. deepChecks 가 true 면 DB 연결까지 확인한다.
func (h *Checker) Collect(ctx context.Context, deepChecks bool) Response {
	components := map[string]Component{
		"app":       buildAppStatus(),
		"upstream":  buildUpstreamStatus(h.cfg),
		"admission": buildAdmissionStatus(h.state),
		"usage_db":  buildUsageDBStatus(ctx, h.usageDB, deepChecks),
	}

	overall := "ok"
	for _, component := range components {
		if component.Status != "ok" {
			overall = "degraded"
			break
		}
	}

	return Response{
		Status:     overall,
		Components: components,
	}
}

func buildAppStatus() Component {
	uptimeSeconds := int(time.Since(startTime).Seconds())
	return Component{
		Status: "ok",
		Detail: map[string]any{
			"uptime_seconds": uptimeSeconds,
		},
	}
}

func buildUpstreamStatus(cfg *config.Config) Component {
	apiKeyPresent := false
	provider := ""
	streamModel := ""
	chatModel := ""
	timeoutSeconds := 0

	if cfg != nil {
		apiKeyPresent = cfg.Upstream.ActiveKey() != ""
		provider = cfg.Upstream.Provider
		streamModel = cfg.Upstream.ActiveStreamModel()
		chatModel = cfg.Upstream.ActiveChatModel()
		timeoutSeconds = cfg.Upstream.TimeoutSeconds
	}
	status := "ok"
	if !apiKeyPresent {
		status = "degraded"
	}

	return Component{
		Status: status,
		Detail: map[string]any{
			"api_key_present": apiKeyPresent,
			"provider":        provider,
			"stream_model":    streamModel,
			"chat_model":      chatModel,
			"timeout_seconds": timeoutSeconds,
		},
	}
}

func buildAdmissionStatus(state *admission.State) Component {
	detail := map[string]any{
		"active_sessions":      0,
		"tracked_rate_windows": 0,
		"quota_entries":        0,
	}
	if state != nil {
		detail["active_sessions"] = state.Sessions.Len()
		detail["tracked_rate_windows"] = state.Rate.Len()
		detail["quota_entries"] = state.Quota.Len()
	}
	return Component{Status: "ok", Detail: detail}
}

func buildUsageDBStatus(ctx context.Context, db UsageDB, deepChecks bool) Component {
	enabled := db != nil && db.Enabled()
	connected := false
	pingErr := ""

	if ctx == nil {
		ctx = context.Background()
	}
	if enabled && deepChecks {
		checkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()

		if err := db.Ping(checkCtx); err != nil {
			pingErr = err.Error()
		} else {
			connected = true
		}
	}

	status := "ok"
	if enabled && deepChecks && !connected {
		status = "degraded"
	}

	detail := map[string]any{
		"enabled":      enabled,
		"connected":    connected,
		"deep_checked": deepChecks,
	}
	if pingErr != "" {
		detail["error"] = pingErr
	}

	return Component{Status: status, Detail: detail}
}
