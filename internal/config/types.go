package config

import (
	"net"
	"net/url"
	"strconv"
	"time"
)

// 업스트림 공급자 이름입니다.
const (
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
)

// AdmissionConfig: 요청 허용 정책(속도 제한, 일일 쿼터, 세션) 설정입니다.
type AdmissionConfig struct {
	WindowSeconds        int    `validate:"gt=0"`
	MaxRequestsPerWindow int    `validate:"gt=0"`
	MaxMessageChars      int    `validate:"gt=0"`
	MaxDailyRequests     int    `validate:"gt=0"`
	MaxDailyTokens       int    `validate:"gt=0"`
	SessionHours         int    `validate:"gt=0"`
	Timezone             string `validate:"required"`
	GateChat             bool
}

// Window: 슬라이딩 윈도우 길이를 반환합니다.
func (a AdmissionConfig) Window() time.Duration {
	return time.Duration(a.WindowSeconds) * time.Second
}

// SessionDuration: 세션 유효 기간을 반환합니다.
func (a AdmissionConfig) SessionDuration() time.Duration {
	return time.Duration(a.SessionHours) * time.Hour
}

// Location: 일자 버킷 계산에 쓰는 타임존을 반환합니다.
// 로드할 수 없는 이름이면 time.Local 을 사용합니다.
func (a AdmissionConfig) Location() *time.Location {
	if a.Timezone == "" || a.Timezone == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// JanitorConfig: 백그라운드 정리 작업 주기 설정입니다.
type JanitorConfig struct {
	RolloverIntervalSeconds int `validate:"gt=0"`
	SweepIntervalSeconds    int `validate:"gt=0"`
}

// RolloverInterval: 일자 경계 확인 주기입니다.
func (j JanitorConfig) RolloverInterval() time.Duration {
	return time.Duration(j.RolloverIntervalSeconds) * time.Second
}

// SweepInterval: 만료 세션/빈 윈도우 정리 주기입니다.
func (j JanitorConfig) SweepInterval() time.Duration {
	return time.Duration(j.SweepIntervalSeconds) * time.Second
}

// UpstreamConfig: 업스트림 completion 서비스 설정입니다.
type UpstreamConfig struct {
	Provider           string  `validate:"oneof=openrouter gemini"`
	APIKey             string
	BaseURL            string  `validate:"required,url"`
	StreamModel        string  `validate:"required"`
	ChatModel          string  `validate:"required"`
	MaxTokens          int     `validate:"gt=0"`
	Temperature        float64 `validate:"gte=0,lte=2"`
	TimeoutSeconds     int     `validate:"gt=0"`
	StreamPacingMillis int     `validate:"gte=0"`
	AppReferer         string
	AppTitle           string
	GeminiAPIKey       string
	GeminiModel        string
}

// Timeout: 업스트림 호출 전체 제한 시간입니다.
func (u UpstreamConfig) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// StreamPacing: 첫 이벤트 이후 각 이벤트 뒤의 지연입니다.
func (u UpstreamConfig) StreamPacing() time.Duration {
	return time.Duration(u.StreamPacingMillis) * time.Millisecond
}

// ActiveKey: 선택된 공급자의 API 키를 반환합니다.
func (u UpstreamConfig) ActiveKey() string {
	if u.Provider == ProviderGemini {
		return u.GeminiAPIKey
	}
	return u.APIKey
}

// ActiveStreamModel: 선택된 공급자 기준 스트리밍 모델입니다.
func (u UpstreamConfig) ActiveStreamModel() string {
	if u.Provider == ProviderGemini {
		return u.GeminiModel
	}
	return u.StreamModel
}

// ActiveChatModel: 선택된 공급자 기준 비스트리밍 모델입니다.
func (u UpstreamConfig) ActiveChatModel() string {
	if u.Provider == ProviderGemini {
		return u.GeminiModel
	}
	return u.ChatModel
}

// AdminConfig: 관리자 API 설정입니다.
type AdminConfig struct {
	Secret            string
	CostPer1KCharsUSD float64
}

// CORSConfig: 브라우저 교차 출처 설정입니다.
type CORSConfig struct {
	AllowOrigins []string
}

// LoggingConfig: 로깅 설정입니다.
type LoggingConfig struct {
	Level      string
	LogDir     string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// HTTPConfig: HTTP 서버 설정입니다.
type HTTPConfig struct {
	Host                   string
	Port                   int
	HTTP2Enabled           bool
	ShutdownTimeoutSeconds int
}

// ShutdownTimeout: graceful shutdown 제한 시간입니다.
func (h HTTPConfig) ShutdownTimeout() time.Duration {
	if h.ShutdownTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(h.ShutdownTimeoutSeconds) * time.Second
}

// TelemetryConfig: OpenTelemetry 설정입니다.
type TelemetryConfig struct {
	Enabled        bool
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	OTLPInsecure   bool
	SampleRate     float64
}

// DatabaseConfig: 사용량 이력 DB 연결 및 저장 설정입니다.
type DatabaseConfig struct {
	UsageEnabled                         bool
	Host                                 string
	Port                                 int
	Name                                 string
	User                                 string
	Password                             string
	MaxPool                              int
	ConnMaxLifetimeMinutes               int
	ConnMaxIdleTimeMinutes               int
	UsageBatchEnabled                    bool
	UsageBatchFlushIntervalSeconds       int
	UsageBatchFlushTimeoutSeconds        int
	UsageBatchMaxPendingRequests         int
	UsageBatchMaxBackoffSeconds          int
	UsageBatchErrorLogMaxIntervalSeconds int
}

// DSN: DB 접속 문자열을 반환합니다.
func (d DatabaseConfig) DSN() string {
	host := net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
	u := &url.URL{
		Scheme: "postgresql",
		Host:   host,
		Path:   "/" + d.Name,
	}
	if d.Password == "" {
		u.User = url.User(d.User)
	} else {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}

// Config: 애플리케이션 전체 설정입니다.
type Config struct {
	Admission AdmissionConfig
	Janitor   JanitorConfig
	Upstream  UpstreamConfig
	Admin     AdminConfig
	CORS      CORSConfig
	Logging   LoggingConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Database  DatabaseConfig
}
