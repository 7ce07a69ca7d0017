package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

var (
	configOnce  sync.Once
	configValue *Config
)

// Load 는 환경 변수 기반 설정을 로드한다.
func Load() *Config {
	configOnce.Do(func() {
		_ = godotenv.Load()
		configValue = buildConfig()
	})
	return configValue
}

// ProvideConfig 는 설정을 로드하고 검증한다.
func ProvideConfig() (*Config, error) {
	cfg := Load()
	if cfg == nil {
		return nil, errors.New("config not initialized")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 는 설정 유효성을 검사한다.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	validate := validator.New()
	sections := []struct {
		name  string
		value any
	}{
		{"admission", c.Admission},
		{"janitor", c.Janitor},
		{"upstream", c.Upstream},
	}
	for _, section := range sections {
		if err := validate.Struct(section.value); err != nil {
			return fmt.Errorf("invalid %s config: %w", section.name, err)
		}
	}

	if tz := c.Admission.Timezone; tz != "Local" {
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("invalid admission timezone %q: %w", tz, err)
		}
	}
	if c.Upstream.Provider == ProviderGemini && strings.TrimSpace(c.Upstream.GeminiModel) == "" {
		return errors.New("gemini provider requires GEMINI_MODEL")
	}
	return nil
}

// LogEnvStatus 는 환경 설정 상태를 로그로 남긴다.
func LogEnvStatus(cfg *Config, logger *slog.Logger) {
	if logger == nil || cfg == nil {
		return
	}

	logger.Debug(
		"env_status",
		"env_file", fileExists(".env"),
		"provider", cfg.Upstream.Provider,
		"api_key", maskSecret(cfg.Upstream.ActiveKey()),
		"stream_model", cfg.Upstream.ActiveStreamModel(),
		"chat_model", cfg.Upstream.ActiveChatModel(),
		"timeout", cfg.Upstream.TimeoutSeconds,
		"window_seconds", cfg.Admission.WindowSeconds,
		"max_requests_per_window", cfg.Admission.MaxRequestsPerWindow,
		"max_message_chars", cfg.Admission.MaxMessageChars,
		"max_daily_requests", cfg.Admission.MaxDailyRequests,
		"max_daily_tokens", cfg.Admission.MaxDailyTokens,
		"timezone", cfg.Admission.Timezone,
		"admin_secret", maskSecret(cfg.Admin.Secret),
		"usage_db", cfg.Database.UsageEnabled,
	)

	if cfg.Upstream.ActiveKey() == "" {
		logger.Error("env_missing_upstream_api_key", "provider", cfg.Upstream.Provider)
	}
	if cfg.Admin.Secret == "" {
		logger.Warn("env_missing_admin_secret")
	}
}

func buildConfig() *Config {
	return &Config{
		Admission: AdmissionConfig{
			WindowSeconds:        getEnvInt("ADMISSION_WINDOW_SECONDS", 60),
			MaxRequestsPerWindow: getEnvInt("ADMISSION_MAX_REQUESTS_PER_WINDOW", 10),
			MaxMessageChars:      getEnvInt("ADMISSION_MAX_MESSAGE_CHARS", 500),
			MaxDailyRequests:     getEnvInt("ADMISSION_MAX_DAILY_REQUESTS", 50),
			MaxDailyTokens:       getEnvInt("ADMISSION_MAX_DAILY_TOKENS", 5000),
			SessionHours:         getEnvInt("ADMISSION_SESSION_HOURS", 24),
			Timezone:             getEnvString("ADMISSION_TIMEZONE", "Local"),
			GateChat:             getEnvBool("ADMISSION_GATE_CHAT", true),
		},
		Janitor: JanitorConfig{
			RolloverIntervalSeconds: getEnvInt("JANITOR_ROLLOVER_INTERVAL_SECONDS", 60),
			SweepIntervalSeconds:    getEnvInt("JANITOR_SWEEP_INTERVAL_SECONDS", 300),
		},
		Upstream: UpstreamConfig{
			Provider:           strings.ToLower(getEnvString("UPSTREAM_PROVIDER", ProviderOpenRouter)),
			APIKey:             firstEnv("OPENAI_API_KEY", "OPENROUTER_API_KEY"),
			BaseURL:            getEnvString("UPSTREAM_BASE_URL", "https://openrouter.ai/api/v1"),
			StreamModel:        getEnvString("UPSTREAM_STREAM_MODEL", "deepseek/deepseek-chat-v3-0324"),
			ChatModel:          getEnvString("UPSTREAM_CHAT_MODEL", "deepseek/deepseek-r1-0528:free"),
			MaxTokens:          getEnvInt("UPSTREAM_MAX_TOKENS", 150),
			Temperature:        getEnvFloat("UPSTREAM_TEMPERATURE", 0.7),
			TimeoutSeconds:     getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 60),
			StreamPacingMillis: getEnvNonNegativeInt("UPSTREAM_STREAM_PACING_MILLIS", 10),
			AppReferer:         getEnvString("UPSTREAM_APP_REFERER", ""),
			AppTitle:           getEnvString("UPSTREAM_APP_TITLE", ""),
			GeminiAPIKey:       firstEnv("GOOGLE_API_KEY", "GEMINI_API_KEY"),
			GeminiModel:        getEnvString("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		Admin: AdminConfig{
			Secret:            getEnvString("ADMIN_SECRET", ""),
			CostPer1KCharsUSD: getEnvFloat("ADMIN_COST_PER_1K_CHARS_USD", 0),
		},
		CORS: CORSConfig{
			AllowOrigins: splitList(getEnvString("CORS_ALLOW_ORIGINS", "*")),
		},
		Logging: LoggingConfig{
			Level:      getEnvString("LOG_LEVEL", "info"),
			LogDir:     getEnvString("LOG_DIR", ""),
			MaxSizeMB:  getEnvInt("LOG_FILE_MAX_SIZE_MB", 10),
			MaxBackups: getEnvInt("LOG_FILE_MAX_BACKUPS", 30),
			MaxAgeDays: getEnvInt("LOG_FILE_MAX_AGE_DAYS", 7),
			Compress:   getEnvBool("LOG_FILE_COMPRESS", true),
		},
		HTTP: HTTPConfig{
			Host:                   getEnvString("HTTP_HOST", "0.0.0.0"),
			Port:                   getEnvInt("HTTP_PORT", 3000),
			HTTP2Enabled:           getEnvBool("HTTP2_ENABLED", true),
			ShutdownTimeoutSeconds: getEnvNonNegativeInt("HTTP_SHUTDOWN_TIMEOUT_SECONDS", 10),
		},
		Telemetry: readTelemetryConfig(),
		Database: DatabaseConfig{
			UsageEnabled:                         getEnvBool("USAGE_DB_ENABLED", false),
			Host:                                 getEnvString("DB_HOST", "localhost"),
			Port:                                 getEnvInt("DB_PORT", 5432),
			Name:                                 getEnvString("DB_NAME", "chat"),
			User:                                 getEnvString("DB_USER", "chat"),
			Password:                             getEnvString("DB_PASSWORD", ""),
			MaxPool:                              max(1, getEnvInt("DB_MAX_POOL", 5)),
			ConnMaxLifetimeMinutes:               getEnvNonNegativeInt("DB_CONN_MAX_LIFETIME_MINUTES", 60),
			ConnMaxIdleTimeMinutes:               getEnvNonNegativeInt("DB_CONN_MAX_IDLE_TIME_MINUTES", 10),
			UsageBatchEnabled:                    getEnvBool("DB_USAGE_BATCH_ENABLED", true),
			UsageBatchFlushIntervalSeconds:       max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_FLUSH_INTERVAL_SECONDS", 5)),
			UsageBatchFlushTimeoutSeconds:        max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_FLUSH_TIMEOUT_SECONDS", 5)),
			UsageBatchMaxPendingRequests:         max(1, getEnvNonNegativeInt("DB_USAGE_BATCH_MAX_PENDING_REQUESTS", 50)),
			UsageBatchMaxBackoffSeconds:          getEnvNonNegativeInt("DB_USAGE_BATCH_MAX_BACKOFF_SECONDS", 60),
			UsageBatchErrorLogMaxIntervalSeconds: getEnvNonNegativeInt("DB_USAGE_BATCH_ERROR_LOG_MAX_INTERVAL_SECONDS", 60),
		},
	}
}
