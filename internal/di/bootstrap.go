package di

import (
	"fmt"

	"github.com/Adi4512/nextjsaichattool/internal/chat"
	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/handler"
	"github.com/Adi4512/nextjsaichattool/internal/health"
	"github.com/Adi4512/nextjsaichattool/internal/language"
	"github.com/Adi4512/nextjsaichattool/internal/metrics"
	"github.com/Adi4512/nextjsaichattool/internal/server"
	"github.com/Adi4512/nextjsaichattool/internal/upstream"
	"github.com/Adi4512/nextjsaichattool/internal/usage"
)

// InitializeApp 은 애플리케이션 의존성을 초기화하고 App 인스턴스를 반환한다.
func InitializeApp() (*App, error) {
	cfg, err := config.ProvideConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	telemetryProvider, err := ProvideTelemetry(cfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	metricsStore := metrics.NewStore()
	usageRepository := usage.NewRepository(cfg, logger)
	usageRecorder := usage.NewRecorder(cfg, usageRepository, logger)

	limits := ProvideLimits(cfg)
	state := ProvideAdmissionState(limits)
	pipeline := ProvidePipeline(limits, state)
	janitorProcess := ProvideJanitor(cfg, state, limits, logger)

	upstreamClient, err := upstream.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("upstream client: %w", err)
	}

	prompts, err := chat.NewPrompts()
	if err != nil {
		return nil, fmt.Errorf("chat prompts: %w", err)
	}

	detector := language.NewDetector()
	chatService := chat.NewService(cfg, pipeline, detector, prompts, upstreamClient, metricsStore, usageRecorder, logger)

	checker := health.NewChecker(cfg, state, usageRepository)
	chatHandler := handler.NewChatHandler(chatService, logger)
	adminHandler := handler.NewAdminHandler(cfg, pipeline, metricsStore, usageRecorder, logger)

	router := handler.NewRouter(cfg, logger, checker, metricsStore, chatHandler, adminHandler)
	httpServer := server.NewHTTPServer(cfg, router)

	return NewApp(httpServer, logger, cfg, janitorProcess, telemetryProvider, usageRepository, usageRecorder), nil
}
