package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/janitor"
	"github.com/Adi4512/nextjsaichattool/internal/telemetry"
	"github.com/Adi4512/nextjsaichattool/internal/usage"
)

// App: 애플리케이션 구성 요소를 묶는다.
type App struct {
	Server          *http.Server
	Logger          *slog.Logger
	Config          *config.Config
	Janitor         *janitor.Janitor
	Telemetry       *telemetry.Provider
	UsageRepository *usage.Repository
	UsageRecorder   *usage.Recorder
}

// NewApp: App 인스턴스를 생성합니다.
func NewApp(
	server *http.Server,
	logger *slog.Logger,
	cfg *config.Config,
	janitorProcess *janitor.Janitor,
	telemetryProvider *telemetry.Provider,
	usageRepository *usage.Repository,
	usageRecorder *usage.Recorder,
) *App {
	return &App{
		Server:          server,
		Logger:          logger,
		Config:          cfg,
		Janitor:         janitorProcess,
		Telemetry:       telemetryProvider,
		UsageRepository: usageRepository,
		UsageRecorder:   usageRecorder,
	}
}

// Close: 앱 리소스를 정리합니다. 사용량 증가분을 먼저 플러시한 뒤 DB 를 닫습니다.
func (a *App) Close() {
	if a.UsageRecorder != nil {
		a.UsageRecorder.Close()
	}
	if a.UsageRepository != nil {
		a.UsageRepository.Close()
	}
	if a.Telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Telemetry.Shutdown(ctx); err != nil && a.Logger != nil {
			a.Logger.Warn("telemetry_shutdown_failed", "err", err)
		}
	}
}
