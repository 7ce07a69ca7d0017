//go:build wireinject

package di

import (
	"github.com/google/wire"

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

func InitializeApp() (*App, error) {
	wire.Build(
		config.ProvideConfig,
		ProvideLogger,
		ProvideTelemetry,
		metrics.NewStore,
		usage.NewRepository,
		usage.NewRecorder,
		ProvideLimits,
		ProvideAdmissionState,
		ProvidePipeline,
		ProvideJanitor,
		upstream.NewClient,
		chat.NewPrompts,
		language.NewDetector,
		wire.Bind(new(language.Classifier), new(*language.Detector)),
		chat.NewService,
		health.NewChecker,
		wire.Bind(new(health.UsageDB), new(*usage.Repository)),
		handler.NewChatHandler,
		handler.NewAdminHandler,
		handler.NewRouter,
		server.NewHTTPServer,
		NewApp,
	)
	return nil, nil
}
