package di

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/janitor"
	"github.com/Adi4512/nextjsaichattool/internal/logging"
	"github.com/Adi4512/nextjsaichattool/internal/randx"
	"github.com/Adi4512/nextjsaichattool/internal/telemetry"
)

// ProvideLogger: 로거를 구성해 반환합니다.
// OTel이 활성화된 경우 로그에 trace_id/span_id가 자동으로 추가됩니다.
func ProvideLogger(cfg *config.Config) (*slog.Logger, error) {
	logger, err := logging.NewLoggerWithOTel(cfg.Logging, cfg.Telemetry.Enabled)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return logger, nil
}

// ProvideTelemetry: 설정에 따라 TracerProvider 를 초기화합니다.
func ProvideTelemetry(cfg *config.Config) (*telemetry.Provider, error) {
	provider, err := telemetry.NewProvider(context.Background(), cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}
	return provider, nil
}

// ProvideLimits: 설정에서 요청 허용 정책을 만듭니다.
func ProvideLimits(cfg *config.Config) admission.Limits {
	return admission.LimitsFromConfig(cfg.Admission)
}

// ProvideAdmissionState: 프로세스 수명 동안 공유되는 허용 상태를 만듭니다.
func ProvideAdmissionState(limits admission.Limits) *admission.State {
	return admission.NewState(limits, randx.NewSecure())
}

// ProvidePipeline: 허용 파이프라인을 만듭니다.
func ProvidePipeline(limits admission.Limits, state *admission.State) *admission.Pipeline {
	return admission.NewPipeline(limits, state, nil)
}

// ProvideJanitor: 일자 교체와 만료 정리를 담당하는 janitor 를 만듭니다.
func ProvideJanitor(cfg *config.Config, state *admission.State, limits admission.Limits, logger *slog.Logger) *janitor.Janitor {
	return janitor.New(cfg.Janitor, state, limits, nil, logger)
}
