package usage

import (
	"context"
	"log/slog"
	"time"

	"github.com/Adi4512/nextjsaichattool/internal/config"
)

// Recorder 는 허용된 요청과 중계된 응답의 문자 수를 일자 집계로 저장한다.
// USAGE_DB_ENABLED 가 꺼져 있으면 아무 것도 하지 않는다.
type Recorder struct {
	store   Store
	batcher *batcher
	logger  *slog.Logger
	enabled bool
}

// NewRecorder 는 설정에 따라 배치 사용 여부를 결정해 Recorder를 생성한다.
func NewRecorder(cfg *config.Config, repo *Repository, logger *slog.Logger) *Recorder {
	if repo == nil {
		return newRecorder(cfg, nil, logger)
	}
	return newRecorder(cfg, repo, logger)
}

func newRecorder(cfg *config.Config, store Store, logger *slog.Logger) *Recorder {
	recorder := &Recorder{
		store:   store,
		logger:  logger,
		enabled: cfg != nil && cfg.Database.UsageEnabled && store != nil,
	}
	if !recorder.enabled {
		return recorder
	}

	if cfg.Database.UsageBatchEnabled {
		recorder.batcher = newBatcher(cfg, store, logger)
		recorder.batcher.start()
		if logger != nil {
			logger.Info(
				"usage_db_batch_enabled",
				"flush_interval_seconds", cfg.Database.UsageBatchFlushIntervalSeconds,
				"flush_timeout_seconds", cfg.Database.UsageBatchFlushTimeoutSeconds,
				"max_pending_requests", cfg.Database.UsageBatchMaxPendingRequests,
				"max_backoff_seconds", cfg.Database.UsageBatchMaxBackoffSeconds,
				"error_log_max_interval_seconds", cfg.Database.UsageBatchErrorLogMaxIntervalSeconds,
			)
		}
	}

	return recorder
}

// Enabled 는 기록 여부를 반환한다.
func (r *Recorder) Enabled() bool {
	return r != nil && r.enabled
}

// RecordRequest 는 허용된 요청 1건과 입력 문자 수를 기록한다.
func (r *Recorder) RecordRequest(ctx context.Context, inputChars int) {
	r.record(ctx, Delta{Requests: 1, InputChars: int64(inputChars)})
}

// RecordOutput 은 클라이언트에 전달한 응답 문자 수를 기록한다.
func (r *Recorder) RecordOutput(ctx context.Context, outputChars int) {
	r.record(ctx, Delta{OutputChars: int64(outputChars)})
}

// Recent 는 최근 N일 집계를 조회한다.
func (r *Recorder) Recent(ctx context.Context, days int) ([]DailyUsage, error) {
	if !r.Enabled() {
		return nil, ErrDisabled
	}
	return r.store.GetRecentUsage(ctx, days)
}

func (r *Recorder) record(ctx context.Context, delta Delta) {
	if !r.Enabled() || delta.IsZero() {
		return
	}

	if r.batcher != nil {
		r.batcher.add(delta)
		return
	}

	if err := r.store.RecordUsage(context.WithoutCancel(ctx), delta, time.Time{}); err != nil {
		if r.logger != nil {
			r.logger.Warn("usage_db_save_failed", "err", err)
		}
	}
}

// Close 는 배치 플러셔를 중지하고 남은 증가분을 플러시한다.
func (r *Recorder) Close() {
	if r == nil || r.batcher == nil {
		return
	}
	r.batcher.stop()
}
