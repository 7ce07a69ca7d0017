// Package janitor 는 허용 상태 테이블의 주기 정리 작업을 담당한다.
package janitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/server"
)

// Janitor 는 일자 경계 초기화와 만료 항목 정리를 수행한다.
// 요청 경로와 같은 State 참조를 공유하며, 각 테이블의 잠금으로 직렬화된다.
type Janitor struct {
	state            *admission.State
	limits           admission.Limits
	rolloverInterval time.Duration
	sweepInterval    time.Duration
	now              admission.Clock
	logger           *slog.Logger

	mu      sync.Mutex
	lastDay string
}

// New 는 Janitor 를 생성한다. now 가 nil 이면 time.Now 를 사용한다.
func New(
	cfg config.JanitorConfig,
	state *admission.State,
	limits admission.Limits,
	now admission.Clock,
	logger *slog.Logger,
) *Janitor {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	j := &Janitor{
		state:            state,
		limits:           limits,
		rolloverInterval: cfg.RolloverInterval(),
		sweepInterval:    cfg.SweepInterval(),
		now:              now,
		logger:           logger,
	}
	j.lastDay = limits.Day(now())
	return j
}

// Rollover 는 관측한 날짜가 바뀌었으면 이전 날짜의 쿼터 기록을 모두 지운다.
// 틱을 놓쳐도 다음 틱에서 날짜 변경을 감지하므로 자정 정각 확인은 필요 없다.
func (j *Janitor) Rollover(now time.Time) bool {
	today := j.limits.Day(now)

	j.mu.Lock()
	changed := today != j.lastDay
	previous := j.lastDay
	j.lastDay = today
	j.mu.Unlock()

	if !changed {
		return false
	}

	removed := j.state.Quota.RetainDay(today)
	j.logger.Info("daily_usage_rollover", "from", previous, "to", today, "removed", removed)
	return true
}

// SweepResult 는 한 번의 정리 결과다.
type SweepResult struct {
	Sessions    int
	RateWindows int
}

// Sweep 은 만료 세션과 빈 속도 제한 윈도우를 제거한다.
func (j *Janitor) Sweep(now time.Time) SweepResult {
	result := SweepResult{
		Sessions:    j.state.Sessions.Sweep(now),
		RateWindows: j.state.Rate.Sweep(now),
	}
	if result.Sessions > 0 || result.RateWindows > 0 {
		j.logger.Debug("janitor_sweep",
			"sessions_removed", result.Sessions,
			"rate_windows_removed", result.RateWindows,
			"sessions_left", j.state.Sessions.Len(),
			"rate_windows_left", j.state.Rate.Len(),
		)
	}
	return result
}

// RunRollover 는 ctx 가 끝날 때까지 주기적으로 Rollover 를 실행한다.
func (j *Janitor) RunRollover(ctx context.Context) error {
	return j.loop(ctx, j.rolloverInterval, func(now time.Time) {
		j.Rollover(now)
	})
}

// RunSweep 은 ctx 가 끝날 때까지 주기적으로 Sweep 을 실행한다.
func (j *Janitor) RunSweep(ctx context.Context) error {
	return j.loop(ctx, j.sweepInterval, func(now time.Time) {
		j.Sweep(now)
	})
}

// Tasks 는 프로세스 러너에 등록할 백그라운드 작업 목록이다.
func (j *Janitor) Tasks() []server.BackgroundTask {
	return []server.BackgroundTask{
		{Name: "janitor_rollover", ErrorLogKey: "janitor_rollover_failed", Run: j.RunRollover},
		{Name: "janitor_sweep", ErrorLogKey: "janitor_sweep_failed", Run: j.RunSweep},
	}
}

func (j *Janitor) loop(ctx context.Context, interval time.Duration, tick func(now time.Time)) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			tick(j.now())
		}
	}
}
