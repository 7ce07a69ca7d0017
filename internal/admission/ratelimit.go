package admission

import (
	"sync"
	"time"
)

// RateLimiter 는 identity 별 슬라이딩 윈도우 요청 제한기다.
// 토큰 버킷이 아니므로 버스트는 시간 경과로만 해소된다.
type RateLimiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	windows map[string][]time.Time
}

// NewRateLimiter 는 window 동안 max 건까지 허용하는 제한기를 생성한다.
func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{
		window:  window,
		max:     max,
		windows: make(map[string][]time.Time),
	}
}

// Admit 는 요청을 허용하면 now 를 기록하고 true 를 반환한다.
// 거부할 때는 기록하지 않는다.
func (l *RateLimiter) Admit(identity string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.pruneLocked(l.windows[identity], now)
	if len(recent) >= l.max {
		l.windows[identity] = recent
		return false
	}
	l.windows[identity] = append(recent, now)
	return true
}

// Count 는 윈도우 안의 요청 수를 반환한다.
func (l *RateLimiter) Count(identity string, now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.pruneLocked(l.windows[identity], now))
}

// Sweep 은 모든 identity 를 정리하고 빈 항목을 제거한다. 제거된 identity 수를 반환한다.
func (l *RateLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for identity, timestamps := range l.windows {
		recent := l.pruneLocked(timestamps, now)
		if len(recent) == 0 {
			delete(l.windows, identity)
			removed++
			continue
		}
		l.windows[identity] = recent
	}
	return removed
}

// Len 은 추적 중인 identity 수를 반환한다.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// Reset 은 모든 기록을 지운다.
func (l *RateLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.windows = make(map[string][]time.Time)
}

// pruneLocked 는 윈도우 밖 타임스탬프를 제외한 새 목록을 반환한다.
func (l *RateLimiter) pruneLocked(timestamps []time.Time, now time.Time) []time.Time {
	var recent []time.Time
	for _, ts := range timestamps {
		if now.Sub(ts) < l.window {
			recent = append(recent, ts)
		}
	}
	return recent
}
