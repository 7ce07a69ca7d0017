package admission

import (
	"time"

	"github.com/Adi4512/nextjsaichattool/internal/config"
)

// DayLayout 는 일일 쿼터 버킷에 쓰는 날짜 문자열 형식이다.
const DayLayout = "2006-01-02"

// Clock 은 현재 시각을 반환한다. 테스트에서 고정 시각을 주입한다.
type Clock func() time.Time

// Limits 는 요청 허용 정책의 상수 묶음이다.
type Limits struct {
	Window               time.Duration
	MaxRequestsPerWindow int
	MaxMessageChars      int
	MaxDailyRequests     int
	MaxDailyTokens       int
	SessionDuration      time.Duration
	Location             *time.Location
}

// DefaultLimits 는 기본 정책(60초/10회, 500자, 하루 50회/5000자, 세션 24시간)을 반환한다.
func DefaultLimits() Limits {
	return Limits{
		Window:               60 * time.Second,
		MaxRequestsPerWindow: 10,
		MaxMessageChars:      500,
		MaxDailyRequests:     50,
		MaxDailyTokens:       5000,
		SessionDuration:      24 * time.Hour,
		Location:             time.Local,
	}
}

// LimitsFromConfig 는 설정에서 정책을 만든다.
func LimitsFromConfig(cfg config.AdmissionConfig) Limits {
	return Limits{
		Window:               cfg.Window(),
		MaxRequestsPerWindow: cfg.MaxRequestsPerWindow,
		MaxMessageChars:      cfg.MaxMessageChars,
		MaxDailyRequests:     cfg.MaxDailyRequests,
		MaxDailyTokens:       cfg.MaxDailyTokens,
		SessionDuration:      cfg.SessionDuration(),
		Location:             cfg.Location(),
	}
}

// Day 는 정책 타임존 기준 날짜 문자열을 반환한다.
func (l Limits) Day(now time.Time) string {
	loc := l.Location
	if loc == nil {
		loc = time.Local
	}
	return now.In(loc).Format(DayLayout)
}
