package usage

import (
	"context"
	"time"
)

// Store: 사용량 저장소 인터페이스입니다.
// 테스트에서 mock 구현을 주입할 수 있도록 합니다.
type Store interface {
	// RecordUsage 일자 집계에 증가분 누적
	RecordUsage(ctx context.Context, delta Delta, usageDate time.Time) error

	// GetRecentUsage 최근 N일 사용량 조회
	GetRecentUsage(ctx context.Context, days int) ([]DailyUsage, error)

	// Ping 연결 상태 확인
	Ping(ctx context.Context) error

	// Close 리소스 정리
	Close()
}

// Repository가 Store 인터페이스를 구현하는지 컴파일 타임 확인
var _ Store = (*Repository)(nil)
