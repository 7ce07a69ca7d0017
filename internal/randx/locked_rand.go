package randx

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
	"sync"
)

// LockedRand: math/rand/v2.Rand 를 goroutine-safe 하게 감싼 래퍼입니다.
type LockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New: 주어진 Rand 를 감쌉니다. nil 이면 고정 시드 PCG 를 사용합니다(테스트용).
func New(r *rand.Rand) *LockedRand {
	if r == nil {
		r = rand.New(rand.NewPCG(0, 0))
	}
	return &LockedRand{r: r}
}

// NewSecure: crypto/rand 시드로 초기화한 ChaCha8 소스를 사용합니다.
// 세션 토큰처럼 예측하기 어려워야 하는 값에 사용합니다.
func NewSecure() *LockedRand {
	var seed [32]byte
	if _, err := crand.Read(seed[:]); err != nil {
		// crypto/rand 실패 시 런타임 시드 PCG 로 대체
		return &LockedRand{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
	}
	return &LockedRand{r: rand.New(rand.NewChaCha8(seed))}
}

// Uint64: 64비트 난수를 반환합니다.
func (l *LockedRand) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Uint64()
}

// IntN: [0, n) 범위의 난수를 반환합니다.
func (l *LockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// SeedFrom: 테스트에서 결정적인 시퀀스를 만들 때 사용합니다.
func SeedFrom(seed uint64) *LockedRand {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	return New(rand.New(rand.NewPCG(seed, binary.BigEndian.Uint64(buf[:]))))
}
