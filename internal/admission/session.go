package admission

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/Adi4512/nextjsaichattool/internal/randx"
)

// Session 은 identity 별 관측용 세션이다. 인가에는 쓰이지 않는다.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
}

// SessionRegistry 는 identity 당 하나의 세션을 발급하고 만료 시 재발급한다.
type SessionRegistry struct {
	mu       sync.Mutex
	lifetime time.Duration
	rand     *randx.LockedRand
	sessions map[string]Session
}

// NewSessionRegistry 는 세션 레지스트리를 생성한다. rnd 가 nil 이면 보안 난수원을 사용한다.
func NewSessionRegistry(lifetime time.Duration, rnd *randx.LockedRand) *SessionRegistry {
	if rnd == nil {
		rnd = randx.NewSecure()
	}
	return &SessionRegistry{
		lifetime: lifetime,
		rand:     rnd,
		sessions: make(map[string]Session),
	}
}

// GetOrCreate 는 유효한 세션을 그대로 반환하고, 없거나 만료됐으면 새로 발급한다.
func (r *SessionRegistry) GetOrCreate(identity string, now time.Time) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session, ok := r.sessions[identity]; ok && r.validLocked(session, now) {
		return session
	}

	session := Session{
		Token:     r.newToken(now),
		CreatedAt: now,
		UserID:    fmt.Sprintf("user_%s_%d", identity, now.UnixMilli()),
	}
	r.sessions[identity] = session
	return session
}

// Sweep 은 만료된 세션을 제거하고 제거 건수를 반환한다.
func (r *SessionRegistry) Sweep(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for identity, session := range r.sessions {
		if !r.validLocked(session, now) {
			delete(r.sessions, identity)
			removed++
		}
	}
	return removed
}

// Len 은 보관 중인 세션 수를 반환한다.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reset 은 모든 세션을 지운다.
func (r *SessionRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]Session)
}

func (r *SessionRegistry) validLocked(session Session, now time.Time) bool {
	return now.Sub(session.CreatedAt) < r.lifetime
}

// newToken 은 base-36 난수 조각과 base-36 타임스탬프를 이어 붙인다.
func (r *SessionRegistry) newToken(now time.Time) string {
	return strconv.FormatUint(r.rand.Uint64(), 36) + strconv.FormatInt(now.UnixMilli(), 36)
}
