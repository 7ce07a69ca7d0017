package admission

import (
	"time"
	"unicode/utf8"

	"github.com/Adi4512/nextjsaichattool/internal/randx"
)

// State 는 프로세스 수명 동안 유지되는 허용 상태 테이블 묶음이다.
// 파이프라인과 janitor 가 같은 참조를 공유한다.
type State struct {
	Rate     *RateLimiter
	Quota    *DailyQuotaTracker
	Sessions *SessionRegistry
}

// NewState 는 정책에 맞는 빈 상태 테이블을 생성한다.
func NewState(limits Limits, rnd *randx.LockedRand) *State {
	return &State{
		Rate:     NewRateLimiter(limits.Window, limits.MaxRequestsPerWindow),
		Quota:    NewDailyQuotaTracker(limits.MaxDailyRequests, limits.MaxDailyTokens),
		Sessions: NewSessionRegistry(limits.SessionDuration, rnd),
	}
}

// Reset 은 모든 테이블을 비운다.
func (s *State) Reset() {
	s.Rate.Reset()
	s.Quota.Reset()
	s.Sessions.Reset()
}

// Ticket 은 허용된 요청의 결과다.
type Ticket struct {
	Identity   string
	Message    string
	Chars      int
	Day        string
	Usage      Usage
	Session    Session
	AdmittedAt time.Time
}

// Pipeline 은 속도 제한, 입력 검증, 일일 쿼터, 세션 발급 순으로 요청을 통과시킨다.
type Pipeline struct {
	limits Limits
	state  *State
	now    Clock
}

// NewPipeline 은 허용 파이프라인을 생성한다. now 가 nil 이면 time.Now 를 사용한다.
func NewPipeline(limits Limits, state *State, now Clock) *Pipeline {
	if now == nil {
		now = time.Now
	}
	return &Pipeline{limits: limits, state: state, now: now}
}

// Limits 는 적용 중인 정책을 반환한다.
func (p *Pipeline) Limits() Limits {
	return p.limits
}

// State 는 공유 상태 테이블을 반환한다.
func (p *Pipeline) State() *State {
	return p.state
}

// Now 는 파이프라인 시계 기준 현재 시각이다.
func (p *Pipeline) Now() time.Time {
	return p.now()
}

// Admit 는 요청을 허용하거나 *RejectError 를 반환한다.
// readMessage 는 속도 제한을 통과한 뒤에만 호출된다.
func (p *Pipeline) Admit(identity string, readMessage func() (string, error)) (*Ticket, error) {
	now := p.now()

	if !p.state.Rate.Admit(identity, now) {
		return nil, rateLimited()
	}

	message, chars, err := p.ReadMessage(readMessage)
	if err != nil {
		return nil, err
	}

	day := p.limits.Day(now)
	decision := p.state.Quota.TryConsume(identity, day, chars)
	if !decision.Allowed {
		return nil, quotaExceeded(decision)
	}

	session := p.state.Sessions.GetOrCreate(identity, now)

	return &Ticket{
		Identity:   identity,
		Message:    message,
		Chars:      chars,
		Day:        day,
		Usage:      decision.Usage,
		Session:    session,
		AdmittedAt: now,
	}, nil
}

// ReadMessage 는 메시지를 읽고 존재 여부와 길이(코드 포인트 수)를 검사한다.
func (p *Pipeline) ReadMessage(readMessage func() (string, error)) (string, int, error) {
	if readMessage == nil {
		return "", 0, invalidInput(MessageRequired)
	}
	message, err := readMessage()
	// 공백만 있는 메시지는 빈 메시지가 아니므로 통과시키고 길이만큼 차감한다.
	if err != nil || message == "" {
		return "", 0, invalidInput(MessageRequired)
	}

	chars := utf8.RuneCountInString(message)
	if chars > p.limits.MaxMessageChars {
		return "", 0, invalidInput(MessageTooLong(p.limits.MaxMessageChars))
	}
	return message, chars, nil
}
