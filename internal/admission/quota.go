package admission

import "sync"

// 일일 쿼터 거부 사유다.
const (
	ReasonDailyRequests = "Daily request limit exceeded"
	ReasonDailyTokens   = "Daily token limit exceeded"
)

// Usage 는 하루 동안 누적된 요청 수와 메시지 길이 합계다.
type Usage struct {
	Requests int `json:"requests"`
	Tokens   int `json:"tokens"`
}

// QuotaDecision 은 TryConsume 결과다. 거부 시 Usage 는 변경되지 않은 현재 값이다.
type QuotaDecision struct {
	Allowed bool
	Reason  string
	Usage   Usage
}

// DayTotals 는 특정 날짜의 전체 집계다.
type DayTotals struct {
	Identities int `json:"identities"`
	Requests   int `json:"requests"`
	Tokens     int `json:"tokens"`
}

type quotaKey struct {
	identity string
	day      string
}

// DailyQuotaTracker 는 (identity, 날짜) 단위 요청 수/문자 수 상한을 관리한다.
type DailyQuotaTracker struct {
	mu          sync.Mutex
	maxRequests int
	maxTokens   int
	records     map[quotaKey]Usage
}

// NewDailyQuotaTracker 는 일일 쿼터 추적기를 생성한다.
func NewDailyQuotaTracker(maxRequests int, maxTokens int) *DailyQuotaTracker {
	return &DailyQuotaTracker{
		maxRequests: maxRequests,
		maxTokens:   maxTokens,
		records:     make(map[quotaKey]Usage),
	}
}

// TryConsume 은 (1, size) 만큼 차감을 시도한다.
// 요청 수 상한을 먼저 확인하고, 거부되면 카운터를 바꾸지 않는다.
func (t *DailyQuotaTracker) TryConsume(identity string, day string, size int) QuotaDecision {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := quotaKey{identity: identity, day: day}
	current := t.records[key]

	if current.Requests >= t.maxRequests {
		return QuotaDecision{Allowed: false, Reason: ReasonDailyRequests, Usage: current}
	}
	if current.Tokens+size > t.maxTokens {
		return QuotaDecision{Allowed: false, Reason: ReasonDailyTokens, Usage: current}
	}

	next := Usage{Requests: current.Requests + 1, Tokens: current.Tokens + size}
	t.records[key] = next
	return QuotaDecision{Allowed: true, Usage: next}
}

// Usage 는 현재 누적값을 반환한다.
func (t *DailyQuotaTracker) Usage(identity string, day string) Usage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.records[quotaKey{identity: identity, day: day}]
}

// Totals 는 해당 날짜의 전체 집계를 반환한다.
func (t *DailyQuotaTracker) Totals(day string) DayTotals {
	t.mu.Lock()
	defer t.mu.Unlock()

	var totals DayTotals
	for key, usage := range t.records {
		if key.day != day {
			continue
		}
		totals.Identities++
		totals.Requests += usage.Requests
		totals.Tokens += usage.Tokens
	}
	return totals
}

// RetainDay 는 day 이외 날짜의 기록을 모두 제거하고 제거 건수를 반환한다.
func (t *DailyQuotaTracker) RetainDay(day string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	for key := range t.records {
		if key.day != day {
			delete(t.records, key)
			removed++
		}
	}
	return removed
}

// Len 은 기록 수를 반환한다.
func (t *DailyQuotaTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.records)
}

// Reset 은 모든 기록을 지운다.
func (t *DailyQuotaTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = make(map[quotaKey]Usage)
}
