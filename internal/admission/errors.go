package admission

import (
	"errors"
	"fmt"
)

// Kind 는 거부 분류다.
type Kind string

const (
	// KindRateLimited 는 윈도우 초과 또는 일일 쿼터 초과다.
	KindRateLimited Kind = "RateLimited"
	// KindInvalidInput 은 메시지 누락 또는 길이 초과다.
	KindInvalidInput Kind = "InvalidInput"
)

// 거부 코드. 메트릭 라벨로도 사용한다.
const (
	CodeRateLimited   = "rate_limited"
	CodeInvalidInput  = "invalid_input"
	CodeDailyRequests = "daily_requests"
	CodeDailyTokens   = "daily_tokens"
)

// 거부 메시지다.
const (
	MessageRateLimited = "Rate limit exceeded. Please wait before making another request."
	MessageRequired    = "Message is required."
)

// ErrMissingMessage 는 본문에 메시지가 없을 때 readMessage 가 반환할 수 있다.
var ErrMissingMessage = errors.New("message missing")

// RejectError 는 허용 단계에서의 타입 있는 거부다.
type RejectError struct {
	Kind   Kind
	Code   string
	Reason string
	Usage  Usage
}

// Error 는 거부 사유를 반환한다.
func (e *RejectError) Error() string {
	return e.Reason
}

// AsReject 는 err 체인에서 RejectError 를 찾는다.
func AsReject(err error) (*RejectError, bool) {
	var rejectErr *RejectError
	if errors.As(err, &rejectErr) {
		return rejectErr, true
	}
	return nil, false
}

// MessageTooLong 은 길이 초과 메시지를 만든다.
func MessageTooLong(maxChars int) string {
	return fmt.Sprintf("Message too long. Maximum %d characters allowed.", maxChars)
}

func rateLimited() *RejectError {
	return &RejectError{Kind: KindRateLimited, Code: CodeRateLimited, Reason: MessageRateLimited}
}

func invalidInput(reason string) *RejectError {
	return &RejectError{Kind: KindInvalidInput, Code: CodeInvalidInput, Reason: reason}
}

func quotaExceeded(decision QuotaDecision) *RejectError {
	code := CodeDailyTokens
	if decision.Reason == ReasonDailyRequests {
		code = CodeDailyRequests
	}
	return &RejectError{Kind: KindRateLimited, Code: code, Reason: decision.Reason, Usage: decision.Usage}
}
