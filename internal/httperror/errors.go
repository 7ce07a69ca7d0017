package httperror

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/upstream"
)

// ErrorCode 는 API 오류 코드다. 로그와 메트릭에만 쓰이고 응답 본문에는 노출하지 않는다.
type ErrorCode string

const (
	// ErrorCodeInternal 는 내부 오류 코드다.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrorCodeValidation 는 검증 오류 코드다.
	ErrorCodeValidation ErrorCode = "VALIDATION_ERROR"
	// ErrorCodeUnauthorized 는 인증 오류 코드다.
	ErrorCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrorCodeRateLimited 는 윈도우/일일 쿼터 초과 코드다.
	ErrorCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrorCodeInvalidInput 는 입력 오류 코드다.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrorCodeUpstream 는 업스트림 실패 코드다.
	ErrorCodeUpstream ErrorCode = "UPSTREAM_FAILURE"
	// ErrorCodeNotFound 는 경로 없음 코드다.
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"
)

// 응답 메시지다.
const (
	MessageInternal     = "Internal Server Error"
	MessageUnauthorized = "Unauthorized"
	MessageChatFailed   = "Failed to fetch Data from AI"
)

// ErrorResponse 는 API 오류 응답 본문이다.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error 는 내부 표준 오류 타입이다.
type Error struct {
	Code    ErrorCode
	Status  int
	Type    string
	Message string
}

// Error 는 오류 메시지를 반환한다.
func (e *Error) Error() string {
	return e.Message
}

// Response 는 오류를 HTTP 상태와 응답 본문으로 변환한다.
func Response(err error) (int, ErrorResponse) {
	apiErr := FromError(err)
	if apiErr == nil {
		apiErr = NewInternalError()
	}
	return apiErr.Status, ErrorResponse{Error: apiErr.Message}
}

// FromError 는 오류를 내부 오류 타입으로 변환한다.
// 알 수 없는 오류는 상세 없이 InternalError 로 변환한다.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	if rejectErr, ok := admission.AsReject(err); ok {
		switch rejectErr.Kind {
		case admission.KindInvalidInput:
			return NewInvalidInput(rejectErr.Reason)
		default:
			return NewRateLimited(rejectErr.Reason)
		}
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		return NewValidationError()
	}

	if upstream.IsFailure(err) {
		return &Error{
			Code:    ErrorCodeUpstream,
			Status:  http.StatusInternalServerError,
			Type:    "UpstreamFailure",
			Message: MessageInternal,
		}
	}

	return NewInternalError()
}

// NewInternalError 는 내부 오류를 생성한다.
func NewInternalError() *Error {
	return &Error{
		Code:    ErrorCodeInternal,
		Status:  http.StatusInternalServerError,
		Type:    "InternalError",
		Message: MessageInternal,
	}
}

// NewValidationError 는 요청 본문 검증 오류를 생성한다.
func NewValidationError() *Error {
	return &Error{
		Code:    ErrorCodeValidation,
		Status:  http.StatusBadRequest,
		Type:    "InvalidInput",
		Message: admission.MessageRequired,
	}
}

// NewInvalidInput 는 입력 오류를 생성한다.
func NewInvalidInput(message string) *Error {
	return &Error{
		Code:    ErrorCodeInvalidInput,
		Status:  http.StatusBadRequest,
		Type:    "InvalidInput",
		Message: message,
	}
}

// NewRateLimited 는 요청 제한 오류를 생성한다.
func NewRateLimited(message string) *Error {
	return &Error{
		Code:    ErrorCodeRateLimited,
		Status:  http.StatusTooManyRequests,
		Type:    "RateLimited",
		Message: message,
	}
}

// NewUnauthorized 는 인증 오류를 생성한다.
func NewUnauthorized() *Error {
	return &Error{
		Code:    ErrorCodeUnauthorized,
		Status:  http.StatusUnauthorized,
		Type:    "Unauthorized",
		Message: MessageUnauthorized,
	}
}

// NewChatFailed 는 비스트리밍 호출 실패 오류를 생성한다.
func NewChatFailed() *Error {
	return &Error{
		Code:    ErrorCodeUpstream,
		Status:  http.StatusInternalServerError,
		Type:    "UpstreamFailure",
		Message: MessageChatFailed,
	}
}

// NewNotFound 는 경로 없음 오류를 생성한다.
func NewNotFound() *Error {
	return &Error{
		Code:    ErrorCodeNotFound,
		Status:  http.StatusNotFound,
		Type:    "NotFound",
		Message: "Not Found",
	}
}
