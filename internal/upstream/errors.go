package upstream

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey 는 공급자 API 키가 없을 때 반환된다.
	ErrMissingAPIKey = errors.New("missing upstream api key")
	// ErrEmptyResponse 는 응답에 본문 선택지가 없을 때 반환된다.
	ErrEmptyResponse = errors.New("empty upstream response")
)

// Error 는 업스트림 실패(UpstreamFailure)다. 스트림 도중 실패도 포함한다.
type Error struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

// Error 는 에러 메시지를 반환한다.
func (e *Error) Error() string {
	switch {
	case e.Status > 0 && e.Message != "":
		return fmt.Sprintf("upstream %s failed (status %d): %s", e.Provider, e.Status, e.Message)
	case e.Status > 0:
		return fmt.Sprintf("upstream %s failed (status %d)", e.Provider, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("upstream %s failed: %v", e.Provider, e.Err)
	default:
		return fmt.Sprintf("upstream %s failed: %s", e.Provider, e.Message)
	}
}

// Unwrap 은 원인 에러를 반환한다.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsFailure 는 err 가 업스트림 실패인지 확인한다.
func IsFailure(err error) bool {
	var upstreamErr *Error
	return errors.As(err, &upstreamErr)
}

func wrap(provider string, err error) error {
	if err == nil {
		return nil
	}
	var upstreamErr *Error
	if errors.As(err, &upstreamErr) {
		return err
	}
	return &Error{Provider: provider, Err: err}
}
