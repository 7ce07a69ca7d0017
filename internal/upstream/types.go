// Package upstream 은 외부 completion 서비스 호출을 담당한다.
package upstream

import (
	"context"
	"io"
)

// 메시지 역할이다.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Request 는 한 번의 completion 호출 입력이다.
type Request struct {
	Model        string
	SystemPrompt string
	Message      string
	MaxTokens    int
	Temperature  float64
}

// Stream 은 단일 패스 델타 시퀀스다.
// Next 는 정상 종료 시 io.EOF, 실패 시 *Error 를 반환한다.
type Stream interface {
	Next() (string, error)
	io.Closer
}

// Client 는 completion 서비스 추상화다.
type Client interface {
	Stream(ctx context.Context, req Request) (Stream, error)
	Complete(ctx context.Context, req Request) (string, error)
	Provider() string
}
