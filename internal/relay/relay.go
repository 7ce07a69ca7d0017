// Package relay 는 업스트림 델타 시퀀스를 SSE 이벤트 스트림으로 중계한다.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
)

// DoneSentinel 은 정상 완료 시 마지막으로 한 번 보내는 종료 표식이다.
const DoneSentinel = "[DONE]"

// DefaultPacing 은 첫 이벤트 이후 각 이벤트 뒤의 기본 지연이다.
const DefaultPacing = 10 * time.Millisecond

// Event 는 클라이언트로 보내는 한 개의 콘텐츠 이벤트다.
type Event struct {
	Content string `json:"content"`
	First   bool   `json:"first,omitempty"`
}

// Source 는 단일 패스 델타 시퀀스다. 끝나면 io.EOF 를 반환한다.
type Source interface {
	Next() (string, error)
}

// Sink 는 이벤트를 기록하고 즉시 전송하는 출력 측이다.
type Sink interface {
	io.Writer
	Flush()
}

// Result 는 중계 결과 집계다.
type Result struct {
	Events int
	Chars  int
}

// ErrSinkWrite 는 클라이언트 쪽 쓰기가 실패했음을 나타낸다.
var ErrSinkWrite = errors.New("relay sink write failed")

// Relay 는 델타를 순서대로 이벤트로 변환해 전송한다.
type Relay struct {
	pacing time.Duration
}

// New 는 Relay 를 생성한다. pacing 이 음수면 0 으로 본다.
func New(pacing time.Duration) *Relay {
	if pacing < 0 {
		pacing = 0
	}
	return &Relay{pacing: pacing}
}

type delta struct {
	text string
	err  error
}

// Run 은 src 를 모두 소비하고 정상 종료 시 [DONE] 을 보낸다.
// 업스트림 실패나 ctx 종료 시에는 종료 표식 없이 오류를 반환한다.
// 생산자 goroutine 은 이전 이벤트의 전송이 끝난 뒤에만 다음 델타를 읽는다.
// src 는 ctx 와 같은 수명으로 열려 있어야 ctx 종료 시 Next 가 풀린다.
func (r *Relay) Run(ctx context.Context, src Source, sink Sink) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	deltas := make(chan delta)
	ack := make(chan struct{})
	pumpDone := make(chan struct{})

	go func() {
		defer close(pumpDone)
		defer close(deltas)
		pump(ctx, src, deltas, ack)
	}()
	defer func() {
		cancel()
		<-pumpDone
	}()

	var result Result
	for {
		var d delta
		var ok bool
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("relay canceled: %w", ctx.Err())
		case d, ok = <-deltas:
		}
		if !ok {
			return result, fmt.Errorf("relay canceled: %w", ctx.Err())
		}

		if d.err != nil {
			if errors.Is(d.err, io.EOF) {
				if err := writeFrame(sink, []byte(DoneSentinel)); err != nil {
					return result, err
				}
				return result, nil
			}
			return result, d.err
		}

		if d.text != "" {
			event := Event{Content: d.text, First: result.Events == 0}
			payload, err := json.Marshal(event)
			if err != nil {
				return result, fmt.Errorf("marshal event: %w", err)
			}
			if err := writeFrame(sink, payload); err != nil {
				return result, err
			}
			result.Events++
			result.Chars += utf8.RuneCountInString(d.text)

			if !event.First && r.pacing > 0 {
				if err := sleep(ctx, r.pacing); err != nil {
					return result, fmt.Errorf("relay canceled: %w", err)
				}
			}
		}

		select {
		case ack <- struct{}{}:
		case <-ctx.Done():
			return result, fmt.Errorf("relay canceled: %w", ctx.Err())
		}
	}
}

// pump 는 델타를 하나씩 읽어 보내고 소비자의 ack 를 기다린다.
// io.EOF 또는 오류를 보낸 뒤에는 종료한다.
func pump(ctx context.Context, src Source, deltas chan<- delta, ack <-chan struct{}) {
	for {
		text, err := src.Next()
		select {
		case deltas <- delta{text: text, err: err}:
		case <-ctx.Done():
			return
		}
		if err != nil {
			return
		}
		select {
		case <-ack:
		case <-ctx.Done():
			return
		}
	}
}

func writeFrame(sink Sink, payload []byte) error {
	frame := make([]byte, 0, len(payload)+8)
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')
	if _, err := sink.Write(frame); err != nil {
		return fmt.Errorf("%w: %w", ErrSinkWrite, err)
	}
	sink.Flush()
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
