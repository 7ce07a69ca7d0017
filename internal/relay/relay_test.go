package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

type sliceSource struct {
	deltas []string
	err    error
	index  int
}

func (s *sliceSource) Next() (string, error) {
	if s.index >= len(s.deltas) {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	d := s.deltas[s.index]
	s.index++
	return d, nil
}

type recordingSink struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	flushes int
	failAt  int
	writes  int
}

func (s *recordingSink) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes++
	if s.failAt > 0 && s.writes >= s.failAt {
		return 0, errors.New("broken pipe")
	}
	return s.buf.Write(p)
}

func (s *recordingSink) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
}

func (s *recordingSink) frames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw := strings.TrimSuffix(s.buf.String(), "\n\n")
	if raw == "" {
		return nil
	}
	return strings.Split(raw, "\n\n")
}

func decodeFrames(t *testing.T, frames []string) ([]Event, bool) {
	t.Helper()
	var events []Event
	done := false
	for i, frame := range frames {
		payload, ok := strings.CutPrefix(frame, "data: ")
		if !ok {
			t.Fatalf("frame %d missing data prefix: %q", i, frame)
		}
		if payload == DoneSentinel {
			if i != len(frames)-1 {
				t.Fatalf("sentinel must be last")
			}
			done = true
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			t.Fatalf("decode frame %d: %v", i, err)
		}
		events = append(events, event)
	}
	return events, done
}

func TestRunRelaysInOrderWithSentinel(t *testing.T) {
	src := &sliceSource{deltas: []string{"Hel", "", "lo ", "wor", "ld"}}
	sink := &recordingSink{}

	result, err := New(0).Run(context.Background(), src, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Events != 4 || result.Chars != 11 {
		t.Fatalf("unexpected result: %+v", result)
	}

	frames := sink.frames()
	if frames[0] != `data: {"content":"Hel","first":true}` {
		t.Fatalf("unexpected first frame: %q", frames[0])
	}
	if frames[1] != `data: {"content":"lo "}` {
		t.Fatalf("unexpected second frame: %q", frames[1])
	}

	events, done := decodeFrames(t, frames)
	if !done {
		t.Fatalf("expected terminal sentinel")
	}
	var text strings.Builder
	for i, event := range events {
		if event.First != (i == 0) {
			t.Fatalf("first flag wrong at %d", i)
		}
		text.WriteString(event.Content)
	}
	if text.String() != "Hello world" {
		t.Fatalf("unexpected text: %q", text.String())
	}
	if sink.flushes != len(frames) {
		t.Fatalf("expected flush per frame, got %d/%d", sink.flushes, len(frames))
	}
}

func TestRunEmptyStreamSendsOnlySentinel(t *testing.T) {
	sink := &recordingSink{}
	result, err := New(DefaultPacing).Run(context.Background(), &sliceSource{}, sink)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Events != 0 {
		t.Fatalf("unexpected events: %d", result.Events)
	}
	if got := sink.buf.String(); got != "data: [DONE]\n\n" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestRunUpstreamFailureHasNoSentinel(t *testing.T) {
	upstreamErr := errors.New("upstream reset")
	src := &sliceSource{deltas: []string{"one", "two"}, err: upstreamErr}
	sink := &recordingSink{}

	result, err := New(time.Millisecond).Run(context.Background(), src, sink)
	if !errors.Is(err, upstreamErr) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if result.Events != 2 {
		t.Fatalf("expected two events, got %d", result.Events)
	}
	events, done := decodeFrames(t, sink.frames())
	if done {
		t.Fatalf("sentinel must not be sent after failure")
	}
	if len(events) != 2 {
		t.Fatalf("expected two events, got %d", len(events))
	}
}

func TestRunSinkFailure(t *testing.T) {
	src := &sliceSource{deltas: []string{"a", "b", "c"}}
	sink := &recordingSink{failAt: 2}

	_, err := New(0).Run(context.Background(), src, sink)
	if !errors.Is(err, ErrSinkWrite) {
		t.Fatalf("expected sink write error, got %v", err)
	}
	if src.index > 2 {
		t.Fatalf("source consumed past failed write: %d", src.index)
	}
}

type blockingSource struct {
	ctx context.Context
	sent bool
}

func (s *blockingSource) Next() (string, error) {
	if !s.sent {
		s.sent = true
		return "first", nil
	}
	<-s.ctx.Done()
	return "", s.ctx.Err()
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &blockingSource{ctx: ctx}
	sink := &recordingSink{}

	done := make(chan error, 1)
	go func() {
		_, err := New(0).Run(ctx, src, sink)
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for len(sink.frames()) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("first event not relayed")
		}
		time.Sleep(time.Millisecond)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected cancellation, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("relay did not stop after cancel")
	}
	if _, done := decodeFrames(t, sink.frames()); done {
		t.Fatalf("sentinel must not be sent on cancel")
	}
}

type countingSource struct {
	mu      sync.Mutex
	calls   int
	written func() int
	ahead   int
}

func (s *countingSource) Next() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if diff := s.calls - s.written(); diff > s.ahead {
		s.ahead = diff
	}
	s.calls++
	if s.calls > 5 {
		return "", io.EOF
	}
	return "x", nil
}

func TestRunPullsOneDeltaAtATime(t *testing.T) {
	sink := &recordingSink{}
	src := &countingSource{written: func() int {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return sink.writes
	}}

	if _, err := New(0).Run(context.Background(), src, sink); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.ahead > 0 {
		t.Fatalf("source was read %d deltas ahead of the sink", src.ahead)
	}
}
