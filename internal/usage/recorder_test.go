package usage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/Adi4512/nextjsaichattool/internal/config"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[time.Time]Delta
	calls   int
	failN   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[time.Time]Delta)}
}

func (s *fakeStore) RecordUsage(_ context.Context, delta Delta, usageDate time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failN > 0 {
		s.failN--
		return errors.New("db down")
	}
	s.records[usageDate] = s.records[usageDate].Add(delta)
	return nil
}

func (s *fakeStore) GetRecentUsage(context.Context, int) ([]DailyUsage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	usages := make([]DailyUsage, 0, len(s.records))
	for date, delta := range s.records {
		usages = append(usages, DailyUsage{
			UsageDate:    date,
			RequestCount: delta.Requests,
			InputChars:   delta.InputChars,
			OutputChars:  delta.OutputChars,
		})
	}
	return usages, nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) Close() {}

func (s *fakeStore) total() Delta {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total Delta
	for _, delta := range s.records {
		total = total.Add(delta)
	}
	return total
}

func testConfig(enabled bool, batch bool) *config.Config {
	return &config.Config{
		Admission: config.AdmissionConfig{Timezone: "UTC"},
		Database: config.DatabaseConfig{
			UsageEnabled:                   enabled,
			UsageBatchEnabled:              batch,
			UsageBatchFlushIntervalSeconds: 3600,
			UsageBatchMaxPendingRequests:   100,
			UsageBatchMaxBackoffSeconds:    60,
		},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecorderDisabledIsNoop(t *testing.T) {
	store := newFakeStore()
	recorder := newRecorder(testConfig(false, false), store, discardLogger())

	recorder.RecordRequest(context.Background(), 10)
	recorder.RecordOutput(context.Background(), 20)
	recorder.Close()

	if store.calls != 0 {
		t.Fatalf("disabled recorder must not write")
	}
	if _, err := recorder.Recent(context.Background(), 7); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected disabled error, got %v", err)
	}

	var nilRecorder *Recorder
	nilRecorder.RecordRequest(context.Background(), 1)
	nilRecorder.Close()
}

func TestNewRecorderNilRepository(t *testing.T) {
	recorder := NewRecorder(testConfig(true, false), nil, discardLogger())
	if recorder.Enabled() {
		t.Fatalf("recorder without repository must be disabled")
	}
}

func TestRecorderDirectWrites(t *testing.T) {
	store := newFakeStore()
	recorder := newRecorder(testConfig(true, false), store, discardLogger())

	recorder.RecordRequest(context.Background(), 12)
	recorder.RecordOutput(context.Background(), 40)
	recorder.RecordOutput(context.Background(), 0)

	if store.calls != 2 {
		t.Fatalf("expected two writes, got %d", store.calls)
	}
	if total := store.total(); total != (Delta{Requests: 1, InputChars: 12, OutputChars: 40}) {
		t.Fatalf("unexpected total: %+v", total)
	}
}

func TestRecorderBatchFlushesOnClose(t *testing.T) {
	store := newFakeStore()
	recorder := newRecorder(testConfig(true, true), store, discardLogger())

	for i := 0; i < 3; i++ {
		recorder.RecordRequest(context.Background(), 5)
		recorder.RecordOutput(context.Background(), 7)
	}
	recorder.Close()

	if total := store.total(); total != (Delta{Requests: 3, InputChars: 15, OutputChars: 21}) {
		t.Fatalf("unexpected total: %+v", total)
	}
	if store.calls != 1 {
		t.Fatalf("expected one batched write, got %d", store.calls)
	}

	usages, err := recorder.Recent(context.Background(), 7)
	if err != nil || len(usages) != 1 || usages[0].TotalChars() != 36 {
		t.Fatalf("unexpected recent usage: %+v (%v)", usages, err)
	}
}

func TestBatcherRequeuesOnFailure(t *testing.T) {
	store := newFakeStore()
	store.failN = 1
	b := newBatcher(testConfig(true, true), store, discardLogger())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.add(Delta{Requests: 1, InputChars: 4})
	b.flush(false)
	if b.consecutiveFlushFailures != 1 || b.flushRequeuedTotal != 1 {
		t.Fatalf("expected requeue after failure")
	}

	b.flush(false)
	if store.calls != 1 {
		t.Fatalf("flush must be skipped during backoff")
	}

	now = now.Add(2 * time.Minute)
	b.flush(false)
	if store.total() != (Delta{Requests: 1, InputChars: 4}) {
		t.Fatalf("requeued delta must be written once, got %+v", store.total())
	}
	if b.consecutiveFlushFailures != 0 {
		t.Fatalf("failures must reset after success")
	}
}

func TestBatcherBucketsByDay(t *testing.T) {
	store := newFakeStore()
	b := newBatcher(testConfig(true, true), store, discardLogger())
	now := time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)
	b.now = func() time.Time { return now }

	b.add(Delta{Requests: 1})
	now = now.Add(2 * time.Minute)
	b.add(Delta{Requests: 1})
	b.flush(true)

	if len(store.records) != 2 {
		t.Fatalf("expected two day buckets, got %d", len(store.records))
	}
}

func TestBatcherBackoff(t *testing.T) {
	b := &batcher{flushInterval: time.Second, maxBackoff: 4 * time.Second}

	b.consecutiveFlushFailures = 1
	if backoff := b.computeBackoff(); backoff != time.Second {
		t.Fatalf("unexpected backoff: %v", backoff)
	}

	b.consecutiveFlushFailures = 2
	if backoff := b.computeBackoff(); backoff != 2*time.Second {
		t.Fatalf("unexpected backoff: %v", backoff)
	}

	b.consecutiveFlushFailures = 4
	if backoff := b.computeBackoff(); backoff != 4*time.Second {
		t.Fatalf("unexpected backoff cap: %v", backoff)
	}
}

func TestBatcherShouldLogFailure(t *testing.T) {
	b := &batcher{errorLogMaxInterval: time.Hour, now: time.Now}
	b.consecutiveFlushFailures = 1
	if !b.shouldLogFailure() {
		t.Fatalf("expected log on first failure")
	}

	b.consecutiveFlushFailures = 3
	b.lastErrorLoggedAt = time.Now()
	if b.shouldLogFailure() {
		t.Fatalf("did not expect log for non power-of-two")
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	if !isPowerOfTwo(1) || !isPowerOfTwo(2) || !isPowerOfTwo(4) {
		t.Fatalf("expected power of two")
	}
	if isPowerOfTwo(3) || isPowerOfTwo(0) {
		t.Fatalf("unexpected power of two")
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	got := dateOf(time.Date(2025, 3, 10, 20, 0, 0, 0, time.UTC), loc)
	if got.Day() != 11 || got.Hour() != 0 {
		t.Fatalf("unexpected date: %v", got)
	}
}
