package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chat"

// 허용 결과 라벨이다.
const (
	OutcomeAdmitted = "admitted"
)

// 스트림 결과 라벨이다.
const (
	StreamCompleted      = "completed"
	StreamUpstreamFailed = "upstream_failed"
	StreamClientGone     = "client_gone"
)

// Store 는 허용 판정과 중계 통계를 저장한다.
// 관리자 보고용 원자 카운터와 Prometheus 수집기를 함께 갱신한다.
type Store struct {
	admitted      int64
	rejected      int64
	streams       int64
	streamErrors  int64
	chatCalls     int64
	chatErrors    int64
	relayedEvents int64
	relayedChars  int64
	totalDuration int64

	registry         *prometheus.Registry
	admissionTotal   *prometheus.CounterVec
	streamTotal      *prometheus.CounterVec
	chatTotal        *prometheus.CounterVec
	eventsTotal      prometheus.Counter
	charsTotal       prometheus.Counter
	upstreamDuration *prometheus.HistogramVec
}

// NewStore 는 전용 레지스트리를 가진 통계 저장소를 생성한다.
func NewStore() *Store {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Store{
		registry: registry,
		admissionTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "admission_total",
				Help:      "Admission decisions by outcome.",
			},
			[]string{"outcome"},
		),
		streamTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_total",
				Help:      "Relayed streams by result.",
			},
			[]string{"result"},
		),
		chatTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "completion_total",
				Help:      "Non-streaming completions by result.",
			},
			[]string{"result"},
		),
		eventsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relayed_events_total",
			Help:      "Content events written to clients.",
		}),
		charsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relayed_chars_total",
			Help:      "Code points written to clients.",
		}),
		upstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "upstream_duration_seconds",
				Help:      "Upstream call duration.",
				Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"mode"},
		),
	}
}

// RecordAdmission 은 허용 판정 결과를 기록한다. outcome 은 admitted 또는 거부 코드다.
func (s *Store) RecordAdmission(outcome string) {
	if outcome == OutcomeAdmitted {
		atomic.AddInt64(&s.admitted, 1)
	} else {
		atomic.AddInt64(&s.rejected, 1)
	}
	s.admissionTotal.WithLabelValues(outcome).Inc()
}

// RecordStream 은 스트림 중계 결과를 기록한다.
func (s *Store) RecordStream(result string, events int, chars int, duration time.Duration) {
	atomic.AddInt64(&s.streams, 1)
	if result != StreamCompleted {
		atomic.AddInt64(&s.streamErrors, 1)
	}
	atomic.AddInt64(&s.relayedEvents, int64(events))
	atomic.AddInt64(&s.relayedChars, int64(chars))
	atomic.AddInt64(&s.totalDuration, duration.Milliseconds())

	s.streamTotal.WithLabelValues(result).Inc()
	s.eventsTotal.Add(float64(events))
	s.charsTotal.Add(float64(chars))
	s.upstreamDuration.WithLabelValues("stream").Observe(duration.Seconds())
}

// RecordChat 은 비스트리밍 호출 결과를 기록한다.
func (s *Store) RecordChat(success bool, duration time.Duration) {
	atomic.AddInt64(&s.chatCalls, 1)
	result := "success"
	if !success {
		atomic.AddInt64(&s.chatErrors, 1)
		result = "error"
	}
	atomic.AddInt64(&s.totalDuration, duration.Milliseconds())

	s.chatTotal.WithLabelValues(result).Inc()
	s.upstreamDuration.WithLabelValues("complete").Observe(duration.Seconds())
}

// Handler 는 /metrics 응답 핸들러다.
func (s *Store) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}

// Registry 는 내부 레지스트리를 반환한다.
func (s *Store) Registry() *prometheus.Registry {
	return s.registry
}

// Snapshot 는 통계 스냅샷을 반환한다.
func (s *Store) Snapshot() map[string]float64 {
	streams := atomic.LoadInt64(&s.streams)
	chatCalls := atomic.LoadInt64(&s.chatCalls)
	durationMs := atomic.LoadInt64(&s.totalDuration)

	avgDuration := 0.0
	if calls := streams + chatCalls; calls > 0 {
		avgDuration = float64(durationMs) / float64(calls)
	}

	return map[string]float64{
		"admitted_total":       float64(atomic.LoadInt64(&s.admitted)),
		"rejected_total":       float64(atomic.LoadInt64(&s.rejected)),
		"streams_total":        float64(streams),
		"stream_errors_total":  float64(atomic.LoadInt64(&s.streamErrors)),
		"chat_calls_total":     float64(chatCalls),
		"chat_errors_total":    float64(atomic.LoadInt64(&s.chatErrors)),
		"relayed_events_total": float64(atomic.LoadInt64(&s.relayedEvents)),
		"relayed_chars_total":  float64(atomic.LoadInt64(&s.relayedChars)),
		"total_duration_ms":    float64(durationMs),
		"avg_duration_ms":      avgDuration,
	}
}
