// Package chat 은 요청 허용, 언어 판정, 업스트림 호출, 스트림 중계를 하나의 흐름으로 묶는다.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/Adi4512/nextjsaichattool/internal/admission"
	"github.com/Adi4512/nextjsaichattool/internal/config"
	"github.com/Adi4512/nextjsaichattool/internal/language"
	"github.com/Adi4512/nextjsaichattool/internal/metrics"
	"github.com/Adi4512/nextjsaichattool/internal/relay"
	"github.com/Adi4512/nextjsaichattool/internal/upstream"
	"github.com/Adi4512/nextjsaichattool/internal/usage"
)

// Service 는 두 대화 엔드포인트의 공통 처리기다.
type Service struct {
	cfg      config.UpstreamConfig
	gateChat bool
	pipeline *admission.Pipeline
	detector language.Classifier
	prompts  *Prompts
	client   upstream.Client
	relay    *relay.Relay
	metrics  *metrics.Store
	usage    *usage.Recorder
	logger   *slog.Logger
}

// NewService 는 대화 서비스를 생성한다.
func NewService(
	cfg *config.Config,
	pipeline *admission.Pipeline,
	detector language.Classifier,
	prompts *Prompts,
	client upstream.Client,
	metricsStore *metrics.Store,
	usageRecorder *usage.Recorder,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:      cfg.Upstream,
		gateChat: cfg.Admission.GateChat,
		pipeline: pipeline,
		detector: detector,
		prompts:  prompts,
		client:   client,
		relay:    relay.New(cfg.Upstream.StreamPacing()),
		metrics:  metricsStore,
		usage:    usageRecorder,
		logger:   logger,
	}
}

// Limits 는 적용 중인 허용 정책이다.
func (s *Service) Limits() admission.Limits {
	return s.pipeline.Limits()
}

// GateChat 은 비스트리밍 엔드포인트에도 허용 절차를 적용하는지 여부다.
func (s *Service) GateChat() bool {
	return s.gateChat
}

// Admit 는 속도 제한, 입력 검증, 일일 쿼터, 세션 발급을 수행한다.
func (s *Service) Admit(ctx context.Context, identity string, readMessage func() (string, error)) (*admission.Ticket, error) {
	ticket, err := s.pipeline.Admit(identity, readMessage)
	if err != nil {
		outcome := admission.CodeInvalidInput
		if rejectErr, ok := admission.AsReject(err); ok {
			outcome = rejectErr.Code
		}
		s.metrics.RecordAdmission(outcome)
		s.logger.InfoContext(ctx, "chat_admission_rejected", "identity", identity, "outcome", outcome)
		return nil, err
	}

	s.metrics.RecordAdmission(metrics.OutcomeAdmitted)
	s.usage.RecordRequest(ctx, ticket.Chars)
	return ticket, nil
}

// Validate 는 허용 절차 없이 메시지 존재 여부와 길이만 검사한다.
func (s *Service) Validate(readMessage func() (string, error)) (string, error) {
	message, _, err := s.pipeline.ReadMessage(readMessage)
	return message, err
}

// Reply 는 열린 업스트림 스트림이다. Relay 로 소비한다.
type Reply struct {
	Language language.Tag
	Model    string

	parent  context.Context
	ctx     context.Context
	cancel  context.CancelFunc
	stream  upstream.Stream
	started time.Time
}

// OpenStream 은 언어를 판정해 프롬프트를 고르고 스트리밍 호출을 시작한다.
// 응답 헤더를 쓰기 전에 호출되므로 여기서의 실패는 일반 500 으로 처리된다.
func (s *Service) OpenStream(ctx context.Context, ticket *admission.Ticket) (*Reply, error) {
	tag := s.detector.Detect(ticket.Message)
	system, err := s.prompts.StreamSystem(tag)
	if err != nil {
		return nil, fmt.Errorf("select prompt: %w", err)
	}

	model := s.cfg.ActiveStreamModel()
	started := time.Now()
	streamCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	stream, err := s.client.Stream(streamCtx, upstream.Request{
		Model:        model,
		SystemPrompt: system,
		Message:      ticket.Message,
		MaxTokens:    s.cfg.MaxTokens,
		Temperature:  s.cfg.Temperature,
	})
	if err != nil {
		cancel()
		s.metrics.RecordStream(metrics.StreamUpstreamFailed, 0, 0, time.Since(started))
		return nil, err
	}

	s.logger.InfoContext(ctx, "chat_stream_admitted",
		"identity", ticket.Identity,
		"user_id", ticket.Session.UserID,
		"language", string(tag),
		"chars", ticket.Chars,
		"provider", s.client.Provider(),
		"model", model,
	)

	return &Reply{
		Language: tag,
		Model:    model,
		parent:   ctx,
		ctx:      streamCtx,
		cancel:   cancel,
		stream:   stream,
		started:  started,
	}, nil
}

// Relay 는 열린 스트림을 sink 로 중계하고 스트림을 닫는다.
// 반환 오류가 nil 이 아니면 종료 표식이 전송되지 않은 것이다.
func (s *Service) Relay(reply *Reply, sink relay.Sink) (relay.Result, error) {
	defer func() {
		_ = reply.stream.Close()
		reply.cancel()
	}()

	result, err := s.relay.Run(reply.ctx, reply.stream, sink)
	outcome := classify(reply.parent, err)
	s.metrics.RecordStream(outcome, result.Events, result.Chars, time.Since(reply.started))
	s.usage.RecordOutput(reply.parent, result.Chars)

	switch outcome {
	case metrics.StreamCompleted:
		s.logger.DebugContext(reply.parent, "chat_stream_completed", "events", result.Events, "chars", result.Chars)
	case metrics.StreamClientGone:
		s.logger.InfoContext(reply.parent, "chat_stream_client_gone", "events", result.Events, "err", err)
	default:
		s.logger.WarnContext(reply.parent, "chat_stream_upstream_failed", "events", result.Events, "err", err)
	}
	return result, err
}

// Complete 는 비스트리밍 응답을 생성한다.
func (s *Service) Complete(ctx context.Context, message string) (string, error) {
	system, err := s.prompts.ChatSystem()
	if err != nil {
		return "", fmt.Errorf("select prompt: %w", err)
	}

	started := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout())
	defer cancel()

	text, err := s.client.Complete(callCtx, upstream.Request{
		Model:        s.cfg.ActiveChatModel(),
		SystemPrompt: system,
		Message:      message,
		Temperature:  s.cfg.Temperature,
	})
	s.metrics.RecordChat(err == nil, time.Since(started))
	if err != nil {
		s.logger.WarnContext(ctx, "chat_completion_failed", "err", err)
		return "", err
	}
	s.usage.RecordOutput(ctx, utf8.RuneCountInString(text))
	return text, nil
}

// classify 는 중계 결과를 메트릭 라벨로 분류한다.
// 요청 컨텍스트 종료나 클라이언트 쓰기 실패는 client_gone 이다.
func classify(parent context.Context, err error) string {
	switch {
	case err == nil:
		return metrics.StreamCompleted
	case errors.Is(err, relay.ErrSinkWrite), parent.Err() != nil:
		return metrics.StreamClientGone
	default:
		return metrics.StreamUpstreamFailed
	}
}
