package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"net/http"
	"strings"
	"sync"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/genai"

	"github.com/Adi4512/nextjsaichattool/internal/config"
)

// GeminiClient 는 Google Gemini(genai) 기반 클라이언트다.
type GeminiClient struct {
	cfg        config.UpstreamConfig
	httpClient *http.Client

	mu     sync.Mutex
	client *genai.Client
}

// NewGeminiClient 는 Gemini 클라이언트를 생성한다. genai 클라이언트는 첫 호출 시 만든다.
func NewGeminiClient(cfg config.UpstreamConfig, httpClient *http.Client) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &GeminiClient{cfg: cfg, httpClient: httpClient}, nil
}

// Provider 는 공급자 이름을 반환한다.
func (c *GeminiClient) Provider() string {
	return config.ProviderGemini
}

// Stream 은 GenerateContentStream 을 pull 방식 스트림으로 감싼다.
// 첫 응답을 미리 당겨 와서 호출 거절은 스트림을 열기 전에 에러로 반환한다.
func (c *GeminiClient) Stream(ctx context.Context, req Request) (Stream, error) {
	client, err := c.genaiClient(ctx)
	if err != nil {
		return nil, err
	}

	seq := client.Models.GenerateContentStream(ctx, c.model(req), buildContents(req), c.buildConfig(req))
	next, stop := iter.Pull2(seq)
	stream, err := openGeminiStream(c.Provider(), next, stop)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

func openGeminiStream(
	provider string,
	next func() (*genai.GenerateContentResponse, error, bool),
	stop func(),
) (*geminiStream, error) {
	stream := &geminiStream{provider: provider, next: next, stop: stop}
	first, err, ok := next()
	if !ok || errors.Is(err, io.EOF) {
		stream.done = true
		return stream, nil
	}
	if err != nil {
		stop()
		return nil, wrap(provider, fmt.Errorf("open stream: %w", err))
	}
	stream.pending = first
	stream.primed = true
	return stream, nil
}

// Complete 는 단일 응답을 생성한다.
func (c *GeminiClient) Complete(ctx context.Context, req Request) (string, error) {
	client, err := c.genaiClient(ctx)
	if err != nil {
		return "", err
	}

	response, err := client.Models.GenerateContent(ctx, c.model(req), buildContents(req), c.buildConfig(req))
	if err != nil {
		return "", wrap(c.Provider(), fmt.Errorf("generate content: %w", err))
	}
	text := extractText(response)
	if text == "" {
		return "", wrap(c.Provider(), ErrEmptyResponse)
	}
	return text, nil
}

func (c *GeminiClient) genaiClient(ctx context.Context) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client != nil {
		return c.client, nil
	}

	client, err := genai.NewClient(context.WithoutCancel(ctx), &genai.ClientConfig{
		APIKey:     c.cfg.GeminiAPIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: c.httpClient,
		HTTPOptions: genai.HTTPOptions{
			Timeout: genai.Ptr(c.cfg.Timeout()),
		},
	})
	if err != nil {
		return nil, wrap(c.Provider(), fmt.Errorf("create genai client: %w", err))
	}
	c.client = client
	return client, nil
}

func (c *GeminiClient) model(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.cfg.GeminiModel
}

func (c *GeminiClient) buildConfig(req Request) *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(req.Temperature)),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.SystemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}
	return cfg
}

func buildContents(req Request) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(req.Message, genai.RoleUser)}
}

// extractText 는 첫 후보의 thought 가 아닌 텍스트 파트를 이어 붙인다.
func extractText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 {
		return ""
	}
	content := response.Candidates[0].Content
	if content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		text.WriteString(part.Text)
	}
	return text.String()
}

type geminiStream struct {
	provider string
	next     func() (*genai.GenerateContentResponse, error, bool)
	stop     func()

	pending *genai.GenerateContentResponse
	primed  bool
	done    bool
}

// Next 는 다음 응답 조각의 텍스트를 반환한다.
func (s *geminiStream) Next() (string, error) {
	if s.primed {
		response := s.pending
		s.pending, s.primed = nil, false
		return extractText(response), nil
	}
	if s.done {
		return "", io.EOF
	}
	response, err, ok := s.next()
	if !ok {
		return "", io.EOF
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", wrap(s.provider, err)
	}
	return extractText(response), nil
}

// Close 는 내부 이터레이터를 정지한다.
func (s *geminiStream) Close() error {
	s.stop()
	return nil
}
