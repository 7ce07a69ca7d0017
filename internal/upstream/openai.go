package upstream

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/Adi4512/nextjsaichattool/internal/config"
)

const streamDone = "[DONE]"

// OpenAIClient 는 OpenAI 호환 chat completions API(OpenRouter 등) 클라이언트다.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	referer    string
	title      string
	httpClient *http.Client
}

// NewOpenAIClient 는 설정으로 클라이언트를 생성한다.
// httpClient 가 nil 이면 otelhttp 계측 트랜스포트를 사용한다.
func NewOpenAIClient(cfg config.UpstreamConfig, httpClient *http.Client) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &OpenAIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		referer:    cfg.AppReferer,
		title:      cfg.AppTitle,
		httpClient: httpClient,
	}, nil
}

// Provider 는 공급자 이름을 반환한다.
func (c *OpenAIClient) Provider() string {
	return config.ProviderOpenRouter
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature *float64      `json:"temperature,omitempty"`
	Stream      bool          `json:"stream,omitempty"`
}

type apiError struct {
	Code    any    `json:"code"`
	Message string `json:"message"`
}

type chatResponse struct {
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// Stream 은 스트리밍 completion 을 시작한다.
func (c *OpenAIClient) Stream(ctx context.Context, req Request) (Stream, error) {
	resp, err := c.do(ctx, req, true)
	if err != nil {
		return nil, err
	}
	return &sseStream{
		provider: c.Provider(),
		reader:   bufio.NewReader(resp.Body),
		body:     resp.Body,
	}, nil
}

// Complete 는 비스트리밍 completion 을 수행한다.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	resp, err := c.do(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", wrap(c.Provider(), fmt.Errorf("decode response: %w", err))
	}
	if parsed.Error != nil {
		return "", &Error{Provider: c.Provider(), Message: parsed.Error.Message}
	}
	if len(parsed.Choices) == 0 {
		return "", wrap(c.Provider(), ErrEmptyResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) do(ctx context.Context, req Request, stream bool) (*http.Response, error) {
	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: RoleSystem, Content: req.SystemPrompt},
			{Role: RoleUser, Content: req.Message},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: &req.Temperature,
		Stream:      stream,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, wrap(c.Provider(), fmt.Errorf("marshal request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, wrap(c.Provider(), fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	}
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, wrap(c.Provider(), err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, statusError(c.Provider(), resp)
	}
	return resp, nil
}

func statusError(provider string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := strings.TrimSpace(string(raw))

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		message = parsed.Error.Message
	}
	return &Error{Provider: provider, Status: resp.StatusCode, Message: message}
}

// sseStream 은 응답 본문의 SSE 라인을 델타로 변환한다.
type sseStream struct {
	provider string
	reader   *bufio.Reader
	body     io.ReadCloser
	done     bool
	readErr  error
}

// Next 는 다음 텍스트 델타를 반환한다. 내용 없는 청크는 빈 문자열로 반환한다.
func (s *sseStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	for {
		if s.readErr != nil {
			return "", wrap(s.provider, s.readErr)
		}
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				// [DONE] 없이 본문이 끝나면 비정상 종료로 본다.
				err = io.ErrUnexpectedEOF
			}
			if line == "" {
				return "", wrap(s.provider, err)
			}
			// 개행 없이 끝난 마지막 줄은 먼저 처리하고 실패는 다음 호출에서 보고한다.
			s.readErr = err
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == streamDone {
			s.done = true
			return "", io.EOF
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", wrap(s.provider, fmt.Errorf("decode chunk: %w", err))
		}
		if chunk.Error != nil {
			return "", &Error{Provider: s.provider, Message: chunk.Error.Message}
		}

		var text strings.Builder
		for _, choice := range chunk.Choices {
			text.WriteString(choice.Delta.Content)
		}
		return text.String(), nil
	}
}

// Close 는 응답 본문을 닫는다.
func (s *sseStream) Close() error {
	return s.body.Close()
}
