package upstream

import (
	"fmt"
	"net/http"

	"github.com/Adi4512/nextjsaichattool/internal/config"
)

// NewClient 는 설정된 공급자에 맞는 클라이언트를 생성한다.
func NewClient(cfg *config.Config) (Client, error) {
	return newClient(cfg.Upstream, nil)
}

func newClient(cfg config.UpstreamConfig, httpClient *http.Client) (Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := NewGeminiClient(cfg, httpClient)
		if err != nil {
			return nil, err
		}
		return client, nil
	case config.ProviderOpenRouter, "":
		client, err := NewOpenAIClient(cfg, httpClient)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown upstream provider: %s", cfg.Provider)
	}
}
