package chat

import (
	"embed"
	"fmt"

	"github.com/Adi4512/nextjsaichattool/internal/language"
	"github.com/Adi4512/nextjsaichattool/internal/prompt"
)

//go:embed prompts/*.yml
var promptsFS embed.FS

const (
	streamPromptPrefix = "stream_"
	chatPromptName     = "chat"
)

// Prompts 는 언어별 스트리밍 페르소나와 비스트리밍 페르소나 모음이다.
type Prompts struct {
	bundle *prompt.Bundle
}

// NewPrompts 는 내장 프롬프트를 로드한다.
func NewPrompts() (*Prompts, error) {
	required := []string{chatPromptName}
	for _, tag := range language.Tags() {
		required = append(required, streamPromptPrefix+string(tag))
	}
	bundle, err := prompt.LoadBundle(promptsFS, "prompts", "chat", required...)
	if err != nil {
		return nil, fmt.Errorf("load chat prompts: %w", err)
	}
	return &Prompts{bundle: bundle}, nil
}

// StreamSystem 은 언어 태그에 맞는 스트리밍 시스템 프롬프트를 반환한다.
// 알 수 없는 태그는 hindi 프롬프트를 사용한다.
func (p *Prompts) StreamSystem(tag language.Tag) (string, error) {
	return p.bundle.System(streamPromptPrefix+string(tag), streamPromptPrefix+string(language.Hindi))
}

// ChatSystem 은 비스트리밍 시스템 프롬프트를 반환한다.
func (p *Prompts) ChatSystem() (string, error) {
	return p.bundle.System(chatPromptName, "")
}
