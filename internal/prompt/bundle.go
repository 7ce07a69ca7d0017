package prompt

import (
	"fmt"
	"io/fs"
	"sort"
)

// Bundle: 한 도메인의 프롬프트 모음과 에러 메시지 라벨을 함께 관리합니다.
type Bundle struct {
	label   string
	prompts map[string]Prompt
}

// LoadBundle: fs 내 dir 디렉터리의 YAML 프롬프트들을 로드하여 Bundle로 반환합니다.
// required 에 나열된 이름이 하나라도 없으면 실패합니다.
func LoadBundle(fsys fs.FS, dir string, label string, required ...string) (*Bundle, error) {
	loaded, err := LoadYAMLDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("%s prompts: %w", label, err)
	}
	for _, name := range required {
		if _, ok := loaded[name]; !ok {
			return nil, fmt.Errorf("%s prompts: prompt not found: %s", label, name)
		}
	}
	return &Bundle{label: label, prompts: loaded}, nil
}

// Prompt: 이름으로 프롬프트를 조회합니다.
func (b *Bundle) Prompt(name string) (Prompt, error) {
	if b == nil || b.prompts == nil {
		return Prompt{}, fmt.Errorf("prompts not initialized")
	}
	found, ok := b.prompts[name]
	if !ok {
		return Prompt{}, fmt.Errorf("%s prompt not found: %s", b.label, name)
	}
	return found, nil
}

// System: 이름의 system 텍스트를 반환하고, 없으면 fallback 이름으로 다시 조회합니다.
func (b *Bundle) System(name string, fallback string) (string, error) {
	found, err := b.Prompt(name)
	if err == nil {
		return found.System, nil
	}
	if fallback == "" || fallback == name {
		return "", err
	}
	found, err = b.Prompt(fallback)
	if err != nil {
		return "", err
	}
	return found.System, nil
}

// Names: 로드된 프롬프트 이름을 정렬해 반환합니다.
func (b *Bundle) Names() []string {
	if b == nil {
		return nil
	}
	names := make([]string, 0, len(b.prompts))
	for name := range b.prompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
