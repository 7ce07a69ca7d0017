package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptySystem 는 system 필드가 비어 있을 때 반환된다.
var ErrEmptySystem = errors.New("system prompt is empty")

// Prompt 는 YAML 파일 하나에 정의된 프롬프트다.
type Prompt struct {
	Name        string `yaml:"-"`
	Description string `yaml:"description"`
	System      string `yaml:"system"`
}

// LoadYAML 은 프롬프트 YAML 파일을 로드하고 system 필드를 검증한다.
func LoadYAML(fsys fs.FS, filePath string) (Prompt, error) {
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return Prompt{}, fmt.Errorf("read prompt file: %w", err)
	}

	var loaded Prompt
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return Prompt{}, fmt.Errorf("parse prompt yaml: %w", err)
	}
	loaded.Name = strings.TrimSuffix(path.Base(filePath), path.Ext(filePath))
	loaded.System = strings.TrimSpace(loaded.System)

	if loaded.System == "" {
		return Prompt{}, fmt.Errorf("%s: %w", filePath, ErrEmptySystem)
	}
	if err := ValidateSystemStatic(filePath, loaded.System); err != nil {
		return Prompt{}, err
	}
	return loaded, nil
}

// LoadYAMLDir 는 디렉터리의 *.yml, *.yaml 프롬프트를 이름(확장자 제외)별로 로드한다.
func LoadYAMLDir(fsys fs.FS, dir string) (map[string]Prompt, error) {
	paths, err := fs.Glob(fsys, path.Join(dir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("glob prompt dir: %w", err)
	}
	yamlPaths, err := fs.Glob(fsys, path.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob prompt dir: %w", err)
	}
	paths = append(paths, yamlPaths...)

	prompts := make(map[string]Prompt, len(paths))
	for _, filePath := range paths {
		loaded, err := LoadYAML(fsys, filePath)
		if err != nil {
			return nil, err
		}
		if _, exists := prompts[loaded.Name]; exists {
			return nil, fmt.Errorf("duplicate prompt name: %s", loaded.Name)
		}
		prompts[loaded.Name] = loaded
	}
	return prompts, nil
}

// ValidateSystemStatic: 시스템 프롬프트는 그대로 전송되므로 {name} 형태의 변수를 허용하지 않습니다.
func ValidateSystemStatic(name string, system string) error {
	for i := 0; i < len(system); {
		switch system[i] {
		case '{':
			if i+1 < len(system) && system[i+1] == '{' {
				i += 2
				continue
			}
			end := strings.IndexByte(system[i+1:], '}')
			if end < 0 {
				return fmt.Errorf("%s: invalid system prompt template syntax", name)
			}
			key := system[i+1 : i+1+end]
			return fmt.Errorf("%s: system prompt must not contain template variables %q", name, key)
		case '}':
			if i+1 < len(system) && system[i+1] == '}' {
				i += 2
				continue
			}
			return fmt.Errorf("%s: invalid system prompt template syntax", name)
		default:
			i++
		}
	}
	return nil
}
