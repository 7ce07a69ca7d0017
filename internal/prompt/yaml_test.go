package prompt

import (
	"errors"
	"testing"
	"testing/fstest"
)

func TestLoadYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"sample.yml": {Data: []byte("description: demo\nsystem: |\n  hello\n  world\n")},
	}

	loaded, err := LoadYAML(fsys, "sample.yml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.Name != "sample" || loaded.Description != "demo" {
		t.Fatalf("unexpected prompt: %+v", loaded)
	}
	if loaded.System != "hello\nworld" {
		t.Fatalf("unexpected system: %q", loaded.System)
	}
}

func TestLoadYAMLInvalidSystem(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.yml":   {Data: []byte("system: \"hello {name}\"\n")},
		"empty.yml": {Data: []byte("description: nothing\n")},
	}
	if _, err := LoadYAML(fsys, "bad.yml"); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := LoadYAML(fsys, "empty.yml"); !errors.Is(err, ErrEmptySystem) {
		t.Fatalf("expected empty system error, got %v", err)
	}
}

func TestLoadYAMLDir(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/a.yml":  {Data: []byte("system: alpha\n")},
		"prompts/b.yaml": {Data: []byte("system: beta\n")},
		"prompts/c.txt":  {Data: []byte("ignored")},
	}

	prompts, err := LoadYAMLDir(fsys, "prompts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prompts) != 2 {
		t.Fatalf("expected 2 prompts, got %d", len(prompts))
	}
	if prompts["a"].System != "alpha" {
		t.Fatalf("unexpected prompt value")
	}
}

func TestLoadYAMLDirDuplicateName(t *testing.T) {
	fsys := fstest.MapFS{
		"prompts/a.yml":  {Data: []byte("system: alpha\n")},
		"prompts/a.yaml": {Data: []byte("system: beta\n")},
	}
	if _, err := LoadYAMLDir(fsys, "prompts"); err == nil {
		t.Fatalf("expected duplicate error")
	}
}

func TestValidateSystemStatic(t *testing.T) {
	if err := ValidateSystemStatic("sys", "Hello {name}"); err == nil {
		t.Fatalf("expected error")
	}
	if err := ValidateSystemStatic("sys", "Hello }"); err == nil {
		t.Fatalf("expected error")
	}
	if err := ValidateSystemStatic("sys", "Hello {{name}}!"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
