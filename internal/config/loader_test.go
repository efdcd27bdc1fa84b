package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chefbot.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("CHEFBOT_TEST_KEY", "sk-test")
	path := writeConfig(t, `
version: "1"
memory:
  max_tokens: 500
  store: memory.sqlite
modules:
  provider.openai:
    api_key: ${CHEFBOT_TEST_KEY}
    model: ${CHEFBOT_TEST_MODEL:-gpt-4o-mini}
  memory.sqlite: {}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Memory.MaxTokens != 500 || cfg.Memory.Store != "memory.sqlite" {
		t.Errorf("memory = %+v", cfg.Memory)
	}

	node := cfg.Modules["provider.openai"]
	var openai struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	}
	if err := node.Decode(&openai); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if openai.APIKey != "sk-test" || openai.Model != "gpt-4o-mini" {
		t.Errorf("openai = %+v", openai)
	}
	if got := Resolve(cfg); len(got) != 2 || got[0] != "memory.sqlite" || got[1] != "provider.openai" {
		t.Errorf("Resolve = %v", got)
	}
}

func TestLoad_UnresolvedVariable(t *testing.T) {
	path := writeConfig(t, `
version: "1"
modules:
  provider.openai:
    api_key: ${CHEFBOT_TEST_DEFINITELY_UNSET}
`)
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for unresolved variable")
	}
	if !strings.Contains(err.Error(), "CHEFBOT_TEST_DEFINITELY_UNSET") {
		t.Errorf("error should name the variable: %v", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, "version: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
