package config

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/flemzord/chefbot/internal/security"
)

func TestMarshalRedacted(t *testing.T) {
	t.Parallel()

	var modules map[string]yaml.Node
	if err := yaml.Unmarshal([]byte(`
provider.openai:
  api_key: sk-live-value
  model: gpt-4o
gateway.http:
  auth:
    bearer_token: gateway-token
memory.redis:
  addr: 127.0.0.1:6379
  key_prefix: "chefbot:"
  password: redis-pass
`), &modules); err != nil {
		t.Fatalf("yaml: %v", err)
	}
	cfg := &Config{Version: "1", Modules: modules}
	ApplyDefaults(cfg)

	out, err := MarshalRedacted(cfg, security.NewRedactor())
	if err != nil {
		t.Fatalf("MarshalRedacted: %v", err)
	}
	text := string(out)

	for _, secret := range []string{"sk-live-value", "gateway-token", "redis-pass"} {
		if strings.Contains(text, secret) {
			t.Errorf("output leaks %q:\n%s", secret, text)
		}
	}
	for _, visible := range []string{"gpt-4o", "tiktoken", "chefbot:", "127.0.0.1:6379"} {
		if !strings.Contains(text, visible) {
			t.Errorf("output is missing %q:\n%s", visible, text)
		}
	}
}
