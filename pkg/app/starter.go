package app

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Store choices offered by `chefbot init`.
const (
	StoreInMemory = ""
	StoreSQLite   = "memory.sqlite"
	StoreRedis    = "memory.redis"
)

// StarterOptions are the answers collected by `chefbot init`.
type StarterOptions struct {
	Model     string
	MaxTokens int
	Store     string
	RedisAddr string

	// Gateway adds a gateway.http section bound to GatewayBind.
	Gateway     bool
	GatewayBind string
}

var starterTemplate = template.Must(template.New("chefbot.yaml").Parse(`version: "1"

memory:
  conversation_id: recipe-bot
  max_tokens: {{.MaxTokens}}
  tokenizer: tiktoken
  tokenizer_model: {{.Model}}
{{- if .Store}}
  store: {{.Store}}
{{- end}}
  summarizer:
    provider: provider.openai
    target_tokens: 300

bot:
  provider: provider.openai
  temperature: 0.7

modules:
  provider.openai:
    api_key: "${OPENAI_API_KEY}"
    model: {{.Model}}
{{- if eq .Store "memory.sqlite"}}
  memory.sqlite:
    wal: true
    busy_timeout: 5000
    optimize_schedule: "0 4 * * *"
{{- end}}
{{- if eq .Store "memory.redis"}}
  memory.redis:
    addr: {{.RedisAddr}}
    key_prefix: "chefbot:"
{{- end}}
{{- if .Gateway}}
  gateway.http:
    bind: {{.GatewayBind}}
    auth:
      bearer_token: "${CHEFBOT_TOKEN:-}"
{{- end}}
`))

// RenderStarterConfig renders a starter configuration from opts. Unset
// fields take the documented defaults.
func RenderStarterConfig(opts StarterOptions) ([]byte, error) {
	if opts.Model == "" {
		opts.Model = "gpt-4o"
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1000
	}
	if opts.RedisAddr == "" {
		opts.RedisAddr = "127.0.0.1:6379"
	}
	if opts.GatewayBind == "" {
		opts.GatewayBind = "127.0.0.1:8080"
	}
	switch opts.Store {
	case StoreInMemory, StoreSQLite, StoreRedis:
	default:
		return nil, fmt.Errorf("app: unknown store %q", opts.Store)
	}

	var buf bytes.Buffer
	if err := starterTemplate.Execute(&buf, opts); err != nil {
		return nil, fmt.Errorf("app: rendering starter config: %w", err)
	}
	return buf.Bytes(), nil
}

// ErrConfigExists is returned by WriteStarterConfig when path exists.
var ErrConfigExists = errors.New("app: configuration file already exists")

// WriteStarterConfig renders opts to path, creating parent directories.
// It refuses to overwrite an existing file.
func WriteStarterConfig(path string, opts StarterOptions) error {
	data, err := RenderStarterConfig(opts)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("app: creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("app: writing %s: %w", path, err)
	}
	return nil
}
