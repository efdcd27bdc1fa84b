// Package anthropic implements the provider.anthropic module, answering
// recipe turns and writing memory summaries with the Anthropic Messages API.
package anthropic

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	sdkanthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/provider"
)

// ModuleID identifies the Anthropic provider module.
const ModuleID core.ModuleID = "provider.anthropic"

func init() {
	core.RegisterModule(&Anthropic{})
}

// Interface guards.
var (
	_ core.Module       = (*Anthropic)(nil)
	_ core.Configurable = (*Anthropic)(nil)
	_ core.Provisioner  = (*Anthropic)(nil)
	_ core.Validator    = (*Anthropic)(nil)
	_ provider.Provider = (*Anthropic)(nil)
)

// Anthropic is the provider.anthropic module.
type Anthropic struct {
	config        Config
	client        *sdkanthropic.Client
	logger        *slog.Logger
	tracer        trace.Tracer
	apiKey        string
	contextWindow int
}

// ModuleInfo implements core.Module.
func (a *Anthropic) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{
		ID:  ModuleID,
		New: func() core.Module { return &Anthropic{} },
	}
}

// Configure implements core.Configurable.
func (a *Anthropic) Configure(node *yaml.Node) error {
	if err := node.Decode(&a.config); err != nil {
		return err
	}
	a.config.defaults()
	return nil
}

// Provision implements core.Provisioner. The API key comes from api_key,
// then from the variable named by api_key_env, then from ANTHROPIC_API_KEY.
func (a *Anthropic) Provision(ctx *core.AppContext) error {
	a.config.defaults()
	a.logger = ctx.Logger
	a.tracer = otel.Tracer("github.com/flemzord/chefbot/modules/provider/anthropic")

	a.apiKey = a.config.APIKey
	if a.apiKey == "" {
		a.apiKey = os.Getenv(a.config.APIKeyEnv)
	}

	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: a.config.Timeout}),
		// Retries would hold the conversation lane while the user waits.
		option.WithMaxRetries(0),
	}
	if a.apiKey != "" {
		opts = append(opts, option.WithAPIKey(a.apiKey))
	}
	if a.config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(a.config.BaseURL))
	}

	client := sdkanthropic.NewClient(opts...)
	a.client = &client
	a.contextWindow = a.config.contextWindowForModel()

	ctx.RegisterService(string(ModuleID), a)
	return nil
}

// Validate implements core.Validator.
func (a *Anthropic) Validate() error {
	var errs []error
	if a.apiKey == "" {
		errs = append(errs, errors.New("provider.anthropic: api_key is required (or set "+a.config.APIKeyEnv+")"))
	}
	if a.config.Model == "" {
		errs = append(errs, errors.New("provider.anthropic: model must not be empty"))
	}
	if a.config.MaxTokens <= 0 {
		errs = append(errs, errors.New("provider.anthropic: max_tokens must be positive"))
	}
	if a.client == nil {
		errs = append(errs, errors.New("provider.anthropic: client not initialized (Provision not called)"))
	}
	return errors.Join(errs...)
}

// ContextWindowSize implements provider.Provider.
func (a *Anthropic) ContextWindowSize() int {
	return a.contextWindow
}

// ModelName implements provider.Provider.
func (a *Anthropic) ModelName() string {
	return a.config.Model
}
