package app

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/chefbot/internal/chat"
	"github.com/flemzord/chefbot/internal/config"
	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
	"github.com/flemzord/chefbot/internal/security"
	"github.com/flemzord/chefbot/internal/tokenizer"
)

// wireBot builds the recipe bot from the services registered by loaded
// modules. Must be called after LoadModules and before Start.
func wireBot(appCtx *core.AppContext, cfg *config.Config, reg prometheus.Registerer, logger *slog.Logger) (*chat.Bot, error) {
	answerer, err := resolveBotProvider(appCtx, cfg.Bot, logger)
	if err != nil {
		return nil, err
	}
	sumProvider, err := lookupProvider(appCtx, cfg.Memory.Summarizer.Provider)
	if err != nil {
		return nil, err
	}

	var store memory.MessageStore
	if cfg.Memory.Store != "" {
		store, err = lookupStore(appCtx, cfg.Memory.Store)
		if err != nil {
			return nil, err
		}
	}

	tok, err := tokenizer.New(tokenizer.Options{
		Kind:          tokenizer.Kind(cfg.Memory.Tokenizer),
		Model:         cfg.Memory.TokenizerModel,
		CharsPerToken: cfg.Memory.CharsPerToken,
	})
	if err != nil {
		return nil, err
	}

	mem, err := memory.New(memory.Config{
		MaxTokens:  cfg.Memory.MaxTokens,
		Tokenizer:  tok,
		Summarizer: memory.NewLLMSummarizer(sumProvider, cfg.Memory.Summarizer.TargetTokens),
		Store:      store,
		Logger:     logger,
		Metrics:    memory.NewMetrics(reg),
	})
	if err != nil {
		return nil, err
	}

	logger.Info("memory wired",
		"max_tokens", cfg.Memory.MaxTokens,
		"tokenizer", cfg.Memory.Tokenizer,
		"store", storeName(cfg.Memory.Store),
		"summarizer", cfg.Memory.Summarizer.Provider,
	)

	return chat.NewBot(chat.Config{
		Provider:          answerer,
		Memory:            mem,
		SystemPrompt:      cfg.Bot.SystemPrompt,
		Temperature:       cfg.Bot.Temperature,
		MaxResponseTokens: cfg.Bot.MaxResponseTokens,
		Logger:            logger,
	})
}

// resolveBotProvider resolves bot.provider, wrapped in a failover over
// bot.fallbacks when any are configured.
func resolveBotProvider(appCtx *core.AppContext, cfg config.BotConfig, logger *slog.Logger) (provider.Provider, error) {
	primary, err := lookupProvider(appCtx, cfg.Provider)
	if err != nil || len(cfg.Fallbacks) == 0 {
		return primary, err
	}

	entries := []provider.FailoverEntry{{Name: cfg.Provider, Provider: primary}}
	for _, id := range cfg.Fallbacks {
		p, err := lookupProvider(appCtx, id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, provider.FailoverEntry{Name: id, Provider: p})
	}
	f, err := provider.NewFailover(entries, provider.BackoffConfig{}, logger.With("component", "failover"))
	if err != nil {
		return nil, err
	}
	logger.Info("provider failover enabled", "primary", cfg.Provider, "fallbacks", cfg.Fallbacks)
	return f, nil
}

func lookupProvider(appCtx *core.AppContext, id string) (provider.Provider, error) {
	svc, ok := appCtx.GetService(id)
	if !ok {
		return nil, fmt.Errorf("app: provider module %s registered no service", id)
	}
	p, ok := svc.(provider.Provider)
	if !ok {
		return nil, fmt.Errorf("app: service %s is %T, not a provider", id, svc)
	}
	return p, nil
}

func lookupStore(appCtx *core.AppContext, id string) (memory.MessageStore, error) {
	svc, ok := appCtx.GetService(id)
	if !ok {
		return nil, fmt.Errorf("app: memory module %s registered no store", id)
	}
	s, ok := svc.(memory.MessageStore)
	if !ok {
		return nil, fmt.Errorf("app: service %s is %T, not a message store", id, svc)
	}
	return s, nil
}

func storeName(id string) string {
	if id == "" {
		return "in-memory"
	}
	return id
}

// collectSecrets registers the secret-named string values of every module
// configuration with r, so they are redacted from logs.
func collectSecrets(r *security.Redactor, modules map[string]yaml.Node) {
	for _, node := range modules {
		var m map[string]any
		if err := node.Decode(&m); err != nil {
			continue
		}
		r.AddSecretsFrom(m)
	}
}
