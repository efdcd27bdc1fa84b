package gateway

import (
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"

	"github.com/flemzord/chefbot/internal/chat"
	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/memory/memorytest"
	"github.com/flemzord/chefbot/internal/provider"
	"github.com/flemzord/chefbot/internal/provider/providertest"
	"github.com/flemzord/chefbot/internal/security"
	"github.com/flemzord/chefbot/internal/security/securitytest"
)

const conversationReply = `{"type":"conversation","message":"Any allergies?"}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBot builds a real bot over an in-memory store. Every message costs
// one token.
func newTestBot(t *testing.T, p provider.Provider, maxTokens int) *chat.Bot {
	t.Helper()
	mem, err := memory.New(memory.Config{
		MaxTokens:  maxTokens,
		Tokenizer:  memorytest.PerMessageTokenizer(1),
		Summarizer: &memorytest.MockSummarizer{},
		Logger:     discardLogger(),
	})
	if err != nil {
		t.Fatalf("memory.New: %v", err)
	}
	bot, err := chat.NewBot(chat.Config{Provider: p, Memory: mem, SystemPrompt: "be a chef", Logger: discardLogger()})
	if err != nil {
		t.Fatalf("NewBot: %v", err)
	}
	return bot
}

type testGateway struct {
	*Gateway
	provider *providertest.MockProvider
	events   func() []security.AuditEvent
}

// newTestGateway builds a gateway without a listener, wired to a mock
// provider that answers every turn with reply.
func newTestGateway(t *testing.T, cfg Config, reply string) *testGateway {
	t.Helper()
	cfg.defaults()

	p := &providertest.MockProvider{CompleteFunc: providertest.Reply(reply)}
	audit, events := securitytest.NewTestAuditLogger()
	reg := prometheus.NewRegistry()

	g := &Gateway{
		config:    cfg,
		logger:    discardLogger(),
		metrics:   &Metrics{},
		audit:     audit,
		limiter:   security.NewRateLimiter(cfg.RateLimit),
		startedAt: time.Now(),
		bot:       newTestBot(t, p, 100),
		gatherer:  reg,
	}
	if err := g.metrics.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return &testGateway{Gateway: g, provider: p, events: events}
}

func (tg *testGateway) server(t *testing.T) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(tg.buildRouter())
	t.Cleanup(ts.Close)
	return ts
}

func mustYAMLNode(t *testing.T, s string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(s), &doc); err != nil {
		t.Fatalf("yaml.Unmarshal: %v", err)
	}
	if len(doc.Content) == 0 {
		t.Fatal("empty YAML document")
	}
	return doc.Content[0]
}
