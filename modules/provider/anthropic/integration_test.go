//go:build integration

package anthropic

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/flemzord/chefbot/internal/chat"
	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/provider"
)

// Integration tests require ANTHROPIC_API_KEY to be set.
// Run with: go test -tags=integration ./modules/provider/anthropic/...

func TestIntegration_CompleteJSON(t *testing.T) {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		t.Skip("ANTHROPIC_API_KEY not set, skipping integration test")
	}

	a := &Anthropic{}
	if err := a.Configure(yamlNode(t, "model: claude-haiku-4-5\nmax_tokens: 256")); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := a.Provision(core.NewAppContext(nil, t.TempDir(), t.TempDir())); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if err := a.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := a.Complete(ctx, provider.CompletionRequest{
		Messages: []provider.LLMMessage{
			provider.SystemMessage(`Answer as {"type":"conversation","message":"..."}.`),
			provider.UserMessage("Say hello."),
		},
		JSONMode: true,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got := chat.ParseResponse(resp.Content); got.Kind != chat.KindConversation || got.Message == "" {
		t.Errorf("unexpected answer %q", resp.Content)
	}
	if resp.Usage.TotalTokens == 0 {
		t.Error("expected non-zero token usage")
	}
}
