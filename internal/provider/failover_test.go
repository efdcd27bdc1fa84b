package provider_test

import (
	"context"
	"errors"
	"testing"

	"github.com/flemzord/chefbot/internal/provider"
	"github.com/flemzord/chefbot/internal/provider/providertest"
)

func newFailover(t *testing.T, entries ...provider.FailoverEntry) *provider.Failover {
	t.Helper()
	f, err := provider.NewFailover(entries, provider.BackoffConfig{}, nil)
	if err != nil {
		t.Fatalf("NewFailover: %v", err)
	}
	return f
}

func complete(f *provider.Failover) (provider.CompletionResponse, error) {
	return f.Complete(context.Background(), provider.CompletionRequest{
		Messages: []provider.LLMMessage{provider.UserMessage("Something with lentils?")},
	})
}

func TestNewFailover_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := provider.NewFailover(nil, provider.BackoffConfig{}, nil); !errors.Is(err, provider.ErrNoProvider) {
		t.Errorf("empty: err = %v, want ErrNoProvider", err)
	}
	_, err := provider.NewFailover([]provider.FailoverEntry{{Name: "a"}}, provider.BackoffConfig{}, nil)
	if !errors.Is(err, provider.ErrNoProvider) {
		t.Errorf("nil provider: err = %v, want ErrNoProvider", err)
	}
}

func TestFailover_PrimaryAnswers(t *testing.T) {
	t.Parallel()

	primary := &providertest.MockProvider{CompleteFunc: providertest.Reply("primary")}
	backup := &providertest.MockProvider{CompleteFunc: providertest.Reply("backup")}
	f := newFailover(t,
		provider.FailoverEntry{Name: "primary", Provider: primary},
		provider.FailoverEntry{Name: "backup", Provider: backup},
	)

	resp, err := complete(f)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "primary" || backup.Calls() != 0 {
		t.Errorf("content = %q, backup calls = %d", resp.Content, backup.Calls())
	}
}

func TestFailover_RetryableFailsOver(t *testing.T) {
	t.Parallel()

	primary := &providertest.MockProvider{CompleteFunc: providertest.Fail(provider.ErrRateLimit)}
	backup := &providertest.MockProvider{CompleteFunc: providertest.Reply("backup")}
	f := newFailover(t,
		provider.FailoverEntry{Name: "primary", Provider: primary},
		provider.FailoverEntry{Name: "backup", Provider: backup},
	)

	resp, err := complete(f)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Content != "backup" {
		t.Errorf("content = %q, want backup", resp.Content)
	}

	// The primary is cooling down and is skipped on the next request.
	if _, err := complete(f); err != nil {
		t.Fatalf("second Complete: %v", err)
	}
	if primary.Calls() != 1 || backup.Calls() != 2 {
		t.Errorf("calls primary = %d, backup = %d; want 1 and 2", primary.Calls(), backup.Calls())
	}
}

func TestFailover_NonRetryableStops(t *testing.T) {
	t.Parallel()

	primary := &providertest.MockProvider{CompleteFunc: providertest.Fail(provider.ErrContextLength)}
	backup := &providertest.MockProvider{CompleteFunc: providertest.Reply("backup")}
	f := newFailover(t,
		provider.FailoverEntry{Name: "primary", Provider: primary},
		provider.FailoverEntry{Name: "backup", Provider: backup},
	)

	if _, err := complete(f); !errors.Is(err, provider.ErrContextLength) {
		t.Errorf("err = %v, want ErrContextLength", err)
	}
	if backup.Calls() != 0 {
		t.Errorf("backup called %d times, want 0", backup.Calls())
	}
}

func TestFailover_AllFail(t *testing.T) {
	t.Parallel()

	down := &providertest.MockProvider{CompleteFunc: providertest.Fail(provider.ErrProviderDown)}
	limited := &providertest.MockProvider{CompleteFunc: providertest.Fail(provider.ErrRateLimit)}
	f := newFailover(t,
		provider.FailoverEntry{Name: "down", Provider: down},
		provider.FailoverEntry{Name: "limited", Provider: limited},
	)

	_, err := complete(f)
	if !errors.Is(err, provider.ErrAllProviders) || !errors.Is(err, provider.ErrRateLimit) {
		t.Errorf("err = %v, want ErrAllProviders wrapping the last error", err)
	}
	if !provider.IsRetryable(err) {
		t.Error("exhausted failover should stay retryable")
	}

	// Everything is cooling down, so both are tried again rather than refused.
	_, _ = complete(f)
	if down.Calls() != 2 || limited.Calls() != 2 {
		t.Errorf("calls down = %d, limited = %d; want 2 each", down.Calls(), limited.Calls())
	}
}

func TestFailover_CanceledContext(t *testing.T) {
	t.Parallel()

	primary := &providertest.MockProvider{CompleteFunc: providertest.Reply("primary")}
	f := newFailover(t, provider.FailoverEntry{Name: "primary", Provider: primary})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.Complete(ctx, provider.CompletionRequest{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if primary.Calls() != 0 {
		t.Errorf("primary called %d times", primary.Calls())
	}
}

func TestFailover_ModelAndWindow(t *testing.T) {
	t.Parallel()

	f := newFailover(t,
		provider.FailoverEntry{Name: "a", Provider: &providertest.MockProvider{
			ModelNameFunc:         func() string { return "gpt-4o" },
			ContextWindowSizeFunc: func() int { return 128000 },
		}},
		provider.FailoverEntry{Name: "b", Provider: &providertest.MockProvider{
			ModelNameFunc:         func() string { return "claude" },
			ContextWindowSizeFunc: func() int { return 100000 },
		}},
	)
	if f.ModelName() != "gpt-4o" {
		t.Errorf("ModelName = %q, want the primary's", f.ModelName())
	}
	if f.ContextWindowSize() != 100000 {
		t.Errorf("ContextWindowSize = %d, want the smallest", f.ContextWindowSize())
	}
}
