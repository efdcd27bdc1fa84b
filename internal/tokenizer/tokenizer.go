// Package tokenizer provides token counters for conversation histories:
// an exact BPE counter for OpenAI models and a cheap character-ratio
// estimator.
package tokenizer

import (
	"fmt"

	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
)

// Kind selects a tokenizer implementation.
type Kind string

// Supported tokenizer kinds.
const (
	KindTiktoken Kind = "tiktoken"
	KindEstimate Kind = "estimate"
)

// Options configures New.
type Options struct {
	Kind Kind

	// Model selects the BPE encoding for KindTiktoken.
	Model string

	// CharsPerToken is the ratio used by KindEstimate.
	CharsPerToken float64
}

// New returns the tokenizer described by opts. An empty Kind selects the
// estimator.
func New(opts Options) (memory.Tokenizer, error) {
	switch opts.Kind {
	case KindTiktoken:
		return NewTiktoken(opts.Model)
	case KindEstimate, "":
		return NewEstimator(opts.CharsPerToken), nil
	default:
		return nil, fmt.Errorf("tokenizer: unknown kind %q (supported: tiktoken, estimate)", opts.Kind)
	}
}

// wireRole is the role name a message is sent under.
func wireRole(role provider.MessageRole) string {
	if role == provider.MessageRoleSummary {
		return string(provider.MessageRoleSystem)
	}
	return string(role)
}
