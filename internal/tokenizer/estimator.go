package tokenizer

import (
	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
)

// messageOverhead approximates the role and formatting tokens added to
// every message.
const messageOverhead = 4

// Estimator estimates tokens using a simple characters-per-token ratio.
// A ratio of ~4 works well for English; ~3 for French or other Latin languages.
type Estimator struct {
	CharsPerToken float64
}

// NewEstimator creates an Estimator with the given ratio.
// If charsPerToken is <= 0, defaults to 4.0 (English approximation).
func NewEstimator(charsPerToken float64) *Estimator {
	if charsPerToken <= 0 {
		charsPerToken = 4.0
	}
	return &Estimator{CharsPerToken: charsPerToken}
}

var _ memory.Tokenizer = (*Estimator)(nil)

// Estimate returns the estimated token count for the given text.
func (e *Estimator) Estimate(text string) int {
	if len(text) == 0 {
		return 0
	}
	tokens := float64(len(text)) / e.CharsPerToken
	// Always round up to avoid underestimation.
	return int(tokens) + 1
}

// CountMessages returns the total estimated tokens for a slice of messages.
func (e *Estimator) CountMessages(messages []provider.LLMMessage) int {
	total := 0
	for i := range messages {
		total += messageOverhead
		total += e.Estimate(messages[i].Content)
		if messages[i].Name != "" {
			total += e.Estimate(messages[i].Name)
		}
	}
	return total
}
