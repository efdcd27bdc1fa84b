package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
)

// replyPriming is the fixed cost of the assistant reply header appended
// after the last message of a non-empty conversation.
const replyPriming = 3

const defaultEncoding = "cl100k_base"

// modelEncodings maps model name prefixes to their BPE encoding.
var modelEncodings = []struct {
	prefix   string
	encoding string
}{
	{"gpt-4o", "o200k_base"},
	{"gpt-4.1", "o200k_base"},
	{"o1", "o200k_base"},
	{"o3", "o200k_base"},
	{"gpt-4", "cl100k_base"},
	{"gpt-3.5-turbo", "cl100k_base"},
}

// EncodingForModel returns the BPE encoding used by model, falling back
// to cl100k_base for unknown models.
func EncodingForModel(model string) string {
	for _, me := range modelEncodings {
		if strings.HasPrefix(model, me.prefix) {
			return me.encoding
		}
	}
	return defaultEncoding
}

// Tiktoken counts tokens exactly with the encoding of an OpenAI model.
type Tiktoken struct {
	encoding string
	enc      *tiktoken.Tiktoken
}

// NewTiktoken loads the BPE encoding for model. Loading may download the
// encoding file on first use, so it can fail without network access.
func NewTiktoken(model string) (*Tiktoken, error) {
	encoding := EncodingForModel(model)
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: loading encoding %s: %w", encoding, err)
	}
	return &Tiktoken{encoding: encoding, enc: enc}, nil
}

var _ memory.Tokenizer = (*Tiktoken)(nil)

// Encoding returns the name of the loaded encoding.
func (t *Tiktoken) Encoding() string { return t.encoding }

// CountTokens returns the number of tokens in text.
func (t *Tiktoken) CountTokens(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// CountMessages follows the chat format accounting: a per-message overhead
// plus role and content tokens, and a reply primer for non-empty input.
func (t *Tiktoken) CountMessages(messages []provider.LLMMessage) int {
	if len(messages) == 0 {
		return 0
	}
	total := 0
	for _, msg := range messages {
		total += messageOverhead
		total += t.CountTokens(wireRole(msg.Role))
		total += t.CountTokens(msg.Content)
		if msg.Name != "" {
			total += t.CountTokens(msg.Name)
		}
	}
	return total + replyPriming
}
