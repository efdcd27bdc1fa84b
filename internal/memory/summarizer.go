package memory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/flemzord/chefbot/internal/provider"
)

// DefaultSummaryTokens is the summary length requested when
// LLMSummarizer.TargetTokens is not set.
const DefaultSummaryTokens = 300

// ErrEmptySummary is returned when the model answers with a blank summary.
var ErrEmptySummary = errors.New("memory: summarizer returned an empty summary")

const summaryInstructions = `You are a helpful assistant summarizing past conversation turns for a chatbot.

Your goal is to create a concise and informative summary of the provided conversation history, focusing on key information relevant to continuing the conversation.
Pay close attention to user preferences, requests, and any decisions they have made.
Also note any specific topics or tasks discussed. Retain information that might be needed to fulfill a user request or provide a relevant response.

The summary should be under %d tokens and written in a clear, natural language style.
Avoid simply listing the turns. Instead, synthesize the information into a coherent narrative.

Conversation History:
%s`

// LLMSummarizer summarizes conversations with a language model.
type LLMSummarizer struct {
	// Provider answers the summary request. Required.
	Provider provider.Provider

	// TargetTokens is the length the model is asked to stay under.
	TargetTokens int
}

// NewLLMSummarizer creates an LLMSummarizer. A non-positive target falls
// back to DefaultSummaryTokens.
func NewLLMSummarizer(p provider.Provider, targetTokens int) *LLMSummarizer {
	if targetTokens <= 0 {
		targetTokens = DefaultSummaryTokens
	}
	return &LLMSummarizer{Provider: p, TargetTokens: targetTokens}
}

var _ Summarizer = (*LLMSummarizer)(nil)

// Summarize renders messages as a transcript and asks the model for a
// summary. The answer is trimmed; a blank answer is an error.
func (s *LLMSummarizer) Summarize(ctx context.Context, messages []provider.LLMMessage) (string, error) {
	target := s.TargetTokens
	if target <= 0 {
		target = DefaultSummaryTokens
	}

	prompt := fmt.Sprintf(summaryInstructions, target, Transcript(messages))
	resp, err := s.Provider.Complete(ctx, provider.CompletionRequest{
		Messages:  []provider.LLMMessage{provider.UserMessage(prompt)},
		MaxTokens: target * 2,
	})
	if err != nil {
		return "", err
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", ErrEmptySummary
	}
	return summary, nil
}

// Transcript renders messages one per line, each prefixed with its speaker.
func Transcript(messages []provider.LLMMessage) string {
	var b strings.Builder
	b.WriteString("Summarize the following conversation:\n")
	for _, msg := range messages {
		content := msg.Content
		switch msg.Role {
		case provider.MessageRoleUser:
			b.WriteString("User: ")
		case provider.MessageRoleAssistant:
			b.WriteString("Assistant: ")
		case provider.MessageRoleSystem:
			b.WriteString("System: ")
		case provider.MessageRoleSummary:
			b.WriteString("Summary: ")
			content = strings.TrimPrefix(content, SummaryPrefix)
		default:
			continue
		}
		b.WriteString(content)
		b.WriteByte('\n')
	}
	return b.String()
}
