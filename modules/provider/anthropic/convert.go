package anthropic

import (
	sdkanthropic "github.com/anthropics/anthropic-sdk-go"

	"github.com/flemzord/chefbot/internal/provider"
)

// jsonInstruction replaces OpenAI's JSON response format, which the
// Messages API does not have.
const jsonInstruction = "Respond with a single valid JSON object and nothing else."

// resumePlaceholder opens a conversation whose oldest kept turn is the
// assistant's; the Messages API requires the first turn to be the user's.
const resumePlaceholder = "(continuing our conversation)"

// convertRequest transforms a CompletionRequest into Anthropic SDK parameters.
// System and summary messages move to the dedicated System field.
func convertRequest(req provider.CompletionRequest, cfg *Config) sdkanthropic.MessageNewParams {
	system, messages := splitSystemMessages(req.Messages)
	if req.JSONMode {
		system = append(system, sdkanthropic.TextBlockParam{Text: jsonInstruction})
	}

	params := sdkanthropic.MessageNewParams{
		Model:    sdkanthropic.Model(cfg.Model),
		Messages: convertMessages(messages),
		System:   system,
	}

	// MaxTokens: request-level override takes precedence over config default.
	params.MaxTokens = int64(cfg.MaxTokens)
	if req.MaxTokens > 0 {
		params.MaxTokens = int64(req.MaxTokens)
	}

	if req.Temperature != nil {
		// The Messages API accepts [0, 1]; OpenAI-style values up to 2 are clamped.
		params.Temperature = sdkanthropic.Float(min(*req.Temperature, 1))
	}
	if len(req.Stop) > 0 {
		params.StopSequences = req.Stop
	}

	return params
}

// splitSystemMessages extracts system and summary messages, in order, into
// Anthropic's System parameter and returns the remaining messages.
func splitSystemMessages(msgs []provider.LLMMessage) ([]sdkanthropic.TextBlockParam, []provider.LLMMessage) {
	var system []sdkanthropic.TextBlockParam
	rest := make([]provider.LLMMessage, 0, len(msgs))
	for _, msg := range msgs {
		switch msg.Role {
		case provider.MessageRoleSystem, provider.MessageRoleSummary:
			system = append(system, sdkanthropic.TextBlockParam{Text: msg.Content})
		default:
			rest = append(rest, msg)
		}
	}
	return system, rest
}

// convertMessages transforms user and assistant messages into Anthropic
// message params. Consecutive messages of the same role are merged because
// the API requires turns to alternate, and a leading assistant turn gets a
// placeholder user turn in front of it.
func convertMessages(msgs []provider.LLMMessage) []sdkanthropic.MessageParam {
	var result []sdkanthropic.MessageParam
	var lastRole provider.MessageRole

	for _, msg := range msgs {
		if msg.Role != provider.MessageRoleUser && msg.Role != provider.MessageRoleAssistant {
			continue
		}

		block := sdkanthropic.NewTextBlock(msg.Content)
		if len(result) > 0 && msg.Role == lastRole {
			last := &result[len(result)-1]
			last.Content = append(last.Content, block)
			continue
		}

		if len(result) == 0 && msg.Role == provider.MessageRoleAssistant {
			result = append(result, sdkanthropic.NewUserMessage(sdkanthropic.NewTextBlock(resumePlaceholder)))
		}
		if msg.Role == provider.MessageRoleUser {
			result = append(result, sdkanthropic.NewUserMessage(block))
		} else {
			result = append(result, sdkanthropic.NewAssistantMessage(block))
		}
		lastRole = msg.Role
	}

	return result
}

// convertResponse transforms an Anthropic SDK Message into a CompletionResponse.
// Text blocks are joined with newlines; other block types are ignored.
func convertResponse(msg *sdkanthropic.Message) provider.CompletionResponse {
	var content string

	for _, block := range msg.Content {
		if v, ok := block.AsAny().(sdkanthropic.TextBlock); ok {
			if content != "" {
				content += "\n"
			}
			content += v.Text
		}
	}

	return provider.CompletionResponse{
		Content:      content,
		FinishReason: convertStopReason(msg.StopReason),
		Usage: provider.TokenUsage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}
}

// convertStopReason maps an Anthropic stop reason to a FinishReason.
func convertStopReason(reason sdkanthropic.StopReason) provider.FinishReason {
	switch reason {
	case sdkanthropic.StopReasonMaxTokens:
		return provider.FinishReasonLength
	case sdkanthropic.StopReasonRefusal:
		return provider.FinishReasonFiltering
	default:
		return provider.FinishReasonStop
	}
}
