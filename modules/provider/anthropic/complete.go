package anthropic

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/flemzord/chefbot/internal/provider"
)

// Complete sends a synchronous completion request to the Anthropic Messages API.
// An answer without text is reported as provider.ErrEmptyResponse.
func (a *Anthropic) Complete(ctx context.Context, req provider.CompletionRequest) (_ provider.CompletionResponse, err error) {
	if a.tracer != nil {
		var span trace.Span
		ctx, span = a.tracer.Start(ctx, "anthropic.Complete", trace.WithAttributes(
			attribute.String("llm.model", a.config.Model),
			attribute.Int("llm.messages", len(req.Messages)),
			attribute.Bool("llm.json_mode", req.JSONMode),
		))
		defer func() {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.End()
		}()
	}

	params := convertRequest(req, &a.config)

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return provider.CompletionResponse{}, mapError(err)
	}

	out := convertResponse(msg)
	if strings.TrimSpace(out.Content) == "" {
		return provider.CompletionResponse{}, provider.ErrEmptyResponse
	}
	if a.logger != nil {
		a.logger.Debug("anthropic completion",
			"model", a.config.Model,
			"finish_reason", out.FinishReason,
			"prompt_tokens", out.Usage.PromptTokens,
			"completion_tokens", out.Usage.CompletionTokens,
		)
	}
	return out, nil
}
