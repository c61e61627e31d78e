package react

import (
	"context"
	"log/slog"
	"time"

	"github.com/leofalp/calcagent/providers/ai"
)

// SendFunc sends one chat request to the model.
type SendFunc func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error)

// Middleware wraps a SendFunc to observe or alter requests and responses.
type Middleware func(next SendFunc) SendFunc

// buildSendChain applies middlewares in reverse so that middlewares[0] runs
// first.
func buildSendChain(provider ai.Provider, middlewares []Middleware) SendFunc {
	chain := SendFunc(provider.SendMessage)
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			chain = middlewares[i](chain)
		}
	}
	return chain
}

// NewTimeoutMiddleware bounds each model request with its own deadline.
// A zero or negative timeout disables it.
func NewTimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next SendFunc) SendFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, request)
		}
	}
}

// NewLoggingMiddleware logs each model request and its outcome at debug
// level: message count, tools offered, duration, finish reason and tokens.
// Message content is never logged.
func NewLoggingMiddleware(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next SendFunc) SendFunc {
		return func(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
			logger.DebugContext(ctx, "llm send",
				slog.String("model", request.Model),
				slog.Int("messages", len(request.Messages)),
				slog.Int("tools", len(request.Tools)),
			)

			start := time.Now()
			response, err := next(ctx, request)
			duration := time.Since(start)

			if err != nil {
				logger.WarnContext(ctx, "llm send failed",
					slog.Duration("duration", duration),
					slog.String("error", err.Error()),
				)
				return nil, err
			}

			attrs := []any{
				slog.Duration("duration", duration),
				slog.String("finish_reason", response.FinishReason),
				slog.Int("tool_calls", len(response.ToolCalls)),
			}
			if response.Usage != nil {
				attrs = append(attrs,
					slog.Int("prompt_tokens", response.Usage.PromptTokens),
					slog.Int("completion_tokens", response.Usage.CompletionTokens),
				)
			}
			logger.DebugContext(ctx, "llm response", attrs...)
			return response, nil
		}
	}
}
