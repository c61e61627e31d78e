package ai

import (
	"context"
	"net/http"
)

// Provider is what the agent loop needs from an LLM backend.
type Provider interface {
	// SendMessage performs one completion. Transport, status and decoding
	// failures are returned as errors.
	SendMessage(ctx context.Context, request ChatRequest) (*ChatResponse, error)

	// IsStopMessage reports whether the response ends the turn, i.e. the
	// model asked for no further tool calls.
	IsStopMessage(message *ChatResponse) bool

	WithAPIKey(apiKey string) Provider
	WithBaseURL(baseURL string) Provider
	WithHttpClient(httpClient *http.Client) Provider
}
