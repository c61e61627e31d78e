package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/leofalp/calcagent/internal/utils"
	"github.com/leofalp/calcagent/providers/ai"
	"github.com/leofalp/calcagent/providers/observability"
)

const (
	DefaultBaseURL = "https://api.deepseek.com/v1"
	DefaultModel   = "deepseek-chat"

	chatCompletionsEndpoint = "/chat/completions"
	providerName            = "openai-compatible"
)

// ErrMissingAPIKey is returned by SendMessage before any request is made.
var ErrMissingAPIKey = errors.New("API key is not set")

// OpenAIProvider talks to any OpenAI-compatible /chat/completions endpoint.
// The defaults point at DeepSeek.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ ai.Provider = (*OpenAIProvider)(nil)

// New returns a provider seeded from DEEPSEEK_API_KEY, DEEPSEEK_BASE_URL and
// DEEPSEEK_MODEL, falling back to the DeepSeek defaults. The With* methods
// override any of them.
func New() *OpenAIProvider {
	baseURL := os.Getenv("DEEPSEEK_BASE_URL")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := os.Getenv("DEEPSEEK_MODEL")
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIProvider{
		apiKey:  os.Getenv("DEEPSEEK_API_KEY"),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  utils.NewHTTPClient(0),
	}
}

func (p *OpenAIProvider) WithAPIKey(apiKey string) ai.Provider {
	p.apiKey = strings.TrimSpace(apiKey)
	return p
}

func (p *OpenAIProvider) WithBaseURL(baseURL string) ai.Provider {
	if baseURL != "" {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
	return p
}

func (p *OpenAIProvider) WithHttpClient(httpClient *http.Client) ai.Provider {
	if httpClient != nil {
		p.client = httpClient
	}
	return p
}

// WithModel sets the model used when a request does not name one.
func (p *OpenAIProvider) WithModel(model string) *OpenAIProvider {
	if model != "" {
		p.model = model
	}
	return p
}

// Model returns the default model name.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// SendMessage posts request to /chat/completions and converts the first
// choice into an ai.ChatResponse.
func (p *OpenAIProvider) SendMessage(ctx context.Context, request ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if request.Model == "" {
		request.Model = p.model
	}

	endpoint := p.baseURL + chatCompletionsEndpoint
	observer := observability.ObserverFromContext(ctx)
	var span observability.Span
	if observer != nil {
		ctx, span = observer.StartSpan(ctx, observability.SpanLLMRequest,
			observability.String(observability.AttrLLMProvider, providerName),
			observability.String(observability.AttrLLMModel, request.Model),
			observability.String(observability.AttrLLMEndpoint, endpoint),
		)
		defer span.End()
		observer.Counter(observability.MetricLLMRequests).Add(ctx, 1,
			observability.String(observability.AttrLLMModel, request.Model),
		)
	}

	_, resp, err := utils.DoPostSync[chatCompletionResponse](ctx, p.client, endpoint, p.apiKey, requestToChatCompletion(request))
	if err != nil {
		if span != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "chat completion failed")
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if resp.Error != nil {
		err = fmt.Errorf("chat completion: %s", resp.Error.Message)
		if span != nil {
			span.RecordError(err)
			span.SetStatus(observability.StatusError, "provider error")
		}
		return nil, err
	}

	out := chatCompletionToGeneric(*resp)
	if span != nil {
		span.SetAttributes(
			observability.String(observability.AttrLLMResponseID, out.Id),
			observability.String(observability.AttrLLMFinishReason, out.FinishReason),
		)
		if out.Usage != nil {
			span.SetAttributes(
				observability.Int(observability.AttrLLMTokensPrompt, out.Usage.PromptTokens),
				observability.Int(observability.AttrLLMTokensCompletion, out.Usage.CompletionTokens),
				observability.Int(observability.AttrLLMTokensTotal, out.Usage.TotalTokens),
			)
			observer.Counter(observability.MetricLLMTokensTotal).Add(ctx, int64(out.Usage.TotalTokens))
		}
		span.SetStatus(observability.StatusOK, "")
	}
	return out, nil
}

// IsStopMessage treats any response without tool calls as final, whatever
// finish reason the provider reported.
func (p *OpenAIProvider) IsStopMessage(message *ai.ChatResponse) bool {
	return message == nil || len(message.ToolCalls) == 0
}
