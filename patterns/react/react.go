package react

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/leofalp/calcagent/core/cost"
	"github.com/leofalp/calcagent/internal/utils"
	"github.com/leofalp/calcagent/providers/ai"
	"github.com/leofalp/calcagent/providers/memory"
	"github.com/leofalp/calcagent/providers/memory/inmemory"
	"github.com/leofalp/calcagent/providers/observability"
	"github.com/leofalp/calcagent/providers/tool"
)

const DefaultMaxIterations = 8

var (
	// ErrMaxIterations is returned when the model keeps calling tools past
	// the iteration limit. The partial Result is returned alongside it.
	ErrMaxIterations = errors.New("maximum iterations reached without a final answer")

	ErrNoProvider = errors.New("react: LLM provider is required")
)

// Agent runs the reason-act loop: ask the model, execute the tools it asks
// for, feed the results back, until the model answers without tool calls.
type Agent struct {
	provider      ai.Provider
	send          SendFunc
	catalog       *tool.Catalog
	memory        memory.Provider
	observer      observability.Provider
	systemPrompt  string
	model         string
	generation    *ai.GenerationConfig
	maxIterations int
	modelCost     *cost.ModelCost
	onStep        func(Step)
	middlewares   []Middleware
}

// Option configures an Agent built by [New].
type Option func(*Agent)

func WithMemory(m memory.Provider) Option {
	return func(a *Agent) { a.memory = m }
}

func WithObserver(o observability.Provider) Option {
	return func(a *Agent) { a.observer = o }
}

func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) { a.systemPrompt = prompt }
}

// WithModel overrides the provider's default model.
func WithModel(model string) Option {
	return func(a *Agent) { a.model = model }
}

func WithGenerationConfig(config ai.GenerationConfig) Option {
	return func(a *Agent) { a.generation = &config }
}

// WithMaxIterations bounds the number of model requests per run.
func WithMaxIterations(n int) Option {
	return func(a *Agent) { a.maxIterations = n }
}

// WithModelCost prices token usage in the run summary.
func WithModelCost(price cost.ModelCost) Option {
	return func(a *Agent) { a.modelCost = &price }
}

// WithStepHandler is called after every tool execution, in order. The CLI
// uses it to print the reasoning trace.
func WithStepHandler(fn func(Step)) Option {
	return func(a *Agent) { a.onStep = fn }
}

// WithMiddleware wraps every model request. The first middleware is the
// outermost.
func WithMiddleware(middlewares ...Middleware) Option {
	return func(a *Agent) { a.middlewares = append(a.middlewares, middlewares...) }
}

// Step is one executed tool call.
type Step struct {
	Iteration int
	CallID    string
	Tool      string
	Arguments string
	Output    string
	Unknown   bool // the model named a tool that is not in the catalog
}

// Result is the outcome of one run.
type Result struct {
	RunID   string
	Answer  string
	Steps   []Step
	Summary cost.RunSummary
}

// New returns an agent for provider and catalog. A nil catalog means no
// tools; memory defaults to an unbounded in-memory store.
func New(provider ai.Provider, catalog *tool.Catalog, options ...Option) (*Agent, error) {
	if provider == nil {
		return nil, ErrNoProvider
	}
	a := &Agent{
		provider:      provider,
		catalog:       catalog,
		maxIterations: DefaultMaxIterations,
	}
	for _, option := range options {
		option(a)
	}
	if a.maxIterations < 1 {
		return nil, fmt.Errorf("react: max iterations must be at least 1, got %d", a.maxIterations)
	}
	if a.catalog == nil {
		a.catalog = tool.NewCatalog()
	}
	if a.memory == nil {
		a.memory = inmemory.New()
	}
	a.send = buildSendChain(provider, a.middlewares)
	return a, nil
}

// Ask is Run reduced to the answer text.
func (a *Agent) Ask(ctx context.Context, prompt string) (string, error) {
	result, err := a.Run(ctx, prompt)
	if err != nil {
		return "", err
	}
	return result.Answer, nil
}

// Tools lists what the model is offered, in catalog order.
func (a *Agent) Tools() []ai.ToolDescription {
	return a.catalog.Descriptions()
}

// Reset forgets the conversation.
func (a *Agent) Reset(ctx context.Context) {
	a.memory.ClearMessages(ctx)
}

// Run appends prompt to the conversation and loops until the model answers
// or the iteration limit is hit. LLM errors end the run and are returned
// wrapped; tool faults never do, they reach the model as text.
func (a *Agent) Run(ctx context.Context, prompt string) (*Result, error) {
	prompt = strings.TrimSpace(prompt)
	result := &Result{RunID: uuid.NewString()}

	var span observability.Span
	if a.observer != nil {
		ctx = observability.ContextWithObserver(ctx, a.observer)
		ctx, span = a.observer.StartSpan(ctx, observability.SpanAgentRun,
			observability.String(observability.AttrAgentRunID, result.RunID),
			observability.String(observability.AttrAgentQuestion, utils.TruncateString(prompt, 200)),
			observability.Int(observability.AttrAgentMaxIterations, a.maxIterations),
			observability.Int(observability.AttrAgentToolsCount, a.catalog.Size()),
		)
		defer span.End()
		a.observer.Counter(observability.MetricAgentRuns).Add(ctx, 1)
	}

	a.memory.AppendMessage(ctx, &ai.Message{Role: ai.RoleUser, Content: prompt})

	for iteration := 1; iteration <= a.maxIterations; iteration++ {
		result.Summary.Iterations = iteration
		if span != nil {
			span.AddEvent(observability.EventAgentIteration, observability.Int(observability.AttrAgentIteration, iteration))
		}

		messages, err := a.memory.AllMessages(ctx)
		if err != nil {
			return a.fail(ctx, span, result, fmt.Errorf("reading conversation: %w", err))
		}

		response, err := a.send(ctx, ai.ChatRequest{
			Model:            a.model,
			Messages:         messages,
			SystemPrompt:     a.systemPrompt,
			Tools:            a.catalog.Descriptions(),
			GenerationConfig: a.generation,
		})
		if err != nil {
			return a.fail(ctx, span, result, fmt.Errorf("llm request (iteration %d): %w", iteration, err))
		}
		if response.Usage != nil {
			result.Summary.AddUsage(response.Usage.PromptTokens, response.Usage.CompletionTokens, response.Usage.CachedTokens, a.modelCost)
		}

		calls := withCallIDs(response.ToolCalls)
		a.memory.AppendMessage(ctx, &ai.Message{
			Role:      ai.RoleAssistant,
			Content:   response.Content,
			ToolCalls: calls,
			Reasoning: response.Reasoning,
		})

		if a.provider.IsStopMessage(response) {
			result.Answer = strings.TrimSpace(response.Content)
			a.finish(ctx, span, result)
			return result, nil
		}

		for _, call := range calls {
			step := a.execute(ctx, iteration, call, &result.Summary)
			result.Steps = append(result.Steps, step)
			a.memory.AppendMessage(ctx, &ai.Message{
				Role:       ai.RoleTool,
				Content:    step.Output,
				ToolCallID: step.CallID,
				Name:       step.Tool,
			})
			if a.onStep != nil {
				a.onStep(step)
			}
		}
	}

	if span != nil {
		span.AddEvent(observability.EventAgentExhausted, observability.Int(observability.AttrAgentIteration, a.maxIterations))
	}
	return a.fail(ctx, span, result, fmt.Errorf("%w (%d)", ErrMaxIterations, a.maxIterations))
}

// execute dispatches one tool call through the catalog. Unknown tools get a
// ToolResult error envelope so the model can correct itself.
func (a *Agent) execute(ctx context.Context, iteration int, call ai.ToolCall, summary *cost.RunSummary) Step {
	step := Step{
		Iteration: iteration,
		CallID:    call.ID,
		Tool:      call.Function.Name,
		Arguments: call.Function.Arguments,
	}

	t, ok := a.catalog.Get(call.Function.Name)
	if !ok {
		step.Unknown = true
		available := make([]string, 0, a.catalog.Size())
		for _, d := range a.catalog.Descriptions() {
			available = append(available, d.Name)
		}
		envelope := ai.NewToolResultError("tool_not_found",
			fmt.Sprintf("la herramienta '%s' no existe; disponibles: %s", call.Function.Name, strings.Join(available, ", ")))
		step.Output, _ = envelope.ToJSON()
		if span := observability.SpanFromContext(ctx); span != nil {
			span.AddEvent(observability.EventToolUnknown, observability.String(observability.AttrToolName, call.Function.Name))
		}
		return step
	}

	step.Tool = t.ToolInfo().Name
	summary.AddToolCall(step.Tool, t.GetMetrics())

	toolCtx := ctx
	if a.observer != nil {
		var span observability.Span
		toolCtx, span = a.observer.StartSpan(ctx, observability.SpanToolExecution,
			observability.String(observability.AttrToolName, step.Tool),
			observability.String(observability.AttrToolCallID, step.CallID),
		)
		defer span.End()
	}

	output, err := t.Call(toolCtx, call.Function.Arguments)
	if err != nil {
		envelope := ai.NewToolResultError("tool_error", err.Error())
		output, _ = envelope.ToJSON()
	}
	step.Output = output
	return step
}

func (a *Agent) finish(ctx context.Context, span observability.Span, result *Result) {
	if span == nil {
		return
	}
	span.AddEvent(observability.EventAgentFinalAnswer,
		observability.String(observability.AttrAgentAnswer, utils.TruncateString(result.Answer, 300)),
	)
	span.SetStatus(observability.StatusOK, "")
	a.observer.Histogram(observability.MetricAgentIterations).Record(ctx, float64(result.Summary.Iterations))
	a.observer.Info(ctx, "agent run finished",
		observability.String(observability.AttrAgentRunID, result.RunID),
		observability.Int(observability.AttrAgentIteration, result.Summary.Iterations),
	)
}

func (a *Agent) fail(ctx context.Context, span observability.Span, result *Result, err error) (*Result, error) {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(observability.StatusError, err.Error())
		a.observer.Histogram(observability.MetricAgentIterations).Record(ctx, float64(result.Summary.Iterations))
	}
	return result, err
}

// withCallIDs fills in ids for providers that omit them, so tool answers can
// be linked to their calls.
func withCallIDs(calls []ai.ToolCall) []ai.ToolCall {
	if len(calls) == 0 {
		return nil
	}
	out := make([]ai.ToolCall, len(calls))
	for i, call := range calls {
		if call.ID == "" {
			call.ID = "call_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:24]
		}
		if call.Type == "" {
			call.Type = "function"
		}
		out[i] = call
	}
	return out
}
