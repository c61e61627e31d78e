package react

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/leofalp/calcagent/core/cost"
	"github.com/leofalp/calcagent/providers/ai"
	"github.com/leofalp/calcagent/providers/memory/inmemory"
	"github.com/leofalp/calcagent/providers/observability"
	slogobs "github.com/leofalp/calcagent/providers/observability/slog"
	"github.com/leofalp/calcagent/providers/tool"
	"github.com/leofalp/calcagent/providers/tool/calculator"
)

// scriptedProvider answers with the given responses in order and records
// every request it receives.
type scriptedProvider struct {
	responses []*ai.ChatResponse
	requests  []ai.ChatRequest
	err       error
}

func (p *scriptedProvider) SendMessage(_ context.Context, req ai.ChatRequest) (*ai.ChatResponse, error) {
	p.requests = append(p.requests, req)
	if p.err != nil {
		return nil, p.err
	}
	if len(p.requests) > len(p.responses) {
		return nil, errors.New("no more scripted responses")
	}
	return p.responses[len(p.requests)-1], nil
}

func (p *scriptedProvider) IsStopMessage(r *ai.ChatResponse) bool   { return len(r.ToolCalls) == 0 }
func (p *scriptedProvider) WithAPIKey(string) ai.Provider           { return p }
func (p *scriptedProvider) WithBaseURL(string) ai.Provider          { return p }
func (p *scriptedProvider) WithHttpClient(*http.Client) ai.Provider { return p }

type failingTool struct{ calls int }

func (f *failingTool) ToolInfo() ai.ToolDescription  { return ai.ToolDescription{Name: "rota"} }
func (f *failingTool) GetMetrics() *cost.ToolMetrics { return nil }
func (f *failingTool) Call(context.Context, string) (string, error) {
	f.calls++
	return "", errors.New("boom")
}

func toolCall(id, name, args string) ai.ToolCall {
	return ai.ToolCall{ID: id, Type: "function", Function: ai.ToolCallFunction{Name: name, Arguments: args}}
}

func calculatorCatalog() *tool.Catalog {
	return tool.NewCatalogWithTools(calculator.NewCalculatorTool())
}

func TestRun_ToolThenAnswer(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		{
			FinishReason: ai.FinishReasonToolCalls,
			ToolCalls:    []ai.ToolCall{toolCall("call_1", "calculadora", `{"expresion": "200 * 0.15"}`)},
			Usage:        &ai.Usage{PromptTokens: 100, CompletionTokens: 10},
		},
		{
			Content:      " El 15% de 200 es 30. ",
			FinishReason: ai.FinishReasonStop,
			Usage:        &ai.Usage{PromptTokens: 150, CompletionTokens: 20},
		},
	}}
	mem := inmemory.New()

	agent, err := New(provider, calculatorCatalog(),
		WithMemory(mem),
		WithSystemPrompt("Eres un asistente."),
		WithModelCost(cost.DeepSeekChat),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	result, err := agent.Run(context.Background(), "¿Cuál es el 15% de 200?")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if result.Answer != "El 15% de 200 es 30." {
		t.Errorf("Answer = %q", result.Answer)
	}
	if result.RunID == "" {
		t.Error("RunID is empty")
	}
	if len(result.Steps) != 1 || result.Steps[0].Output != "El resultado de 200 * 0.15 es 30" {
		t.Fatalf("Steps = %+v", result.Steps)
	}

	s := result.Summary
	if s.Iterations != 2 || s.ToolCalls["calculadora"] != 1 || s.PromptTokens != 250 || s.CompletionTokens != 30 {
		t.Errorf("Summary = %+v", s)
	}
	if s.ModelCost <= 0 {
		t.Errorf("ModelCost = %v, want > 0", s.ModelCost)
	}

	if len(provider.requests) != 2 {
		t.Fatalf("provider got %d requests, want 2", len(provider.requests))
	}
	first := provider.requests[0]
	if first.SystemPrompt != "Eres un asistente." || len(first.Tools) != 1 || first.Tools[0].Name != "calculadora" {
		t.Errorf("first request = %+v", first)
	}

	second := provider.requests[1].Messages
	if len(second) != 3 {
		t.Fatalf("second request has %d messages, want user, assistant, tool", len(second))
	}
	if second[2].Role != ai.RoleTool || second[2].ToolCallID != "call_1" || second[2].Name != "calculadora" {
		t.Errorf("tool message = %+v", second[2])
	}

	if n, _ := mem.Count(context.Background()); n != 4 {
		t.Errorf("memory holds %d messages, want 4", n)
	}
}

func TestRun_UnknownToolKeepsGoing(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{toolCall("", "traductor", `{}`)}},
		{Content: "No puedo traducir."},
	}}
	agent, _ := New(provider, calculatorCatalog())

	result, err := agent.Run(context.Background(), "traduce hola")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	step := result.Steps[0]
	if !step.Unknown {
		t.Error("step should be marked unknown")
	}
	if !strings.HasPrefix(step.CallID, "call_") {
		t.Errorf("CallID = %q, want a generated id", step.CallID)
	}
	for _, want := range []string{`"success":false`, `"error":"tool_not_found"`, "calculadora"} {
		if !strings.Contains(step.Output, want) {
			t.Errorf("Output = %s, want it to contain %s", step.Output, want)
		}
	}
	if result.Summary.TotalToolCalls() != 0 {
		t.Error("unknown tools must not be counted as calls")
	}
	if result.Answer != "No puedo traducir." {
		t.Errorf("Answer = %q", result.Answer)
	}
}

func TestRun_ToolErrorBecomesEnvelope(t *testing.T) {
	broken := &failingTool{}
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{toolCall("c1", "ROTA", `{}`)}},
		{Content: "La herramienta falló."},
	}}
	agent, _ := New(provider, tool.NewCatalogWithTools(broken))

	result, err := agent.Run(context.Background(), "usa la rota")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if broken.calls != 1 {
		t.Errorf("tool called %d times, want 1", broken.calls)
	}
	if got := result.Steps[0]; got.Tool != "rota" || !strings.Contains(got.Output, `"error":"tool_error"`) {
		t.Errorf("step = %+v", got)
	}
}

func TestRun_CalculatorFaultReachesModelAsText(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{toolCall("c1", "calculadora", `{"expresion": "10 / 0"}`)}},
		{Content: "No se puede dividir entre cero."},
	}}
	agent, _ := New(provider, calculatorCatalog())

	result, err := agent.Run(context.Background(), "10 entre 0")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := result.Steps[0].Output; !strings.HasPrefix(got, "Error: división por cero") {
		t.Errorf("tool output = %q", got)
	}
}

func TestRun_MaxIterations(t *testing.T) {
	loop := &ai.ChatResponse{ToolCalls: []ai.ToolCall{toolCall("c", "calculadora", `{"expresion": "1+1"}`)}}
	provider := &scriptedProvider{responses: []*ai.ChatResponse{loop, loop, loop, loop}}
	agent, _ := New(provider, calculatorCatalog(), WithMaxIterations(3))

	result, err := agent.Run(context.Background(), "bucle")
	if !errors.Is(err, ErrMaxIterations) {
		t.Fatalf("Run() error = %v, want ErrMaxIterations", err)
	}
	if len(provider.requests) != 3 || len(result.Steps) != 3 {
		t.Errorf("requests = %d, steps = %d, want 3 and 3", len(provider.requests), len(result.Steps))
	}
}

func TestRun_ProviderError(t *testing.T) {
	provider := &scriptedProvider{err: errors.New("status 401")}
	agent, _ := New(provider, nil)

	_, err := agent.Run(context.Background(), "hola")
	if err == nil || !strings.Contains(err.Error(), "status 401") {
		t.Errorf("Run() error = %v, want the provider error wrapped", err)
	}
	if _, err := agent.Ask(context.Background(), "hola"); err == nil {
		t.Error("Ask() should return the provider error")
	}
}

func TestRun_StepHandlerAndReset(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{
			toolCall("a", "calculadora", `{"expresion": "2**10"}`),
			toolCall("b", "calculadora", `sqrt(144)`),
		}},
		{Content: "1024 y 12"},
	}}
	mem := inmemory.New()
	var steps []Step
	agent, _ := New(provider, calculatorCatalog(), WithMemory(mem), WithStepHandler(func(s Step) { steps = append(steps, s) }))

	answer, err := agent.Ask(context.Background(), "calcula")
	if err != nil || answer != "1024 y 12" {
		t.Fatalf("Ask() = %q, %v", answer, err)
	}
	if len(steps) != 2 || !strings.HasSuffix(steps[0].Output, "es 1024") || !strings.HasSuffix(steps[1].Output, "es 12") {
		t.Errorf("steps = %+v", steps)
	}

	agent.Reset(context.Background())
	if n, _ := mem.Count(context.Background()); n != 0 {
		t.Errorf("memory after Reset holds %d messages", n)
	}
}

func TestRun_RecordsObservability(t *testing.T) {
	provider := &scriptedProvider{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{toolCall("c1", "calculadora", `{"expresion": "3*3"}`)}},
		{Content: "9"},
	}}
	observer := slogobs.New(slogobs.NewLogger(&strings.Builder{}, slogobs.LevelTrace))
	agent, _ := New(provider, calculatorCatalog(), WithObserver(observer))

	if _, err := agent.Run(context.Background(), "3 por 3"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := observer.CounterValue(observability.MetricAgentRuns); got != 1 {
		t.Errorf("agent runs = %d, want 1", got)
	}
	if got := observer.CounterValue(observability.MetricToolCalls); got != 1 {
		t.Errorf("tool calls = %d, want 1", got)
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(nil, nil); !errors.Is(err, ErrNoProvider) {
		t.Errorf("New(nil) error = %v, want ErrNoProvider", err)
	}
	if _, err := New(&scriptedProvider{}, nil, WithMaxIterations(0)); err == nil {
		t.Error("New() with zero iterations should fail")
	}
	agent, err := New(&scriptedProvider{}, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if len(agent.Tools()) != 0 {
		t.Errorf("Tools() = %v, want none", agent.Tools())
	}
}
