package cost

import (
	"fmt"
	"sort"
	"strings"
)

// ToolMetrics describes what one call of a capability costs. Capabilities
// backed by a paid API declare it; local ones leave it nil.
type ToolMetrics struct {
	Amount      float64 `json:"amount"`             // per call
	Currency    string  `json:"currency,omitempty"` // defaults to USD
	Description string  `json:"description,omitempty"`
}

func (tm ToolMetrics) String() string {
	currency := tm.Currency
	if currency == "" {
		currency = "USD"
	}
	result := fmt.Sprintf("%.4f %s", tm.Amount, currency)
	if tm.Description != "" {
		result = fmt.Sprintf("%s (%s)", result, tm.Description)
	}
	return result
}

// ModelCost is a per-million-token price list.
type ModelCost struct {
	InputCostPerMillion       float64 `json:"input_cost_per_million" toml:"input_cost_per_million"`
	OutputCostPerMillion      float64 `json:"output_cost_per_million" toml:"output_cost_per_million"`
	CachedInputCostPerMillion float64 `json:"cached_input_cost_per_million,omitempty" toml:"cached_input_cost_per_million"`
}

// Total prices a request. Cached prompt tokens are billed at the cached
// rate when one is set, at the input rate otherwise.
func (mc ModelCost) Total(promptTokens, completionTokens, cachedTokens int) float64 {
	uncached := promptTokens - cachedTokens
	if uncached < 0 || mc.CachedInputCostPerMillion == 0 {
		uncached = promptTokens
		cachedTokens = 0
	}
	return perMillion(uncached, mc.InputCostPerMillion) +
		perMillion(cachedTokens, mc.CachedInputCostPerMillion) +
		perMillion(completionTokens, mc.OutputCostPerMillion)
}

func (mc ModelCost) String() string {
	return fmt.Sprintf("Input: $%.4f/M, Output: $%.4f/M", mc.InputCostPerMillion, mc.OutputCostPerMillion)
}

func perMillion(tokens int, price float64) float64 {
	return float64(tokens) / 1_000_000.0 * price
}

// DeepSeekChat is the list price of deepseek-chat.
var DeepSeekChat = ModelCost{
	InputCostPerMillion:       0.27,
	OutputCostPerMillion:      1.10,
	CachedInputCostPerMillion: 0.07,
}

// RunSummary accumulates what one agent run consumed. It is not safe for
// concurrent use; the agent loop is sequential.
type RunSummary struct {
	Iterations       int            `json:"iterations"`
	ToolCalls        map[string]int `json:"tool_calls,omitempty"`
	ToolCost         float64        `json:"tool_cost"`
	PromptTokens     int            `json:"prompt_tokens"`
	CompletionTokens int            `json:"completion_tokens"`
	CachedTokens     int            `json:"cached_tokens"`
	ModelCost        float64        `json:"model_cost"`
}

// AddToolCall records one call of name, priced by metrics when non-nil.
func (s *RunSummary) AddToolCall(name string, metrics *ToolMetrics) {
	if s.ToolCalls == nil {
		s.ToolCalls = make(map[string]int)
	}
	s.ToolCalls[name]++
	if metrics != nil {
		s.ToolCost += metrics.Amount
	}
}

// AddUsage records token usage of one model request, priced by model when
// non-nil.
func (s *RunSummary) AddUsage(promptTokens, completionTokens, cachedTokens int, model *ModelCost) {
	s.PromptTokens += promptTokens
	s.CompletionTokens += completionTokens
	s.CachedTokens += cachedTokens
	if model != nil {
		s.ModelCost += model.Total(promptTokens, completionTokens, cachedTokens)
	}
}

func (s RunSummary) TotalCost() float64 {
	return s.ToolCost + s.ModelCost
}

func (s RunSummary) TotalToolCalls() int {
	total := 0
	for _, n := range s.ToolCalls {
		total += n
	}
	return total
}

// String renders a one-line Spanish summary for the CLI trace.
func (s RunSummary) String() string {
	names := make([]string, 0, len(s.ToolCalls))
	for name := range s.ToolCalls {
		names = append(names, name)
	}
	sort.Strings(names)

	calls := make([]string, 0, len(names))
	for _, name := range names {
		calls = append(calls, fmt.Sprintf("%s×%d", name, s.ToolCalls[name]))
	}
	tools := "ninguna"
	if len(calls) > 0 {
		tools = strings.Join(calls, ", ")
	}

	return fmt.Sprintf("iteraciones: %d | herramientas: %s | tokens: %d+%d | coste: $%.6f",
		s.Iterations, tools, s.PromptTokens, s.CompletionTokens, s.TotalCost())
}
