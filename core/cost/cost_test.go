package cost

import (
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-12
}

func TestToolMetrics_String(t *testing.T) {
	tests := []struct {
		metrics ToolMetrics
		want    string
	}{
		{ToolMetrics{Amount: 0.01}, "0.0100 USD"},
		{ToolMetrics{Amount: 0.015, Currency: "EUR", Description: "por búsqueda"}, "0.0150 EUR (por búsqueda)"},
	}
	for _, tt := range tests {
		if got := tt.metrics.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestModelCost_Total(t *testing.T) {
	mc := ModelCost{InputCostPerMillion: 1, OutputCostPerMillion: 2, CachedInputCostPerMillion: 0.5}

	tests := []struct {
		name                       string
		prompt, completion, cached int
		want                       float64
	}{
		{"no cache", 1_000_000, 500_000, 0, 2.0},
		{"partial cache", 1_000_000, 0, 400_000, 0.6 + 0.2},
		{"cache larger than prompt ignored", 100, 0, 200, 0.0001},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mc.Total(tt.prompt, tt.completion, tt.cached); !almostEqual(got, tt.want) {
				t.Errorf("Total() = %v, want %v", got, tt.want)
			}
		})
	}

	noCacheRate := ModelCost{InputCostPerMillion: 1}
	if got := noCacheRate.Total(1_000_000, 0, 500_000); !almostEqual(got, 1.0) {
		t.Errorf("expected cached tokens billed at input rate, got %v", got)
	}
}

func TestRunSummary(t *testing.T) {
	var s RunSummary
	s.Iterations = 2
	s.AddToolCall("calculadora", nil)
	s.AddToolCall("busqueda_web", &ToolMetrics{Amount: 0.01})
	s.AddToolCall("calculadora", nil)
	s.AddUsage(1_000_000, 0, 0, &DeepSeekChat)

	if s.TotalToolCalls() != 3 {
		t.Errorf("expected 3 tool calls, got %d", s.TotalToolCalls())
	}
	if !almostEqual(s.TotalCost(), 0.01+0.27) {
		t.Errorf("unexpected total cost %v", s.TotalCost())
	}

	line := s.String()
	for _, want := range []string{"iteraciones: 2", "busqueda_web×1, calculadora×2", "tokens: 1000000+0"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q in %q", want, line)
		}
	}
}

func TestRunSummary_Empty(t *testing.T) {
	var s RunSummary
	if !strings.Contains(s.String(), "herramientas: ninguna") {
		t.Errorf("unexpected summary %q", s.String())
	}
}
