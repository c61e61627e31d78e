package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leofalp/calcagent/internal/config"
	"github.com/leofalp/calcagent/providers/ai"
)

type cannedProvider struct {
	responses []*ai.ChatResponse
	calls     int
}

func (p *cannedProvider) SendMessage(context.Context, ai.ChatRequest) (*ai.ChatResponse, error) {
	if p.calls >= len(p.responses) {
		return nil, errors.New("no more responses")
	}
	p.calls++
	return p.responses[p.calls-1], nil
}

func (p *cannedProvider) IsStopMessage(r *ai.ChatResponse) bool   { return len(r.ToolCalls) == 0 }
func (p *cannedProvider) WithAPIKey(string) ai.Provider           { return p }
func (p *cannedProvider) WithBaseURL(string) ai.Provider          { return p }
func (p *cannedProvider) WithHttpClient(*http.Client) ai.Provider { return p }

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{"DEEPSEEK_API_KEY", "SERPAPI_API_KEY", "WIKIPEDIA_LANG", "LOG_LEVEL", "CALCAGENT_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	return dir
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil || !strings.HasPrefix(out, "calcagent dev") {
		t.Errorf("version = %q, %v", out, err)
	}
}

func TestToolsCmd(t *testing.T) {
	isolate(t)

	out, err := run(t, "tools")
	if err != nil {
		t.Fatalf("tools error = %v", err)
	}
	for _, want := range []string{"calculadora", "busqueda_web", "wikipedia", "no configurada (falta SERPAPI_API_KEY)", "idioma: es"} {
		if !strings.Contains(out, want) {
			t.Errorf("tools output missing %q:\n%s", want, out)
		}
	}
}

func TestToolsCmd_JSON(t *testing.T) {
	isolate(t)

	out, err := run(t, "tools", "--json")
	if err != nil {
		t.Fatalf("tools --json error = %v", err)
	}
	var entries []struct {
		Name   string `json:"name"`
		Status struct {
			Configured bool `json:"configured"`
		} `json:"status"`
	}
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(entries) != 3 || entries[1].Name != "busqueda_web" || entries[1].Status.Configured {
		t.Errorf("entries = %+v", entries)
	}
}

func TestConfigShowRedacts(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "config.toml")
	content := "[llm]\napi_key = \"sk-abcdefghijklmnop\"\n\n[wikipedia]\nlanguage = \"en\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show error = %v", err)
	}
	if strings.Contains(out, "abcdefghijkl") || !strings.Contains(out, "sk-a...mnop") {
		t.Errorf("config show did not redact:\n%s", out)
	}
	if !strings.Contains(out, `language = "en"`) {
		t.Errorf("config show:\n%s", out)
	}

	out, _ = run(t, "config", "path", "--config", path)
	if strings.TrimSpace(out) != path {
		t.Errorf("config path = %q, want %q", out, path)
	}
}

func TestRootFailsWithoutKey(t *testing.T) {
	isolate(t)

	out, err := run(t, "--question", "hola")
	if !errors.Is(err, errReported) {
		t.Fatalf("error = %v, want errReported", err)
	}
	if !strings.Contains(out, "Error de configuración") || !strings.Contains(out, ".env") {
		t.Errorf("output = %q", out)
	}
}

func TestRootRejectsDemoWithQuestion(t *testing.T) {
	isolate(t)
	if _, err := run(t, "--demo", "--question", "hola"); err == nil {
		t.Error("--demo and --question together should fail")
	}
}

func testApp(t *testing.T, provider ai.Provider, trace io.Writer) *app {
	t.Helper()
	cfg := config.Default()
	cfg.LLM.APIKey = "sk-test"
	a, err := newApp(cfg, provider, slog.New(slog.DiscardHandler), true, trace)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	return a
}

func TestTraceWriter(t *testing.T) {
	var w bytes.Buffer
	tests := []struct {
		name string
		opts rootOptions
		want io.Writer
	}{
		{"interactive", rootOptions{}, nil},
		{"demo", rootOptions{demo: true}, &w},
		{"question", rootOptions{question: "2+2"}, &w},
	}
	for _, tt := range tests {
		if got := tt.opts.traceWriter(&w); got != tt.want {
			t.Errorf("%s: traceWriter() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestREPL_StepsOnlyInHistory(t *testing.T) {
	provider := &cannedProvider{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{{ID: "1", Function: ai.ToolCallFunction{Name: "calculadora", Arguments: `{"expresion":"2+2"}`}}}},
		{Content: "Son 4."},
	}}
	var stderr bytes.Buffer
	a := testApp(t, provider, (&rootOptions{}).traceWriter(&stderr))

	m := newREPLModel(context.Background(), a.ask, a.toolsText, a.verbose)
	m.input.SetValue("¿Cuánto es 2+2?")
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected the question to be sent")
	}
	result, err := a.ask(context.Background(), "¿Cuánto es 2+2?")
	if err != nil {
		t.Fatalf("ask() error = %v", err)
	}
	model, _ = model.(replModel).Update(answerMsg{result: result})

	if stderr.Len() != 0 {
		t.Errorf("trace written while the REPL owns the terminal: %q", stderr.String())
	}
	if n := strings.Count(model.View(), "calculadora("); n != 1 {
		t.Errorf("step shown %d times in view:\n%s", n, model.View())
	}
}

func TestRunQuestion_UsesCalculator(t *testing.T) {
	provider := &cannedProvider{responses: []*ai.ChatResponse{
		{ToolCalls: []ai.ToolCall{{ID: "1", Function: ai.ToolCallFunction{Name: "calculadora", Arguments: `{"expresion":"200 * 0.15"}`}}}},
		{Content: "El 15% de 200 es 30."},
	}}
	var trace bytes.Buffer
	a := testApp(t, provider, &trace)

	var out bytes.Buffer
	if err := runQuestion(context.Background(), a, "¿Cuál es el 15% de 200?", &out); err != nil {
		t.Fatalf("runQuestion() error = %v", err)
	}
	if !strings.Contains(out.String(), "🤖 Respuesta: El 15% de 200 es 30.") {
		t.Errorf("output = %q", out.String())
	}
	if !strings.Contains(trace.String(), "El resultado de 200 * 0.15 es 30") {
		t.Errorf("trace = %q", trace.String())
	}
}

func TestRunDemo(t *testing.T) {
	provider := &cannedProvider{responses: []*ai.ChatResponse{
		{Content: "100"},
		{Content: "30"},
		{Content: "Thomas Edison"},
	}}
	a := testApp(t, provider, nil)

	var out bytes.Buffer
	if err := runDemo(context.Background(), a, &out); err != nil {
		t.Fatalf("runDemo() error = %v", err)
	}
	text := out.String()
	for i, q := range demoQuestions {
		if !strings.Contains(text, q) {
			t.Errorf("demo output missing question %d", i+1)
		}
	}
	if !strings.Contains(text, "✅ Respuesta: Thomas Edison") {
		t.Errorf("demo output = %s", text)
	}
}

func TestNewLogger_QuietFloorsAtWarn(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "DEBUG"

	var buf bytes.Buffer
	newLogger(cfg, true, &buf).Info("hidden")
	newLogger(cfg, false, &buf).Debug("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log output = %q", buf.String())
	}
}

func TestNewApp_ToolsText(t *testing.T) {
	a := testApp(t, &cannedProvider{}, nil)
	text := a.toolsText()
	if strings.Count(text, "   • ") != 3 {
		t.Errorf("toolsText() = %s", text)
	}
}
