package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/leofalp/calcagent/internal/config"
	"github.com/leofalp/calcagent/internal/utils"
	"github.com/leofalp/calcagent/patterns/react"
	"github.com/leofalp/calcagent/providers/ai"
	"github.com/leofalp/calcagent/providers/ai/openai"
	"github.com/leofalp/calcagent/providers/memory"
	"github.com/leofalp/calcagent/providers/memory/inmemory"
	slogobs "github.com/leofalp/calcagent/providers/observability/slog"
	"github.com/leofalp/calcagent/providers/tool"
	"github.com/leofalp/calcagent/providers/tool/toolkit"
)

// app wires configuration, capabilities and the agent for one CLI process.
type app struct {
	cfg          *config.Config
	capabilities []*tool.Capability
	agent        *react.Agent
	observer     *slogobs.Observer
	verbose      bool
}

// assemble builds the capabilities from cfg alone; it needs no LLM key.
func assemble(cfg *config.Config) []*tool.Capability {
	return toolkit.AssembleWithConfig(toolkit.Config{
		SearchKey:          cfg.Search.APIKey,
		SearchCount:        cfg.Search.Count,
		Language:           cfg.Wikipedia.Language,
		WikipediaSentences: cfg.Wikipedia.Sentences,
		WikipediaMaxChars:  cfg.Wikipedia.MaxChars,
		HTTPClient:         utils.NewHTTPClient(cfg.HTTPTimeout.Duration),
	})
}

// newLogger honors the configured level; quiet never goes below WARN.
func newLogger(cfg *config.Config, quiet bool, w io.Writer) *slog.Logger {
	level, err := slogobs.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		level = slog.LevelWarn
	}
	if quiet && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	return slogobs.NewLogger(w, level)
}

// newApp validates cfg and builds the agent. trace, when non-nil, receives
// each tool step as it happens.
func newApp(cfg *config.Config, provider ai.Provider, logger *slog.Logger, verbose bool, trace io.Writer) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Completions are slower than tool lookups.
	llmTimeout := 4 * cfg.HTTPTimeout.Duration
	if provider == nil {
		provider = openai.New().
			WithModel(cfg.LLM.Model).
			WithAPIKey(cfg.LLM.APIKey).
			WithBaseURL(cfg.LLM.BaseURL).
			WithHttpClient(utils.NewHTTPClient(llmTimeout))
	}

	var mem memory.Provider = inmemory.New()
	if cfg.Agent.MemoryWindow > 0 {
		mem = inmemory.NewWindowed(cfg.Agent.MemoryWindow)
	}

	a := &app{
		cfg:          cfg,
		capabilities: assemble(cfg),
		observer:     slogobs.New(logger),
		verbose:      verbose,
	}

	options := []react.Option{
		react.WithSystemPrompt(systemPrompt),
		react.WithModel(cfg.LLM.Model),
		react.WithGenerationConfig(ai.GenerationConfig{
			MaxTokens:   cfg.LLM.MaxTokens,
			Temperature: float32(cfg.LLM.Temperature),
		}),
		react.WithMaxIterations(cfg.Agent.MaxIterations),
		react.WithMemory(mem),
		react.WithObserver(a.observer),
		react.WithModelCost(cfg.LLM.Pricing),
		react.WithMiddleware(
			react.NewLoggingMiddleware(logger),
			react.NewTimeoutMiddleware(llmTimeout),
		),
	}
	if verbose && trace != nil {
		options = append(options, react.WithStepHandler(func(s react.Step) {
			fmt.Fprintln(trace, formatStep(s))
		}))
	}

	agent, err := react.New(provider, tool.FromCapabilities(a.capabilities), options...)
	if err != nil {
		return nil, err
	}
	a.agent = agent
	return a, nil
}

func (a *app) ask(ctx context.Context, question string) (*react.Result, error) {
	return a.agent.Run(ctx, question)
}

func (a *app) toolsText() string {
	return toolsText(toolkit.Status(a.capabilities))
}

func toolkitStatus(cfg *config.Config) []toolkit.Entry {
	return toolkit.Status(assemble(cfg))
}

// formatStep renders one tool call of the reasoning trace.
func formatStep(s react.Step) string {
	output := utils.TruncateText(s.Output, 160)
	if s.Unknown {
		return mutedStyle.Render(fmt.Sprintf("   ⚠️  herramienta desconocida: %s", s.Tool))
	}
	return mutedStyle.Render(fmt.Sprintf("   🔧 %s(%s) → %s", s.Tool, utils.TruncateText(s.Arguments, 80), output))
}
