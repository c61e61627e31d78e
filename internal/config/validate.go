package config

import (
	"fmt"

	slogobs "github.com/leofalp/calcagent/providers/observability/slog"
)

// Validate checks that the agent can start. Only the LLM key is mandatory;
// search and Wikipedia degrade to "unconfigured" instead.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return fmt.Errorf("llm.api_key es obligatoria: define DEEPSEEK_API_KEY en el entorno o en .env")
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model no puede estar vacío")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature debe estar entre 0 y 2, es %g", c.LLM.Temperature)
	}
	if c.LLM.MaxTokens < 0 {
		return fmt.Errorf("llm.max_tokens no puede ser negativo")
	}
	if c.Agent.MaxIterations < 1 || c.Agent.MaxIterations > 50 {
		return fmt.Errorf("agent.max_iterations debe estar entre 1 y 50, es %d", c.Agent.MaxIterations)
	}
	if c.Agent.MemoryWindow < 0 {
		return fmt.Errorf("agent.memory_window no puede ser negativo")
	}
	if c.Search.Count < 0 || c.Search.Count > 10 {
		return fmt.Errorf("search.count debe estar entre 1 y 10, es %d", c.Search.Count)
	}
	if c.HTTPTimeout.Duration < 0 {
		return fmt.Errorf("http_timeout no puede ser negativo")
	}
	if _, err := slogobs.ParseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// Redact returns a copy of the config with API keys masked for display.
func (c *Config) Redact() *Config {
	copy := *c
	copy.LLM.APIKey = redactKey(c.LLM.APIKey)
	copy.Search.APIKey = redactKey(c.Search.APIKey)
	return &copy
}

func redactKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
