package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LLM.Model != "deepseek-chat" || cfg.LLM.BaseURL != "https://api.deepseek.com/v1" {
		t.Errorf("LLM defaults = %+v", cfg.LLM)
	}
	if cfg.Wikipedia.Language != "es" || cfg.Search.Count != 3 {
		t.Errorf("tool defaults = %+v / %+v", cfg.Wikipedia, cfg.Search)
	}
	if cfg.HTTPTimeout.Duration != 15*time.Second {
		t.Errorf("HTTPTimeout = %v, want 15s", cfg.HTTPTimeout)
	}
}

func TestLoad_Layering(t *testing.T) {
	dir := t.TempDir()
	configPath := writeFile(t, dir, "config.toml", `
http_timeout = "30s"

[llm]
model = "deepseek-reasoner"
temperature = 0.5

[search]
api_key = "from-file"
count = 5

[wikipedia]
language = "en"
`)
	envPath := writeFile(t, dir, ".env", "DEEPSEEK_API_KEY=from-dotenv\nSERPAPI_API_KEY=from-dotenv\nWIKIPEDIA_LANG=fr\n")

	cfg, err := load(configPath, envPath, env(map[string]string{
		"SERPAPI_API_KEY":      "from-env",
		"AGENT_MAX_ITERATIONS": "4",
		"LOG_LEVEL":            "debug",
	}))
	if err != nil {
		t.Fatalf("load() error = %v", err)
	}

	checks := []struct {
		name string
		got  any
		want any
	}{
		{"file overrides default model", cfg.LLM.Model, "deepseek-reasoner"},
		{"file temperature", cfg.LLM.Temperature, 0.5},
		{"default base url kept", cfg.LLM.BaseURL, "https://api.deepseek.com/v1"},
		{".env fills llm key", cfg.LLM.APIKey, "from-dotenv"},
		{"env beats .env and file", cfg.Search.APIKey, "from-env"},
		{".env beats file", cfg.Wikipedia.Language, "fr"},
		{"file count", cfg.Search.Count, 5},
		{"env iterations", cfg.Agent.MaxIterations, 4},
		{"env log level", cfg.Log.Level, "debug"},
		{"file timeout", cfg.HTTPTimeout.Duration, 30 * time.Second},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	dir := t.TempDir()

	if _, err := load(filepath.Join(dir, "nope.toml"), "", env(nil)); err == nil {
		t.Error("explicit missing config file should fail")
	}

	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	cfg, err := load("", filepath.Join(dir, ".env"), env(map[string]string{"DEEPSEEK_API_KEY": "k"}))
	if err != nil {
		t.Fatalf("load() without files error = %v", err)
	}
	if cfg.LLM.APIKey != "k" {
		t.Errorf("APIKey = %q, want k", cfg.LLM.APIKey)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	broken := writeFile(t, dir, "broken.toml", "[llm\nmodel = ")

	if _, err := load(broken, "", env(nil)); err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("broken TOML error = %v", err)
	}

	tests := map[string]string{
		"AGENT_MAX_ITERATIONS": "muchas",
		"AGENT_TEMPERATURE":    "tibia",
		"HTTP_TIMEOUT":         "15",
	}
	for key, value := range tests {
		_, err := load("", "", env(map[string]string{key: value}))
		if err == nil || !strings.Contains(err.Error(), key) {
			t.Errorf("%s=%q: error = %v, want it to name the variable", key, value, err)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.LLM.APIKey = "sk-test"
		return cfg
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing key", func(c *Config) { c.LLM.APIKey = "" }, "DEEPSEEK_API_KEY"},
		{"empty model", func(c *Config) { c.LLM.Model = "" }, "llm.model"},
		{"temperature", func(c *Config) { c.LLM.Temperature = 3 }, "llm.temperature"},
		{"iterations", func(c *Config) { c.Agent.MaxIterations = 0 }, "agent.max_iterations"},
		{"search count", func(c *Config) { c.Search.Count = 11 }, "search.count"},
		{"log level", func(c *Config) { c.Log.Level = "LOUD" }, "log.level"},
		{"memory window", func(c *Config) { c.Agent.MemoryWindow = -1 }, "agent.memory_window"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestRedactAndEncode(t *testing.T) {
	cfg := Default()
	cfg.LLM.APIKey = "sk-1234567890abcdef"
	cfg.Search.APIKey = "short"

	redacted := cfg.Redact()
	if redacted.LLM.APIKey != "sk-1...cdef" || redacted.Search.APIKey != "****" {
		t.Errorf("Redact() keys = %q, %q", redacted.LLM.APIKey, redacted.Search.APIKey)
	}
	if cfg.LLM.APIKey != "sk-1234567890abcdef" {
		t.Error("Redact() modified the original")
	}

	var buf bytes.Buffer
	if err := redacted.Encode(&buf); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "1234567890") {
		t.Errorf("encoded config leaks the key:\n%s", out)
	}
	if !strings.Contains(out, `http_timeout = "15s"`) || !strings.Contains(out, "[llm.pricing]") {
		t.Errorf("encoded config:\n%s", out)
	}

	var decoded Config
	if _, err := toml.Decode(out, &decoded); err != nil {
		t.Fatalf("encoded config does not decode: %v", err)
	}
	if decoded.HTTPTimeout.Duration != 15*time.Second || decoded.Wikipedia.Language != "es" {
		t.Errorf("decoded = %+v", decoded)
	}
}
