package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/leofalp/calcagent/core/cost"
	"github.com/leofalp/calcagent/internal/utils"
	"github.com/leofalp/calcagent/providers/ai/openai"
	"github.com/leofalp/calcagent/providers/tool/wikipedia"
)

// Config is everything the CLI needs to build the agent. It is filled once at
// startup and only read afterwards.
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Search    SearchConfig    `toml:"search"`
	Wikipedia WikipediaConfig `toml:"wikipedia"`
	Agent     AgentConfig     `toml:"agent"`
	Log       LogConfig       `toml:"log"`

	HTTPTimeout Duration `toml:"http_timeout"`
}

type LLMConfig struct {
	APIKey      string         `toml:"api_key"`
	BaseURL     string         `toml:"base_url"`
	Model       string         `toml:"model"`
	Temperature float64        `toml:"temperature"`
	MaxTokens   int            `toml:"max_tokens"`
	Pricing     cost.ModelCost `toml:"pricing"`
}

type SearchConfig struct {
	APIKey string `toml:"api_key"`
	Count  int    `toml:"count"`
}

type WikipediaConfig struct {
	Language  string `toml:"language"`
	Sentences int    `toml:"sentences"`
	MaxChars  int    `toml:"max_chars"`
}

type AgentConfig struct {
	MaxIterations int  `toml:"max_iterations"`
	MemoryWindow  int  `toml:"memory_window"` // messages kept between questions; 0 keeps all
	Verbose       bool `toml:"verbose"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as "15s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings: DeepSeek chat, three search results,
// Spanish Wikipedia.
func Default() *Config {
	return &Config{
		LLM: LLMConfig{
			BaseURL:     openai.DefaultBaseURL,
			Model:       openai.DefaultModel,
			Temperature: 0.1,
			MaxTokens:   2048,
			Pricing:     cost.DeepSeekChat,
		},
		Search: SearchConfig{Count: 3},
		Wikipedia: WikipediaConfig{
			Language:  wikipedia.DefaultLanguage,
			Sentences: wikipedia.DefaultSentences,
			MaxChars:  wikipedia.DefaultMaxChars,
		},
		Agent:       AgentConfig{MaxIterations: 8, MemoryWindow: 40, Verbose: true},
		Log:         LogConfig{Level: "WARN"},
		HTTPTimeout: Duration{utils.DefaultHTTPTimeout},
	}
}

// DefaultPath is ~/.config/calcagent/config.toml on Linux, or the platform
// equivalent.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "calcagent.toml")
	}
	return filepath.Join(dir, "calcagent", "config.toml")
}

// Load layers the sources in order: defaults, the TOML file at path, the
// .env file in the working directory, then the process environment. An
// empty path means [DefaultPath], which may be absent; an explicit path must
// exist.
func Load(path string) (*Config, error) {
	return load(path, ".env", os.LookupEnv)
}

func load(path, envFile string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if err := cfg.decodeFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	dotenv := map[string]string{}
	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			dotenv = values
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("reading %s: %w", envFile, err)
		}
	}

	// The real environment wins over .env, as with godotenv.Load.
	get := func(key string) (string, bool) {
		if value, ok := lookup(key); ok {
			return value, true
		}
		value, ok := dotenv[key]
		return value, ok
	}
	if err := cfg.applyEnv(get); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	meta, err := toml.DecodeFile(path, c)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return err
		}
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		slog.Warn("unknown keys in config file", "path", path, "keys", strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv(get func(string) (string, bool)) error {
	setString := func(target *string, keys ...string) {
		for _, key := range keys {
			if value, ok := get(key); ok && strings.TrimSpace(value) != "" {
				*target = strings.TrimSpace(value)
				return
			}
		}
	}
	setString(&c.LLM.APIKey, "DEEPSEEK_API_KEY")
	setString(&c.LLM.BaseURL, "DEEPSEEK_BASE_URL")
	setString(&c.LLM.Model, "DEEPSEEK_MODEL")
	setString(&c.Search.APIKey, "SERPAPI_API_KEY")
	setString(&c.Wikipedia.Language, "WIKIPEDIA_LANG")
	setString(&c.Log.Level, "CALCAGENT_LOG_LEVEL", "LOG_LEVEL")

	if value, ok := get("AGENT_MAX_ITERATIONS"); ok && value != "" {
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("AGENT_MAX_ITERATIONS: %w", err)
		}
		c.Agent.MaxIterations = n
	}
	if value, ok := get("AGENT_TEMPERATURE"); ok && value != "" {
		t, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("AGENT_TEMPERATURE: %w", err)
		}
		c.LLM.Temperature = t
	}
	if value, ok := get("HTTP_TIMEOUT"); ok && value != "" {
		if err := c.HTTPTimeout.UnmarshalText([]byte(value)); err != nil {
			return fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
