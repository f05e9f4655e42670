// Package config loads agent configuration.
//
// Precedence, lowest first: Default(), the YAML file, AGT_* environment
// variables, command-line flags (applied by the caller).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Providers understood by the model section.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
)

// DefaultSystemPrompt seeds every new conversation.
const DefaultSystemPrompt = `You are an AI agent that can perform tasks by using available tools.
If a user asks a question that requires calculation, use the multiply_numbers tool.
If a user asks about files, first list the files before reading them.
When you are done, terminate the conversation by using the "terminate" tool with a final, friendly message.
Always provide the answer and then terminate in the same step if possible.`

// ErrMissingAPIKey is returned when no credential is configured for the model provider.
var ErrMissingAPIKey = errors.New("model API key not configured")

type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Agent     AgentConfig     `yaml:"agent"`
	Tools     ToolsConfig     `yaml:"tools"`
	Log       LogConfig       `yaml:"log"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type ModelConfig struct {
	Provider  string `yaml:"provider"`   // "anthropic" (default) or "openrouter"
	Name      string `yaml:"name"`       // provider model id
	BaseURL   string `yaml:"base_url"`   // optional endpoint override
	MaxTokens int    `yaml:"max_tokens"` // default 1024
	// Timeout bounds a single completion request. Expiry is reported to the
	// user as a retryable failure.
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RequestsPerMinute int           `yaml:"requests_per_minute"` // 0 = unlimited
	APIKey            string        `yaml:"api_key"`
	APIKeyEnv         string        `yaml:"api_key_env"` // env var holding the key
}

type AgentConfig struct {
	MaxIterations int    `yaml:"max_iterations"` // default 10
	SystemPrompt  string `yaml:"system_prompt"`
}

type ToolsConfig struct {
	// WorkspaceRoot, when set, makes list_files/read_file operate on this
	// directory instead of the built-in demo files.
	WorkspaceRoot string `yaml:"workspace_root"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
}

type TelemetryConfig struct {
	ObserveJSON bool   `yaml:"observe_json"`
	Dir         string `yaml:"dir"`
}

// Default returns a Config populated with all default values.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:   ProviderAnthropic,
			Name:       "claude-3-7-sonnet-latest",
			MaxTokens:  1024,
			Timeout:    60 * time.Second,
			MaxRetries: 2,
		},
		Agent: AgentConfig{
			MaxIterations: 10,
			SystemPrompt:  DefaultSystemPrompt,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Telemetry: TelemetryConfig{
			Dir: ".agent",
		},
	}
}

// Load reads the YAML file at path over the defaults. Environment variables
// referenced as ${VAR} in the file are expanded. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from AGT_* variables looked up through getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	str("AGT_MODEL_PROVIDER", &c.Model.Provider)
	str("AGT_MODEL", &c.Model.Name)
	str("AGT_MODEL_BASE_URL", &c.Model.BaseURL)
	str("AGT_WORKSPACE_ROOT", &c.Tools.WorkspaceRoot)
	str("AGT_LOG_LEVEL", &c.Log.Level)
	str("AGT_LOG_FORMAT", &c.Log.Format)
	str("AGT_TELEMETRY_DIR", &c.Telemetry.Dir)

	if v := getenv("AGT_MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid AGT_MAX_ITERATIONS %q: %w", v, err)
		}
		c.Agent.MaxIterations = n
	}
	if v := getenv("AGT_MODEL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid AGT_MODEL_TIMEOUT %q: %w", v, err)
		}
		c.Model.Timeout = d
	}
	if v := getenv("AGT_OBSERVE_JSON"); v != "" {
		c.Telemetry.ObserveJSON = v == "1"
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error
	switch c.Model.Provider {
	case ProviderAnthropic, ProviderOpenRouter:
	default:
		errs = append(errs, fmt.Errorf("model.provider: unknown provider %q", c.Model.Provider))
	}
	if strings.TrimSpace(c.Model.Name) == "" {
		errs = append(errs, errors.New("model.name: must not be empty"))
	}
	if c.Model.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("model.max_tokens: must be positive, got %d", c.Model.MaxTokens))
	}
	if c.Model.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("model.timeout: must be positive, got %s", c.Model.Timeout))
	}
	if c.Model.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("model.max_retries: must not be negative, got %d", c.Model.MaxRetries))
	}
	if c.Model.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("model.requests_per_minute: must not be negative, got %d", c.Model.RequestsPerMinute))
	}
	if c.Agent.MaxIterations <= 0 {
		errs = append(errs, fmt.Errorf("agent.max_iterations: must be positive, got %d", c.Agent.MaxIterations))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format: must be console or json, got %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// APIKeyEnvName returns the environment variable consulted for the API key.
func (c *Config) APIKeyEnvName() string {
	if c.Model.APIKeyEnv != "" {
		return c.Model.APIKeyEnv
	}
	if c.Model.Provider == ProviderOpenRouter {
		return "OPENROUTER_API_KEY"
	}
	return "ANTHROPIC_API_KEY"
}

// ResolveAPIKey returns the configured key, preferring the explicit value over
// the environment. A missing key is fatal for the whole session.
func (c *Config) ResolveAPIKey(getenv func(string) string) (string, error) {
	if k := strings.TrimSpace(c.Model.APIKey); k != "" {
		return k, nil
	}
	name := c.APIKeyEnvName()
	if k := strings.TrimSpace(getenv(name)); k != "" {
		return k, nil
	}
	return "", fmt.Errorf("%w: set %s or model.api_key", ErrMissingAPIKey, name)
}
