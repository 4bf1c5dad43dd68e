// Package config handles agentkit configuration loading.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultSearchPaths returns the config file search order used when no
// explicit path is given: ./config.yaml, then ~/.config/agentkit/config.yaml.
func DefaultSearchPaths() []string {
	paths := []string{"config.yaml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "agentkit", "config.yaml"))
	}

	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must exist.
// Otherwise, searches DefaultSearchPaths and returns the first that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Config holds all agentkit configuration.
type Config struct {
	Listen ListenConfig `yaml:"listen"`
	Model  ModelConfig  `yaml:"model"`
	Agent  AgentConfig  `yaml:"agent"`
	Log    LogConfig    `yaml:"log"`
}

// ListenConfig configures the HTTP server.
type ListenConfig struct {
	Address     string   `yaml:"address"`
	Port        int      `yaml:"port"`
	CORSOrigins []string `yaml:"cors_origins"` // empty means any origin
}

// Addr returns the host:port the server listens on.
func (l ListenConfig) Addr() string {
	return net.JoinHostPort(l.Address, strconv.Itoa(l.Port))
}

// ModelConfig selects and tunes the chat model provider.
type ModelConfig struct {
	Provider    string  `yaml:"provider"` // openai, anthropic, mock
	Name        string  `yaml:"name"`
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens"`
}

// AgentConfig describes the agent built for every invocation.
type AgentConfig struct {
	Name             string   `yaml:"name"`
	Instruction      string   `yaml:"instruction"` // text/template: {{.Name}} {{.Date}} {{.Tools}}
	MaxSteps         int      `yaml:"max_steps"`
	Tools            []string `yaml:"tools"`
	MaxParallelTools int      `yaml:"max_parallel_tools"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Providers understood by the agent factory.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Load reads configuration from a YAML file on top of Default. ${VAR}
// references are expanded from the environment and empty API keys fall back
// to the provider's standard environment variable.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()

	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files (default
// ".env") into the process environment. Missing files are ignored and
// existing variables are never overwritten.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	return nil
}

// Default returns a default configuration.
func Default() *Config {
	return &Config{
		Listen: ListenConfig{Port: 8080},
		Model: ModelConfig{
			Provider:    ProviderOpenAI,
			Name:        "gpt-4o-mini",
			Temperature: 0.7,
			MaxTokens:   4096,
		},
		Agent: AgentConfig{
			Name:        "assistant",
			Instruction: "You are {{.Name}}, a helpful assistant. Today is {{.Date}}.",
			MaxSteps:    10,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// ApplyEnv fills an empty model API key from OPENAI_API_KEY or
// ANTHROPIC_API_KEY depending on the provider.
func (c *Config) ApplyEnv() {
	if c.Model.APIKey != "" {
		return
	}

	switch strings.ToLower(c.Model.Provider) {
	case ProviderOpenAI:
		c.Model.APIKey = os.Getenv("OPENAI_API_KEY")
	case ProviderAnthropic:
		c.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Listen.Port < 0 || c.Listen.Port > 65535 {
		errs = append(errs, fmt.Errorf("listen.port %d out of range", c.Listen.Port))
	}

	switch strings.ToLower(c.Model.Provider) {
	case ProviderOpenAI, ProviderAnthropic, ProviderMock:
	default:
		errs = append(errs, fmt.Errorf("model.provider %q must be one of openai, anthropic, mock", c.Model.Provider))
	}

	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		errs = append(errs, fmt.Errorf("model.temperature %.2f out of range [0, 2]", c.Model.Temperature))
	}

	if c.Model.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("model.max_tokens must not be negative"))
	}

	if c.Agent.MaxSteps < 1 {
		errs = append(errs, fmt.Errorf("agent.max_steps must be at least 1"))
	}

	if c.Agent.MaxParallelTools < 0 {
		errs = append(errs, fmt.Errorf("agent.max_parallel_tools must not be negative"))
	}

	switch strings.ToLower(c.Log.Format) {
	case "", "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log.format %q must be json or text", c.Log.Format))
	}

	return errors.Join(errs...)
}
