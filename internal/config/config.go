package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the virtualta API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Answer   AnswerConfig   `yaml:"answer"`
	Stats    StatsConfig    `yaml:"stats"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int     `yaml:"port"`
	ReadTimeoutSec  int     `yaml:"read_timeout_sec"`
	WriteTimeoutSec int     `yaml:"write_timeout_sec"`
	ShutdownSec     int     `yaml:"shutdown_timeout_sec"`
	RequestSec      int     `yaml:"request_timeout_sec"`
	RatePerMinute   float64 `yaml:"rate_per_minute"` // per-IP, 0 disables limiting
	RateBurst       int     `yaml:"rate_burst"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OpenAIConfig holds generative backend settings. An empty APIKey disables
// the AI path entirely; answers then come from the rule-based path.
type OpenAIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// AnswerConfig holds answer composition settings.
type AnswerConfig struct {
	Course       string     `yaml:"course"`        // course name used in the system instruction
	SearchLimit  int        `yaml:"search_limit"`  // evidence items retrieved per question
	SnippetChars int        `yaml:"snippet_chars"` // rule-based excerpt length
	Advisories   []Advisory `yaml:"advisories"`    // keyword-triggered advice, operator-extensible
}

// Advisory appends a fixed sentence to rule-based answers when any of its
// keywords appears in the lowercased question.
type Advisory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Advice   string   `yaml:"advice"`
}

// StatsConfig bounds the "relevant posts" window reported by stats.
type StatsConfig struct {
	WindowFrom string `yaml:"window_from"` // YYYY-MM-DD, empty disables the window
	WindowTo   string `yaml:"window_to"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RequestSec <= 0 {
		c.HTTP.RequestSec = 28
	}
	if c.HTTP.RateBurst <= 0 {
		c.HTTP.RateBurst = 5
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join("data", "virtualta.db")
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-3.5-turbo"
	}
	if c.OpenAI.MaxTokens <= 0 {
		c.OpenAI.MaxTokens = 500
	}
	if c.OpenAI.Temperature <= 0 {
		c.OpenAI.Temperature = 0.7
	}
	if c.Answer.Course == "" {
		c.Answer.Course = "IIT Madras Tools in Data Science (TDS)"
	}
	if c.Answer.SearchLimit <= 0 {
		c.Answer.SearchLimit = 5
	}
	if c.Answer.SnippetChars <= 0 {
		c.Answer.SnippetChars = 300
	}
	if c.Answer.Advisories == nil {
		c.Answer.Advisories = DefaultAdvisories()
	}
}

// DefaultAdvisories returns the built-in keyword advisory table.
func DefaultAdvisories() []Advisory {
	return []Advisory{
		{
			Name:     "gpt-models",
			Keywords: []string{"gpt", "openai"},
			Advice: "For GPT-related questions, make sure to use the exact model specified " +
				"in the assignment instructions, even if other models are available through proxies.",
		},
		{
			Name:     "pandas",
			Keywords: []string{"pandas", "dataframe"},
			Advice: "For pandas-related questions, refer to the official documentation " +
				"and the course examples provided in the lectures.",
		},
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RatePerMinute < 0 {
		return fmt.Errorf("http.rate_per_minute must not be negative, got %v", c.HTTP.RatePerMinute)
	}
	for i, a := range c.Answer.Advisories {
		if len(a.Keywords) == 0 {
			return fmt.Errorf("answer.advisories[%d] (%s): keywords is required", i, a.Name)
		}
		if a.Advice == "" {
			return fmt.Errorf("answer.advisories[%d] (%s): advice is required", i, a.Name)
		}
	}
	if (c.Stats.WindowFrom == "") != (c.Stats.WindowTo == "") {
		return fmt.Errorf("stats.window_from and stats.window_to must be set together")
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
