package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is probed when no config file is named on the command line.
const DefaultPath = "config/config.yaml"

// Config holds the application configuration.
type Config struct {
	Testing     Testing           `yaml:"testing"`
	AI          AI                `yaml:"ai"`
	Report      Report            `yaml:"report"`
	Environment map[string]string `yaml:"api_environment"`
	Database    Database          `yaml:"database"`
}

// Testing holds test generation and execution configuration.
type Testing struct {
	BaseURL          string   `yaml:"base_url"`
	TimeoutSeconds   int      `yaml:"timeout_seconds"`
	RepeatCount      int      `yaml:"repeat_count"`
	MaxResponseMS    float64  `yaml:"max_response_ms"`
	RejectionSignal  string   `yaml:"rejection_signal"`
	RejectNegatives  bool     `yaml:"reject_negatives"`
	NonNegativeNames []string `yaml:"non_negative_names"`
	Seed             int64    `yaml:"seed"`
	SignRequests     bool     `yaml:"sign_requests"`
	SuiteName        string   `yaml:"suite_name"`
}

// AI holds the LLM provider configuration.
type AI struct {
	Provider  string `yaml:"provider"`
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	Endpoint  string `yaml:"endpoint"`
	MaxTokens int    `yaml:"max_tokens"`
}

// Report holds report output configuration.
type Report struct {
	OutputDir    string   `yaml:"output_dir"`
	Format       []string `yaml:"format"`
	GenerateHTML bool     `yaml:"generate_html"`
}

// Database holds the connection used to seed example values from live
// tables.
type Database struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// Load reads the configuration file, applies environment overrides, and
// fills defaults. An explicitly named file must exist; the default path is
// optional and its absence yields the default configuration.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if explicit {
			return nil, fmt.Errorf("config file not found at %s", path)
		}
		cfg := &Config{}
		cfg.applyEnv()
		cfg.applyDefaults()
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.AI.APIKey = key
	}
	if url := os.Getenv("API_TEST_BASE_URL"); url != "" {
		c.Testing.BaseURL = url
	}
	if c.Environment == nil {
		c.Environment = make(map[string]string)
	}
	if key := os.Getenv("UCLOUD_PUBLIC_KEY"); key != "" {
		c.Environment["PublicKey"] = key
	}
	if key := os.Getenv("UCLOUD_PRIVATE_KEY"); key != "" {
		c.Environment["PrivateKey"] = key
	}
}

func (c *Config) applyDefaults() {
	if c.Testing.TimeoutSeconds == 0 {
		c.Testing.TimeoutSeconds = 30
	}
	if c.Testing.RepeatCount == 0 {
		c.Testing.RepeatCount = 3
	}
	if c.Testing.MaxResponseMS == 0 {
		c.Testing.MaxResponseMS = 2000
	}
	if c.Testing.RejectionSignal == "" {
		c.Testing.RejectionSignal = "http_400"
	}
	if c.Testing.SuiteName == "" {
		c.Testing.SuiteName = "API Test Suite"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openai"
	}
	if c.AI.Model == "" {
		c.AI.Model = "gpt-3.5-turbo"
	}
	if c.AI.MaxTokens == 0 {
		c.AI.MaxTokens = 4000
	}
	if c.Report.OutputDir == "" {
		c.Report.OutputDir = "reports"
	}
	if len(c.Report.Format) == 0 {
		c.Report.Format = []string{"json"}
	}
	if c.Environment == nil {
		c.Environment = make(map[string]string)
	}
	for key, value := range defaultEnvironment {
		if _, ok := c.Environment[key]; !ok {
			c.Environment[key] = value
		}
	}
}

// defaultEnvironment seeds the placeholder values a fresh setup needs to
// fire requests at the sandbox region. Keys never overwrite user values.
var defaultEnvironment = map[string]string{
	"Region":    "cn-bj2",
	"Zone":      "cn-bj2-04",
	"ProjectId": "org-123456",
}
