package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server          ServerConfig   `yaml:"server"`
	Hue             HueConfig      `yaml:"hue"`
	LLM             LLMConfig      `yaml:"llm"`
	Webhook         WebhookConfig  `yaml:"webhook"`
	TV              TVConfig       `yaml:"tv"`
	Catalog         CatalogConfig  `yaml:"catalog"`
	Database        DatabaseConfig `yaml:"database"`
	Log             LogConfig      `yaml:"log"`
	Metrics         MetricsConfig  `yaml:"metrics"`
	EventBus        EventBusConfig `yaml:"eventbus"`
	ShutdownTimeout Duration       `yaml:"shutdown_timeout"` // General shutdown timeout for graceful stops
}

// ServerConfig contains HTTP listener settings
type ServerConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	ReadTimeout  Duration `yaml:"read_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// HueConfig contains Hue bridge connection settings
type HueConfig struct {
	Bridge       string   `yaml:"bridge"`
	Token        string   `yaml:"token"`
	Timeout      Duration `yaml:"timeout"`        // HTTP timeout for Hue API requests
	RateLimitRPS float64  `yaml:"rate_limit_rps"` // Max requests per second to the bridge
}

// LLMConfig contains language model settings
type LLMConfig struct {
	APIKey         string   `yaml:"api_key"`
	BaseURL        string   `yaml:"base_url"`
	Model          string   `yaml:"model"`
	Temperature    float64  `yaml:"temperature"`
	AttemptTimeout Duration `yaml:"attempt_timeout"` // Per-attempt timeout (default: 15s)
	MaxRetries     *int     `yaml:"max_retries"`     // Retries after the first attempt (default: 2)
}

// WebhookConfig contains appliance relay settings
type WebhookConfig struct {
	BaseURL string            `yaml:"base_url"`
	Key     string            `yaml:"key"`
	Timeout Duration          `yaml:"timeout"`
	Events  map[string]string `yaml:"events"` // Device name -> relay event name
}

// TVConfig contains TV controller settings
type TVConfig struct {
	Address string `yaml:"address"` // Reserved for direct control; the stub ignores it
}

// CatalogConfig contains scene/location catalog settings
type CatalogConfig struct {
	Path            string `yaml:"path"`
	DefaultLocation string `yaml:"default_location"` // Overrides the catalog file's default_location
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Path            string   `yaml:"path"`
	RetentionDays   int      `yaml:"retention_days"`
	CleanupInterval Duration `yaml:"cleanup_interval"`
}

// Retention returns the ledger retention as a duration.
func (c DatabaseConfig) Retention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"use_json"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// EventBusConfig contains event bus settings
type EventBusConfig struct {
	Workers   int `yaml:"workers"`
	QueueSize int `yaml:"queue_size"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// DefaultWebhookEvents maps relay devices to their maker event names.
func DefaultWebhookEvents() map[string]string {
	return map[string]string{
		"tv":       "TV_power",
		"ac":       "ac_power",
		"curtains": "Open_curtains",
	}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse expands environment variables in data, decodes it and applies defaults.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = Duration(10 * time.Second)
	}
	// Covers a full extraction: three attempts plus the bridge call.
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = Duration(60 * time.Second)
	}

	// Hue defaults
	if cfg.Hue.Timeout == 0 {
		cfg.Hue.Timeout = Duration(10 * time.Second)
	}
	if cfg.Hue.RateLimitRPS == 0 {
		cfg.Hue.RateLimitRPS = 10.0
	}

	// LLM defaults
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "o4-mini-2025-04-16"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 1
	}
	if cfg.LLM.AttemptTimeout == 0 {
		cfg.LLM.AttemptTimeout = Duration(15 * time.Second)
	}
	if cfg.LLM.MaxRetries == nil {
		retries := 2
		cfg.LLM.MaxRetries = &retries
	}

	// Webhook defaults
	if cfg.Webhook.BaseURL == "" {
		cfg.Webhook.BaseURL = "https://maker.ifttt.com"
	}
	cfg.Webhook.BaseURL = strings.TrimRight(cfg.Webhook.BaseURL, "/")
	if cfg.Webhook.Timeout == 0 {
		cfg.Webhook.Timeout = Duration(5 * time.Second)
	}
	events := DefaultWebhookEvents()
	for device, event := range cfg.Webhook.Events {
		events[strings.ToLower(device)] = event
	}
	cfg.Webhook.Events = events

	// Catalog defaults
	if cfg.Catalog.Path == "" {
		cfg.Catalog.Path = "./catalog.yaml"
	}

	// Database defaults
	if cfg.Database.Path == "" {
		cfg.Database.Path = "./lightcmd.sqlite"
	}
	if cfg.Database.RetentionDays == 0 {
		cfg.Database.RetentionDays = 30
	}
	if cfg.Database.CleanupInterval == 0 {
		cfg.Database.CleanupInterval = Duration(24 * time.Hour)
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// General shutdown timeout
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = Duration(5 * time.Second)
	}
}

// Validate reports settings that cannot work at all.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if *c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}
	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("database.retention_days must not be negative")
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
