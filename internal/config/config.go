package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL      = "https://api.oejp-kraken.energy/v1/graphql/"
	DefaultTimezone    = "Asia/Tokyo"
	DefaultDays        = 3
	DefaultSVGPath     = "usage.svg"
	DefaultHTTPTimeout = 30 * time.Second
)

// Config holds the application configuration
type Config struct {
	Octopus       OctopusConfig `yaml:"octopus"`
	Timezone      string        `yaml:"timezone,omitempty"`     // IANA zone (fallback: Asia/Tokyo)
	DefaultDays   int           `yaml:"default_days,omitempty"` // Days before end when no start is given (fallback: 3)
	SVGPath       string        `yaml:"svg_path,omitempty"`     // Report image (fallback: usage.svg)
	MetricsFile   string        `yaml:"metrics_file,omitempty"` // Prometheus textfile output, disabled when empty
	MQTT          MQTTConfig    `yaml:"mqtt,omitempty"`
	HomeAssistant HAConfig      `yaml:"home_assistant,omitempty"`
}

// OctopusConfig holds the supplier API endpoint and account credentials
type OctopusConfig struct {
	APIURL         string `yaml:"api_url,omitempty"`
	Email          string `yaml:"email,omitempty"`
	Password       string `yaml:"password,omitempty"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// MQTTConfig holds MQTT broker configuration for publishing summaries
type MQTTConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`                 // e.g., "homeassistant.local:1883"
	Username    string `yaml:"username,omitempty"`
	Password    string `yaml:"password,omitempty"`
	TopicPrefix string `yaml:"topic_prefix,omitempty"` // default "octopus_energy"
}

// HAConfig holds Home Assistant HTTP API configuration
type HAConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"`       // e.g., "http://homeassistant.local:8123"
	Token    string `yaml:"token"`     // Long-lived access token
	EntityID string `yaml:"entity_id"` // e.g., "sensor.octopus_daily_average"
}

// Load reads the config file and layers the environment (and an optional
// dotenv file) on top of it. Environment values win.
func Load(configPath, envFile string) (*Config, error) {
	cfg, err := loadFile(configPath)
	if err != nil {
		return nil, err
	}

	env, err := loadEnv(envFile)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(env)

	return cfg, nil
}

func loadFile(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return &cfg, nil
}

// loadEnv reads a dotenv file if present and binds the process environment
func loadEnv(envFile string) (*viper.Viper, error) {
	v := viper.New()
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading env file %s: %w", envFile, err)
			}
		}
	}

	v.AutomaticEnv()
	_ = v.BindEnv("octopus_email", "OCTOPUS_EMAIL")
	_ = v.BindEnv("octopus_password", "OCTOPUS_PASSWORD")
	_ = v.BindEnv("octopus_api_url", "OCTOPUS_API_URL")
	_ = v.BindEnv("octousage_timezone", "OCTOUSAGE_TIMEZONE")
	_ = v.BindEnv("octousage_default_days", "OCTOUSAGE_DEFAULT_DAYS")
	_ = v.BindEnv("octousage_metrics_file", "OCTOUSAGE_METRICS_FILE")

	return v, nil
}

func (c *Config) applyEnv(v *viper.Viper) {
	if s := strings.TrimSpace(v.GetString("octopus_email")); s != "" {
		c.Octopus.Email = s
	}
	if s := v.GetString("octopus_password"); s != "" {
		c.Octopus.Password = s
	}
	if s := strings.TrimSpace(v.GetString("octopus_api_url")); s != "" {
		c.Octopus.APIURL = s
	}
	if s := strings.TrimSpace(v.GetString("octousage_timezone")); s != "" {
		c.Timezone = s
	}
	if n := v.GetInt("octousage_default_days"); n > 0 {
		c.DefaultDays = n
	}
	if s := strings.TrimSpace(v.GetString("octousage_metrics_file")); s != "" {
		c.MetricsFile = s
	}
}

// Save writes the config to file
func Save(configPath string, cfg *Config) error {
	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Template returns a config populated with every default, suitable for init-config
func Template() *Config {
	return &Config{
		Octopus: OctopusConfig{
			APIURL:         DefaultAPIURL,
			Email:          "you@example.com",
			TimeoutSeconds: int(DefaultHTTPTimeout / time.Second),
		},
		Timezone:    DefaultTimezone,
		DefaultDays: DefaultDays,
		SVGPath:     DefaultSVGPath,
		MQTT:        MQTTConfig{TopicPrefix: "octopus_energy"},
	}
}

// DefaultConfigPath returns the default config file path (local directory)
func DefaultConfigPath() string {
	return "config.yaml"
}

// DefaultEnvPath returns the default dotenv file path (local directory)
func DefaultEnvPath() string {
	return ".env"
}

// Validate checks that credentials are present before any network call
func (c *Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Octopus.Email) == "" {
		missing = append(missing, "OCTOPUS_EMAIL")
	}
	if c.Octopus.Password == "" {
		missing = append(missing, "OCTOPUS_PASSWORD")
	}
	if len(missing) > 0 {
		return errors.New("missing credentials: set " + strings.Join(missing, " and ") + " in the environment, .env or config.yaml")
	}
	return nil
}

// GetAPIURL returns the GraphQL endpoint
func (c *Config) GetAPIURL() string {
	if c.Octopus.APIURL == "" {
		return DefaultAPIURL
	}
	return c.Octopus.APIURL
}

// GetTimezone returns the configured zone name with a default of Asia/Tokyo
func (c *Config) GetTimezone() string {
	if c.Timezone == "" {
		return DefaultTimezone
	}
	return c.Timezone
}

// GetDefaultDays returns the default window length with a default of 3
func (c *Config) GetDefaultDays() int {
	if c.DefaultDays <= 0 {
		return DefaultDays
	}
	return c.DefaultDays
}

// GetSVGPath returns where the report image goes
func (c *Config) GetSVGPath() string {
	if c.SVGPath == "" {
		return DefaultSVGPath
	}
	return c.SVGPath
}

// GetHTTPTimeout returns the per-request timeout for the supplier API
func (c *Config) GetHTTPTimeout() time.Duration {
	if c.Octopus.TimeoutSeconds <= 0 {
		return DefaultHTTPTimeout
	}
	return time.Duration(c.Octopus.TimeoutSeconds) * time.Second
}
