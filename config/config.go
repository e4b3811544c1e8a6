package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Price history sources understood by the development API.
const (
	SourceMock     = "mock"
	SourceYahoo    = "yahoo"
	SourceLongport = "longport"
)

type Config struct {
	// Analysis collaborator consumed by the front-end
	APIBaseURL            string `json:"api_base_url" envconfig:"ANALYZER_API_URL" default:"http://localhost:5000"`
	RequestTimeoutSeconds int    `json:"request_timeout_seconds" envconfig:"ANALYZER_TIMEOUT_SECONDS" default:"30"`

	// Web front-end
	ListenAddr string `json:"listen_addr" envconfig:"ANALYZER_LISTEN" default:":8080"`

	LogLevel string `json:"log_level" envconfig:"ANALYZER_LOG_LEVEL" default:"info"`
	LogFile  string `json:"log_file" envconfig:"ANALYZER_LOG_FILE"`
	Debug    bool   `json:"debug" envconfig:"ANALYZER_DEBUG" default:"false"`

	// Development analysis API
	DevAPIListenAddr string `json:"devapi_listen_addr" envconfig:"DEVAPI_LISTEN" default:":5000"`
	DevAPISource     string `json:"devapi_source" envconfig:"DEVAPI_SOURCE" default:"mock"`

	LLMEnabled bool   `json:"llm_enabled" envconfig:"DEVAPI_LLM" default:"false"`
	LLMBaseURL string `json:"llm_base_url" envconfig:"LLM_BASE_URL" default:"https://api.deepseek.com/v1"`
	LLMModel   string `json:"llm_model" envconfig:"LLM_MODEL" default:"deepseek-chat"`
	LLMAPIKey  string `json:"-" envconfig:"DEEPSEEK_API_KEY"`

	// Longport API Configuration
	LongportAppKey      string `json:"-" envconfig:"LONGPORT_APP_KEY"`
	LongportAppSecret   string `json:"-" envconfig:"LONGPORT_APP_SECRET"`
	LongportAccessToken string `json:"-" envconfig:"LONGPORT_ACCESS_TOKEN"`
}

// Load reads an optional .env file and maps the environment onto a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// DefaultConfig returns the built-in defaults without consulting the environment.
func DefaultConfig() *Config {
	return &Config{
		APIBaseURL:            "http://localhost:5000",
		RequestTimeoutSeconds: 30,
		ListenAddr:            ":8080",
		LogLevel:              "info",
		DevAPIListenAddr:      ":5000",
		DevAPISource:          SourceMock,
		LLMBaseURL:            "https://api.deepseek.com/v1",
		LLMModel:              "deepseek-chat",
	}
}

func (c *Config) normalize() {
	c.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.APIBaseURL), "/")
	c.DevAPISource = strings.ToLower(strings.TrimSpace(c.DevAPISource))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
}

// RequestTimeout is the per-request budget for the analysis call.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

func (c Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid api_base_url %q: %w", c.APIBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("api_base_url must be http(s), got %q", c.APIBaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("api_base_url %q has no host", c.APIBaseURL)
	}
	if c.RequestTimeoutSeconds < 1 || c.RequestTimeoutSeconds > 300 {
		return fmt.Errorf("request timeout must be between 1 and 300 seconds")
	}

	switch c.DevAPISource {
	case SourceMock, SourceYahoo:
	case SourceLongport:
		if c.LongportAppKey == "" || c.LongportAppSecret == "" || c.LongportAccessToken == "" {
			return fmt.Errorf("longport source requires LONGPORT_APP_KEY, LONGPORT_APP_SECRET and LONGPORT_ACCESS_TOKEN")
		}
	default:
		return fmt.Errorf("unknown devapi source %q", c.DevAPISource)
	}

	if c.LLMEnabled && c.LLMAPIKey == "" {
		return fmt.Errorf("llm analysis enabled but DEEPSEEK_API_KEY is not set")
	}
	return nil
}
