package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Assistant struct {
		Symbols         []string      `yaml:"symbols"`
		AccentIntensity int           `yaml:"accent_intensity"`
		CacheMaxAge     time.Duration `yaml:"cache_max_age"`
		ChatPerMinute   int           `yaml:"chat_per_minute"`
	} `yaml:"assistant"`
	Groq struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Model   string        `yaml:"model"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"groq"`
	News struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"news"`
	Quotes struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"quotes"`
	Sports struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"sports"`
	Speech struct {
		APIKey  string        `yaml:"api_key"`
		VoiceID string        `yaml:"voice_id"`
		ModelID string        `yaml:"model_id"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"speech"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
}

// DefaultSymbols is the tracked symbol list used when neither YAML nor
// environment supply one.
var DefaultSymbols = []string{"TSLA", "AAPL", "NVDA", "MSFT", "GOOGL", "AMZN", "META"}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment
// variables. A missing config file is not fatal: the environment alone is
// enough to run.
func LoadWithEnv(path string) (*Config, error) {
	var c *Config
	if _, err := os.Stat(path); err == nil {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	} else {
		c = &Config{}
		c.applyDefaults()
	}

	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.Groq.APIKey = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.News.APIKey = v
	}
	if v := os.Getenv("STOCK_SYMBOLS"); v != "" {
		c.Assistant.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("BOSTON_INTENSITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Assistant.AccentIntensity = n
		}
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		c.Speech.APIKey = v
	}
	if v := os.Getenv("ELEVENLABS_VOICE_ID"); v != "" {
		c.Speech.VoiceID = v
	}
	if v := os.Getenv("ELEVENLABS_MODEL_ID"); v != "" {
		c.Speech.ModelID = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Server.Port = n
		}
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Enabled = true
		c.Redis.Host = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		// TTS streaming needs headroom over the regular API routes.
		c.Server.WriteTimeout = 90 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if len(c.Assistant.Symbols) == 0 {
		c.Assistant.Symbols = append([]string(nil), DefaultSymbols...)
	}
	if c.Assistant.AccentIntensity == 0 {
		c.Assistant.AccentIntensity = 7
	}
	if c.Assistant.CacheMaxAge == 0 {
		c.Assistant.CacheMaxAge = 30 * time.Minute
	}
	if c.Assistant.ChatPerMinute == 0 {
		c.Assistant.ChatPerMinute = 20
	}
	if c.Groq.BaseURL == "" {
		c.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Groq.Model == "" {
		c.Groq.Model = "llama-3.3-70b-versatile"
	}
	if c.Groq.Timeout == 0 {
		c.Groq.Timeout = 60 * time.Second
	}
	if c.News.BaseURL == "" {
		c.News.BaseURL = "https://newsapi.org/v2"
	}
	if c.News.Timeout == 0 {
		c.News.Timeout = 10 * time.Second
	}
	if c.Quotes.BaseURL == "" {
		c.Quotes.BaseURL = "https://query1.finance.yahoo.com"
	}
	if c.Quotes.Timeout == 0 {
		c.Quotes.Timeout = 10 * time.Second
	}
	if c.Sports.BaseURL == "" {
		c.Sports.BaseURL = "https://site.api.espn.com/apis/site/v2/sports"
	}
	if c.Sports.Timeout == 0 {
		c.Sports.Timeout = 10 * time.Second
	}
	if c.Speech.BaseURL == "" {
		c.Speech.BaseURL = "https://api.elevenlabs.io"
	}
	if c.Speech.ModelID == "" {
		c.Speech.ModelID = "eleven_turbo_v2"
	}
	if c.Speech.Timeout == 0 {
		c.Speech.Timeout = 60 * time.Second
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "sully"
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "sully"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "sully.alerts"
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = "gzip"
	}
}

// Validate checks the configuration. The completion credential is
// deliberately not required: /chat degrades to a fixed message without it.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Assistant.Symbols) == 0 {
		return fmt.Errorf("assistant.symbols cannot be empty")
	}
	if c.Assistant.AccentIntensity < 1 || c.Assistant.AccentIntensity > 10 {
		return fmt.Errorf("assistant.accent_intensity must be 1..10, got %d", c.Assistant.AccentIntensity)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	return nil
}

func splitSymbols(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
