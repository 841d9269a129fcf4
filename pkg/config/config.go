package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"Midas/pkg/util"
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
	Providers struct {
		Live    bool          `yaml:"live"`
		Timeout time.Duration `yaml:"timeout"`
		Finnhub struct {
			APIKey         string        `yaml:"api_key"`
			BaseURL        string        `yaml:"base_url"`
			WebSocketURL   string        `yaml:"websocket_url"`
			StreamEnabled  bool          `yaml:"stream_enabled"`
			Symbols        []string      `yaml:"symbols"`
			ReconnectDelay time.Duration `yaml:"reconnect_delay"`
			PingInterval   time.Duration `yaml:"ping_interval"`
			RatePerSec     float64       `yaml:"rate_per_sec"`
			Burst          float64       `yaml:"burst"`
		} `yaml:"finnhub"`
		Tiingo struct {
			APIKey     string  `yaml:"api_key"`
			BaseURL    string  `yaml:"base_url"`
			RatePerSec float64 `yaml:"rate_per_sec"`
			Burst      float64 `yaml:"burst"`
		} `yaml:"tiingo"`
		Yahoo struct {
			BaseURL    string  `yaml:"base_url"`
			RatePerSec float64 `yaml:"rate_per_sec"`
			Burst      float64 `yaml:"burst"`
		} `yaml:"yahoo"`
	} `yaml:"providers"`
	Sentiment struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"sentiment"`
	Gateway struct {
		ContextURL   string        `yaml:"context_url"`
		RecommendURL string        `yaml:"recommend_url"`
		Timeout      time.Duration `yaml:"timeout"`
		Retries      int           `yaml:"retries"`
		RetryDelay   time.Duration `yaml:"retry_delay"`
	} `yaml:"gateway"`
	Cache struct {
		MemoryMaxSize int `yaml:"memory_max_size"`
		Redis         struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Events struct {
		Kafka struct {
			Enabled      bool     `yaml:"enabled"`
			Brokers      []string `yaml:"brokers"`
			Topic        string   `yaml:"topic"`
			RequiredAcks int      `yaml:"required_acks"`
			Compression  string   `yaml:"compression"`
		} `yaml:"kafka"`
	} `yaml:"events"`
}

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

// LoadWithEnv loads config from YAML and overrides with environment variables.
// Env names match the knobs the deployment scripts already export.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("LIVE_PROVIDERS"); v != "" {
		c.Providers.Live = v == "1"
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := os.Getenv("TIINGO_API_KEY"); v != "" {
		c.Providers.Tiingo.APIKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Providers.Finnhub.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("SENT_URL"); v != "" {
		c.Sentiment.BaseURL = v
	}
	if v := os.Getenv("CTX_URL"); v != "" {
		c.Gateway.ContextURL = v
	}
	if v := os.Getenv("REC_URL"); v != "" {
		c.Gateway.RecommendURL = v
	}
	if v := os.Getenv("GATEWAY_TIMEOUT_S"); v != "" {
		if s, err := strconv.ParseFloat(v, 64); err == nil && s > 0 {
			c.Gateway.Timeout = time.Duration(s * float64(time.Second))
		}
	}
	if v := os.Getenv("GATEWAY_RETRIES"); v != "" {
		if n := util.ParseIntDefault(v, -1); n >= 0 {
			c.Gateway.Retries = n
		}
	}
	if v := os.Getenv("GATEWAY_RETRY_DELAY_S"); v != "" {
		if s, err := strconv.ParseFloat(v, 64); err == nil && s >= 0 {
			c.Gateway.RetryDelay = time.Duration(s * float64(time.Second))
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Events.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Events.Kafka.Topic = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Providers.Timeout <= 0 {
		c.Providers.Timeout = 6 * time.Second
	}
	if c.Providers.Finnhub.BaseURL == "" {
		c.Providers.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Providers.Tiingo.BaseURL == "" {
		c.Providers.Tiingo.BaseURL = "https://api.tiingo.com"
	}
	if c.Sentiment.BaseURL == "" {
		c.Sentiment.BaseURL = "http://127.0.0.1:8016"
	}
	if c.Sentiment.Timeout <= 0 {
		c.Sentiment.Timeout = 6 * time.Second
	}
	if c.Gateway.ContextURL == "" {
		c.Gateway.ContextURL = "http://127.0.0.1:8012"
	}
	if c.Gateway.RecommendURL == "" {
		c.Gateway.RecommendURL = "http://127.0.0.1:8014"
	}
	if c.Gateway.Timeout <= 0 {
		c.Gateway.Timeout = 8 * time.Second
	}
	if c.Gateway.Retries < 0 {
		c.Gateway.Retries = 2
	}
	if c.Gateway.RetryDelay <= 0 {
		c.Gateway.RetryDelay = 250 * time.Millisecond
	}
	if c.Cache.MemoryMaxSize <= 0 {
		c.Cache.MemoryMaxSize = 1000
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Providers.Live {
		if c.Providers.Finnhub.APIKey == "" {
			return fmt.Errorf("providers.finnhub.api_key is required in live mode")
		}
		if c.Providers.Tiingo.APIKey == "" {
			return fmt.Errorf("providers.tiingo.api_key is required in live mode")
		}
	}
	if c.Providers.Finnhub.StreamEnabled && len(c.Providers.Finnhub.Symbols) == 0 {
		return fmt.Errorf("providers.finnhub.symbols cannot be empty when the stream is enabled")
	}
	if c.Events.Kafka.Enabled {
		if len(c.Events.Kafka.Brokers) == 0 {
			return fmt.Errorf("events.kafka.brokers is required when kafka events are enabled")
		}
		if c.Events.Kafka.Topic == "" {
			return fmt.Errorf("events.kafka.topic is required when kafka events are enabled")
		}
	}
	return nil
}
