package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"MarketRadar/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logger struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logger"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		AlertsTopic  string        `yaml:"alerts_topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
	} `yaml:"kafka"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Watchlist  []string `yaml:"watchlist"`
	Polymarket struct {
		Query string `yaml:"query"`
		Limit int    `yaml:"limit"`
	} `yaml:"polymarket"`
	FMP struct {
		APIKey             string        `yaml:"api_key"`
		RateLimitPerMinute int           `yaml:"rate_limit_per_minute"`
		RateLimitPerDay    int           `yaml:"rate_limit_per_day"`
		MaxRetries         int           `yaml:"max_retries"`
		BreakerThreshold   int           `yaml:"breaker_failure_threshold"`
		BreakerTimeout     time.Duration `yaml:"breaker_timeout"`
		RequestTimeout     time.Duration `yaml:"request_timeout"`
	} `yaml:"fmp"`
	Finnhub struct {
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"finnhub"`
	Scoring struct {
		AnomalyThreshold float64       `yaml:"anomaly_threshold"`
		PollInterval     time.Duration `yaml:"poll_interval"`
		RefitInterval    time.Duration `yaml:"refit_interval"`
		RefitHistory     int           `yaml:"refit_history"`
	} `yaml:"scoring"`
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
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FMP_API_KEY"); v != "" {
		c.FMP.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		c.Watchlist = splitAndUpper(v)
	}
	if v := os.Getenv("POLYMARKET_QUERY"); v != "" {
		c.Polymarket.Query = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	c.ClickHouse.Port = util.ParseIntDefault(os.Getenv("CLICKHOUSE_PORT"), c.ClickHouse.Port)
	c.Server.Port = util.ParseIntDefault(os.Getenv("SERVER_PORT"), c.Server.Port)
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("ANOMALY_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Scoring.AnomalyThreshold = f
		}
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.ClickHouse.Port <= 0 {
		c.ClickHouse.Port = 9000
	}
	if c.ClickHouse.Database == "" {
		c.ClickHouse.Database = "marketradar"
	}
	if c.ClickHouse.User == "" {
		c.ClickHouse.User = "default"
	}
	if c.Kafka.AlertsTopic == "" {
		c.Kafka.AlertsTopic = "marketradar.alerts"
	}
	if len(c.Watchlist) == 0 {
		c.Watchlist = []string{"AAPL", "GOOGL", "AMD", "AMZN", "TSLA"}
	}
	for i, s := range c.Watchlist {
		c.Watchlist[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	if c.Polymarket.Query == "" {
		c.Polymarket.Query = "election"
	}
	if c.Polymarket.Limit <= 0 {
		c.Polymarket.Limit = 25
	}
	if c.FMP.RateLimitPerMinute <= 0 {
		c.FMP.RateLimitPerMinute = 5
	}
	if c.FMP.RateLimitPerDay <= 0 {
		c.FMP.RateLimitPerDay = 250
	}
	if c.FMP.MaxRetries <= 0 {
		c.FMP.MaxRetries = 3
	}
	if c.FMP.BreakerThreshold <= 0 {
		c.FMP.BreakerThreshold = 5
	}
	if c.FMP.BreakerTimeout <= 0 {
		c.FMP.BreakerTimeout = 60 * time.Second
	}
	if c.FMP.RequestTimeout <= 0 {
		c.FMP.RequestTimeout = 15 * time.Second
	}
	if c.Scoring.AnomalyThreshold <= 0 {
		c.Scoring.AnomalyThreshold = 0.75
	}
	if c.Scoring.PollInterval <= 0 {
		c.Scoring.PollInterval = 120 * time.Second
	}
	if c.Scoring.RefitInterval <= 0 {
		c.Scoring.RefitInterval = 30 * time.Minute
	}
	if c.Scoring.RefitHistory <= 0 {
		c.Scoring.RefitHistory = 2000
	}
	if c.Logger.Level == "" {
		c.Logger.Level = "info"
	}
	if c.Logger.Format == "" {
		c.Logger.Format = "console"
	}
	if c.Logger.Output == "" {
		c.Logger.Output = "stdout"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if len(c.Watchlist) == 0 {
		return fmt.Errorf("watchlist cannot be empty")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	if c.Scoring.AnomalyThreshold <= 0 || c.Scoring.AnomalyThreshold > 1 {
		return fmt.Errorf("scoring.anomaly_threshold must be in (0, 1], got %v", c.Scoring.AnomalyThreshold)
	}
	return nil
}

func splitAndUpper(s string) []string {
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
