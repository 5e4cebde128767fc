package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	App         struct {
		LogLevel  string `yaml:"log_level" default:"info"`
		LogFormat string `yaml:"log_format" default:"console"`
		LogOutput string `yaml:"log_output" default:"stdout"`
		Timezone  string `yaml:"timezone" default:"UTC"`
	} `yaml:"app"`
	Server struct {
		Enabled         bool          `yaml:"enabled"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		ScanInterval    time.Duration `yaml:"scan_interval" default:"24h"`
	} `yaml:"server"`
	Symbols   []string `yaml:"symbols"`
	Benchmark string   `yaml:"benchmark" default:"QQQ"`
	Data      struct {
		ProviderPrimary  string `yaml:"provider_primary" default:"twelvedata"`
		ProviderFallback string `yaml:"provider_fallback" default:"alphavantage"`
		TwelveData       struct {
			BaseURL    string `yaml:"base_url" default:"https://api.twelvedata.com/time_series"`
			Interval   string `yaml:"interval" default:"1day"`
			OutputSize int    `yaml:"outputsize" default:"300"`
			APIKey     string `yaml:"-"`
		} `yaml:"twelvedata"`
		AlphaVantage struct {
			BaseURL    string `yaml:"base_url" default:"https://www.alphavantage.co/query"`
			Function   string `yaml:"function" default:"TIME_SERIES_DAILY_ADJUSTED"`
			OutputSize string `yaml:"outputsize" default:"full"`
			APIKey     string `yaml:"-"`
		} `yaml:"alphavantage"`
		Cache struct {
			Enabled bool          `yaml:"enabled" default:"true"`
			Backend string        `yaml:"backend" default:"file"`
			Dir     string        `yaml:"dir" default:".cache"`
			TTL     time.Duration `yaml:"ttl" default:"6h"`
			Redis   struct {
				Host     string `yaml:"host" default:"localhost"`
				Port     int    `yaml:"port" default:"6379"`
				Password string `yaml:"password"`
				DB       int    `yaml:"db"`
			} `yaml:"redis"`
		} `yaml:"cache"`
		Retry struct {
			MaxAttempts int           `yaml:"max_attempts" default:"3"`
			BaseDelay   time.Duration `yaml:"base_delay" default:"2s"`
			MaxDelay    time.Duration `yaml:"max_delay" default:"30s"`
		} `yaml:"retry"`
		RateLimit struct {
			Enabled     bool          `yaml:"enabled" default:"true"`
			MinInterval time.Duration `yaml:"min_interval" default:"8s"`
		} `yaml:"rate_limit"`
		Timeout time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"data"`
	Filters struct {
		Drawdown20DMax     float64 `yaml:"drawdown_20d_max" default:"0.15"`
		High52WMaxMultiple float64 `yaml:"high_52w_max_multiple" default:"1.05"`
		SMA50Tolerance     float64 `yaml:"sma50_tolerance"`
		Tolerance          float64 `yaml:"tolerance" default:"0.005"`
	} `yaml:"filters"`
	Triggers struct {
		Pullback25Enabled  bool    `yaml:"pullback_25_enabled" default:"true"`
		Pullback50Enabled  bool    `yaml:"pullback_50_enabled" default:"true"`
		Breakout20DEnabled bool    `yaml:"breakout_20d_enabled" default:"true"`
		BreakoutVolumeMult float64 `yaml:"breakout_volume_mult" default:"1.5"`
	} `yaml:"triggers"`
	RulesPath string `yaml:"rules_path" default:"rules.yaml"`
	Nfci      struct {
		CSVURL       string `yaml:"csv_url"`
		FredNfciURL  string `yaml:"fred_nfci_url" default:"https://fred.stlouisfed.org/graph/fredgraph.csv?id=NFCI"`
		FredAnfciURL string `yaml:"fred_anfci_url" default:"https://fred.stlouisfed.org/graph/fredgraph.csv?id=ANFCI"`
	} `yaml:"nfci"`
	Notifications struct {
		SlackEnabled    bool `yaml:"slack_enabled"`
		PushoverEnabled bool `yaml:"pushover_enabled"`
		EmailEnabled    bool `yaml:"email_enabled" default:"true"`
	} `yaml:"notifications"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic" default:"stockpulse.scans"`
		RequiredAcks int           `yaml:"required_acks" default:"-1"`
		Compression  string        `yaml:"compression" default:"gzip"`
		MaxAttempts  int           `yaml:"max_attempts" default:"3"`
		Linger       time.Duration `yaml:"linger" default:"1s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port" default:"9000"`
		Database     string        `yaml:"database" default:"stockpulse"`
		User         string        `yaml:"user" default:"default"`
		Password     string        `yaml:"password"`
		UseHTTP      bool          `yaml:"use_http"`
		DialTimeout  time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file, applying struct defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
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

	// API keys are env-only, never written to the config file
	c.Data.TwelveData.APIKey = os.Getenv("TWELVE_DATA_API_KEY")
	c.Data.AlphaVantage.APIKey = os.Getenv("ALPHA_VANTAGE_API_KEY")

	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("BENCHMARK"); v != "" {
		c.Benchmark = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Symbols) == 0 {
		return fmt.Errorf("symbols cannot be empty")
	}
	for _, p := range []string{c.Data.ProviderPrimary, c.Data.ProviderFallback} {
		if p != "twelvedata" && p != "alphavantage" {
			return fmt.Errorf("unsupported provider: %s", p)
		}
	}
	switch c.Data.Cache.Backend {
	case "memory", "file", "redis", "layered":
	default:
		return fmt.Errorf("cache backend must be one of memory/file/redis/layered, got '%s'", c.Data.Cache.Backend)
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
