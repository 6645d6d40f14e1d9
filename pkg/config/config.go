package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production test"`
	Log         struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output     string `yaml:"output" default:"stdout"`
		MaxSizeMB  int    `yaml:"max_size_mb" default:"50"`
		MaxBackups int    `yaml:"max_backups" default:"5"`
		MaxAgeDays int    `yaml:"max_age_days" default:"14"`
	} `yaml:"log"`
	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lt=65536"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool `yaml:"enabled" default:"true"`
		// Port of the metrics-only listener used by the harvest, analyze and archive processes.
		Port int `yaml:"port" default:"9100" validate:"gt=0,lt=65536"`
	} `yaml:"metrics"`
	Database struct {
		DSN             string        `yaml:"dsn" validate:"required"`
		MaxOpenConns    int           `yaml:"max_open_conns" default:"10"`
		MaxIdleConns    int           `yaml:"max_idle_conns" default:"5"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" default:"30m"`
		LogLevel        string        `yaml:"log_level" default:"warn" validate:"oneof=silent error warn info"`
	} `yaml:"database"`
	Harvest struct {
		Interval     time.Duration `yaml:"interval" default:"15m" validate:"gt=0"`
		StockTickers []string      `yaml:"stock_tickers" validate:"dive,required"`
		CryptoPairs  []string      `yaml:"crypto_pairs" validate:"dive,required"`
		NewsTerms    []string      `yaml:"news_terms" validate:"dive,required"`
		NewsPageSize int           `yaml:"news_page_size" default:"10" validate:"gt=0,lte=100"`
	} `yaml:"harvest"`
	Analysis struct {
		Interval           time.Duration `yaml:"interval" default:"10m" validate:"gt=0"`
		ArbitragePairs     []string      `yaml:"arbitrage_pairs" validate:"dive,required"`
		ArbitrageWindow    time.Duration `yaml:"arbitrage_window" default:"5m" validate:"gt=0"`
		ArbitrageThreshold float64       `yaml:"arbitrage_threshold" default:"0.05" validate:"gte=0"`
		ForecastTickers    []string      `yaml:"forecast_tickers" validate:"dive,required"`
		ForecastHorizon    int           `yaml:"forecast_horizon" default:"7" validate:"gt=0"`
		// MinHistory is the minimum number of observations a forecast needs.
		MinHistory int `yaml:"min_history" default:"2" validate:"gte=2"`
	} `yaml:"analysis"`
	Providers struct {
		Timeout time.Duration `yaml:"timeout" default:"15s" validate:"gt=0"`
		Yahoo   struct {
			BaseURL string `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
		} `yaml:"yahoo"`
		WazirX struct {
			BaseURL string `yaml:"base_url" default:"https://api.wazirx.com" validate:"url"`
		} `yaml:"wazirx"`
		CoinDCX struct {
			BaseURL string `yaml:"base_url" default:"https://api.coindcx.com" validate:"url"`
		} `yaml:"coindcx"`
		NewsAPI struct {
			BaseURL string `yaml:"base_url" default:"https://newsapi.org" validate:"url"`
			APIKey  string `yaml:"api_key"`
		} `yaml:"newsapi"`
	} `yaml:"providers"`
	Analytics struct {
		// ServiceURL points at the model service; empty selects the in-process models.
		ServiceURL string        `yaml:"service_url" validate:"omitempty,url"`
		Timeout    time.Duration `yaml:"timeout" default:"30s"`
		Retries    int           `yaml:"retries" default:"2" validate:"gte=0"`
	} `yaml:"analytics"`
	Dashboard struct {
		Assets          []string      `yaml:"assets" validate:"dive,required"`
		ForecastTTL     time.Duration `yaml:"forecast_ttl" default:"0s"`
		RecomputeBurst  int           `yaml:"recompute_burst" default:"5" validate:"gt=0"`
		RecomputeRefill float64       `yaml:"recompute_refill_per_sec" default:"0.5" validate:"gt=0"`
		StreamPoll      time.Duration `yaml:"stream_poll" default:"5s" validate:"gt=0"`
	} `yaml:"dashboard"`
	Kafka struct {
		Enabled          bool     `yaml:"enabled"`
		Brokers          []string `yaml:"brokers" validate:"required_if=Enabled true"`
		PriceTopic       string   `yaml:"price_topic" default:"finpulse.prices"`
		OpportunityTopic string   `yaml:"opportunity_topic" default:"finpulse.opportunities"`
		RequiredAcks     int      `yaml:"required_acks" default:"-1"`
		Compression      string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
		Producer         struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"5"`
			Linger       time.Duration `yaml:"linger" default:"50ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id" default:"finpulse-archive"`
			Workers    int           `yaml:"workers" default:"2" validate:"gt=0"`
			BufferSize int           `yaml:"buffer_size" default:"256"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finpulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert" default:"true"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix" default:"finpulse:forecast:"`
	} `yaml:"redis"`
}

var validate = validator.New()

// Load reads and parses a YAML configuration file, fills defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse builds a Config from raw YAML without consulting the environment.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyInstrumentDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads .env (if present), the YAML file, then applies environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("set defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyInstrumentDefaults()
	c.applyEnv()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("APP_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		c.Providers.NewsAPI.APIKey = v
	}
	if v := os.Getenv("ANALYTICS_SERVICE_URL"); v != "" {
		c.Analytics.ServiceURL = v
	}
	if v := os.Getenv("STOCK_TICKERS"); v != "" {
		c.Harvest.StockTickers = splitList(v)
	}
	if v := os.Getenv("CRYPTO_PAIRS"); v != "" {
		c.Harvest.CryptoPairs = splitList(v)
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Server.Port = p
		}
	}
}

// applyInstrumentDefaults fills the instrument lists the deployment has always tracked.
func (c *Config) applyInstrumentDefaults() {
	if len(c.Harvest.StockTickers) == 0 {
		c.Harvest.StockTickers = []string{"RELIANCE.NS", "TCS.NS"}
	}
	if len(c.Harvest.CryptoPairs) == 0 {
		c.Harvest.CryptoPairs = []string{"btcinr", "ethinr"}
	}
	if len(c.Harvest.NewsTerms) == 0 {
		c.Harvest.NewsTerms = []string{"Reliance Industries", "Tata Consultancy Services", "Bitcoin India"}
	}
	if len(c.Analysis.ArbitragePairs) == 0 {
		c.Analysis.ArbitragePairs = []string{"BTCINR", "ETHINR"}
	}
	if len(c.Analysis.ForecastTickers) == 0 {
		c.Analysis.ForecastTickers = []string{"RELIANCE.NS", "TCS.NS"}
	}
	if len(c.Dashboard.Assets) == 0 {
		c.Dashboard.Assets = []string{"RELIANCE.NS", "TCS.NS", "BTCINR", "ETHINR", "MATICINR"}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
