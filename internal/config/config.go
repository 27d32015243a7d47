package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wms-platform/transfers/internal/domain"
)

// Backend selectors.
const (
	StatsBackendHTTP    = "http"
	StatsBackendMongoDB = "mongodb"

	DispatchHTTP  = "http"
	DispatchKafka = "kafka"
)

// Config holds application configuration
type Config struct {
	ServerAddr     string        `yaml:"server_addr" validate:"required"`
	LogLevel       string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	Environment    string        `yaml:"environment"`
	RequestTimeout time.Duration `yaml:"request_timeout" validate:"gt=0"`

	Backends BackendsConfig `yaml:"backends"`
	Stats    StatsConfig    `yaml:"stats"`
	Products ProductsConfig `yaml:"products"`
	Sessions SessionsConfig `yaml:"sessions"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	MongoDB  MongoDBConfig  `yaml:"mongodb"`
	Tracing  TracingConfig  `yaml:"tracing"`

	DetailDefaults domain.DetailDefaults `yaml:"detail_defaults"`
}

// BackendsConfig holds the base URLs of the HTTP backends.
type BackendsConfig struct {
	SearchURL  string `yaml:"search_url" validate:"required,url"`
	OMSURL     string `yaml:"oms_url" validate:"required,url"`
	ProductURL string `yaml:"product_url" validate:"required,url"`
}

type StatsConfig struct {
	Backend    string `yaml:"backend" validate:"oneof=http mongodb"`
	Collection string `yaml:"collection" validate:"required"`
}

type ProductsConfig struct {
	Dispatch    string        `yaml:"dispatch" validate:"oneof=http kafka"`
	BatchSize   int           `yaml:"batch_size" validate:"gt=0"`
	Concurrency int64         `yaml:"concurrency" validate:"gt=0"`
	Timeout     time.Duration `yaml:"timeout" validate:"gt=0"`
}

type SessionsConfig struct {
	CacheSize int `yaml:"cache_size" validate:"gt=0"`
}

type KafkaConfig struct {
	Brokers  []string `yaml:"brokers" validate:"required_if=Enabled true"`
	ClientID string   `yaml:"client_id"`
	Topic    string   `yaml:"topic"`
	Enabled  bool     `yaml:"-"`
}

type MongoDBConfig struct {
	URI      string `yaml:"uri" validate:"required_if=Enabled true"`
	Database string `yaml:"database"`
	Enabled  bool   `yaml:"-"`
}

type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" validate:"gte=0,lte=1"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		ServerAddr:     ":8030",
		LogLevel:       "info",
		Environment:    "development",
		RequestTimeout: 30 * time.Second,
		Backends: BackendsConfig{
			SearchURL:  "http://localhost:8983",
			OMSURL:     "http://localhost:8080",
			ProductURL: "http://localhost:8081",
		},
		Stats: StatsConfig{
			Backend:    StatsBackendHTTP,
			Collection: "order_item_stats",
		},
		Products: ProductsConfig{
			Dispatch:    DispatchHTTP,
			BatchSize:   domain.ProductBatchSize,
			Concurrency: 4,
			Timeout:     30 * time.Second,
		},
		Sessions: SessionsConfig{CacheSize: 1024},
		Kafka: KafkaConfig{
			Brokers:  []string{"localhost:9092"},
			ClientID: "transfers-order-view",
			Topic:    "transfers.product-requests",
		},
		MongoDB: MongoDBConfig{
			URI:      "mongodb://localhost:27017",
			Database: "transfers",
		},
		Tracing: TracingConfig{
			Enabled:    true,
			Endpoint:   "localhost:4317",
			SampleRate: 1.0,
		},
	}
}

// Load builds the configuration from defaults, the YAML file named by CONFIG_FILE
// (when set) and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.Kafka.Enabled = cfg.Products.Dispatch == DispatchKafka
	cfg.MongoDB.Enabled = cfg.Stats.Backend == StatsBackendMongoDB

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)

	c.Backends.SearchURL = getEnv("SEARCH_SERVICE_URL", c.Backends.SearchURL)
	c.Backends.OMSURL = getEnv("OMS_SERVICE_URL", c.Backends.OMSURL)
	c.Backends.ProductURL = getEnv("PRODUCT_SERVICE_URL", c.Backends.ProductURL)

	c.Stats.Backend = getEnv("STATS_BACKEND", c.Stats.Backend)
	c.Stats.Collection = getEnv("STATS_COLLECTION", c.Stats.Collection)
	c.Products.Dispatch = getEnv("PRODUCT_DISPATCH", c.Products.Dispatch)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.Kafka.Brokers = strings.Split(brokers, ",")
	}
	c.Kafka.Topic = getEnv("KAFKA_PRODUCT_TOPIC", c.Kafka.Topic)
	c.MongoDB.URI = getEnv("MONGODB_URI", c.MongoDB.URI)
	c.MongoDB.Database = getEnv("MONGODB_DATABASE", c.MongoDB.Database)

	c.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		c.Tracing.Enabled = v == "true"
	}

	var err error
	if c.Sessions.CacheSize, err = getEnvInt("SESSION_CACHE_SIZE", c.Sessions.CacheSize); err != nil {
		return err
	}
	concurrency, err := getEnvInt("PRODUCT_DISPATCH_CONCURRENCY", int(c.Products.Concurrency))
	if err != nil {
		return err
	}
	c.Products.Concurrency = int64(concurrency)
	if c.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", c.RequestTimeout); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
