package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/shopspring/decimal"
)

const defaultConfigPath = "./config/local.yaml"

type HTTPServer struct {
	Addr            string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

type Backend struct {
	BaseURL       string        `yaml:"BASE_URL" env:"BACKEND_BASE_URL" env-required:"true"`
	Timeout       time.Duration `yaml:"TIMEOUT" env:"BACKEND_TIMEOUT" env-default:"15s"`
	RetryAttempts uint64        `yaml:"RETRY_ATTEMPTS" env:"BACKEND_RETRY_ATTEMPTS" env-default:"3"`
	SearchLimit   int           `yaml:"SEARCH_LIMIT" env:"BACKEND_SEARCH_LIMIT" env-default:"10"`
	MaxImageBytes int64         `yaml:"MAX_IMAGE_BYTES" env:"BACKEND_MAX_IMAGE_BYTES" env-default:"10485760"`
}

type Pricing struct {
	TaxRate string `yaml:"TAX_RATE" env:"PRICING_TAX_RATE" env-default:"0.075"`
}

// Rate parses the configured tax rate.
func (p *Pricing) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(p.TaxRate)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid tax rate %q: %w", p.TaxRate, err)
	}

	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("tax rate must not be negative: %s", p.TaxRate)
	}

	return rate, nil
}

type Database struct {
	Host            string        `yaml:"PG_HOST" env:"PG_HOST" env-default:"localhost"`
	Port            string        `yaml:"PG_PORT" env:"PG_PORT" env-default:"5432"`
	User            string        `yaml:"PG_USER" env:"PG_USER"`
	Password        string        `yaml:"PG_PASSWORD" env:"PG_PASSWORD"`
	Name            string        `yaml:"PG_DBNAME" env:"PG_DBNAME"`
	SSLMode         string        `yaml:"PG_SSLMODE" env:"PG_SSLMODE" env-default:"require"`
	MaxOpenConns    int           `yaml:"MAX_OPEN_CONNS" env:"PG_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"MAX_IDLE_CONNS" env:"PG_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"CONN_MAX_LIFETIME" env:"PG_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"CONN_MAX_IDLE_TIME" env:"PG_CONN_MAX_IDLE_TIME" env-default:"5m"`
}

// Enabled reports whether a receipt journal database has been configured.
func (d *Database) Enabled() bool {
	return d.User != "" && d.Name != ""
}

func (d *Database) GetDSN() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConnect struct {
	Host     string `yaml:"REDIS_HOST" env:"REDIS_HOST"`
	Port     string `yaml:"REDIS_PORT" env:"REDIS_PORT" env-default:"6379"`
	Username string `yaml:"REDIS_USER" env:"REDIS_USER"`
	Password string `yaml:"REDIS_PASSWORD" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"REDIS_DB" env:"REDIS_DB" env-default:"0"`
}

func (r *RedisConnect) Enabled() bool {
	return r.Host != ""
}

func (r *RedisConnect) GetDSN() string {
	return fmt.Sprintf("redis://%s:%s@%s:%s", r.Username, r.Password, r.Host, r.Port)
}

type CacheConfig struct {
	DefaultTTL time.Duration `yaml:"default_ttl" env:"CACHE_DEFAULT_TTL" env-default:"5m"`
	ProductTTL time.Duration `yaml:"product_ttl" env:"CACHE_PRODUCT_TTL" env-default:"2m"`
	SizesTTL   time.Duration `yaml:"sizes_ttl" env:"CACHE_SIZES_TTL" env-default:"10m"`
}

type OTel struct {
	ServiceName      string  `yaml:"SERVICE_NAME" env:"OTEL_SERVICE_NAME" env-default:"pos-terminal"`
	ExporterEndpoint string  `yaml:"EXPORTER_ENDPOINT" env:"OTEL_EXPORTER_ENDPOINT"`
	SamplerRatio     float64 `yaml:"SAMPLER_RATIO" env:"OTEL_SAMPLER_RATIO" env-default:"1.0"`
}

// RateConfig throttles image captures per session.
type RateConfig struct {
	MaxAttempts int64         `yaml:"MAX_ATTEMPTS" env:"CAPTURE_MAX_ATTEMPTS" env-default:"30"`
	WindowSize  time.Duration `yaml:"WINDOW_SIZE" env:"CAPTURE_WINDOW_SIZE" env-default:"1m"`
}

type Config struct {
	Env          string       `yaml:"env" env:"ENV" env-required:"true"`
	HTTPServer   HTTPServer   `yaml:"http_server"`
	Backend      Backend      `yaml:"backend"`
	Pricing      Pricing      `yaml:"pricing"`
	Database     Database     `yaml:"database"`
	RedisConnect RedisConnect `yaml:"redis"`
	Cache        CacheConfig  `yaml:"cache"`
	RateConfig   RateConfig   `yaml:"rateConfig"`
	OTel         OTel         `yaml:"otel"`
}

func LoadConfigFromPath(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("can not read config file: %w", err)
	}

	if _, err := cfg.Pricing.Rate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func MustLoad() *Config {

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "path to the terminal config file")

		flag.Parse()

		configPath = *flags

		if configPath == "" {
			configPath = defaultConfigPath
		}

	}

	cfg, err := LoadConfigFromPath(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %s", err.Error())
	}

	return cfg

}
