package config

import (
	"log"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Storage    Storage
	Redis      Redis
	HTTPServer HTTPServer
	Aggregator Aggregator
	Providers  Providers
}

type Storage struct {
	Timeout  time.Duration `env:"BD_TIMEOUT" env-default:"10s"`
	Host     string        `env:"BD_HOST" env-required:"true"`
	Port     int           `env:"BD_PORT" env-required:"true"`
	User     string        `env:"BD_USER" env-required:"true"`
	Password string        `env:"BD_PASSWORD" env-required:"true"`
	DBName   string        `env:"BD_DBNAME" env-required:"true"`
	SSLMode  string        `env:"BD_SSL_MODE" env-default:"disable"`
	Schema   string        `env:"BD_SCHEMA" env-default:"dev"`
}

// Redis is optional: an empty host selects the no-op cache.
type Redis struct {
	Host     string `env:"REDIS_HOST" env-default:""`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
}

type HTTPServer struct {
	Port        string        `env:"HTTP_PORT" env-default:"8082"`
	Timeout     time.Duration `env:"HTTP_TIMEOUT" env-default:"2m"`
	IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type Aggregator struct {
	Currencies      string        `env:"AGG_CURRENCIES" env-default:"USD,EUR,GBP,JPY,INR"`
	Workers         int           `env:"AGG_WORKERS" env-default:"5"`
	FetchTimeout    time.Duration `env:"AGG_FETCH_TIMEOUT" env-default:"10s"`
	RefreshInterval time.Duration `env:"AGG_REFRESH_INTERVAL" env-default:"1h"`
	CacheTTL        time.Duration `env:"AGG_CACHE_TTL" env-default:"2h"`
	MinTrendHours   int           `env:"AGG_MIN_TREND_HOURS" env-default:"12"`
}

type Providers struct {
	OpenERAPIURL     string        `env:"PROVIDER_OPEN_ER_API_URL" env-default:"https://open.er-api.com/v6"`
	CryptoCompareURL string        `env:"PROVIDER_CRYPTOCOMPARE_URL" env-default:"https://min-api.cryptocompare.com"`
	Timeout          time.Duration `env:"PROVIDER_TIMEOUT" env-default:"10s"`
}

func NewConfig() *Config {
	cfg := &Config{}

	_ = godotenv.Load(".env")

	err := cleanenv.ReadEnv(cfg)
	if err != nil {
		log.Fatal("Error reading env")
	}

	return cfg
}

// CurrencyList splits the configured CSV of tracked currency codes.
func (c *Config) CurrencyList() []string {
	if c.Aggregator.Currencies == "" {
		return nil
	}
	return strings.Split(c.Aggregator.Currencies, ",")
}
