package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnv             = "development"
	defaultHTTPHost        = "0.0.0.0"
	defaultHTTPPort        = 8080
	defaultInvestEndpoint  = "https://invest-public-api.tinkoff.ru:443"
	defaultAppName         = "trading-facade"
	defaultTicker          = "SBER"
	defaultQuoteTTLMillis  = 5000
	defaultMockBasePrice   = 190
	defaultMockPriceJitter = 2
	defaultRedisDB         = 0
	defaultCacheTTLSeconds = 30
	defaultOrdersExchange  = "trading.orders.placed"
)

// Config keeps the runtime configuration for the service.
type Config struct {
	Env      string
	HTTP     HTTPConfig
	Invest   InvestConfig
	Quotes   QuotesConfig
	Fallback FallbackConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
}

// HTTPConfig holds HTTP server related settings.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr renders the listen address in host:port form.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// InvestConfig holds upstream trading API credentials and endpoint. An empty
// token is allowed: the service starts in limited mode and read endpoints
// answer with fallback data.
type InvestConfig struct {
	Token         string
	Endpoint      string
	AppName       string
	SkipTLSVerify bool
}

// HasToken reports whether an upstream credential was provided.
func (c InvestConfig) HasToken() bool {
	return c.Token != ""
}

// QuotesConfig controls the in-memory quote cache.
type QuotesConfig struct {
	TTL           time.Duration
	DefaultTicker string
}

// FallbackConfig controls the degraded-mode behavior of read endpoints: when
// enabled, upstream failures are answered with a synthetic price instead of
// an error.
type FallbackConfig struct {
	Enabled     bool
	BasePrice   float64
	PriceJitter float64
}

// RedisConfig stores the optional response-cache connection parameters.
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	TTLSeconds int
}

// RabbitMQConfig stores the optional order-event broker settings.
type RabbitMQConfig struct {
	URL            string
	OrdersExchange string
}

// Load builds Config from environment variables.
func Load() (*Config, error) {
	port, err := getInt("HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return nil, fmt.Errorf("parse HTTP_PORT: %w", err)
	}

	quoteTTL, err := getInt("QUOTE_TTL_MS", defaultQuoteTTLMillis)
	if err != nil {
		return nil, fmt.Errorf("parse QUOTE_TTL_MS: %w", err)
	}
	if quoteTTL <= 0 {
		quoteTTL = defaultQuoteTTLMillis
	}

	basePrice, err := getFloat("MOCK_BASE_PRICE", defaultMockBasePrice)
	if err != nil {
		return nil, fmt.Errorf("parse MOCK_BASE_PRICE: %w", err)
	}
	jitter, err := getFloat("MOCK_PRICE_JITTER", defaultMockPriceJitter)
	if err != nil {
		return nil, fmt.Errorf("parse MOCK_PRICE_JITTER: %w", err)
	}

	redisDB, err := getInt("REDIS_DB", defaultRedisDB)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_DB: %w", err)
	}
	cacheTTL, err := getInt("CACHE_TTL_SECONDS", defaultCacheTTLSeconds)
	if err != nil {
		return nil, fmt.Errorf("parse CACHE_TTL_SECONDS: %w", err)
	}

	return &Config{
		Env:  getString("APP_ENV", defaultEnv),
		HTTP: HTTPConfig{Host: getString("HTTP_HOST", defaultHTTPHost), Port: port},
		Invest: InvestConfig{
			Token:         strings.TrimSpace(os.Getenv("INVEST_TOKEN")),
			Endpoint:      getString("INVEST_ENDPOINT", defaultInvestEndpoint),
			AppName:       getString("INVEST_APP_NAME", defaultAppName),
			SkipTLSVerify: getBool("INVEST_INSECURE_SKIP_VERIFY", true),
		},
		Quotes: QuotesConfig{
			TTL:           time.Duration(quoteTTL) * time.Millisecond,
			DefaultTicker: getString("DEFAULT_TICKER", defaultTicker),
		},
		Fallback: FallbackConfig{
			Enabled:     getBool("MOCK_FALLBACK", true),
			BasePrice:   basePrice,
			PriceJitter: jitter,
		},
		Redis: RedisConfig{
			Addr:       os.Getenv("REDIS_ADDR"),
			Password:   os.Getenv("REDIS_PASSWORD"),
			DB:         redisDB,
			TTLSeconds: cacheTTL,
		},
		RabbitMQ: RabbitMQConfig{
			URL:            os.Getenv("RABBITMQ_URL"),
			OrdersExchange: getString("RABBITMQ_ORDERS_EXCHANGE", defaultOrdersExchange),
		},
	}, nil
}

func getString(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to int: %w", key, value, err)
	}
	return parsed, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("convert %s value %q to float: %w", key, value, err)
	}
	return parsed, nil
}

func getBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
