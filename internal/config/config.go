package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Routing providers understood by the gateway loader
const (
	ProviderBaidu  = "baidu"
	ProviderGoogle = "google"
	ProviderNone   = "none"
)

type Config struct {
	Environment string
	LogLevel    zerolog.Level
	HTTPTimeout time.Duration

	RoutingProvider string
	BaiduAK         string
	BaiduBaseURL    string
	BaiduQPS        float64
	GoogleAPIKey    string

	// Resolution tuning
	QueryTimeout     time.Duration
	LoadWait         time.Duration
	WindowPause      time.Duration
	RouteConcurrency int
}

type Option func(*Config)

// WithEnvironment allows setting the environment
func WithEnvironment(env string) Option {
	return func(c *Config) {
		c.Environment = env
	}
}

// WithLogLevel allows setting the log level
func WithLogLevel(level string) Option {
	return func(c *Config) {
		parsedLevel, err := zerolog.ParseLevel(level)
		if err != nil {
			parsedLevel = zerolog.InfoLevel
		}
		c.LogLevel = parsedLevel
	}
}

// WithHTTPTimeout allows setting the HTTP timeout
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		c.HTTPTimeout = timeout
	}
}

// WithRoutingProvider selects the external routing backend. Unknown values
// fall back to ProviderNone.
func WithRoutingProvider(provider string) Option {
	return func(c *Config) {
		switch p := strings.ToLower(strings.TrimSpace(provider)); p {
		case ProviderBaidu, ProviderGoogle:
			c.RoutingProvider = p
		default:
			c.RoutingProvider = ProviderNone
		}
	}
}

func WithBaidu(ak, baseURL string, qps float64) Option {
	return func(c *Config) {
		c.BaiduAK = ak
		if baseURL != "" {
			c.BaiduBaseURL = baseURL
		}
		if qps > 0 {
			c.BaiduQPS = qps
		}
	}
}

func WithGoogleAPIKey(key string) Option {
	return func(c *Config) {
		c.GoogleAPIKey = key
	}
}

// WithResolution overrides the per-pair timeout, the gateway wait ceiling,
// the pause between windows and the default window size. Zero values keep
// the defaults.
func WithResolution(queryTimeout, loadWait, windowPause time.Duration, concurrency int) Option {
	return func(c *Config) {
		if queryTimeout > 0 {
			c.QueryTimeout = queryTimeout
		}
		if loadWait > 0 {
			c.LoadWait = loadWait
		}
		if windowPause > 0 {
			c.WindowPause = windowPause
		}
		if concurrency > 0 {
			c.RouteConcurrency = concurrency
		}
	}
}

// New creates a new configuration with default values
func New(opts ...Option) *Config {
	cfg := &Config{
		Environment:      "production",
		LogLevel:         zerolog.InfoLevel,
		HTTPTimeout:      10 * time.Second,
		RoutingProvider:  ProviderNone,
		BaiduBaseURL:     "https://api.map.baidu.com",
		BaiduQPS:         2,
		QueryTimeout:     10 * time.Second,
		LoadWait:         5 * time.Second,
		WindowPause:      100 * time.Millisecond,
		RouteConcurrency: 5,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// InitializeLogging sets up logging based on the configuration
func (c *Config) InitializeLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(c.LogLevel)

	if c.Environment == "local" || c.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
		return
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	return New(
		WithEnvironment(getEnvOrDefault("ENV", "production")),
		WithLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
		WithHTTPTimeout(getDurationEnvOrDefault("HTTP_TIMEOUT", 10*time.Second)),
		WithRoutingProvider(getEnvOrDefault("ROUTING_PROVIDER", ProviderNone)),
		WithBaidu(os.Getenv("BAIDU_MAP_AK"), os.Getenv("BAIDU_BASE_URL"), getEnvFloat("BAIDU_QPS", 0)),
		WithGoogleAPIKey(os.Getenv("GOOGLE_MAPS_API_KEY")),
		WithResolution(
			getDurationEnvOrDefault("ROUTE_QUERY_TIMEOUT", 0),
			getDurationEnvOrDefault("ROUTE_LOAD_WAIT", 0),
			getDurationEnvOrDefault("ROUTE_WINDOW_PAUSE", 0),
			getEnvInt("ROUTE_CONCURRENCY", 0),
		),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Msg("Invalid integer value in environment variable, using default")
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
		log.Warn().Str("key", key).Msg("Invalid float value in environment variable, using default")
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists && val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}
