package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Session  SessionConfig
	Relay    RelayConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string // empty disables activity forwarding
	RedisURL           string
	OtelEnabled        bool
	OtelEndpoint       string
}

type UpstreamConfig struct {
	BaseURL    string
	CookieName string // the only upstream cookie relayed back and forth
	JobPath    string
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Store      string // "memory" or "redis"
}

type RelayConfig struct {
	PollMaxAttempts  int
	PollInterval     time.Duration
	MaxTopN          int
	WatchedLimit     int
	JournalsCacheTTL time.Duration
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "9000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:9000"),
			NatsURL:            getEnv("NATS_URL", ""),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			OtelEnabled:        getEnvAsBool("OTEL_ENABLED", false),
			OtelEndpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
		},
		Upstream: UpstreamConfig{
			BaseURL:    getEnv("API_URL", "http://localhost:9292/api/v1"),
			CookieName: getEnv("UPSTREAM_COOKIE_NAME", "rack.session"),
			JobPath:    getEnv("UPSTREAM_JOB_PATH", "/research_interest"),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", "a_different_secret_for_the_web_app"),
			CookieName: getEnv("SESSION_COOKIE_NAME", "acaradar_session"),
			TTL:        time.Duration(getEnvAsInt("SESSION_TTL_MINUTES", 60*24*7)) * time.Minute,
			Store:      getEnv("SESSION_STORE", "memory"),
		},
		Relay: RelayConfig{
			PollMaxAttempts:  getEnvAsInt("POLL_MAX_ATTEMPTS", 10),
			PollInterval:     time.Duration(getEnvAsInt("POLL_INTERVAL_MS", 200)) * time.Millisecond,
			MaxTopN:          getEnvAsInt("MAX_TOP_N", 200),
			WatchedLimit:     getEnvAsInt("WATCHED_LIMIT", 20),
			JournalsCacheTTL: time.Duration(getEnvAsInt("JOURNALS_CACHE_TTL_SECONDS", 300)) * time.Second,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
