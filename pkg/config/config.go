package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	BMLT       BMLTConfig
	Events     EventsConfig
	Federation FederationConfig
	Exports    ExportsConfig
	Feeds      FeedsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// BMLTConfig points at the BMLT root server used for service body lookups.
type BMLTConfig struct {
	RootServerURL  string
	RequestTimeout time.Duration
	CacheTTL       time.Duration
}

// EventsConfig tunes listing defaults and recurrence expansion.
type EventsConfig struct {
	DefaultPageSize  int
	MaxPageSize      int
	ExpansionHorizon time.Duration
	CacheTTL         time.Duration
	Timezone         string
}

// FederationConfig controls aggregation from external event sources.
type FederationConfig struct {
	FetchTimeout   time.Duration
	PerSourceLimit int
}

// ExportsConfig toggles the admin export endpoints.
type ExportsConfig struct {
	Enabled bool
}

// FeedsConfig configures the public calendar and RSS feeds.
type FeedsConfig struct {
	Enabled  bool
	SiteURL  string
	SiteName string
	CacheTTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.BMLT = BMLTConfig{
		RootServerURL:  strings.TrimRight(v.GetString("BMLT_ROOT_SERVER"), "/"),
		RequestTimeout: parseDuration(v.GetString("BMLT_REQUEST_TIMEOUT"), 15*time.Second),
		CacheTTL:       parseDuration(v.GetString("BMLT_CACHE_TTL"), 0),
	}

	cfg.Events = EventsConfig{
		DefaultPageSize:  v.GetInt("EVENTS_DEFAULT_PAGE_SIZE"),
		MaxPageSize:      v.GetInt("EVENTS_MAX_PAGE_SIZE"),
		ExpansionHorizon: parseDuration(v.GetString("EVENTS_EXPANSION_HORIZON"), 5*365*24*time.Hour),
		CacheTTL:         parseDuration(v.GetString("EVENTS_CACHE_TTL"), time.Minute),
		Timezone:         v.GetString("EVENTS_TIMEZONE"),
	}

	cfg.Federation = FederationConfig{
		FetchTimeout:   parseDuration(v.GetString("FEDERATION_FETCH_TIMEOUT"), 15*time.Second),
		PerSourceLimit: v.GetInt("FEDERATION_PER_SOURCE_LIMIT"),
	}

	cfg.Exports = ExportsConfig{
		Enabled: v.GetBool("ENABLE_EXPORTS"),
	}

	cfg.Feeds = FeedsConfig{
		Enabled:  v.GetBool("ENABLE_FEEDS"),
		SiteURL:  strings.TrimRight(v.GetString("SITE_URL"), "/"),
		SiteName: v.GetString("SITE_NAME"),
		CacheTTL: parseDuration(v.GetString("FEEDS_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mayo_events")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BMLT_ROOT_SERVER", "")
	v.SetDefault("BMLT_REQUEST_TIMEOUT", "15s")
	v.SetDefault("BMLT_CACHE_TTL", "0")

	v.SetDefault("EVENTS_DEFAULT_PAGE_SIZE", 10)
	v.SetDefault("EVENTS_MAX_PAGE_SIZE", 100)
	v.SetDefault("EVENTS_EXPANSION_HORIZON", "43800h")
	v.SetDefault("EVENTS_CACHE_TTL", "1m")
	v.SetDefault("EVENTS_TIMEZONE", "UTC")

	v.SetDefault("FEDERATION_FETCH_TIMEOUT", "15s")
	v.SetDefault("FEDERATION_PER_SOURCE_LIMIT", 100)

	v.SetDefault("ENABLE_EXPORTS", false)

	v.SetDefault("ENABLE_FEEDS", true)
	v.SetDefault("SITE_URL", "http://localhost:8080")
	v.SetDefault("SITE_NAME", "Community Events")
	v.SetDefault("FEEDS_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
