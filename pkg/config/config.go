package config

import (
	"errors"
	"io/fs"
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

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Feed     FeedConfig
	Tracking TrackingConfig
	Export   ExportConfig
	Metrics  MetricsConfig
	Startup  StartupConfig
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
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// FeedConfig drives ICS generation and the feed cache.
type FeedConfig struct {
	Domain           string
	PublicBaseURL    string
	CacheTTL         time.Duration
	PromoRefreshCron string
	PremiumSecret    string
	PremiumTTL       time.Duration
	SchoolYear       string
}

// TrackingConfig sizes the promo impression queue.
type TrackingConfig struct {
	Workers       int
	BufferSize    int
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	FlushCron     string
	FlushMaxBatch int
}

// ExportConfig is used by calendarctl export.
type ExportConfig struct {
	Dir string
}

type MetricsConfig struct {
	Enabled bool
}

// StartupConfig bounds how long the process waits for Postgres and Redis.
type StartupConfig struct {
	ConnectRetries int
	ConnectBackoff time.Duration
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Feed = FeedConfig{
		Domain:           v.GetString("FEED_DOMAIN"),
		PublicBaseURL:    strings.TrimRight(v.GetString("FEED_PUBLIC_BASE_URL"), "/"),
		CacheTTL:         parseDuration(v.GetString("FEED_CACHE_TTL"), time.Hour),
		PromoRefreshCron: v.GetString("FEED_PROMO_REFRESH_CRON"),
		PremiumSecret:    v.GetString("FEED_PREMIUM_SECRET"),
		PremiumTTL:       parseDuration(v.GetString("FEED_PREMIUM_TTL"), 365*24*time.Hour),
		SchoolYear:       v.GetString("FEED_SCHOOL_YEAR"),
	}

	cfg.Tracking = TrackingConfig{
		Workers:       v.GetInt("TRACKING_WORKERS"),
		BufferSize:    v.GetInt("TRACKING_BUFFER_SIZE"),
		MaxRetries:    v.GetInt("TRACKING_MAX_RETRIES"),
		RetryDelay:    parseDuration(v.GetString("TRACKING_RETRY_DELAY"), 2*time.Second),
		MaxRetryDelay: parseDuration(v.GetString("TRACKING_MAX_RETRY_DELAY"), time.Minute),
		FlushCron:     v.GetString("TRACKING_FLUSH_CRON"),
		FlushMaxBatch: v.GetInt("TRACKING_FLUSH_MAX_BATCH"),
	}

	cfg.Export = ExportConfig{Dir: v.GetString("EXPORT_DIR")}

	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	cfg.Startup = StartupConfig{
		ConnectRetries: v.GetInt("STARTUP_CONNECT_RETRIES"),
		ConnectBackoff: parseDuration(v.GetString("STARTUP_CONNECT_BACKOFF"), time.Second),
	}

	return cfg, nil
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool {
	return c != nil && c.Env == EnvProduction
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "calendar_scolar")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "calendarscolar.ro")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("FEED_DOMAIN", "calendarscolar.ro")
	v.SetDefault("FEED_PUBLIC_BASE_URL", "http://localhost:8080")
	v.SetDefault("FEED_CACHE_TTL", "1h")
	v.SetDefault("FEED_PROMO_REFRESH_CRON", "@every 1m")
	v.SetDefault("FEED_PREMIUM_SECRET", "dev_premium_secret")
	v.SetDefault("FEED_PREMIUM_TTL", "8760h")
	v.SetDefault("FEED_SCHOOL_YEAR", "2025-2026")

	v.SetDefault("TRACKING_WORKERS", 2)
	v.SetDefault("TRACKING_BUFFER_SIZE", 1024)
	v.SetDefault("TRACKING_MAX_RETRIES", 3)
	v.SetDefault("TRACKING_RETRY_DELAY", "2s")
	v.SetDefault("TRACKING_FLUSH_CRON", "@every 1m")
	v.SetDefault("TRACKING_FLUSH_MAX_BATCH", 500)

	v.SetDefault("EXPORT_DIR", "./public/feeds")
	v.SetDefault("ENABLE_METRICS", true)

	v.SetDefault("STARTUP_CONNECT_RETRIES", 5)
	v.SetDefault("STARTUP_CONNECT_BACKOFF", "1s")
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
