package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	Database      DatabaseConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
	Cache         CacheConfig
	ClientSession ClientSessionConfig
	EventTriggers EventTriggersConfig
	Ratings       RatingsConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	URL        string
	CACertPath string // Optional CA bundle used when DATABASE_URL requests TLS
	MaxConns   int32
	MinConns   int32
}

type LoggingConfig struct {
	Level      string
	Dir        string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

type ObservabilityConfig struct {
	AlloyEndpoint     string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

type CacheConfig struct {
	ConsultationTTLSeconds int // Consultation lookup cache TTL in seconds, 0 disables caching
}

type ClientSessionConfig struct {
	JWTSecret     string
	JWTIssuer     string
	TokenTTLHours int
}

type EventTriggersConfig struct {
	RatingCreatedTriggerURL string
}

type RatingsConfig struct {
	DefaultLocale  string // Locale for violation messages when Accept-Language does not match
	MaxBodyBytes   int64
	RateLimitRPS   float64 // Per-IP submissions per second
	RateLimitBurst int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8081")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("LOG_MAX_SIZE_MB", 100)
	v.SetDefault("LOG_MAX_BACKUPS", 5)
	v.SetDefault("LOG_MAX_AGE_DAYS", 14)
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "") // OTLP over HTTP, empty disables tracing
	v.SetDefault("O11Y_BE_SERVICE_NAME", "rating-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "consultations")
	v.SetDefault("O11Y_BE_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "rating-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)
	v.SetDefault("CONSULTATION_CACHE_TTL", 60)
	v.SetDefault("JWT_ISSUER", "consultation-platform")
	v.SetDefault("JWT_TOKEN_TTL_HOURS", 24)
	v.SetDefault("DEFAULT_LOCALE", "zh")
	v.SetDefault("RATING_MAX_BODY_BYTES", 16*1024)
	v.SetDefault("RATING_RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATING_RATE_LIMIT_BURST", 5)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			AllowedOrigins: ParseOrigins(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			URL:        v.GetString("DATABASE_URL"),
			CACertPath: v.GetString("DATABASE_CA_CERT"),
			MaxConns:   v.GetInt32("DB_MAX_CONNS"),
			MinConns:   v.GetInt32("DB_MIN_CONNS"),
		},
		Logging: LoggingConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Dir:        v.GetString("LOG_DIR"),
			MaxSizeMB:  v.GetInt("LOG_MAX_SIZE_MB"),
			MaxBackups: v.GetInt("LOG_MAX_BACKUPS"),
			MaxAgeDays: v.GetInt("LOG_MAX_AGE_DAYS"),
		},
		Observability: ObservabilityConfig{
			AlloyEndpoint:     v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_BE_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_BE_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
		Cache: CacheConfig{
			ConsultationTTLSeconds: v.GetInt("CONSULTATION_CACHE_TTL"),
		},
		ClientSession: ClientSessionConfig{
			JWTSecret:     v.GetString("JWT_SECRET"),
			JWTIssuer:     v.GetString("JWT_ISSUER"),
			TokenTTLHours: v.GetInt("JWT_TOKEN_TTL_HOURS"),
		},
		EventTriggers: EventTriggersConfig{
			RatingCreatedTriggerURL: v.GetString("RATING_CREATED_TRIGGER_URL"),
		},
		Ratings: RatingsConfig{
			DefaultLocale:  v.GetString("DEFAULT_LOCALE"),
			MaxBodyBytes:   v.GetInt64("RATING_MAX_BODY_BYTES"),
			RateLimitRPS:   v.GetFloat64("RATING_RATE_LIMIT_RPS"),
			RateLimitBurst: v.GetInt("RATING_RATE_LIMIT_BURST"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParseOrigins splits a comma-separated origin list, dropping blanks
func ParseOrigins(raw string) []string {
	origins := lo.Map(strings.Split(raw, ","), func(origin string, _ int) string {
		return strings.TrimSpace(origin)
	})
	return lo.Compact(origins)
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS must not exceed DB_MAX_CONNS")
	}

	if c.ClientSession.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.IsProduction() && c.Server.GinMode == "debug" {
		return fmt.Errorf("GIN_MODE=debug is not allowed when APP_ENV=production")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Ratings.DefaultLocale != "zh" && c.Ratings.DefaultLocale != "en" {
		return fmt.Errorf("DEFAULT_LOCALE must be one of: zh, en")
	}
	if c.Ratings.MaxBodyBytes <= 0 {
		return fmt.Errorf("RATING_MAX_BODY_BYTES must be positive")
	}
	if c.Ratings.RateLimitRPS <= 0 || c.Ratings.RateLimitBurst <= 0 {
		return fmt.Errorf("RATING_RATE_LIMIT_RPS and RATING_RATE_LIMIT_BURST must be positive")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
