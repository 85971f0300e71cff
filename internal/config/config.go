// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Redis       RedisConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Email       EmailConfig
	Groups      GroupsConfig
	Delivery    DeliveryConfig
	AI          AIConfig
	I18n        I18nConfig
	Frontend    FrontendConfig
}

// AIConfig holds the optional Gemini credentials for packaging
// recommendations. With no key the service answers from its deterministic
// fallback.
type AIConfig struct {
	GeminiAPIKey string
	GeminiModel  string
}

type FrontendConfig struct {
	BaseURL string
}

type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  int // in hours
	RefreshTokenTTL int // in hours
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	// Cache TTL for group listings, in seconds. 0 disables caching.
	GroupListTTL int
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
}

type PaymentConfig struct {
	StripeSecretKey      string
	StripePublishableKey string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	FromEmail    string
	FromName     string
}

// GroupsConfig tunes the buying-group lifecycle and impact estimates.
type GroupsConfig struct {
	NearTargetPct             int // progress pct at which a group is labeled near_target
	DefaultMinBusinesses      int
	DefaultDeadlineHours      int
	BaselineDeliveryMiles     float64 // solo delivery miles per participating business
	ConsolidatedDeliveryMiles float64 // miles for the single consolidated run
	CityProjectionBusinesses  int     // scale factor for city-wide impact projections
}

type DeliveryConfig struct {
	AvgSpeedMPH       float64
	StopBufferMinutes float64
	StartHourLocal    int    // local hour the consolidated run leaves the supplier
	Timezone          string // IANA name used for scheduling
}

type I18nConfig struct {
	DefaultLocale string
	LocalesPath   string
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "localhost"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "greensupply"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
		},
		JWT: JWTConfig{
			SecretKey:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsInt("JWT_ACCESS_TTL", 24),   // 24 hours
			RefreshTokenTTL: getEnvAsInt("JWT_REFRESH_TTL", 168), // 7 days
		},
		Redis: RedisConfig{
			Host:         getEnv("REDIS_HOST", "localhost"),
			Port:         getEnv("REDIS_PORT", "6379"),
			Password:     getEnv("REDIS_PASSWORD", ""),
			DB:           getEnvAsInt("REDIS_DB", 0),
			GroupListTTL: getEnvAsInt("REDIS_GROUP_LIST_TTL", 30),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "greensupply-listing-assets"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
		},
		Payment: PaymentConfig{
			StripeSecretKey:      getEnv("STRIPE_SECRET_KEY", ""),
			StripePublishableKey: getEnv("STRIPE_PUBLISHABLE_KEY", ""),
		},
		Email: EmailConfig{
			SMTPHost:     getEnv("SMTP_HOST", ""),
			SMTPPort:     getEnv("SMTP_PORT", "587"),
			SMTPUsername: getEnv("SMTP_USERNAME", ""),
			SMTPPassword: getEnv("SMTP_PASSWORD", ""),
			FromEmail:    getEnv("FROM_EMAIL", "noreply@greensupply.app"),
			FromName:     getEnv("FROM_NAME", "GreenSupply"),
		},
		Groups: GroupsConfig{
			NearTargetPct:             getEnvAsInt("GROUP_NEAR_TARGET_PCT", 75),
			DefaultMinBusinesses:      getEnvAsInt("GROUP_DEFAULT_MIN_BUSINESSES", 5),
			DefaultDeadlineHours:      getEnvAsInt("GROUP_DEFAULT_DEADLINE_HOURS", 72),
			BaselineDeliveryMiles:     getEnvAsFloat("GROUP_BASELINE_DELIVERY_MILES", 4.0),
			ConsolidatedDeliveryMiles: getEnvAsFloat("GROUP_CONSOLIDATED_DELIVERY_MILES", 4.0),
			CityProjectionBusinesses:  getEnvAsInt("GROUP_CITY_PROJECTION_BUSINESSES", 5000),
		},
		Delivery: DeliveryConfig{
			AvgSpeedMPH:       getEnvAsFloat("DELIVERY_AVG_SPEED_MPH", 22.0),
			StopBufferMinutes: getEnvAsFloat("DELIVERY_STOP_BUFFER_MINUTES", 4.0),
			StartHourLocal:    getEnvAsInt("DELIVERY_START_HOUR_LOCAL", 8),
			Timezone:          getEnv("DELIVERY_TIMEZONE", "America/Los_Angeles"),
		},
		AI: AIConfig{
			GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
			GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
			LocalesPath:   getEnv("LOCALES_PATH", "./internal/i18n/locales"),
		},
		Frontend: FrontendConfig{
			BaseURL: getEnv("FRONTEND_BASE_URL", "http://localhost:3000"),
		},
	}

	return config, config.Validate()
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == "your-secret-key-change-in-production" && c.Environment == "production" {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	if c.Database.Password == "" && c.Environment == "production" {
		return fmt.Errorf("database password is required in production")
	}

	if c.Groups.NearTargetPct < 1 || c.Groups.NearTargetPct > 100 {
		return fmt.Errorf("GROUP_NEAR_TARGET_PCT must be between 1 and 100")
	}

	if c.Groups.DefaultMinBusinesses < 1 {
		return fmt.Errorf("GROUP_DEFAULT_MIN_BUSINESSES must be at least 1")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
