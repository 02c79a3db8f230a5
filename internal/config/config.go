// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode            string        `mapstructure:"GIN_MODE"`
	ServerHost         string        `mapstructure:"SERVER_HOST"`
	ServerPort         string        `mapstructure:"SERVER_PORT"`
	ServerTimeout      time.Duration `mapstructure:"-"`
	CORSAllowedOrigins string        `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Database Configuration
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"`
	DBSource          string        `mapstructure:"DB_SOURCE"`

	// Logging Configuration
	LogLevel    string `mapstructure:"LOG_LEVEL"`
	LogFormat   string `mapstructure:"LOG_FORMAT"`
	LogFilePath string `mapstructure:"LOG_FILE_PATH"`

	// JWT
	JWTSecretKey                string        `mapstructure:"JWT_SECRET_KEY"`
	JWTAccessTokenExpiryMinutes time.Duration `mapstructure:"-"`

	// ML classification service
	MLAPIURL            string        `mapstructure:"ML_API_URL"`
	MLTimeout           time.Duration `mapstructure:"-"`
	DuplicateSampleSize int           `mapstructure:"DUPLICATE_SAMPLE_SIZE"`

	// Image storage
	MaxImageSizeMB     int64  `mapstructure:"MAX_IMAGE_SIZE_MB"`
	StorageType        string `mapstructure:"STORAGE_TYPE"`
	ImageStoragePath   string `mapstructure:"IMAGE_STORAGE_PATH"`
	ImagePublicBaseURL string `mapstructure:"IMAGE_PUBLIC_BASE_URL"`
	MinioEndpoint      string `mapstructure:"MINIO_ENDPOINT"`
	MinioAccessKey     string `mapstructure:"MINIO_ACCESS_KEY"`
	MinioSecretKey     string `mapstructure:"MINIO_SECRET_KEY"`
	MinioBucket        string `mapstructure:"MINIO_BUCKET"`
	MinioUseSSL        bool   `mapstructure:"MINIO_USE_SSL"`
	MinioPublicURL     string `mapstructure:"MINIO_PUBLIC_URL"`

	// SMTP
	SMTPHost string `mapstructure:"SMTP_HOST"`
	SMTPPort int    `mapstructure:"SMTP_PORT"`
	SMTPUser string `mapstructure:"SMTP_USER"`
	SMTPPass string `mapstructure:"SMTP_PASS"`
	SMTPFrom string `mapstructure:"SMTP_FROM"`

	// Settings cache
	RedisAddr        string        `mapstructure:"REDIS_ADDR"`
	RedisPassword    string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB          int           `mapstructure:"REDIS_DB"`
	SettingsCacheTTL time.Duration `mapstructure:"-"`

	// Reports
	ChromeExecPath      string        `mapstructure:"CHROME_EXEC_PATH"`
	ReportRenderTimeout time.Duration `mapstructure:"-"`

	// Rate limiting for ML-backed endpoints
	RateLimitRequests float64 `mapstructure:"RATE_LIMIT_REQUESTS"`
	RateLimitBurst    int     `mapstructure:"RATE_LIMIT_BURST"`

	// Cron Jobs
	EscalationJobSchedule string `mapstructure:"ESCALATION_JOB_SCHEDULE"`
}

// MaxImageBytes is the upload limit in bytes.
func (c *Config) MaxImageBytes() int64 {
	return c.MaxImageSizeMB << 20
}

// SMTPConfigured reports whether credentials for outbound mail are present.
func (c *Config) SMTPConfigured() bool {
	return strings.TrimSpace(c.SMTPUser) != "" && strings.TrimSpace(c.SMTPPass) != ""
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Duration fields are configured as plain integers.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.JWTAccessTokenExpiryMinutes = time.Duration(v.GetInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES")) * time.Minute
	cfg.MLTimeout = time.Duration(v.GetInt("ML_TIMEOUT_SECONDS")) * time.Second
	cfg.SettingsCacheTTL = time.Duration(v.GetInt("SETTINGS_CACHE_TTL_SECONDS")) * time.Second
	cfg.ReportRenderTimeout = time.Duration(v.GetInt("REPORT_RENDER_TIMEOUT_SECONDS")) * time.Second

	if cfg.DBSource == "" {
		cfg.DBSource = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode, cfg.DBTimezone)
	}
	if cfg.SMTPFrom == "" {
		cfg.SMTPFrom = cfg.SMTPUser
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "5000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "campus_care_db")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)
	v.SetDefault("DB_SOURCE", "")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("LOG_FILE_PATH", "")

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 60*24*7)

	v.SetDefault("ML_API_URL", "http://localhost:8000")
	v.SetDefault("ML_TIMEOUT_SECONDS", 120)
	v.SetDefault("DUPLICATE_SAMPLE_SIZE", 50)

	v.SetDefault("MAX_IMAGE_SIZE_MB", 5)
	v.SetDefault("STORAGE_TYPE", "local")
	v.SetDefault("IMAGE_STORAGE_PATH", "./uploads")
	v.SetDefault("IMAGE_PUBLIC_BASE_URL", "/uploads")
	v.SetDefault("MINIO_ENDPOINT", "localhost:9000")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "damage-reports")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "")

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USER", "")
	v.SetDefault("SMTP_PASS", "")
	v.SetDefault("SMTP_FROM", "")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SETTINGS_CACHE_TTL_SECONDS", 300)

	v.SetDefault("CHROME_EXEC_PATH", "")
	v.SetDefault("REPORT_RENDER_TIMEOUT_SECONDS", 60)

	v.SetDefault("RATE_LIMIT_REQUESTS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 10)

	v.SetDefault("ESCALATION_JOB_SCHEDULE", "@hourly")
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		return fmt.Errorf("FATAL: JWT_SECRET_KEY is not set")
	}
	switch c.StorageType {
	case "local", "minio":
	default:
		return fmt.Errorf("STORAGE_TYPE must be 'local' or 'minio', got %q", c.StorageType)
	}
	if c.MaxImageSizeMB <= 0 {
		return fmt.Errorf("MAX_IMAGE_SIZE_MB must be positive")
	}
	return nil
}
