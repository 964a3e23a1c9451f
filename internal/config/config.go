package config

import (
	"os"
	"strconv"
	"time"

	"easy-invoice.backend/pkg/crypto"
)

// Config holds all configuration values
type Config struct {
	Server         ServerConfig
	Database       DatabaseConfig
	Redis          RedisConfig
	Google         GoogleConfig
	RequestNetwork RequestNetworkConfig
	Compliance     ComplianceConfig
	Session        SessionConfig
	Security       SecurityConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port          string
	Env           string
	FrontendURL   string
	SecureCookies bool
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	PASSWORD string
}

// GoogleConfig holds the Google OAuth client configuration
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// RequestNetworkConfig holds the payments gateway configuration
type RequestNetworkConfig struct {
	BaseURL       string
	APIKey        string
	WebhookSecret string
}

// ComplianceConfig holds the compliance provider configuration
type ComplianceConfig struct {
	BaseURL     string
	APIKey      string
	StatusCache bool
}

// SessionConfig holds session cookie lifetimes
type SessionConfig struct {
	TTL         time.Duration
	RenewWithin time.Duration
}

// SecurityConfig holds field-encryption key material
type SecurityConfig struct {
	FieldEncryptionKey string
	EncryptionVersion  crypto.Version
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          getEnv("SERVER_PORT", "8080"),
			Env:           getEnv("SERVER_ENV", "development"),
			FrontendURL:   getEnv("FRONTEND_URL", "http://localhost:3000"),
			SecureCookies: getEnvAsBool("SECURE_COOKIES", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "easyinvoice"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			PASSWORD: getEnv("REDIS_PASSWORD", ""),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		},
		RequestNetwork: RequestNetworkConfig{
			BaseURL:       getEnv("REQUEST_NETWORK_API_URL", "https://api.request.network"),
			APIKey:        getEnv("REQUEST_NETWORK_API_KEY", ""),
			WebhookSecret: getEnv("REQUEST_NETWORK_WEBHOOK_SECRET", ""),
		},
		Compliance: ComplianceConfig{
			BaseURL:     getEnv("COMPLIANCE_API_URL", "https://api.request.network/v2/payer"),
			APIKey:      getEnv("COMPLIANCE_API_KEY", ""),
			StatusCache: getEnvAsBool("COMPLIANCE_STATUS_CACHE", true),
		},
		Session: SessionConfig{
			TTL:         getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),
			RenewWithin: getEnvAsDuration("SESSION_RENEW_WITHIN", 15*24*time.Hour),
		},
		Security: SecurityConfig{
			FieldEncryptionKey: getEnv("FIELD_ENCRYPTION_KEY", "0000000000000000000000000000000000000000000000000000000000000000"), // 32-bytes hex string
			EncryptionVersion:  crypto.Version(getEnv("FIELD_ENCRYPTION_VERSION", string(crypto.VersionV2))),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
