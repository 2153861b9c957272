package config

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig `mapstructure:"jwt"`
	Log      LogConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Auth     AuthConfig
	Audit    AuditConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey     string `mapstructure:"secret_key"`     // HMAC signing key
	TokenDuration string `mapstructure:"token_duration"` // token lifetime, e.g. "24h"
	Issuer        string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level      string
	FilePath   string
	MaxSize    int    // MB
	MaxBackups int    // rotated files kept
	MaxAge     int    // days
	Compress   bool   // gzip rotated files
	Format     string // json or text
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string // key prefix for the session registry
}

type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           int // preflight cache, hours
}

// AuthConfig login, cookie and seed settings
type AuthConfig struct {
	CookieName        string
	CookieSecure      bool
	LoginPath         string
	RefreshTimeout    time.Duration // bound on store reads while re-deriving claims
	SeedAdminEmail    string
	SeedAdminPassword string
}

type AuditConfig struct {
	RetentionDays int
	CleanupCron   string
}

type SecurityConfig struct {
	SSLRedirect bool
}

var (
	globalConfig *Config
	once         sync.Once
)

func GetConfig() *Config {
	once.Do(func() {
		var err error
		globalConfig, err = LoadConfig()
		if err != nil {
			panic("Failed to load config: " + err.Error())
		}
	})
	return globalConfig
}

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

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true"
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsStringArray comma separated list, blanks dropped
func getEnvAsStringArray(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return defaultValue
}

func LoadConfig() (*Config, error) {
	// a missing .env is fine, the environment wins either way
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Mode: getEnv("SERVER_MODE", "debug"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "irigasi"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey:     getEnv("JWT_SECRET_KEY", "default-secret-change-me"),
			TokenDuration: getEnv("JWT_TOKEN_DURATION", "24h"),
			Issuer:        getEnv("JWT_ISSUER", "irigasi"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			FilePath:   getEnv("LOG_FILE_PATH", "logs/app.log"),
			MaxSize:    getEnvAsInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 7),
			MaxAge:     getEnvAsInt("LOG_MAX_AGE", 30),
			Compress:   getEnvAsBool("LOG_COMPRESS", true),
			Format:     getEnv("LOG_FORMAT", "json"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvAsInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "irigasi:session"),
		},
		CORS: CORSConfig{
			AllowOrigins:     getEnvAsStringArray("CORS_ALLOW_ORIGINS", []string{"*"}),
			AllowMethods:     getEnvAsStringArray("CORS_ALLOW_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"}),
			AllowHeaders:     getEnvAsStringArray("CORS_ALLOW_HEADERS", []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"}),
			ExposeHeaders:    getEnvAsStringArray("CORS_EXPOSE_HEADERS", []string{"Content-Length", "Content-Type"}),
			AllowCredentials: getEnvAsBool("CORS_ALLOW_CREDENTIALS", false),
			MaxAge:           getEnvAsInt("CORS_MAX_AGE", 12),
		},
		Auth: AuthConfig{
			CookieName:        getEnv("AUTH_COOKIE_NAME", "session_token"),
			CookieSecure:      getEnvAsBool("AUTH_COOKIE_SECURE", false),
			LoginPath:         getEnv("AUTH_LOGIN_PATH", "/login"),
			RefreshTimeout:    getEnvAsDuration("AUTH_REFRESH_TIMEOUT", 3*time.Second),
			SeedAdminEmail:    getEnv("AUTH_SEED_ADMIN_EMAIL", "superadmin@irigasi.local"),
			SeedAdminPassword: getEnv("AUTH_SEED_ADMIN_PASSWORD", ""),
		},
		Audit: AuditConfig{
			RetentionDays: getEnvAsInt("AUDIT_RETENTION_DAYS", 90),
			CleanupCron:   getEnv("AUDIT_CLEANUP_CRON", "0 3 * * *"),
		},
		Security: SecurityConfig{
			SSLRedirect: getEnvAsBool("SECURITY_SSL_REDIRECT", false),
		},
	}

	return config, nil
}

// TokenDuration parsed JWT lifetime, 24h when unparsable
func (c *Config) TokenDuration() time.Duration {
	d, err := time.ParseDuration(c.JWT.TokenDuration)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}
