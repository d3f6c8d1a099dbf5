package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Compiled-in remote defaults. They keep a fresh install reachable before an
// administrator configures the center's own project (overridable at runtime
// through the settings store).
const (
	DefaultRemoteURL = "https://zugbripyvaidkpesrvaa.supabase.co"
	DefaultRemoteKey = "sb_publishable_dG-K9akAvooI8qFDK7q6lg_nuRIqGri"
)

type Config struct {
	Server  ServerConfig
	Remote  RemoteConfig
	Redis   RedisConfig
	Auth    AuthConfig
	Sync    SyncConfig
	Finance FinanceConfig
	App     AppConfig
}

type ServerConfig struct {
	Port        string
	CORSOrigins []string
}

// RemoteConfig selects how the hosted datastore is reached. Mode "rest" talks
// PostgREST to URL/Key; mode "postgres" uses DSN directly.
type RemoteConfig struct {
	Mode string
	URL  string
	Key  string
	DSN  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuthConfig carries the JWT session settings and the seed administrator
// bootstrap credentials. The seed admin replaces the fixed credential pair the
// previous system shipped with: the account still always exists locally, but
// its secrets come from deployment configuration.
type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
	AdminPIN      string
	AdminName     string
}

type SyncConfig struct {
	RefreshInterval time.Duration
}

// FinanceConfig selects the default commission accounting basis: "invoices"
// (cash basis, paid invoices only) or "sessions" (all held sessions).
type FinanceConfig struct {
	LiabilityBasis string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	LogFormat   string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			CORSOrigins: []string{getEnv("CORS_ORIGIN", "*")},
		},
		Remote: RemoteConfig{
			Mode: getEnv("REMOTE_MODE", "rest"),
			URL:  getEnv("REMOTE_URL", DefaultRemoteURL),
			Key:  getEnv("REMOTE_KEY", DefaultRemoteKey),
			DSN:  getEnv("REMOTE_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", "guidari-dev-secret"),
			TokenTTL:      getEnvAsDuration("TOKEN_TTL", 12*time.Hour),
			AdminEmail:    getEnv("ADMIN_EMAIL", "admin@guidari.local"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "cambiar-al-instalar"),
			AdminPIN:      getEnv("ADMIN_PIN", "0000"),
			AdminName:     getEnv("ADMIN_NAME", "Administración Guidari"),
		},
		Sync: SyncConfig{
			RefreshInterval: getEnvAsDuration("SYNC_INTERVAL", 30*time.Minute),
		},
		Finance: FinanceConfig{
			LiabilityBasis: getEnv("FINANCE_BASIS", "invoices"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			LogFormat:   getEnv("LOG_FORMAT", "json"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Remote.Mode {
	case "rest":
		if c.Remote.URL == "" || c.Remote.Key == "" {
			return fmt.Errorf("REMOTE_URL and REMOTE_KEY are required in rest mode")
		}
	case "postgres":
		if c.Remote.DSN == "" {
			return fmt.Errorf("REMOTE_DSN is required in postgres mode")
		}
	default:
		return fmt.Errorf("REMOTE_MODE must be rest or postgres, got %q", c.Remote.Mode)
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}

	if c.Finance.LiabilityBasis != "invoices" && c.Finance.LiabilityBasis != "sessions" {
		return fmt.Errorf("FINANCE_BASIS must be invoices or sessions, got %q", c.Finance.LiabilityBasis)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid duration for %s, using default: %s", key, defaultValue)
		return defaultValue
	}

	return value
}
