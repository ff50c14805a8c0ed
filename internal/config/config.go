package config

import (
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Catalog  CatalogConfig
	Backup   BackupConfig
	Timezone string
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port           string
	AllowedOrigins string
}

// DatabaseConfig seleciona o driver e ajusta o pool de conexões
type DatabaseConfig struct {
	URL          string
	Driver       string
	Seed         bool
	LogLevel     string
	MaxIdleConns int
	MaxOpenConns int
}

// AuthConfig holds JWT and seeded admin settings.
type AuthConfig struct {
	Required      bool
	JWTSecret     string
	TokenTTL      time.Duration
	AdminEmail    string
	AdminPassword string
}

// CatalogConfig controls the question catalog cache.
type CatalogConfig struct {
	TTL time.Duration
}

// BackupConfig holds defaults for the backup command.
type BackupConfig struct {
	OutputDir string
}

var bindings = map[string]string{
	"server.port":             "PORT",
	"server.allowed_origins":  "CORS_ALLOWED_ORIGINS",
	"database.url":            "DATABASE_URL",
	"database.driver":         "DATABASE_DRIVER",
	"database.seed":           "DATABASE_SEED",
	"database.log_level":      "DATABASE_LOG_LEVEL",
	"database.max_idle_conns": "DATABASE_MAX_IDLE_CONNS",
	"database.max_open_conns": "DATABASE_MAX_OPEN_CONNS",
	"auth.required":           "AUTH_REQUIRED",
	"auth.jwt_secret":         "JWT_SECRET",
	"auth.jwt_ttl":            "JWT_TTL",
	"auth.admin_email":        "ADMIN_EMAIL",
	"auth.admin_password":     "ADMIN_PASSWORD",
	"catalog.ttl":             "CATALOG_TTL",
	"backup.output_dir":       "BACKUP_OUTPUT_DIR",
	"app.timezone":            "APP_TIMEZONE",
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", "*")
	v.SetDefault("database.url", "")
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.seed", "true")
	v.SetDefault("database.log_level", "error")
	v.SetDefault("database.max_idle_conns", "20")
	v.SetDefault("database.max_open_conns", "150")
	v.SetDefault("auth.required", "false")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.jwt_ttl", "12h")
	v.SetDefault("auth.admin_email", "")
	v.SetDefault("auth.admin_password", "")
	v.SetDefault("catalog.ttl", "10m")
	v.SetDefault("backup.output_dir", "backups")
	v.SetDefault("app.timezone", "America/Sao_Paulo")

	for key, env := range bindings {
		_ = v.BindEnv(key, env)
	}
	return v
}

// Load reads .env (if present) into the process environment and builds a Config from it.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, using defaults and environment variables")
	}
	return FromViper(newViper())
}

// FromViper converts resolved viper values into a Config.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("server.port"),
			AllowedOrigins: v.GetString("server.allowed_origins"),
		},
		Database: DatabaseConfig{
			URL:          v.GetString("database.url"),
			Driver:       strings.ToLower(v.GetString("database.driver")),
			Seed:         v.GetBool("database.seed"),
			LogLevel:     v.GetString("database.log_level"),
			MaxIdleConns: v.GetInt("database.max_idle_conns"),
			MaxOpenConns: v.GetInt("database.max_open_conns"),
		},
		Auth: AuthConfig{
			Required:      v.GetBool("auth.required"),
			JWTSecret:     v.GetString("auth.jwt_secret"),
			TokenTTL:      v.GetDuration("auth.jwt_ttl"),
			AdminEmail:    v.GetString("auth.admin_email"),
			AdminPassword: v.GetString("auth.admin_password"),
		},
		Catalog: CatalogConfig{
			TTL: v.GetDuration("catalog.ttl"),
		},
		Backup: BackupConfig{
			OutputDir: v.GetString("backup.output_dir"),
		},
		Timezone: v.GetString("app.timezone"),
	}
	return cfg, cfg.Validate()
}

// Validate checks combinations that would only fail later at runtime.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.New("DATABASE_DRIVER must be postgres or sqlite")
	}
	if c.Auth.Required && c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required when AUTH_REQUIRED is true")
	}
	if c.Auth.TokenTTL <= 0 {
		return errors.New("JWT_TTL must be a positive duration")
	}
	return nil
}
