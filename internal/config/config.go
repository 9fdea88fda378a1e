package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	SessionTTL        time.Duration
	DashboardCacheTTL time.Duration
	BackupDir         string
	AdminUsername     string
	AdminPassword     string
	RecentFeedSize    int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("INTERNLOG")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "InternLog API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.url", "internlog.db")
	v.SetDefault("session.ttl", "20m")
	v.SetDefault("dashboard.cache_ttl", "2m")
	v.SetDefault("backup.dir", "backups")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("recent.feed_size", 10)

	sessionTTL, err := time.ParseDuration(v.GetString("session.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid session ttl: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("dashboard.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid dashboard cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		SessionTTL:        sessionTTL,
		DashboardCacheTTL: cacheTTL,
		BackupDir:         v.GetString("backup.dir"),
		AdminUsername:     v.GetString("admin.username"),
		AdminPassword:     v.GetString("admin.password"),
		RecentFeedSize:    v.GetInt("recent.feed_size"),
	}

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("database url must be provided")
	}

	if cfg.SessionTTL < time.Minute {
		cfg.SessionTTL = 20 * time.Minute
	}

	if cfg.RecentFeedSize <= 0 {
		cfg.RecentFeedSize = 10
	}

	return cfg, nil
}
