package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

type Config struct {
	DiscordToken         string
	LeaderboardChannelID string
	DBPath               string
	HTTPPort             string
	LogLevel             string
	Timezone             string
	WeeklyCron           string
	CacheTTL             time.Duration
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		DiscordToken:         getEnv("DISCORD_TOKEN", ""),
		LeaderboardChannelID: getEnv("LEADERBOARD_CHANNEL_ID", ""),
		DBPath:               getEnv("DB_PATH", "leaderboard.db"),
		HTTPPort:             getEnv("HTTP_PORT", "8080"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		Timezone:             getEnv("TIMEZONE", "America/Chicago"),
		WeeklyCron:           getEnv("WEEKLY_CRON", "0 19 * * 1"),
		CacheTTL:             5 * time.Minute,
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is required")
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}

	logger.Info().
		Str("db_path", cfg.DBPath).
		Str("http_port", cfg.HTTPPort).
		Str("log_level", cfg.LogLevel).
		Str("timezone", cfg.Timezone).
		Str("weekly_cron", cfg.WeeklyCron).
		Bool("channel_configured", cfg.LeaderboardChannelID != "").
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
