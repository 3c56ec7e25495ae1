package config

import (
	"os"
	"strconv"
)

type Config struct {
	Port                     string
	JWTSecret                string
	ReaperToken              string
	RedisAddr                string
	ImageBaseURL             string
	CaptionSeconds           int
	MinPlayersToStart        int
	ReapThresholdHours       int
	ReapMaxRooms             int
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		Port:                     "8080",
		JWTSecret:                "fakeframe-dev-secret",
		ImageBaseURL:             "/static/images/",
		CaptionSeconds:           90,
		MinPlayersToStart:        2,
		ReapThresholdHours:       24,
		ReapMaxRooms:             50,
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("JWT_SECRET"); raw != "" {
		cfg.JWTSecret = raw
	}
	if raw := os.Getenv("REAPER_TOKEN"); raw != "" {
		cfg.ReaperToken = raw
	}
	if raw := os.Getenv("REDIS_ADDR"); raw != "" {
		cfg.RedisAddr = raw
	}
	if raw := os.Getenv("IMAGE_BASE_URL"); raw != "" {
		cfg.ImageBaseURL = raw
	}
	if raw := os.Getenv("CAPTION_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.CaptionSeconds = value
		}
	}
	if raw := os.Getenv("MIN_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 1 {
			cfg.MinPlayersToStart = value
		}
	}
	if raw := os.Getenv("REAP_THRESHOLD_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ReapThresholdHours = value
		}
	}
	if raw := os.Getenv("REAP_MAX_ROOMS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ReapMaxRooms = value
		}
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
