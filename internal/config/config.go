package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins string

	DatabaseURL string
	RedisURL    string

	MeiliSearchHost string
	MeiliMasterKey  string

	CloudinaryUploadFolder string

	JWTSecret string

	// Point award settings. Defaults follow the platform's launch values.
	SignupPoints           int
	CheckinPoints          int
	FirstCheckinBonus      int
	CheckinRadiusMeters    float64
	CheckinRateLimit       time.Duration
	LeaderboardTTLOverride time.Duration
}

func Load() (*Config, error) {
	// Don't fail if .env doesn't exist (might be prod env vars)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),

		MeiliSearchHost: getEnv("MEILISEARCH_HOST", "http://localhost:7700"),
		MeiliMasterKey:  os.Getenv("MEILI_MASTER_KEY"),

		CloudinaryUploadFolder: getEnv("CLOUDINARY_UPLOAD_FOLDER", "lokadeal"),

		JWTSecret: getEnv("JWT_SECRET", "12345"),
	}

	var err error
	if cfg.SignupPoints, err = getEnvInt("SIGNUP_POINTS", 50); err != nil {
		return nil, err
	}
	if cfg.CheckinPoints, err = getEnvInt("CHECKIN_POINTS", 10); err != nil {
		return nil, err
	}
	if cfg.FirstCheckinBonus, err = getEnvInt("FIRST_CHECKIN_BONUS_POINTS", 25); err != nil {
		return nil, err
	}
	if cfg.CheckinRadiusMeters, err = getEnvFloat("CHECKIN_RADIUS_METERS", 100); err != nil {
		return nil, err
	}

	cfg.CheckinRateLimit, err = time.ParseDuration(getEnv("CHECKIN_RATE_LIMIT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("invalid CHECKIN_RATE_LIMIT: %w", err)
	}

	// Optional single TTL applied to every leaderboard cache granularity.
	if raw := os.Getenv("LEADERBOARD_CACHE_TTL"); raw != "" {
		cfg.LeaderboardTTLOverride, err = time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid LEADERBOARD_CACHE_TTL: %w", err)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}
