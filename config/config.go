package config

import "os"

// Config carries the environment-backed settings the server needs.
type Config struct {
	DBDriver      string // "postgres" or "sqlite"
	DatabaseURL   string // DSN for postgres, file path for sqlite
	JWTSecret     string
	SessionSecret string
	Port          string
	Seed          bool
}

// Load reads configuration from the environment. Missing values fall
// back to development defaults; main fails fast on the secrets.
func Load() Config {
	cfg := Config{
		DBDriver:      getenv("DB_DRIVER", "postgres"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		SessionSecret: os.Getenv("SESSION_SECRET"),
		Port:          getenv("PORT", "8080"),
		Seed:          os.Getenv("SEED") == "true",
	}
	if cfg.DBDriver == "sqlite" && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "catalog.db"
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
