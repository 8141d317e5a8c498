package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env         string
	Port        int
	DatabaseURL string
	DataDir     string
	JWTSecret   string
	JWTExpiry   time.Duration
	CORSOrigins []string
}

func Load() Config {
	env := getEnv("APP_ENV", "dev")

	return Config{
		Env:         env,
		Port:        getEnvInt("PORT", 5000),
		DatabaseURL: databaseURL(env),
		DataDir:     getEnv("DATA_DIR", "db"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   getEnvDuration("JWT_EXPIRES", 7*24*time.Hour),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
	}
}

// databaseURL returns the relational connection descriptor, or "" when none
// is configured (the caller falls back to file storage). Outside dev the
// transport must be encrypted, so sslmode=require is appended unless the
// descriptor already pins one.
func databaseURL(env string) string {
	url := os.Getenv("DATABASE_URL")

	if url == "" {
		return ""
	}

	if env == "production" && !strings.Contains(url, "sslmode=") {
		sep := "?"

		if strings.Contains(url, "?") {
			sep = "&"
		}

		url += sep + "sslmode=require"
	}

	return url
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")

	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)

		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err == nil {
			return num
		}
	}

	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)

		if err == nil {
			return d
		}
	}

	return fallback
}
