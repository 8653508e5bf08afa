package utils

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"
)

// CookieConfig holds the attributes the session cookie is created with.
// Destroy must expire the cookie with the exact same attributes, so they
// live in one place.
type CookieConfig struct {
	Name     string
	Path     string
	Domain   string
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

type Config struct {
	Addr             string
	DatabaseURL      string
	RedisURL         string
	LockoutThreshold int64
	LockoutDuration  time.Duration
	CSRFTokenBytes   int
	SessionTTL       time.Duration
	Cookie           CookieConfig
}

// LoadConfig reads the recognized environment variables, falling back to
// safe defaults for anything unset.
func LoadConfig() Config {
	cfg := Config{
		Addr:             getEnv("ADDR", ":8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		LockoutThreshold: getEnvInt("LOCKOUT_THRESHOLD", 5),
		LockoutDuration:  time.Duration(getEnvInt("LOCKOUT_DURATION_SECONDS", 900)) * time.Second,
		CSRFTokenBytes:   int(getEnvInt("CSRF_TOKEN_BYTES", 32)),
		SessionTTL:       time.Duration(getEnvInt("SESSION_TTL_HOURS", 24)) * time.Hour,
		Cookie: CookieConfig{
			Name:     getEnv("COOKIE_NAME", "session_token"),
			Path:     getEnv("COOKIE_PATH", "/"),
			Domain:   os.Getenv("COOKIE_DOMAIN"),
			Secure:   getEnvBool("COOKIE_SECURE", false),
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		},
	}
	if cfg.CSRFTokenBytes < 16 {
		// 128 bits of entropy minimum
		log.Println("CSRF_TOKEN_BYTES too small, using 16")
		cfg.CSRFTokenBytes = 16
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Printf("invalid value for %s: %v, using default", key, err)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid value for %s: %v, using default", key, err)
		return fallback
	}
	return b
}
