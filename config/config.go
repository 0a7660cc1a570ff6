package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is assembled once at startup and handed to components by value.
type Config struct {
	HTTPAddr    string
	DatabaseURL string

	JWTSecret        string
	JWTRefreshSecret string
	JWTIssuer        string

	AccessTokenTTL      time.Duration
	RefreshTokenTTL     time.Duration
	RefreshRotateWithin time.Duration
	EmailCodeTTL        time.Duration
	ResetCodeTTL        time.Duration
	ResetRateWindow     time.Duration
	ResetRateMax        int

	MFAIssuer string

	ResendAPIKey string
	EmailFrom    string
	AppBaseURL   string

	CookieDomain  string
	SecureCookies bool
}

func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("error load env %s", err)
	}

	cfg := Config{
		HTTPAddr:    envOr("HTTP_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		JWTRefreshSecret: os.Getenv("JWT_REFRESH_SECRET"),
		JWTIssuer:        os.Getenv("JWT_ISSUER"),

		AccessTokenTTL:      durationOr("ACCESS_TOKEN_TTL", 15*time.Minute),
		RefreshTokenTTL:     durationOr("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		RefreshRotateWithin: durationOr("REFRESH_ROTATE_WITHIN", 24*time.Hour),
		EmailCodeTTL:        durationOr("EMAIL_CODE_TTL", 45*time.Minute),
		ResetCodeTTL:        durationOr("RESET_CODE_TTL", time.Hour),
		ResetRateWindow:     durationOr("RESET_RATE_WINDOW", 3*time.Minute),
		ResetRateMax:        intOr("RESET_RATE_MAX", 2),

		MFAIssuer: envOr("MFA_ISSUER", "Authgate"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		EmailFrom:    os.Getenv("EMAIL_FROM"),
		AppBaseURL:   os.Getenv("APP_BASE_URL"),

		CookieDomain:  os.Getenv("COOKIE_DOMAIN"),
		SecureCookies: os.Getenv("COOKIE_SECURE") != "false",
	}

	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.JWTRefreshSecret == "" {
		return cfg, fmt.Errorf("JWT_REFRESH_SECRET is required")
	}
	return cfg, nil
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("invalid duration for %s: %s", key, value)
		return fallback
	}
	return parsed
}

func intOr(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid number for %s: %s", key, value)
		return fallback
	}
	return parsed
}
