package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"quicky/internal/domain"
)

// LoadDotEnv reads a .env file into the process environment when present.
// Absence is not an error; explicit environment variables always win.
func LoadDotEnv() {
	_ = godotenv.Load()
}

// ApplyEnvOverrides layers QUICKY_* environment variables over settings.
func ApplyEnvOverrides(settings domain.Settings) domain.Settings {
	settings.APIBaseURL = getEnv("QUICKY_API_BASE_URL", settings.APIBaseURL)
	settings.DataDir = getEnv("QUICKY_DATA_DIR", settings.DataDir)
	settings.InboxDir = getEnv("QUICKY_INBOX_DIR", settings.InboxDir)
	settings.RequestTimeout = getEnvAsInt("QUICKY_REQUEST_TIMEOUT", settings.RequestTimeout)
	settings.AutoSummarize = getEnvAsBool("QUICKY_AUTO_SUMMARIZE", settings.AutoSummarize)
	return settings
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
