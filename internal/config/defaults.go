package config

import (
	"os"
	"path/filepath"

	"quicky/internal/domain"
)

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		APIBaseURL:     "http://localhost:5000",
		DataDir:        filepath.Join(homeDir, ".quicky"),
		RequestTimeout: 30,
		AutoSummarize:  true,
	}
}
