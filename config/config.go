// ABOUTME: Configuration loader for the orion client
// ABOUTME: Loads settings from environment variables with defaults

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	APIURL         string        // base URL of the Orion service
	ConfigDir      string        // where session state and TUI logs live
	RequestTimeout time.Duration // per-request timeout on the HTTP client
	RefreshTimeout time.Duration // upper bound on a token refresh call
}

func Load() (*Config, error) {
	cfg := &Config{
		APIURL:         ensureScheme(getEnv("ORION_API_URL", "http://localhost:8080")),
		ConfigDir:      getEnv("ORION_CONFIG_DIR", defaultConfigDir()),
		RequestTimeout: time.Duration(getEnvInt("ORION_TIMEOUT", 30)) * time.Second,
		RefreshTimeout: time.Duration(getEnvInt("ORION_REFRESH_TIMEOUT", 15)) * time.Second,
	}

	if cfg.RequestTimeout < time.Second {
		return nil, fmt.Errorf("ORION_TIMEOUT must be at least 1 second")
	}
	if cfg.RefreshTimeout < time.Second {
		return nil, fmt.Errorf("ORION_REFRESH_TIMEOUT must be at least 1 second")
	}

	return cfg, nil
}

// defaultConfigDir follows the XDG spec, falling back to ~/.config/orion
func defaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "orion")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "orion")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
