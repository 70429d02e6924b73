package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all report settings, populated from environment variables.
type Config struct {
	MetaCSVPath string
	ObsCSVPath  string
	OutputDir   string
	LogLevel    string
	LogFormat   string

	// Stadia Maps basemap configuration.
	StadiaAPIKey    string
	StadiaEnabled   bool
	StadiaTimeout   time.Duration
	StadiaCacheSize int
	StadiaZoom      int
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	stadiaTimeoutStr := envOrDefault("STADIA_TIMEOUT", "10s")
	stadiaTimeout, err := time.ParseDuration(stadiaTimeoutStr)
	if err != nil || stadiaTimeout <= 0 {
		return nil, errors.New("invalid STADIA_TIMEOUT")
	}

	stadiaZoom, err := parsePositiveInt("STADIA_ZOOM", 7)
	if err != nil {
		return nil, err
	}
	if stadiaZoom > 12 {
		return nil, errors.New("STADIA_ZOOM must be at most 12")
	}

	stadiaCacheSize, err := parsePositiveInt("STADIA_CACHE_SIZE", 128)
	if err != nil {
		return nil, err
	}

	stadiaKey := os.Getenv("STADIA_API_KEY")
	stadiaEnabled := stadiaKey != ""
	if v := os.Getenv("STADIA_ENABLED"); v != "" {
		stadiaEnabled = v == "true"
	}

	cfg := &Config{
		MetaCSVPath: envOrDefault("META_CSV", "data/ghcnd_meta_data.csv"),
		ObsCSVPath:  envOrDefault("OBS_CSV", "data/station_data.csv"),
		OutputDir:   envOrDefault("OUTPUT_DIR", "out"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		LogFormat:   envOrDefault("LOG_FORMAT", "text"),

		StadiaAPIKey:    stadiaKey,
		StadiaEnabled:   stadiaEnabled,
		StadiaTimeout:   stadiaTimeout,
		StadiaCacheSize: stadiaCacheSize,
		StadiaZoom:      stadiaZoom,
	}

	if cfg.MetaCSVPath == "" {
		return nil, errors.New("META_CSV is required")
	}
	if cfg.ObsCSVPath == "" {
		return nil, errors.New("OBS_CSV is required")
	}
	if cfg.StadiaEnabled && cfg.StadiaAPIKey == "" {
		return nil, errors.New("STADIA_ENABLED is true but STADIA_API_KEY is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New(key + " must be a positive integer")
	}
	return n, nil
}
