// Package config loads the optional YAML configuration for the hullsim
// daemon. Everything has a working default; a missing file is not an error.
// Physics parameters are never configured here; they flow through the
// parameter-update endpoint so the pipeline stays the single source of truth.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds daemon-level settings.
type Config struct {
	Port     int     `yaml:"port"`
	DBPath   string  `yaml:"db_path"`
	Mode     string  `yaml:"mode"`      // initial operating mode
	LogLevel string  `yaml:"log_level"` // debug, info, warn, error
	StrobeHz float64 `yaml:"strobe_hz"` // exposed renderer timing field

	Collaborators Collaborators `yaml:"collaborators"`
}

// Collaborators configures the optional external module endpoints.
// An empty URL disables that collaborator.
type Collaborators struct {
	MetricURL         string `yaml:"metric_url"`
	DynamicCasimirURL string `yaml:"dynamic_casimir_url"`
	WarpModuleURL     string `yaml:"warp_module_url"`
}

// Default returns the stock daemon configuration.
func Default() Config {
	return Config{
		Port:     8080,
		DBPath:   "data/hullsim.db",
		Mode:     "hover",
		LogLevel: "info",
		StrobeHz: 60,
	}
}

// Load reads path if it exists, layers it over the defaults, then applies
// environment overrides (HULLSIM_PORT, HULLSIM_DB_PATH, HULLSIM_MODE).
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Fine, run on defaults.
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if v := os.Getenv("HULLSIM_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Port = p
		}
	}
	if v := os.Getenv("HULLSIM_DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HULLSIM_MODE"); v != "" {
		cfg.Mode = v
	}

	return cfg, nil
}
