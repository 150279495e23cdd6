// Package config loads the anonymization engine's server-level settings
// (database, HTTP port, auth) from the environment and its per-run privacy
// model defaults from a YAML file, mirroring the entrypoint's own
// requireEnv/getEnvOrDefault pattern for the former and the rest of the
// corpus's yaml.v3 usage for the latter.
package config

import (
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/rawblock/flashengine/pkg/models"
)

// Server holds the process-level settings a running instance needs before
// it can accept its first request.
type Server struct {
	DatabaseURL    string
	Port           string
	APIAuthToken   string
	AllowedOrigins string
}

// requireEnv reads a required environment variable and exits if it is not
// set, matching the entrypoint's fail-fast startup discipline.
func requireEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("FATAL: Required environment variable %s is not set.", key)
	}
	return val
}

// getEnvOrDefault returns the env var value or a safe default for
// non-secret settings.
func getEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// LoadServer reads the process-level settings from the environment.
// DATABASE_URL is required; everything else has a development-friendly
// default.
func LoadServer() Server {
	return Server{
		DatabaseURL:    requireEnv("DATABASE_URL"),
		Port:           getEnvOrDefault("PORT", "5339"),
		APIAuthToken:   os.Getenv("API_AUTH_TOKEN"),
		AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
	}
}

// LoadRunDefaults reads a YAML file of default run configuration (privacy
// models, suppression limit, quality model, search tuning) into a
// models.RunConfig, which the submit-run endpoint then overlays with any
// per-request overrides. A missing path is not an error: callers get the
// Go zero-value RunConfig, which internal/engine.FromRunConfig fills in
// with spec.md §6's own defaults.
func LoadRunDefaults(path string) (models.RunConfig, error) {
	var cfg models.RunConfig
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading run defaults %q: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing run defaults %q: %w", path, err)
	}
	return cfg, nil
}
