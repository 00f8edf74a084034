// internal/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/voxalab/pitchvillage/internal/sim"
)

// Config holds the application-level settings. Simulation tunables live in
// sim.Config and may be overridden by a JSON file in the data directory.
type Config struct {
	Port              string        `validate:"required"`
	DebugMode         bool          ``
	DataDir           string        `validate:"required"`
	ContentServiceURL string        ``
	ContentTimeout    time.Duration `validate:"gt=0"`
	PresenterName     string        ``
	CharacterCount    int           `validate:"gte=2,lte=200"`

	Sim sim.Config `validate:"-"`
}

// Load reads configuration from the environment (an optional .env file is
// honored), overlays simulation tunables from <DataDir>/sim.json when the
// file exists, and validates the result.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DebugMode:         getEnvBool("DEBUG_MODE", true),
		DataDir:           getEnvPath("DATA_DIR", "data"),
		ContentServiceURL: getEnv("CONTENT_SERVICE_URL", ""),
		ContentTimeout:    getEnvDuration("CONTENT_TIMEOUT", 15*time.Second),
		PresenterName:     getEnv("PRESENTER_NAME", ""),
		CharacterCount:    getEnvInt("CHARACTER_COUNT", 20),
		Sim:               sim.DefaultConfig(),
	}

	if err := overlaySimConfig(cfg); err != nil {
		return nil, err
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// overlaySimConfig merges <DataDir>/sim.json over the default tunables.
func overlaySimConfig(cfg *Config) error {
	path := filepath.Join(cfg.DataDir, "sim.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &cfg.Sim); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvPath(key, defaultValue string) string {
	path := getEnv(key, defaultValue)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		os.MkdirAll(path, 0755)
	}
	return path
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}
