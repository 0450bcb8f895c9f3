package cli

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config is read from APPT_* environment variables.
type Config struct {
	BackendURL string        `envconfig:"BACKEND_URL" default:"http://localhost:5000"`
	Token      string        `envconfig:"TOKEN"`
	PageSize   int           `envconfig:"PAGE_SIZE" default:"10"`
	EditPrefix string        `envconfig:"EDIT_PREFIX" default:"/dashboard/appointment/edit"`
	Timeout    time.Duration `envconfig:"TIMEOUT" default:"30s"`
	LogLevel   string        `envconfig:"LOG_LEVEL" default:"warn"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("APPT", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}
	if cfg.PageSize < 1 {
		return Config{}, fmt.Errorf("APPT_PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	return cfg, nil
}
