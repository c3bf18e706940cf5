package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var Empty = new(Config)

type Config struct {
	AppEnv       string `envconfig:"APP_ENV" default:"local"`
	Port         int    `envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	SentryDSN    string `envconfig:"SENTRY_DSN" validate:"omitempty,url"`
	AllowOrigins string `envconfig:"ALLOW_ORIGINS"`

	TMDB struct {
		APIKey  string `envconfig:"TMDB_API_KEY" validate:"required"`
		BaseURL string `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3" validate:"required,url"`
		Timeout int    `envconfig:"TMDB_TIMEOUT_SECONDS" default:"0" validate:"min=0"`
	}
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	return cfg, nil
}

// Validate reports every missing or malformed setting at once.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c *Config) Origins() []string {
	if strings.TrimSpace(c.AllowOrigins) == "" {
		return nil
	}

	var origins []string
	for _, o := range strings.Split(c.AllowOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
