package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// ============================================================
// Configuration
// ============================================================

type Config struct {
	Port         string `env:"PORT" envDefault:"3000"`
	Environment  string `env:"ENV" envDefault:"development"`
	ReadTimeout  int    `env:"READ_TIMEOUT" envDefault:"10"`
	WriteTimeout int    `env:"WRITE_TIMEOUT" envDefault:"10"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"*" envSeparator:","`

	Cache        CacheConfig
	Map          MapConfig
	Connectivity ConnectivityConfig
}

type CacheConfig struct {
	Backend  string        `env:"CACHE_BACKEND" envDefault:"sqlite"`
	Path     string        `env:"CACHE_PATH" envDefault:"data/db/cache.db"`
	Key      string        `env:"CACHE_KEY" envDefault:"campus-map-cache"`
	SeedPath string        `env:"SEED_PATH"`
	DraftTTL time.Duration `env:"DRAFT_TTL" envDefault:"30m"`
}

type MapConfig struct {
	ImageURL     string  `env:"MAP_IMAGE_URL"`
	Scale        float64 `env:"MAP_SCALE" envDefault:"0.1"`
	WalkingSpeed float64 `env:"WALKING_SPEED" envDefault:"1.4"`
}

type ConnectivityConfig struct {
	ProbeURL      string        `env:"CONNECTIVITY_PROBE_URL"`
	ProbeInterval time.Duration `env:"CONNECTIVITY_PROBE_INTERVAL" envDefault:"30s"`
	InitialOnline bool          `env:"INITIAL_ONLINE" envDefault:"true"`
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Map.Scale <= 0 {
		return nil, fmt.Errorf("MAP_SCALE must be positive, got %v", cfg.Map.Scale)
	}
	if cfg.Map.WalkingSpeed <= 0 {
		return nil, fmt.Errorf("WALKING_SPEED must be positive, got %v", cfg.Map.WalkingSpeed)
	}
	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
